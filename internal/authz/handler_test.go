package authz

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	principals map[int64]Principal
}

func (d *stubDirectory) PrincipalByID(ctx context.Context, userID int64) (Principal, error) {
	p, ok := d.principals[userID]
	if !ok {
		return Principal{}, ErrNotFound
	}
	return p, nil
}

func newTestRouter(t *testing.T, svc *Service, directory *stubDirectory, p *Principal) http.Handler {
	t.Helper()
	handler := NewHandler(nil, svc, directory, Middleware{Service: svc}, nil)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if p != nil {
				req = req.WithContext(ContextWithPrincipal(req.Context(), p))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/permissions", handler.MountRoutes)
	return r
}

func TestPermissionsAPIRequiresAdminRole(t *testing.T) {
	svc, _ := newTestService(t)
	directory := &stubDirectory{principals: map[int64]Principal{}}

	teacher := principal(5, RoleTeacher)
	router := newTestRouter(t, svc, directory, &teacher)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions/", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// The self-service route stays open to every active principal.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions/my-permissions", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreatePermissionEndpoint(t *testing.T) {
	svc, _ := newTestService(t)
	directory := &stubDirectory{principals: map[int64]Principal{}}
	admin := principal(1, RoleAdmin)
	router := newTestRouter(t, svc, directory, &admin)

	body := `{"name":"publish_results","resource":"exam_results","action":"publish","description":"Publish exam results"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permissions/", strings.NewReader(body)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created permissionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "publish_results", created.Name)
	assert.NotZero(t, created.ID)

	// Duplicate names conflict.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permissions/", strings.NewReader(body)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Missing fields fail validation.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permissions/", strings.NewReader(`{"name":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetRoleGrantEndpoint(t *testing.T) {
	svc, _ := newTestService(t)
	directory := &stubDirectory{principals: map[int64]Principal{}}
	admin := principal(1, RoleSuperadmin)
	router := newTestRouter(t, svc, directory, &admin)

	body := `{"role":"teacher","permission_name":"read_students","granted":true}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permissions/role-grants", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions/roles/teacher", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var grants map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &grants))
	assert.True(t, grants["read_students"])

	// Unknown roles are rejected before touching the store.
	body = `{"role":"janitor","permission_name":"read_students","granted":true}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permissions/role-grants", strings.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown permission names 404.
	body = `{"role":"teacher","permission_name":"fly_spaceships","granted":true}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permissions/role-grants", strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetUserGrantEndpoint(t *testing.T) {
	svc, _ := newTestService(t)
	target := principal(42, RoleTeacher)
	directory := &stubDirectory{principals: map[int64]Principal{42: target}}
	admin := principal(1, RoleAdmin)
	router := newTestRouter(t, svc, directory, &admin)

	body := `{"user_id":42,"permission_name":"update_students","granted":true}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permissions/user-grants", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code)

	// The override shows up in the target's effective set.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions/users/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var effective []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &effective))
	assert.Contains(t, effective, "update_students")

	// And the grant row records who set it.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions/users/42/grants", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rows []userGrantResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.EqualValues(t, admin.ID, rows[0].GrantedBy)

	// Overrides for unknown users 404.
	body = `{"user_id":999,"permission_name":"update_students","granted":true}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/permissions/user-grants", strings.NewReader(body)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMyPermissionsInactive(t *testing.T) {
	svc, _ := newTestService(t)
	directory := &stubDirectory{principals: map[int64]Principal{}}
	p := principal(5, RoleTeacher)
	p.IsActive = false
	router := newTestRouter(t, svc, directory, &p)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/permissions/my-permissions", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
