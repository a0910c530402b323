package authz

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedDecision struct {
	mechanism string
	outcome   string
}

type stubRecorder struct {
	decisions []recordedDecision
}

func (r *stubRecorder) RecordDecision(mechanism, outcome string) {
	r.decisions = append(r.decisions, recordedDecision{mechanism, outcome})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(t *testing.T, handler http.Handler, p *Principal) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if p != nil {
		req = req.WithContext(ContextWithPrincipal(context.Background(), p))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRequireRolesGate(t *testing.T) {
	svc, _ := newTestService(t)
	recorder := &stubRecorder{}
	gate := Middleware{Service: svc, Metrics: recorder}
	handler := gate.RequireRoles(RoleSuperadmin, RoleAdmin)(okHandler())

	t.Run("unauthenticated", func(t *testing.T) {
		rec := doRequest(t, handler, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("inactive", func(t *testing.T) {
		p := principal(1, RoleAdmin)
		p.IsActive = false
		rec := doRequest(t, handler, &p)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wrong role", func(t *testing.T) {
		p := principal(1, RoleTeacher)
		rec := doRequest(t, handler, &p)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("allowed", func(t *testing.T) {
		p := principal(1, RoleAdmin)
		rec := doRequest(t, handler, &p)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	require.Len(t, recorder.decisions, 4)
	assert.Equal(t, recordedDecision{"role", "unauthenticated"}, recorder.decisions[0])
	assert.Equal(t, recordedDecision{"role", "inactive"}, recorder.decisions[1])
	assert.Equal(t, recordedDecision{"role", "deny"}, recorder.decisions[2])
	assert.Equal(t, recordedDecision{"role", "allow"}, recorder.decisions[3])
}

func TestRequirePermissionGate(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.SetRoleGrant(ctx, RoleTeacher, "read_students", true))

	recorder := &stubRecorder{}
	gate := Middleware{Service: svc, Metrics: recorder}
	handler := gate.RequirePermission("students", "read")(okHandler())

	t.Run("unauthenticated", func(t *testing.T) {
		rec := doRequest(t, handler, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("inactive", func(t *testing.T) {
		p := principal(1, RoleTeacher)
		p.IsActive = false
		rec := doRequest(t, handler, &p)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("denied role", func(t *testing.T) {
		p := principal(2, RoleStudent)
		rec := doRequest(t, handler, &p)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("allowed role", func(t *testing.T) {
		p := principal(3, RoleTeacher)
		rec := doRequest(t, handler, &p)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("revoked by override", func(t *testing.T) {
		require.NoError(t, svc.SetUserGrant(ctx, 4, "read_students", false, 1))
		p := principal(4, RoleTeacher)
		rec := doRequest(t, handler, &p)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	require.Len(t, recorder.decisions, 5)
	assert.Equal(t, recordedDecision{"permission", "unauthenticated"}, recorder.decisions[0])
	assert.Equal(t, recordedDecision{"permission", "inactive"}, recorder.decisions[1])
	assert.Equal(t, recordedDecision{"permission", "deny"}, recorder.decisions[2])
	assert.Equal(t, recordedDecision{"permission", "allow"}, recorder.decisions[3])
	assert.Equal(t, recordedDecision{"permission", "deny"}, recorder.decisions[4])
}

func TestRequirePermissionUnknownPair(t *testing.T) {
	svc, _ := newTestService(t)
	gate := Middleware{Service: svc}
	handler := gate.RequirePermission("spaceships", "fly")(okHandler())

	p := principal(1, RoleSuperadmin)
	rec := doRequest(t, handler, &p)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
