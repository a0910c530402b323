package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/edudemy/edudemy/internal/platform/httpx"
	"github.com/edudemy/edudemy/internal/shared"
)

// PrincipalDirectory resolves a stored user into a Principal so the admin
// surface can list another user's effective permissions. Implemented by
// the users module.
type PrincipalDirectory interface {
	PrincipalByID(ctx context.Context, userID int64) (Principal, error)
}

// Handler exposes the administrative surface over the catalog and the two
// grant tables. Everything except /my-permissions is restricted to
// admin/superadmin through the coarse role gate, matching the legacy
// behavior.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	directory PrincipalDirectory
	gate      Middleware
	audit     *shared.AuditLogger
	validate  *validator.Validate
}

// NewHandler builds Handler instance. The audit logger is optional; grant
// changes go unrecorded without it.
func NewHandler(logger *slog.Logger, service *Service, directory PrincipalDirectory, gate Middleware, audit *shared.AuditLogger) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		directory: directory,
		gate:      gate,
		audit:     audit,
		validate:  validator.New(),
	}
}

// MountRoutes registers permission administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireRoles(RoleSuperadmin, RoleAdmin))
		r.Post("/", h.createPermission)
		r.Get("/", h.listPermissions)
		r.Post("/role-grants", h.setRoleGrant)
		r.Get("/roles/{role}", h.listRoleGrants)
		r.Post("/user-grants", h.setUserGrant)
		r.Get("/users/{id}", h.listUserEffective)
		r.Get("/users/{id}/grants", h.listUserGrants)
	})
	r.Get("/my-permissions", h.myPermissions)
}

func (h *Handler) createPermission(w http.ResponseWriter, r *http.Request) {
	var req createPermissionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	perm, err := h.service.DefinePermission(r.Context(), req.Name, req.Resource, req.Action, req.Description)
	if err != nil {
		h.respondError(w, r, "create permission", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toPermissionResponse(perm))
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.service.ListPermissions(r.Context())
	if err != nil {
		h.respondError(w, r, "list permissions", err)
		return
	}
	out := make([]permissionResponse, 0, len(perms))
	for _, p := range perms {
		out = append(out, toPermissionResponse(p))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) recordAudit(r *http.Request, action, entity, entityID string, meta map[string]any) {
	if h.audit == nil {
		return
	}
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		return
	}
	err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  principal.ID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Meta:     meta,
	})
	if err != nil && h.logger != nil {
		h.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}

func (h *Handler) setRoleGrant(w http.ResponseWriter, r *http.Request) {
	var req setRoleGrantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	role, err := ParseRole(req.Role)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.SetRoleGrant(r.Context(), role, req.PermissionName, *req.Granted); err != nil {
		h.respondError(w, r, "set role grant", err)
		return
	}
	h.recordAudit(r, "authz.role_grant.set", "role", string(role), map[string]any{
		"permission": req.PermissionName,
		"granted":    *req.Granted,
	})
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "role grant updated"})
}

func (h *Handler) listRoleGrants(w http.ResponseWriter, r *http.Request) {
	role, err := ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	grants, err := h.service.GrantsForRole(r.Context(), role)
	if err != nil {
		h.respondError(w, r, "list role grants", err)
		return
	}
	httpx.JSON(w, http.StatusOK, grants)
}

func (h *Handler) setUserGrant(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	var req setUserGrantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if _, err := h.directory.PrincipalByID(r.Context(), req.UserID); err != nil {
		h.respondError(w, r, "lookup user", err)
		return
	}

	if err := h.service.SetUserGrant(r.Context(), req.UserID, req.PermissionName, *req.Granted, principal.ID); err != nil {
		h.respondError(w, r, "set user grant", err)
		return
	}
	h.recordAudit(r, "authz.user_grant.set", "user", strconv.FormatInt(req.UserID, 10), map[string]any{
		"permission": req.PermissionName,
		"granted":    *req.Granted,
	})
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "user grant updated"})
}

func (h *Handler) listUserEffective(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}

	target, err := h.directory.PrincipalByID(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, "lookup user", err)
		return
	}

	effective, err := h.service.EffectivePermissions(r.Context(), target)
	if err != nil {
		h.respondError(w, r, "resolve effective permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sortedNames(effective))
}

func (h *Handler) listUserGrants(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	grants, err := h.service.ListUserGrants(r.Context(), userID)
	if err != nil {
		h.respondError(w, r, "list user grants", err)
		return
	}
	out := make([]userGrantResponse, 0, len(grants))
	for _, g := range grants {
		out = append(out, userGrantResponse{
			UserID:       g.UserID,
			PermissionID: g.PermissionID,
			Granted:      g.Granted,
			GrantedBy:    g.GrantedBy,
			UpdatedAt:    g.UpdatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) myPermissions(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	if !principal.IsActive {
		httpx.Problem(w, http.StatusForbidden, "Account Inactive", "account is deactivated")
		return
	}

	effective, err := h.service.EffectivePermissions(r.Context(), *principal)
	if err != nil {
		h.respondError(w, r, "resolve effective permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, sortedNames(effective))
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateName):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error(action, slog.Any("error", err), slog.String("path", r.URL.Path))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func sortedNames(effective map[string]struct{}) []string {
	names := make([]string, 0, len(effective))
	for name := range effective {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
