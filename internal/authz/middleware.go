package authz

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/edudemy/edudemy/internal/platform/httpx"
)

// DecisionRecorder counts gate outcomes, by mechanism, for observability.
type DecisionRecorder interface {
	RecordDecision(mechanism, outcome string)
}

// Middleware wires the authorization gate into HTTP handlers. It runs
// after authentication, performs no writes, and fails closed.
type Middleware struct {
	Service *Service
	Logger  *slog.Logger
	Metrics DecisionRecorder
}

// RequireRoles allows the request through when the principal's role is in
// the allowed set. This is the coarse legacy mechanism.
func (m Middleware) RequireRoles(allowed ...Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				m.record("role", "unauthenticated")
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			if !principal.IsActive {
				m.record("role", "inactive")
				httpx.Problem(w, http.StatusForbidden, "Account Inactive", "account is deactivated")
				return
			}
			if !m.Service.RequireRole(*principal, allowed...) {
				m.record("role", "deny")
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "role not permitted")
				return
			}
			m.record("role", "allow")
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission allows the request through when the principal's
// effective permission set covers (resource, action). This is the
// fine-grained mechanism.
func (m Middleware) RequirePermission(resource, action string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				m.record("permission", "unauthenticated")
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
				return
			}
			allowed, err := m.Service.HasPermission(r.Context(), *principal, resource, action)
			if errors.Is(err, ErrInactive) {
				m.record("permission", "inactive")
				httpx.Problem(w, http.StatusForbidden, "Account Inactive", "account is deactivated")
				return
			}
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("authz permission check",
						slog.Int64("user_id", principal.ID),
						slog.String("resource", resource),
						slog.String("action", action),
						slog.Any("error", err))
				}
				httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
				return
			}
			if !allowed {
				m.record("permission", "deny")
				httpx.Problem(w, http.StatusForbidden, "Forbidden", "permission not granted")
				return
			}
			m.record("permission", "allow")
			next.ServeHTTP(w, r)
		})
	}
}

func (m Middleware) record(mechanism, outcome string) {
	if m.Metrics != nil {
		m.Metrics.RecordDecision(mechanism, outcome)
	}
}
