package auth

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/edudemy/edudemy/internal/authz"
	"github.com/edudemy/edudemy/internal/shared"
	"github.com/edudemy/edudemy/internal/users"
)

// PrincipalLoader turns the session's user reference into the authorization
// principal for downstream gates. Requests without a valid session pass
// through unauthenticated; the gates reject them.
type PrincipalLoader struct {
	Users  *users.Service
	Logger *slog.Logger
}

// Middleware loads the principal into the request context.
func (l PrincipalLoader) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess == nil {
			next.ServeHTTP(w, r)
			return
		}
		raw := strings.TrimSpace(sess.User())
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			if l.Logger != nil {
				l.Logger.Error("auth parse session user id", slog.String("value", raw))
			}
			next.ServeHTTP(w, r)
			return
		}

		principal, err := l.Users.PrincipalByID(r.Context(), userID)
		if err != nil {
			if l.Logger != nil {
				l.Logger.Warn("auth load principal", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}

		ctx := authz.ContextWithPrincipal(r.Context(), &principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
