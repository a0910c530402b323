package notifications

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/edudemy/edudemy/internal/authz"
	"github.com/edudemy/edudemy/internal/platform/httpx"
)

// Handler manages notification endpoints. Reads are self-scoped: a user
// only ever sees their own rows.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	gate     authz.Middleware
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validate: validator.New()}
}

// MountRoutes registers notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission("notifications", "create"))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission("notifications", "read"))
		r.Get("/", h.listMine)
		r.Get("/unread-count", h.unreadCount)
		r.Put("/{id}/read", h.markRead)
		r.Put("/mark-all-read", h.markAllRead)
	})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createNotificationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	n, err := h.service.Notify(r.Context(), Notification{
		UserID:  req.UserID,
		Title:   req.Title,
		Message: req.Message,
		Type:    Type(req.Type),
		Data:    req.Data,
	})
	if err != nil {
		h.respondError(w, "create notification", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toNotificationResponse(*n))
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	unreadOnly := r.URL.Query().Get("unread_only") == "true"

	list, err := h.service.ListForUser(r.Context(), principal.ID, unreadOnly, limit, offset)
	if err != nil {
		h.respondError(w, "list notifications", err)
		return
	}
	out := make([]notificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, toNotificationResponse(n))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": out})
}

func (h *Handler) unreadCount(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	count, err := h.service.CountUnread(r.Context(), principal.ID)
	if err != nil {
		h.respondError(w, "unread count", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid notification id")
		return
	}
	if err := h.service.MarkRead(r.Context(), id, principal.ID); err != nil {
		h.respondError(w, "mark read", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]bool{"is_read": true})
}

func (h *Handler) markAllRead(w http.ResponseWriter, r *http.Request) {
	principal := authz.PrincipalFromContext(r.Context())
	if principal == nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "authentication required")
		return
	}
	marked, err := h.service.MarkAllRead(r.Context(), principal.ID)
	if err != nil {
		h.respondError(w, "mark all read", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]int64{"marked": marked})
}

func (h *Handler) respondError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error(action, slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
