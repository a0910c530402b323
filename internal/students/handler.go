package students

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

// Handler manages student record endpoints. Every route runs behind the
// fine-grained permission gate on the students resource.
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

// MountRoutes registers student routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission("students", "read"))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission("students", "create"))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission("students", "update"))
		r.Patch("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequirePermission("students", "delete"))
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListStudentsRequest{Limit: 50}

	if batchParam := r.URL.Query().Get("batch_id"); batchParam != "" {
		parsed, err := strconv.ParseInt(batchParam, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid batch_id")
			return
		}
		req.BatchID = &parsed
	}
	if search := r.URL.Query().Get("search"); search != "" {
		req.Search = &search
	}
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			req.Limit = parsed
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			req.Offset = parsed
		}
	}

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, "list students", err)
		return
	}
	out := listStudentsResponse{Students: make([]studentResponse, 0, len(list)), Total: total}
	for _, s := range list {
		out.Students = append(out.Students, toStudentResponse(s))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid student id")
		return
	}
	student, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get student", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStudentResponse(*student))
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createStudentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	student, err := h.service.Create(r.Context(), Student{
		UserID:        req.UserID,
		FullName:      req.FullName,
		Phone:         req.Phone,
		Email:         req.Email,
		BatchID:       req.BatchID,
		RollNumber:    req.RollNumber,
		DateOfBirth:   req.DateOfBirth,
		Address:       req.Address,
		ParentName:    req.ParentName,
		ParentPhone:   req.ParentPhone,
		AdmissionDate: req.AdmissionDate,
	})
	if err != nil {
		h.respondError(w, "create student", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toStudentResponse(*student))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid student id")
		return
	}

	var req updateStudentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	student, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, "update student", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStudentResponse(*student))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid student id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, "delete student", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "student deleted"})
}

func (h *Handler) respondError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrAlreadyExists):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	default:
		if h.logger != nil {
			h.logger.Error(action, slog.Any("error", err))
		}
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
