package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/membership/internal/platform/httpx"
	"github.com/odyssey-erp/membership/internal/rbac"
	"github.com/odyssey-erp/membership/internal/shared"
)

const userNotFoundMessage = "User not found."

// ServicePort is the behaviour the handler needs from Service.
type ServicePort interface {
	Create(ctx context.Context, in CreateInput) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	Update(ctx context.Context, id int64, in UpdateInput) (User, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, req shared.PageRequest) (shared.Page[User], error)
}

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service ServicePort
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service ServicePort, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers user routes. Callers must authenticate the group first.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireRole(rbac.RoleAdmin))
		r.Get("/", h.index)
		r.Post("/", h.store)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.destroy)
	})
	r.Get("/{id}", h.show)
}

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	result, err := h.service.List(r.Context(), shared.NewPageRequest(page, perPage))
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to load users.")
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		httpx.Error(w, http.StatusNotFound, userNotFoundMessage)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, userNotFoundMessage)
			return
		}
		h.logger.Error("get user failed", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Create(r.Context(), in)
	if err != nil {
		var verr *shared.ValidationError
		if errors.As(err, &verr) {
			httpx.Validation(w, verr)
			return
		}
		h.logger.Error("create user failed", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to create user.")
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		httpx.Error(w, http.StatusNotFound, userNotFoundMessage)
		return
	}
	var in UpdateInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		if _, getErr := h.service.Get(r.Context(), id); errors.Is(getErr, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, userNotFoundMessage)
			return
		}
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		var verr *shared.ValidationError
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Error(w, http.StatusNotFound, userNotFoundMessage)
		case errors.As(err, &verr):
			httpx.Validation(w, verr)
		default:
			h.logger.Error("update user failed", slog.Int64("id", id), slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "Failed to update user.")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		httpx.Error(w, http.StatusNotFound, userNotFoundMessage)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Error(w, http.StatusNotFound, userNotFoundMessage)
			return
		}
		h.logger.Error("delete user failed", slog.Int64("id", id), slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "Failed to delete user.")
		return
	}
	httpx.Message(w, http.StatusOK, "User deleted successfully.")
}

func userID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
