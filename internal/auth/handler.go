package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/membership/internal/platform/httpx"
	"github.com/odyssey-erp/membership/internal/shared"
	"github.com/odyssey-erp/membership/internal/users"
)

// Registrar stores self-registered users.
type Registrar interface {
	Register(ctx context.Context, in users.RegisterInput) error
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	registrar    Registrar
	exposeErrors bool
}

// NewHandler constructs a Handler instance. exposeErrors appends internal
// error text to 500 bodies and should be off in production.
func NewHandler(logger *slog.Logger, service *Service, registrar Registrar, exposeErrors bool) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, registrar: registrar, exposeErrors: exposeErrors}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
}

type loginForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var form loginForm
	if err := httpx.DecodeJSON(w, r, &form); err != nil {
		var verr *shared.ValidationError
		if !errors.As(err, &verr) {
			httpx.RespondError(w, err)
			return
		}
		// Non-string credentials cannot match anything.
		httpx.Error(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.service.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Error(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		h.logger.Error("login error", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, h.failure("Failed to login.", err))
		return
	}
	httpx.JSON(w, http.StatusOK, token)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in users.RegisterInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.registrar.Register(r.Context(), in); err != nil {
		var verr *shared.ValidationError
		if errors.As(err, &verr) {
			httpx.Validation(w, verr)
			return
		}
		h.logger.Error("register error", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, h.failure("Failed to register user.", err))
		return
	}
	httpx.Message(w, http.StatusCreated, "User registered successfully")
}

func (h *Handler) failure(msg string, err error) string {
	if !h.exposeErrors || err == nil {
		return msg
	}
	return msg + " " + err.Error()
}
