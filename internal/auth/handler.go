package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	tokens    *TokenStore
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, tokens *TokenStore) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		tokens:    tokens,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router. loginLimiter,
// when non-nil, throttles the credential endpoint only.
func (h *Handler) MountRoutes(r chi.Router, loginLimiter func(http.Handler) http.Handler) {
	if loginLimiter != nil {
		r.With(loginLimiter).Post("/login", h.handleLogin)
	} else {
		r.Post("/login", h.handleLogin)
	}
	r.Post("/logout", h.handleLogout)
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required,min=8"`
}

type loginResponse struct {
	Token     string   `json:"token"`
	ID        int64    `json:"id"`
	Name      string   `json:"name"`
	RoleCode  int      `json:"role_code"`
	RoleName  string   `json:"role_name"`
	BranchID  *int64   `json:"branch_id,omitempty"`
	Abilities []string `json:"abilities"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "identifier and password are required")
		return
	}

	user, abilities, err := h.service.Authenticate(r.Context(), req.Identifier, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrPrincipalNotFound):
			// Distinguishable from a wrong secret at this layer only.
			httpx.Error(w, http.StatusNotFound, "account not found")
		case errors.Is(err, shared.ErrInvalidCredentials):
			httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
		default:
			h.logger.Error("authenticate", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	token, err := h.tokens.Issue(r.Context(), user.ID, abilities)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	httpx.JSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ID:        user.ID,
		Name:      user.Name,
		RoleCode:  user.RoleCode,
		RoleName:  user.RoleName,
		BranchID:  user.BranchID,
		Abilities: abilities,
	})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.tokens.Revoke(r.Context(), token); err != nil {
		h.logger.Warn("revoke token", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "signed out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
