package patients

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medira-his/medira/internal/auth"
	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/rbac"
	"github.com/medira-his/medira/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	tokens  *auth.TokenStore
}

func NewHandler(logger *slog.Logger, service *Service, tokens *auth.TokenStore) *Handler {
	return &Handler{logger: logger, service: service, tokens: tokens}
}

// MountPublicRoutes registers the unauthenticated signup endpoint.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/register", h.Register)
}

// MountRoutes registers branch-scoped patient routes. The router wraps them
// in the capability and branch-isolation gates.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
}

type registerResponse struct {
	Token   string  `json:"token"`
	Patient Patient `json:"patient"`
}

// Register self-signs-up a patient and issues a patient-ability token so the
// dashboard can log the new account straight in.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form RegisterForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	patient, err := h.service.Register(r.Context(), form)
	if err != nil {
		h.logger.Warn("patient signup rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	token, err := h.tokens.Issue(r.Context(), patient.UserID, rbac.Abilities(rbac.RolePatient))
	if err != nil {
		h.logger.Error("issue patient token", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.JSON(w, http.StatusCreated, registerResponse{Token: token, Patient: patient})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	branchID, ok := shared.BranchScopeFromContext(r.Context())
	if !ok {
		// Super-role requests carry the branch in the path instead.
		id, err := strconv.ParseInt(chi.URLParam(r, "branchID"), 10, 64)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid branch id")
			return
		}
		branchID = id
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	filters := ListFilters{Page: page, Limit: limit, Search: r.URL.Query().Get("search")}

	items, total, err := h.service.List(r.Context(), branchID, filters)
	if err != nil {
		h.logger.Error("list patients", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"patients":   items,
		"pagination": shared.NewPagination(filters.Page, filters.Limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	patient, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, patient)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid patient id")
		return
	}
	var form UpdateForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.Update(r.Context(), id, form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "patient updated"})
}
