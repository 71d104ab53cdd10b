package pharmacy

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/rbac"
	"github.com/medira-his/medira/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	gates   rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, gates rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gates: gates}
}

// MountRoutes registers pharmacy routes. Catalogue writes use the
// pharmacist gate, which also honors the role-code fallback for tokens
// issued without the ability; sales are open to pharmacists and cashiers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/medications", h.ListMedications)
	r.Get("/medications/{id}", h.ShowMedication)
	r.Group(func(r chi.Router) {
		r.Use(h.gates.RequirePharmacist())
		r.Post("/medications", h.CreateMedication)
		r.Put("/medications/{id}", h.UpdateMedication)
		r.Delete("/medications/{id}", h.DeleteMedication)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gates.RequireAnyAbility(rbac.AbilitySuperAdmin, rbac.AbilityAdmin, rbac.AbilityPharmacist, rbac.AbilityCashier))
		r.Post("/sales", h.Sell)
		r.Get("/sales/{id}", h.ShowSale)
	})
}

func (h *Handler) branchID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	if id, ok := shared.BranchScopeFromContext(r.Context()); ok {
		return id, true
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "branchID"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid branch id")
		return 0, false
	}
	return id, true
}

func (h *Handler) ListMedications(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.branchID(w, r)
	if !ok {
		return
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

	items, total, err := h.service.ListMedications(r.Context(), branchID, filters)
	if err != nil {
		h.logger.Error("list medications", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"medications": items,
		"pagination":  shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) ShowMedication(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid medication id")
		return
	}
	m, err := h.service.GetMedication(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

func (h *Handler) CreateMedication(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.branchID(w, r)
	if !ok {
		return
	}
	var form MedicationForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := h.service.CreateMedication(r.Context(), branchID, form)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, m)
}

func (h *Handler) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid medication id")
		return
	}
	var form MedicationForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.UpdateMedication(r.Context(), id, form); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "medication updated"})
}

func (h *Handler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid medication id")
		return
	}
	if err := h.service.DeleteMedication(r.Context(), id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "medication deleted"})
}

func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.branchID(w, r)
	if !ok {
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var form SaleForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sale, err := h.service.Sell(r.Context(), branchID, p.ID, form)
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			httpx.Error(w, http.StatusConflict, err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) ShowSale(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	sale, err := h.service.GetSale(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}
