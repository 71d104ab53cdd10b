package branches

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

// MountRoutes registers branch routes. Reads are open to any staff ability;
// writes are reserved for the super admin.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gates.RequireAnyAbility(
			rbac.AbilitySuperAdmin, rbac.AbilityAdmin, rbac.AbilityDoctor,
			rbac.AbilityNurse, rbac.AbilityCashier, rbac.AbilityPharmacist,
			rbac.AbilityITSupport, rbac.AbilityCenterAid, rbac.AbilityAuditor,
		))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gates.RequireAbility(rbac.AbilitySuperAdmin))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}

	filters := ListFilters{
		Page:    page,
		Limit:   limit,
		Search:  r.URL.Query().Get("search"),
		SortBy:  r.URL.Query().Get("sort"),
		SortDir: r.URL.Query().Get("dir"),
	}

	branches, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list branches failed", "error", err)
		httpx.Error(w, http.StatusInternalServerError, "failed to load branches")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"branches":   branches,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	branch, err := h.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) {
			h.logger.Error("get branch failed", "error", err, "id", id)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, branch)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form BranchForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	branch, err := h.service.Create(r.Context(), form)
	if err != nil {
		if !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrDuplicate) {
			h.logger.Error("create branch failed", "error", err)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, branch)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	var form BranchForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.Update(r.Context(), id, form); err != nil {
		if !errors.Is(err, httpx.ErrValidation) && !errors.Is(err, httpx.ErrDuplicate) && !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("update branch failed", "error", err, "id", id)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "branch updated"})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid branch id")
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, httpx.ErrValidation) {
			h.logger.Error("delete branch failed", "error", err, "id", id)
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "branch deleted"})
}
