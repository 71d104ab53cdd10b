package leave

import (
	"context"
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

// MountRoutes registers leave routes. Submitting and listing is open to any
// staff passing the outer gates; approval and rejection need admin abilities.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Submit)
	r.Get("/{id}", h.Show)
	r.Group(func(r chi.Router) {
		r.Use(h.gates.RequireAnyAbility(rbac.AbilitySuperAdmin, rbac.AbilityAdmin))
		r.Post("/{id}/approve", h.Approve)
		r.Post("/{id}/reject", h.Reject)
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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.branchID(w, r)
	if !ok {
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
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
	filters := ListFilters{Page: page, Limit: limit, Status: r.URL.Query().Get("status")}

	// Non-admin staff only see their own requests.
	if !rbac.IsSuperRole(p) && !p.HasAbility(rbac.AbilityAdmin) {
		filters.UserID = p.ID
	}

	items, total, err := h.service.List(r.Context(), branchID, filters)
	if err != nil {
		h.logger.Error("list leave requests", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"leave_requests": items,
		"pagination":     shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.branchID(w, r)
	if !ok {
		return
	}
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var form RequestForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req, err := h.service.Submit(r.Context(), p.ID, branchID, form)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, req)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid leave request id")
		return
	}
	req, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve, "leave approved")
}

func (h *Handler) Reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject, "leave rejected")
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id, decidedBy int64) error, msg string) {
	p := shared.PrincipalFromContext(r.Context())
	if p == nil {
		httpx.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid leave request id")
		return
	}
	if err := fn(r.Context(), id, p.ID); err != nil {
		if errors.Is(err, ErrAlreadyDecided) {
			httpx.Error(w, http.StatusConflict, err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": msg})
}
