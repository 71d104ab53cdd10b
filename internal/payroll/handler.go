package payroll

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/medira-his/medira/internal/platform/httpx"
	"github.com/medira-his/medira/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers payroll routes; the router restricts the whole
// group to admin abilities.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/summary", h.Summary)
	r.Get("/{id}", h.Show)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/pay", h.MarkPaid)
	r.Delete("/{id}", h.Delete)
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
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	filters := ListFilters{Page: page, Limit: limit, Month: r.URL.Query().Get("month")}

	items, total, err := h.service.List(r.Context(), branchID, filters)
	if err != nil {
		h.logger.Error("list salaries", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"salaries":   items,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.branchID(w, r)
	if !ok {
		return
	}
	var form SalaryForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	salary, err := h.service.Create(r.Context(), branchID, form)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, salary)
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.branchID(w, r)
	if !ok {
		return
	}
	summary, err := h.service.Summary(r.Context(), branchID, r.URL.Query().Get("month"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid salary id")
		return
	}
	salary, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, salary)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid salary id")
		return
	}
	var form SalaryForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.Update(r.Context(), id, form); err != nil {
		h.respondMutation(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "salary updated"})
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.MarkPaid, "salary marked paid")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.service.Delete, "salary deleted")
}

func (h *Handler) mutate(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) error, msg string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid salary id")
		return
	}
	if err := fn(r.Context(), id); err != nil {
		h.respondMutation(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": msg})
}

func (h *Handler) respondMutation(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrAlreadyPaid) {
		httpx.Error(w, http.StatusConflict, err.Error())
		return
	}
	httpx.RespondError(w, err)
}
