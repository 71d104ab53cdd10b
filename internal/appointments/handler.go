package appointments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

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

// MountRoutes registers appointment routes; the router applies the gates.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Book)
	r.Get("/day-load", h.DayLoad)
	r.Get("/{id}", h.Show)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/complete", h.Complete)
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
	doctorID, _ := strconv.ParseInt(r.URL.Query().Get("doctor"), 10, 64)
	filters := ListFilters{
		Page:     page,
		Limit:    limit,
		DoctorID: doctorID,
		Status:   r.URL.Query().Get("status"),
		Day:      r.URL.Query().Get("day"),
	}

	items, total, err := h.service.List(r.Context(), branchID, filters)
	if err != nil {
		h.logger.Error("list appointments", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"appointments": items,
		"pagination":   shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.branchID(w, r)
	if !ok {
		return
	}
	var form BookForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	appt, err := h.service.Book(r.Context(), branchID, form)
	if err != nil {
		if errors.Is(err, ErrSlotsFull) {
			httpx.Error(w, http.StatusConflict, err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, appt)
}

func (h *Handler) DayLoad(w http.ResponseWriter, r *http.Request) {
	branchID, ok := h.branchID(w, r)
	if !ok {
		return
	}
	day := time.Now()
	if raw := r.URL.Query().Get("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid day, want YYYY-MM-DD")
			return
		}
		day = parsed
	}
	loads, err := h.service.DayLoad(r.Context(), branchID, day)
	if err != nil {
		h.logger.Error("appointment day load", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"doctors": loads, "max_slots": MaxDailySlots})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	appt, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, appt)
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel, "appointment cancelled")
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Complete, "appointment completed")
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) error, msg string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid appointment id")
		return
	}
	if err := fn(r.Context(), id); err != nil {
		if errors.Is(err, ErrBadTransition) {
			httpx.Error(w, http.StatusConflict, err.Error())
			return
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": msg})
}
