package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

// Handler wires the report endpoints. Reports replay the full entry stream on
// every request, so the routes carry their own rate limit.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rateLimit func(http.Handler) http.Handler
}

// NewHandler constructs the reports handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rateLimit: httprate.Limit(30, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rateLimit)
		r.Get("/trial-balance", h.TrialBalance)
		r.Get("/balance-sheet", h.BalanceSheet)
		r.Get("/profit-loss", h.ProfitAndLoss)
	})
}

func projectFilter(r *http.Request) (*int64, bool) {
	raw := r.URL.Query().Get("project_id")
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false
	}
	return &id, true
}

func (h *Handler) window(w http.ResponseWriter, r *http.Request) (from, to time.Time, projectID *int64, ok bool) {
	from, err := httpx.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		httpx.RespondError(w, err)
		return from, to, nil, false
	}
	to, err = httpx.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		httpx.RespondError(w, err)
		return from, to, nil, false
	}
	projectID, valid := projectFilter(r)
	if !valid {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid project_id")
		return from, to, nil, false
	}
	return from, to, projectID, true
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	from, to, projectID, ok := h.window(w, r)
	if !ok {
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), from, to, projectID)
	if err != nil {
		h.logger.Error("trial balance failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOn, err := httpx.ParseDate(r.URL.Query().Get("as_on"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	projectID, valid := projectFilter(r)
	if !valid {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid project_id")
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), asOn, projectID)
	if err != nil {
		h.logger.Error("balance sheet failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) ProfitAndLoss(w http.ResponseWriter, r *http.Request) {
	from, to, projectID, ok := h.window(w, r)
	if !ok {
		return
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), from, to, projectID)
	if err != nil {
		h.logger.Error("profit and loss failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pl)
}
