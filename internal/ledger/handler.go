package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ledgerline/ledgerline/internal/coa"
	"github.com/ledgerline/ledgerline/internal/platform/httpx"
)

// Handler wires ledger statement and initial balance endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the ledger handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Statement)
}

// MountInitialBalanceRoutes registers the baseline route under accounts.
func (h *Handler) MountInitialBalanceRoutes(r chi.Router) {
	r.Put("/{id}/initial-balance", h.SetInitialBalance)
}

type statementRow struct {
	Date             string  `json:"date"`
	VoucherNumber    string  `json:"voucherNumber"`
	Particulars      string  `json:"particulars"`
	Debit            float64 `json:"debit"`
	Credit           float64 `json:"credit"`
	RunningBalance   float64 `json:"runningBalance"`
	FormattedBalance string  `json:"formattedBalance"`
}

type statementResponse struct {
	AccountID      int64          `json:"accountId"`
	AccountName    string         `json:"accountName"`
	From           string         `json:"from"`
	To             string         `json:"to"`
	OpeningBalance float64        `json:"openingBalance"`
	Entries        []statementRow `json:"entries"`
	TotalDebit     float64        `json:"totalDebit"`
	TotalCredit    float64        `json:"totalCredit"`
	ClosingBalance float64        `json:"closingBalance"`
}

func projectFilter(r *http.Request) (*int64, error) {
	raw := r.URL.Query().Get("project_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *Handler) Statement(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(r.URL.Query().Get("account_id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "account_id is required")
		return
	}
	from, err := httpx.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	to, err := httpx.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	projectID, err := projectFilter(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid project_id")
		return
	}
	st, err := h.service.Statement(r.Context(), accountID, projectID, from, to)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	resp := statementResponse{
		AccountID:      st.Account.ID,
		AccountName:    st.Account.Name,
		From:           from.Format(httpx.DateLayout),
		To:             to.Format(httpx.DateLayout),
		OpeningBalance: st.OpeningBalance,
		Entries:        make([]statementRow, 0, len(st.Rows)),
		TotalDebit:     st.TotalDebit,
		TotalCredit:    st.TotalCredit,
		ClosingBalance: st.ClosingBalance,
	}
	for _, row := range st.Rows {
		resp.Entries = append(resp.Entries, statementRow{
			Date:             row.Date.Format(httpx.DateLayout),
			VoucherNumber:    row.VoucherNo,
			Particulars:      row.Particulars,
			Debit:            row.Debit,
			Credit:           row.Credit,
			RunningBalance:   row.RunningBalance,
			FormattedBalance: FormatBalance(row.RunningBalance, st.Account.NormalSide),
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

type initialBalanceRequest struct {
	ProjectID *int64  `json:"projectId"`
	AsOf      string  `json:"asOf"`
	Amount    float64 `json:"amount"`
}

func (h *Handler) SetInitialBalance(w http.ResponseWriter, r *http.Request) {
	accountID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid account id")
		return
	}
	var req initialBalanceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request body")
		return
	}
	asOf, err := httpx.ParseDate(req.AsOf)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ib, err := h.service.SetInitialBalance(r.Context(), accountID, req.ProjectID, asOf, req.Amount)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"accountId": ib.AccountID,
		"projectId": ib.ProjectID,
		"asOf":      ib.AsOf.Format(httpx.DateLayout),
		"amount":    ib.Amount,
	})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, coa.ErrAccountNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, coa.ErrNotPostable):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	default:
		h.logger.Error("ledger request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
