package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/ledgerline/ledgerline/internal/coa"
	"github.com/ledgerline/ledgerline/internal/ledger"
	"github.com/ledgerline/ledgerline/internal/observability"
	"github.com/ledgerline/ledgerline/internal/reports"
	"github.com/ledgerline/ledgerline/internal/voucher"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	AccountHandler *coa.Handler
	VoucherHandler *voucher.Handler
	LedgerHandler  *ledger.Handler
	ReportsHandler *reports.Handler
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Ledgerline defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/accounts", func(r chi.Router) {
			params.AccountHandler.MountRoutes(r)
			params.LedgerHandler.MountInitialBalanceRoutes(r)
		})
		r.Route("/vouchers", func(r chi.Router) {
			params.VoucherHandler.MountRoutes(r)
		})
		r.Route("/ledger", func(r chi.Router) {
			params.LedgerHandler.MountRoutes(r)
		})
		r.Route("/reports", func(r chi.Router) {
			params.ReportsHandler.MountRoutes(r)
		})
	})

	return r
}
