package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aurum-erp/aurum-erp/internal/accounting/accounts"
	"github.com/aurum-erp/aurum-erp/internal/accounting/entries"
	"github.com/aurum-erp/aurum-erp/internal/accounting/ledger"
	"github.com/aurum-erp/aurum-erp/internal/accounting/reports"
	"github.com/aurum-erp/aurum-erp/internal/budget"
	"github.com/aurum-erp/aurum-erp/internal/forecast"
	"github.com/aurum-erp/aurum-erp/internal/platform/httpx"
	"github.com/aurum-erp/aurum-erp/internal/recon"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Pool            *pgxpool.Pool
	AccountsHandler *accounts.Handler
	LedgerHandler   *ledger.Handler
	EntriesHandler  *entries.Handler
	ReportsHandler  *reports.Handler
	BudgetHandler   *budget.Handler
	ForecastHandler *forecast.Handler
	ReconHandler    *recon.Handler
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: params.Logger, Config: params.Config}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if params.Pool != nil {
			if err := params.Pool.Ping(req.Context()); err != nil {
				httpx.Problem(w, http.StatusServiceUnavailable, "Unhealthy", "database unreachable")
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		params.AccountsHandler.MountRoutes(r)
		params.LedgerHandler.MountRoutes(r)
		params.EntriesHandler.MountRoutes(r)
		params.ReportsHandler.MountRoutes(r)
		params.BudgetHandler.MountRoutes(r)
		params.ForecastHandler.MountRoutes(r)
		params.ReconHandler.MountRoutes(r)
	})

	return r
}
