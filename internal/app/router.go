package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	analyticshttp "github.com/trade-manager/trade-manager/internal/analytics/http"
	"github.com/trade-manager/trade-manager/internal/articles"
	"github.com/trade-manager/trade-manager/internal/auth"
	"github.com/trade-manager/trade-manager/internal/collaborators"
	"github.com/trade-manager/trade-manager/internal/notifications"
	"github.com/trade-manager/trade-manager/internal/observability"
	"github.com/trade-manager/trade-manager/internal/shared"
	"github.com/trade-manager/trade-manager/internal/stock"
	"github.com/trade-manager/trade-manager/internal/transactions"
	"github.com/trade-manager/trade-manager/internal/users"
	"github.com/trade-manager/trade-manager/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	ArticlesHandler      *articles.Handler
	StockHandler         *stock.Handler
	TransactionsHandler  *transactions.Handler
	CollaboratorsHandler *collaborators.Handler
	NotificationsHandler *notifications.Handler
	AnalyticsHandler     *analyticshttp.Handler
	JobsHandler          *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with Trade Manager defaults. Auth
// endpoints stay public; everything else sits behind the session guard.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(gr chi.Router) {
		gr.Use(RequireAuth)

		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(gr)
		}
		if params.ArticlesHandler != nil {
			params.ArticlesHandler.MountRoutes(gr)
		}
		if params.StockHandler != nil {
			params.StockHandler.MountRoutes(gr)
		}
		if params.TransactionsHandler != nil {
			params.TransactionsHandler.MountRoutes(gr)
		}
		if params.CollaboratorsHandler != nil {
			params.CollaboratorsHandler.MountRoutes(gr)
		}
		if params.NotificationsHandler != nil {
			params.NotificationsHandler.MountRoutes(gr)
		}
		if params.AnalyticsHandler != nil {
			params.AnalyticsHandler.MountRoutes(gr)
		}
		if params.JobsHandler != nil {
			params.JobsHandler.MountRoutes(gr)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
