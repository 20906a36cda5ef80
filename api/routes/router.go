package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rattapoomjame/Sort/api/controllers"
	"github.com/rattapoomjame/Sort/api/middleware"
	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/internal/dashboard"
	"github.com/rattapoomjame/Sort/internal/machine"
	"github.com/rattapoomjame/Sort/internal/points"
	"github.com/rattapoomjame/Sort/internal/settings"
	"github.com/rattapoomjame/Sort/internal/users"
	"github.com/rattapoomjame/Sort/internal/withdrawals"
	"github.com/rattapoomjame/Sort/pkg/config"
	"github.com/rattapoomjame/Sort/pkg/logger"
	"github.com/rattapoomjame/Sort/pkg/redis"
)

// RouterParams collect every service the HTTP surface needs.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    controllers.Pinger
	Redis       *redis.Client
	Users       users.Service
	Points      points.Service
	Withdrawals withdrawals.Service
	Machine     machine.Service
	Settings    settings.Service
	Dashboard   dashboard.Service
	Activity    activity.Service
}

// NewRouter wires the kiosk-facing routes (kept at their legacy paths so
// deployed devices keep working) and the versioned admin group.
func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginPhoneLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DBPinger, p.Redis))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", controllers.Register(p.Users, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/loginPhone", controllers.LoginPhone(p.Users, logg))

		r.With(middleware.Idempotency(cfg.Idempotency, p.Redis, logg)).
			Post("/addPoint", controllers.AddPoint(p.Points, logg))
		r.Get("/getPoint", controllers.GetPoint(p.Points, logg))
		r.Get("/getHistory", controllers.GetHistory(p.Points, logg))
		r.Get("/leaderboard", controllers.Leaderboard(p.Points, logg))
		r.Get("/stats", controllers.PublicStats(p.Points, logg))

		r.With(middleware.Idempotency(cfg.Idempotency, p.Redis, logg)).
			Post("/withdrawals", controllers.CreateWithdrawal(p.Withdrawals, logg))
		r.Get("/withdrawals", controllers.ListMyWithdrawals(p.Users, p.Withdrawals, logg))

		r.Get("/pricing", controllers.GetPricing(p.Settings, logg))
		r.Get("/bottleCounts", controllers.BottleCounts(p.Machine, cfg.Machine.ID, logg))

		r.Route("/machine", func(r chi.Router) {
			r.Post("/heartbeat", controllers.MachineHeartbeat(p.Machine, logg))
			r.Get("/status", controllers.MachineStatus(p.Machine, cfg.Machine.ID, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).
			Post("/auth/login", controllers.AdminLogin(cfg, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.AdminAuth(cfg.JWT, logg))

			r.Get("/stats", controllers.AdminStats(p.Dashboard, logg))
			r.Get("/activity", controllers.AdminActivity(p.Activity, logg))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", controllers.AdminListUsers(p.Users, logg))
				r.Get("/{id}", controllers.AdminGetUser(p.Users, logg))
				r.Patch("/{id}", controllers.AdminUpdateUser(p.Users, logg))
				r.Delete("/{id}", controllers.AdminDeleteUser(p.Users, logg))
				r.Post("/{id}/points", controllers.AdminSetPoints(p.Points, logg))
			})

			r.Post("/points/adjust", controllers.AdminAdjustPoints(p.Points, logg))

			r.Route("/withdrawals", func(r chi.Router) {
				r.Get("/", controllers.AdminListWithdrawals(p.Withdrawals, logg))
				r.Get("/summary", controllers.AdminWithdrawalSummary(p.Withdrawals, logg))
				r.Post("/{id}/review", controllers.AdminReviewWithdrawal(p.Withdrawals, logg))
			})

			r.Put("/pricing", controllers.AdminUpdatePricing(p.Settings, logg))

			r.Route("/machine", func(r chi.Router) {
				r.Get("/", controllers.MachineStatus(p.Machine, cfg.Machine.ID, logg))
				r.Patch("/", controllers.AdminUpdateMachine(p.Machine, cfg.Machine.ID, logg))
				r.Post("/counts", controllers.AdminOverrideCounts(p.Machine, cfg.Machine.ID, logg))
				r.Post("/maintenance", controllers.AdminToggleMaintenance(p.Machine, logg))
				r.Get("/maintenance", controllers.AdminMaintenanceLogs(p.Machine, cfg.Machine.ID, logg))
			})

			r.Route("/danger", func(r chi.Router) {
				r.Post("/reset-points", controllers.AdminResetPoints(p.Dashboard, logg))
				r.Post("/clear-withdrawals", controllers.AdminClearWithdrawals(p.Dashboard, logg))
			})
		})
	})

	return r
}
