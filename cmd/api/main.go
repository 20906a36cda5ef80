package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/rattapoomjame/Sort/api/routes"
	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/internal/dashboard"
	"github.com/rattapoomjame/Sort/internal/machine"
	"github.com/rattapoomjame/Sort/internal/points"
	"github.com/rattapoomjame/Sort/internal/settings"
	"github.com/rattapoomjame/Sort/internal/users"
	"github.com/rattapoomjame/Sort/internal/withdrawals"
	"github.com/rattapoomjame/Sort/pkg/config"
	"github.com/rattapoomjame/Sort/pkg/db"
	"github.com/rattapoomjame/Sort/pkg/logger"
	"github.com/rattapoomjame/Sort/pkg/migrate"
	"github.com/rattapoomjame/Sort/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	activitySvc, err := activity.NewService(activity.NewRepository(dbClient.DB()), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create activity service", err)
		os.Exit(1)
	}

	usersSvc, err := users.NewService(users.NewRepository(dbClient.DB()), dbClient, activitySvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	settingsSvc, err := settings.NewService(settings.NewRepository(dbClient.DB()), activitySvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create settings service", err)
		os.Exit(1)
	}

	machineRepo := machine.NewRepository(dbClient.DB())
	machineSvc, err := machine.NewService(machineRepo, activitySvc)
	if err != nil {
		logg.Error(context.Background(), "failed to create machine service", err)
		os.Exit(1)
	}

	pointsRepo := points.NewRepository(dbClient.DB())
	pointsSvc, err := points.NewService(points.ServiceParams{
		Repository:       pointsRepo,
		MachineRepo:      machineRepo,
		Users:            usersSvc,
		Settings:         settingsSvc,
		Tx:               dbClient,
		Activity:         activitySvc,
		DefaultMachineID: cfg.Machine.ID,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create points service", err)
		os.Exit(1)
	}

	withdrawalsRepo := withdrawals.NewRepository(dbClient.DB())
	withdrawalsSvc, err := withdrawals.NewService(withdrawals.ServiceParams{
		Repository: withdrawalsRepo,
		PointsRepo: pointsRepo,
		Users:      usersSvc,
		Settings:   settingsSvc,
		Tx:         dbClient,
		Activity:   activitySvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create withdrawals service", err)
		os.Exit(1)
	}

	dashboardSvc, err := dashboard.NewService(dashboard.ServiceParams{
		UsersRepo:       users.NewRepository(dbClient.DB()),
		PointsRepo:      pointsRepo,
		WithdrawalsRepo: withdrawalsRepo,
		PointsService:   pointsSvc,
		Withdrawals:     withdrawalsSvc,
		Activity:        activitySvc,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dashboard service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:      cfg,
			Logger:      logg,
			DBPinger:    dbClient,
			Redis:       redisClient,
			Users:       usersSvc,
			Points:      pointsSvc,
			Withdrawals: withdrawalsSvc,
			Machine:     machineSvc,
			Settings:    settingsSvc,
			Dashboard:   dashboardSvc,
			Activity:    activitySvc,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
