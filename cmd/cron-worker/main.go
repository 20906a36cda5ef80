package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rattapoomjame/Sort/internal/activity"
	"github.com/rattapoomjame/Sort/internal/cron"
	"github.com/rattapoomjame/Sort/internal/dashboard"
	"github.com/rattapoomjame/Sort/internal/machine"
	"github.com/rattapoomjame/Sort/internal/points"
	"github.com/rattapoomjame/Sort/internal/settings"
	"github.com/rattapoomjame/Sort/internal/users"
	"github.com/rattapoomjame/Sort/internal/withdrawals"
	"github.com/rattapoomjame/Sort/pkg/config"
	"github.com/rattapoomjame/Sort/pkg/db"
	"github.com/rattapoomjame/Sort/pkg/logger"
	"github.com/rattapoomjame/Sort/pkg/metrics"
	"github.com/rattapoomjame/Sort/pkg/migrate"
	"github.com/rattapoomjame/Sort/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	activityRepo := activity.NewRepository(dbClient.DB())
	activitySvc, err := activity.NewService(activityRepo, logg)
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

	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	telemetryMetrics := metrics.NewTelemetryMetrics(prometheus.DefaultRegisterer)

	offlineJob, err := cron.NewOfflineWatchJob(cron.OfflineWatchJobParams{
		Logger:    logg,
		Machines:  machineSvc,
		Threshold: cfg.Machine.OfflineThreshold,
		Interval:  cfg.Cron.OfflineWatchInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create offline watch job", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewActivityRetentionJob(cron.ActivityRetentionJobParams{
		Logger:        logg,
		Activity:      activityRepo,
		RetentionDays: cfg.Activity.RetentionDays,
		Interval:      cfg.Cron.ActivityRetentionInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create activity retention job", err)
		os.Exit(1)
	}

	telemetryJob, err := cron.NewTelemetryJob(cron.TelemetryJobParams{
		Logger:    logg,
		Stats:     dashboardSvc,
		Machines:  machineSvc,
		Metrics:   telemetryMetrics,
		MachineID: cfg.Machine.ID,
		Interval:  cfg.Cron.TelemetryInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create telemetry job", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron-worker"), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(offlineJob, retentionJob, telemetryJob),
		Lock:     lock,
		Metrics:  cronMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)
	logg.Info(ctx, "starting cron worker")

	go serveMetrics(ctx, logg, cfg.Cron.MetricsPort)

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func serveMetrics(ctx context.Context, logg *logger.Logger, port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "metrics server stopped unexpectedly", err)
	}
}
