package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"custody-tracker/config"
	"custody-tracker/internal/alerting"
	"custody-tracker/internal/api/handler"
	"custody-tracker/internal/api/middleware"
	"custody-tracker/internal/api/router"
	"custody-tracker/internal/events"
	"custody-tracker/internal/lookup"
	"custody-tracker/internal/mailer"
	"custody-tracker/internal/repository"
	"custody-tracker/internal/service"
	"custody-tracker/pkg/clock"
	"custody-tracker/pkg/database"
	"custody-tracker/pkg/jwt"
	applogger "custody-tracker/pkg/logger"
	"custody-tracker/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	flag.Parse()

	// 1. config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting custody tracker",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. database + migrations
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("database migration failed", zap.Error(err))
	}

	// 4. Redis is optional: without it logout does not revoke and login is not rate limited
	var (
		blacklist service.TokenBlacklist
		checker   middleware.TokenChecker
		limiter   middleware.RateLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token blacklist and rate limiting disabled", zap.Error(err))
		rdb = nil
	} else {
		blacklist, checker, limiter = rdb, rdb, rdb
	}

	// 5. metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// 6. alert engine
	repo := repository.NewRepository(db)
	clk := clock.System{}

	mail, err := mailer.New(context.Background(), &cfg.Mail, logger)
	if err != nil {
		logger.Fatal("mailer setup failed", zap.Error(err))
	}
	publisher := events.NewPublisher(&cfg.Kafka, logger)

	digestLoc, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		digestLoc = time.UTC
	}
	dispatcher := alerting.NewDispatcher(repo.NotificationPreference, repo.Alert, mail, alerting.DigestOptions{
		SubjectPrefix: cfg.Mail.SubjectPrefix,
		PreviewSize:   cfg.Alerts.PreviewSize,
		Location:      digestLoc,
	}, logger)
	cycle := alerting.NewCycle(clk, alerting.NewSynchronizer(repo.Alert, logger), publisher, dispatcher,
		alerting.NewMetrics(registry), logger)

	var scheduler *alerting.Scheduler
	if cfg.Scheduler.Enabled {
		scheduler, err = alerting.NewScheduler(cycle, cfg.Scheduler, logger)
		if err != nil {
			logger.Fatal("alert scheduler setup failed", zap.Error(err))
		}
	} else {
		logger.Info("alert scheduler disabled")
	}

	// 7. Repository → Service → Handler
	jwtMgr := jwt.NewManager(&cfg.Auth)
	svc := service.NewService(cfg, repo, service.Deps{
		JWT:       jwtMgr,
		Blacklist: blacklist,
		Cycle:     cycle,
		Lookup:    lookup.New(&cfg.Lookup, logger),
		Clock:     clk,
	}, logger)

	checks := map[string]handler.HealthCheck{
		"database": sqlDB.PingContext,
	}
	if rdb != nil {
		checks["redis"] = rdb.Ping
	}
	h := handler.NewHandler(svc, checks)

	// 8. router
	engine := router.Setup(cfg, h, router.Deps{
		JWT:      jwtMgr,
		Checker:  checker,
		Limiter:  limiter,
		Registry: registry,
	}, logger)

	// 9. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Alerts.TriggerTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	if scheduler != nil {
		scheduler.Start()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
	if scheduler != nil {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("alert scheduler stop failed", zap.Error(err))
		}
	}
	if err := publisher.Close(); err != nil {
		logger.Error("kafka publisher close failed", zap.Error(err))
	}

	sqlDB.Close()
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
