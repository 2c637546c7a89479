package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eduflow/eduflow-server-go/internal/http/routes"
	"github.com/eduflow/eduflow-server-go/internal/jobs"
	"github.com/eduflow/eduflow-server-go/internal/notify"
	"github.com/eduflow/eduflow-server-go/pkg/cache"
	"github.com/eduflow/eduflow-server-go/pkg/config"
	"github.com/eduflow/eduflow-server-go/pkg/database"
	"github.com/eduflow/eduflow-server-go/pkg/email"
	"github.com/eduflow/eduflow-server-go/pkg/logger"
	"github.com/eduflow/eduflow-server-go/pkg/metrics"
	"github.com/eduflow/eduflow-server-go/pkg/middleware"
	"github.com/eduflow/eduflow-server-go/pkg/request"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(ctx, cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := database.Close(db, appLogger); err != nil {
			appLogger.Error("database close failed", slog.String("error", err.Error()))
		}
	}()

	// Token denylist: Redis when configured, in-process store otherwise.
	var denylist cache.Client
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Error("redis connection failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		denylist = redisClient
		appLogger.Info("redis denylist enabled", slog.String("addr", cfg.Redis.Addr))
	} else {
		denylist = cache.NewMemoryCache()
		appLogger.Info("using in-memory token denylist")
	}
	defer func() {
		if err := denylist.Close(); err != nil {
			appLogger.Error("denylist close failed", slog.String("error", err.Error()))
		}
	}()

	mailer := email.NewClient(cfg.Email)

	// Course-update fan-out runs in the background so lesson creation never
	// waits on SMTP.
	notifier := notify.NewQueue(db, mailer, cfg.Jobs.NotificationQueueSize, appLogger)
	notifier.Start(ctx)
	defer notifier.Stop()

	if cfg.Jobs.Enabled {
		scheduler := jobs.NewScheduler(appLogger)
		scheduler.AddJob(jobs.NewPaymentSweepJob(db, appLogger), cfg.Jobs.PaymentSweepInterval)
		scheduler.AddJob(jobs.NewPaymentCleanupJob(db, appLogger), cfg.Jobs.CleanupInterval)
		scheduler.AddJob(jobs.NewUserDeactivationJob(db, appLogger), cfg.Jobs.DeactivationInterval)
		scheduler.Start()
		defer scheduler.Stop()
	}

	router := gin.New()

	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(middleware.RequestID())
	router.Use(middleware.Compression(middleware.BestSpeed))
	router.Use(middleware.RequestLogger(appLogger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CacheControl())
	router.Use(middleware.RequestSizeLimit(10 * 1024 * 1024))
	router.Use(metrics.Middleware())
	router.Use(request.Handler(appLogger))

	// Rate limiting (100 requests per minute per IP)
	rateLimiter := middleware.NewRateLimiter(100, time.Minute)
	router.Use(rateLimiter.Middleware())

	routes.Register(router, routes.Deps{
		DB:       db,
		Config:   cfg,
		Logger:   appLogger,
		Denylist: denylist,
		Mailer:   mailer,
		Notifier: notifier,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		appLogger.Info("server starting",
			slog.String("addr", cfg.ServerAddress()),
			slog.String("env", cfg.Env),
			slog.String("log_level", cfg.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", slog.String("error", err.Error()))
	} else {
		appLogger.Info("server stopped gracefully")
	}
}
