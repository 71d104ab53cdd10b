package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/medira-his/medira/internal/app"
	"github.com/medira-his/medira/internal/appointments"
	"github.com/medira-his/medira/internal/auth"
	"github.com/medira-his/medira/internal/leave"
	"github.com/medira-his/medira/internal/masterdata/branches"
	"github.com/medira-his/medira/internal/notifications"
	"github.com/medira-his/medira/internal/observability"
	"github.com/medira-his/medira/internal/patients"
	"github.com/medira-his/medira/internal/payroll"
	"github.com/medira-his/medira/internal/pharmacy"
	"github.com/medira-his/medira/internal/platform/db"
	"github.com/medira-his/medira/internal/rbac"
	"github.com/medira-his/medira/internal/shared"
	"github.com/medira-his/medira/internal/staff"
	"github.com/medira-his/medira/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := auth.NewTokenStore(redisClient, cfg.TokenTTL)
	authRepo := auth.NewRepository(pool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, tokens)
	authenticator := auth.NewAuthenticator(logger, tokens, authRepo)

	auditLogger := shared.NewAuditLogger(pool, logger)
	gates := rbac.Middleware{Logger: logger, Audit: auditLogger}

	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	notificationRepo := notifications.NewRepository(pool)
	notifier := notifications.NewNotifier(notificationRepo, jobsClient, logger)
	notificationHandler := notifications.NewHandler(logger, notifications.NewService(notificationRepo))

	branchRepo := branches.NewRepository(pool)
	branchHandler := branches.NewHandler(logger, branches.NewService(branchRepo), gates)

	patientHandler := patients.NewHandler(logger, patients.NewService(patients.NewRepository(pool)), tokens)
	staffHandler := staff.NewHandler(logger, staff.NewService(staff.NewRepository(pool)))
	appointmentHandler := appointments.NewHandler(logger, appointments.NewService(appointments.NewRepository(pool)))
	leaveHandler := leave.NewHandler(logger, leave.NewService(leave.NewRepository(pool), notifier), gates)
	payrollHandler := payroll.NewHandler(logger, payroll.NewService(payroll.NewRepository(pool)))
	pharmacyHandler := pharmacy.NewHandler(logger, pharmacy.NewService(pharmacy.NewRepository(pool)), gates)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterConfig{
		Middlewares: app.MiddlewareStack(app.MiddlewareConfig{
			Logger:        logger,
			Config:        cfg,
			Authenticator: authenticator,
			Metrics:       metrics,
		}),
		Metrics:       metrics,
		Gates:         gates,
		BranchChecker: branchRepo,
		Auth:          authHandler,
		Branches:      branchHandler,
		Patients:      patientHandler,
		Staff:         staffHandler,
		Appointments:  appointmentHandler,
		Leave:         leaveHandler,
		Payroll:       payrollHandler,
		Pharmacy:      pharmacyHandler,
		Notifications: notificationHandler,
		Jobs:          jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server exit", slog.Any("error", err))
		os.Exit(1)
	}
}
