package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/workforce-portal/internal"
	"github.com/frahmantamala/workforce-portal/internal/approval"
	"github.com/frahmantamala/workforce-portal/internal/audit"
	auditPostgres "github.com/frahmantamala/workforce-portal/internal/audit/postgres"
	"github.com/frahmantamala/workforce-portal/internal/auth"
	"github.com/frahmantamala/workforce-portal/internal/core/events"
	"github.com/frahmantamala/workforce-portal/internal/expense"
	expensePostgres "github.com/frahmantamala/workforce-portal/internal/expense/postgres"
	"github.com/frahmantamala/workforce-portal/internal/mailer"
	"github.com/frahmantamala/workforce-portal/internal/metrics"
	"github.com/frahmantamala/workforce-portal/internal/notification"
	notificationPostgres "github.com/frahmantamala/workforce-portal/internal/notification/postgres"
	"github.com/frahmantamala/workforce-portal/internal/preference"
	preferencePostgres "github.com/frahmantamala/workforce-portal/internal/preference/postgres"
	preferenceRedis "github.com/frahmantamala/workforce-portal/internal/preference/redis"
	"github.com/frahmantamala/workforce-portal/internal/timesheet"
	timesheetPostgres "github.com/frahmantamala/workforce-portal/internal/timesheet/postgres"
	"github.com/frahmantamala/workforce-portal/internal/transport"
	"github.com/frahmantamala/workforce-portal/internal/transport/middleware"
	"github.com/frahmantamala/workforce-portal/internal/transport/rest"
	"github.com/frahmantamala/workforce-portal/internal/transport/swagger"
	"github.com/frahmantamala/workforce-portal/internal/user"
	userPostgres "github.com/frahmantamala/workforce-portal/internal/user/postgres"
	"github.com/frahmantamala/workforce-portal/pkg/cache"
	"github.com/frahmantamala/workforce-portal/pkg/logger"
	"github.com/frahmantamala/workforce-portal/pkg/tracing"
	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const specPath = "./api/openapi.yml"

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	Gorm     *gorm.DB
	Redis    *goredis.Client
	Bus      *events.EventBus
	Metrics  *metrics.Recorder
	Router   *chi.Mux
	Logger   *slog.Logger
	Shutdown func(context.Context) error
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		deps.Logger.Error("failed to set up routes", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr, "env", deps.Config.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			deps.Logger.Error("server failed", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		deps.Logger.Error("server shutdown error", "error", err)
	}
	if err := deps.Shutdown(ctx); err != nil {
		deps.Logger.Error("dependency shutdown error", "error", err)
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.Init(config.Env, config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db, config.Env)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	var redisClient *goredis.Client
	if config.Redis.Enabled {
		redisClient, err = cache.NewRedis(config.Redis)
		if err != nil {
			// preferences fall back to the database
			log.Warn("redis unavailable, preference cache disabled", "error", err, "addr", config.Redis.Addr)
			redisClient = nil
		}
	}

	shutdownTracing := func(context.Context) error { return nil }
	if config.Observability.Tracing.Enabled {
		shutdownTracing, err = tracing.Init(config.Observability.Tracing.ServiceName, config.Observability.Tracing.SamplingRate, os.Stdout)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	var recorder *metrics.Recorder
	if config.Observability.Metrics.Enabled {
		recorder = metrics.NewRecorder()
	}

	deps := &Dependencies{
		Config:  config,
		DB:      db,
		Gorm:    gormDB,
		Redis:   redisClient,
		Bus:     events.NewEventBus(log),
		Metrics: recorder,
		Router:  chi.NewRouter(),
		Logger:  log,
	}
	deps.Shutdown = func(ctx context.Context) error {
		deps.Bus.Wait()
		var errs []error
		if deps.Redis != nil {
			errs = append(errs, deps.Redis.Close())
		}
		errs = append(errs, shutdownTracing(ctx), deps.DB.Close())
		return errors.Join(errs...)
	}
	return deps, nil
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	log := deps.Logger
	base := transport.NewBaseHandler(log)

	location, err := cfg.Notification.Location()
	if err != nil {
		return err
	}

	users := userPostgres.NewUserRepository(deps.DB)
	timesheets := timesheetPostgres.NewTimesheetRepository(deps.Gorm)
	expenses := expensePostgres.NewExpenseRepository(deps.Gorm)
	notifications := notificationPostgres.NewNotificationRepository(deps.Gorm)

	var prefCache preference.Cache
	if deps.Redis != nil {
		prefCache = preferenceRedis.NewPreferenceCache(deps.Redis, cfg.Redis.TTL)
	}
	preferences := preference.NewService(preferencePostgres.NewPreferenceRepository(deps.Gorm), prefCache, log)

	auditRepo := auditPostgres.NewAuditRepository(deps.Gorm)
	audit.NewRecorder(auditRepo, log).Register(deps.Bus)

	transportMail, err := mailer.New(cfg.Mailer, cfg.Notification.FromAddress, log)
	if err != nil {
		return err
	}
	renderer, err := notification.NewRenderer(cfg.Notification.AppBaseURL)
	if err != nil {
		return err
	}

	policy := notification.NewPolicy(users, cfg.Notification.DefaultRecipientID, location)
	dispatcher := notification.NewDispatcher(notifications, preferences, users, policy, renderer, transportMail, log,
		notification.WithMetrics(deps.Metrics))

	approvals := approval.NewService(timesheets, expenses, policy, dispatcher, log,
		approval.WithEvents(deps.Bus),
		approval.WithMetrics(deps.Metrics))

	tokens := auth.NewTokenService(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)

	checks := map[string]rest.Checker{"postgres": deps.DB.PingContext}
	if deps.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}

	handlers := rest.Handlers{
		Auth:         auth.NewHandler(base, tokens),
		User:         user.NewHandler(base, user.NewService(users)),
		Timesheet:    timesheet.NewHandler(base, timesheet.NewService(timesheets, log)),
		Expense:      expense.NewHandler(base, expense.NewService(expenses, log)),
		Approval:     approval.NewHandler(base, approvals),
		Notification: notification.NewHandler(base, notification.NewService(notifications, log)),
		Preference:   preference.NewHandler(base, preferences),
		Audit:        audit.NewHandler(base, auditRepo),
		Health:       rest.NewHealthHandler(checks),
	}

	opts := rest.Options{AllowedOrigins: middleware.SplitOrigins(cfg.Server.AllowedOrigins)}
	if _, err := swagger.LoadSpec(context.Background(), specPath); err != nil {
		log.Warn("openapi spec not served", "error", err)
	} else {
		opts.SpecPath = specPath
	}
	if deps.Metrics != nil {
		opts.Metrics = deps.Metrics
		opts.MetricsPath = cfg.Observability.Metrics.Path
	}

	rest.RegisterAllRoutes(deps.Router, handlers, opts, log)
	return nil
}

// initDB opens the shared pgx connection pool.
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	db, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

// initGorm reuses the sqlx pool so both layers share one set of connections.
func initGorm(db *sqlx.DB, env string) (*gorm.DB, error) {
	level := gormLogger.Warn
	if env == "production" {
		level = gormLogger.Error
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(level),
	})
}
