package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"payrollsuite/internal/domain/audit"
	"payrollsuite/internal/domain/auth"
	"payrollsuite/internal/domain/employee"
	"payrollsuite/internal/domain/leave"
	"payrollsuite/internal/domain/payroll"
	"payrollsuite/internal/domain/tax"
	"payrollsuite/internal/platform/config"
	"payrollsuite/internal/platform/crypto"
	"payrollsuite/internal/platform/db"
	"payrollsuite/internal/platform/jobs"
	"payrollsuite/internal/platform/metrics"
	"payrollsuite/internal/transport/http/api"
	audithandler "payrollsuite/internal/transport/http/handlers/audit"
	authhandler "payrollsuite/internal/transport/http/handlers/auth"
	employeeshandler "payrollsuite/internal/transport/http/handlers/employees"
	leavehandler "payrollsuite/internal/transport/http/handlers/leave"
	payrollhandler "payrollsuite/internal/transport/http/handlers/payroll"
	reportshandler "payrollsuite/internal/transport/http/handlers/reports"
	taxhandler "payrollsuite/internal/transport/http/handlers/tax"
	"payrollsuite/internal/transport/http/middleware"
	"payrollsuite/internal/transport/http/shared"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Router  http.Handler
	Metrics *metrics.Collector
	Logger  *slog.Logger
	Jobs    *jobs.Service
}

// New connects to the database, applies migrations and seed data when
// configured, and assembles the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := slog.Default()

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	if !sealer.Configured() {
		logger.Warn("DATA_ENCRYPTION_KEY not set; bank and tax identifiers are stored in plaintext")
	}

	app := &App{Config: cfg, DB: pool, Metrics: metrics.New(), Logger: logger}
	app.Router = app.routes(sealer)
	return app, nil
}

func (a *App) routes(sealer *crypto.Service) http.Handler {
	cfg := a.Config
	pool := a.DB

	auditService := audit.New(pool)
	auditService.OnFailure = a.Metrics.AuditFailure

	authService := auth.NewService(auth.NewStore(pool), auth.SSOConfig{
		Secret: cfg.SSOSecret, Issuer: cfg.SSOIssuer, Audience: cfg.SSOAudience,
	}, cfg.JWTSecret, cfg.SessionTTL)
	leaveStore := leave.NewStore(pool)
	payrollService := payroll.NewService(payroll.NewStore(pool, sealer), leaveStore, auditService)
	a.Jobs = jobs.New(pool, payrollService, cfg.AutoCompleteInterval)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		router.Use(chimw.RealIP)
	}
	router.Use(middleware.Logger(a.Logger))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "X-Total-Count", "Content-Disposition"},
		MaxAge:           300,
	}))
	router.Use(middleware.SecureHeaders(cfg.IsProduction()))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Metrics(a.Metrics))
	router.Use(middleware.Auth(authService, cfg.AdminEmails))
	router.Use(middleware.LogCaller)
	router.Use(middleware.SensitiveMutationRateLimit(cfg.RateLimitPerMinute, time.Minute))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, a.Metrics.Snapshot(), shared.GetRequestID(r))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute))

		authHandler := authhandler.NewHandler(authService, auditService, a.Metrics, cfg.SessionTTL, cfg.CookieSecure)
		authHandler.PINLimit = middleware.RateLimit(cfg.PINRateLimitPerMinute, time.Minute,
			middleware.WithKeyFunc(middleware.AuthEmailOrIPKey("email")))
		authHandler.RegisterRoutes(r)

		// Everything below needs a session that has passed PIN verification.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequirePinVerified)

			employeeshandler.NewHandler(employee.NewService(employee.NewStore(pool, sealer), auditService)).RegisterRoutes(r)
			leavehandler.NewHandler(leave.NewService(leaveStore, auditService)).RegisterRoutes(r)
			payrollhandler.NewHandler(payrollService).RegisterRoutes(r)
			reportshandler.NewHandler(payrollService).RegisterRoutes(r)
			taxhandler.NewHandler(tax.NewService(tax.NewStore(pool), auditService)).RegisterRoutes(r)
			audithandler.NewHandler(auditService).RegisterRoutes(r)
		})
	})

	return router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if a.Jobs != nil {
		a.Jobs.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("payroll server listening", "addr", a.Config.Addr, "env", a.Config.Environment)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down", "timeout", a.Config.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
