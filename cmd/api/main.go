// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/admin"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/auth"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/authz"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/cart"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/config"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/core"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/health"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/metrics"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/middleware"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/order"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/product"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/role"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/server"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/tenant"
	"github.com/Fr4nk017/La-ruta-el-Pastelazo-Backend/internal/user"
)

const tenantCachePrefix = "tenant:ident:"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (optional)")
	genKeys := flag.Bool("genkeys", false, "write a new ES256 key pair to the configured paths and exit")
	flag.Parse()

	if err := run(*configPath, *genKeys); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string, genKeys bool) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	if genKeys {
		if cfg.JWT.PrivateKeyPath == "" || cfg.JWT.PublicKeyPath == "" {
			return fmt.Errorf("genkeys: jwt.private_key_path and jwt.public_key_path must be set")
		}
		if err := auth.GenerateKeyPair(cfg.JWT.PrivateKeyPath, cfg.JWT.PublicKeyPath); err != nil {
			return err
		}
		logger.Info("key pair written",
			"private", cfg.JWT.PrivateKeyPath,
			"public", cfg.JWT.PublicKeyPath,
		)
		return nil
	}

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	core.ExposeErrorDetails(cfg.IsDevelopment())

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if cfg.Database.AutoMigrate {
		if err := core.Migrate(ctx, db.DB); err != nil {
			return err
		}
		logger.Info("migrations applied")
	}

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		m = metrics.New(reg, cfg.Metrics.Namespace)
	}

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", jwtManager.Algorithm(),
		"key_id", jwtManager.GetKeyID(),
	)

	blacklist := auth.NewBlacklist(redis.Client)

	roleRepo := role.NewRepository(db.DB)
	roleSvc := role.NewService(roleRepo)
	roleHandler := role.NewHandler(roleSvc)

	userRepo := user.NewRepository(db.DB)
	userSvc := user.NewService(userRepo, roleRepo)
	userHandler := user.NewHandler(userSvc)

	authRepo := auth.NewRepository(db.DB)
	authSvc := auth.NewService(authRepo, jwtManager, userSvc, blacklist, m)
	authHandler := auth.NewHandler(authSvc)

	tenantRepo := tenant.NewRepository(db.DB)
	tenantCache := core.NewCache(redis.Client, tenantCachePrefix, cfg.Tenancy.CacheTTL)
	tenantSvc := tenant.NewService(db.DB, tenantRepo, tenantCache)
	tenantHandler := tenant.NewHandler(tenantSvc)

	productSvc := product.NewService(product.NewRepository(db.DB), cfg.Store.Currency, m)
	productHandler := product.NewHandler(productSvc)

	cartSvc := cart.NewService(db.DB, cart.NewRepository(db.DB), cfg.Store.Currency)
	cartHandler := cart.NewHandler(cartSvc)

	orderSvc := order.NewService(db.DB, order.NewRepository(db.DB), cfg.Store.Currency, m)
	orderHandler := order.NewHandler(orderSvc)

	healthHandler := health.NewHandler(cfg.App.Version).
		With("database", db).
		With("redis", redis)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		Census:     tenantSvc,
	})

	strategies, err := middleware.Strategies(
		cfg.Tenancy.Source,
		cfg.Tenancy.Header,
		cfg.Tenancy.ReservedSubdomains,
	)
	if err != nil {
		return err
	}
	resolution := middleware.NewTenantResolution(strategies, tenantSvc, m)
	planLimiter := middleware.PlanRateLimiter(redis.Client, middleware.DefaultPlanLimits)

	authenticators := middleware.NewAuthenticators(userSvc, blacklist, m)
	perm := func(r authz.Resource, a authz.Action) func(http.Handler) http.Handler {
		return middleware.RequirePermission(m, r, a)
	}
	platformKey := middleware.RequirePlatformKey(cfg.Platform.APIKey)

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recoverer)
	router.Use(m.Middleware)
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))
	router.Use(middleware.ParseToken(jwtManager))

	healthHandler.RegisterRoutes(router)

	if m != nil {
		router.Handle(cfg.Metrics.Path, m.Handler())
	}

	if jwtManager.HasJWKS() {
		router.Get("/.well-known/jwks.json", jwtManager.GetJWKSHandler())
	}

	storefront := func(r chi.Router) {
		r.Use(resolution.Require)
		r.Use(planLimiter)

		authHandler.RegisterRoutes(r, authenticators.Required)
		userHandler.RegisterRoutes(r, authenticators.Required, perm)
		roleHandler.RegisterRoutes(r, authenticators.Required, perm)
		tenantHandler.RegisterTenantRoutes(r, authenticators.Required, perm)
		productHandler.RegisterRoutes(r, authenticators.Optional, authenticators.Required, perm)
		cartHandler.RegisterRoutes(r, authenticators.Required)
		orderHandler.RegisterRoutes(r, authenticators.Required, perm)
	}

	router.Route("/v1", func(r chi.Router) {
		tenantHandler.RegisterPlatformRoutes(r, platformKey)
		adminHandler.RegisterRoutes(r, platformKey)

		r.Route("/t/{"+middleware.TenantPathParam+"}", storefront)
		r.Group(storefront)
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+cfg.Server.DrainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, cfg.Server.DrainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
