// Package main is the entry point for the bakery POS API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"bakerypos/internal/config"
	"bakerypos/internal/core/numerator"
	"bakerypos/internal/domain/auth"
	"bakerypos/internal/domain/catalogs/stockitem"
	"bakerypos/internal/domain/pricing"
	"bakerypos/internal/infrastructure/cache"
	v1 "bakerypos/internal/infrastructure/http/v1"
	"bakerypos/internal/infrastructure/http/v1/handlers"
	"bakerypos/internal/infrastructure/http/v1/middleware"
	infranumerator "bakerypos/internal/infrastructure/numerator"
	"bakerypos/internal/infrastructure/storage/postgres"
	"bakerypos/internal/infrastructure/storage/postgres/auth_repo"
	"bakerypos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.New(cfg.Logger())
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()
	log.Infow("starting bakerypos server", "version", cfg.App.Version, "env", cfg.App.Env)

	// --- Database ---
	pool, err := postgres.NewPool(ctx, cfg.Pool())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	audit, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to create audit service", "error", err)
	}

	policy, err := pricing.NewPolicy(cfg.PricingPolicy())
	if err != nil {
		log.Fatalw("invalid pricing policy", "error", err)
	}

	stockitem.DefaultLowStockThreshold = decimal.NewFromInt(int64(cfg.LowStockThreshold))

	// --- JWT and Auth ---
	jwtConfig := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtConfig.AccessTokenTTL = cfg.JWT.TTL
	jwtService := auth.NewJWTService(jwtConfig)

	authService := auth.NewService(
		auth_repo.NewUserRepo(txManager),
		auth_repo.NewTokenRepo(txManager),
		txManager,
		jwtService,
		auth.DefaultServiceConfig(),
	)

	// --- Numerator ---
	var numbers numerator.Generator = infranumerator.New(func(ctx context.Context) infranumerator.Querier {
		return txManager.GetQuerier(ctx)
	})

	routerCfg := v1.RouterConfig{
		Pool:          pool,
		TxManager:     txManager,
		Logger:        log,
		JWTValidator:  jwtService,
		AuthService:   authService,
		Numerator:     numbers,
		Policy:        policy,
		Audit:         audit,
		Events:        postgres.NewOutboxPublisher(txManager),
		ShopDefaults:  cfg.ShopDefaults(),
		Location:      cfg.Location(),
		RetryAttempts: cfg.NumberRetries,
		Version:       cfg.App.Version,
		HealthChecks:  map[string]handlers.HealthCheck{},
	}

	if cfg.Idempotency.Enabled {
		routerCfg.Idempotency = postgres.NewIdempotencyStore(txManager, cfg.Idempotency.TTL)
	}

	// --- POS catalog cache (optional) ---
	if cfg.Cache.RedisURL != "" {
		client, err := cache.NewClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer client.Close()

		routerCfg.POSCache = cache.NewPOSCatalogCache(client, cfg.Cache.TTL)
		routerCfg.HealthChecks["cache"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		log.Info("pos catalog cache enabled")
	}

	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr: ":" + cfg.App.Port,
		Handler: middleware.Harden(router, middleware.SecurityConfig{
			RequestsPerMinute: cfg.RateLimit.PerMinute,
			Development:       cfg.IsDevelopment(),
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.App.Port, "timezone", cfg.Timezone)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
