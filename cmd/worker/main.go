// Package main is the entry point for the bakery POS background worker.
// It relays outbox events and purges expired keys and tokens.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"bakerypos/internal/config"
	"bakerypos/internal/domain/auth"
	"bakerypos/internal/infrastructure/cache"
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

	log, err := logger.New(cfg.Logger())
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting bakerypos worker")

	pool, err := postgres.NewPool(ctx, cfg.Pool())
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	handler := &EventHandler{log: log.WithComponent("outbox")}
	if cfg.Cache.RedisURL != "" {
		client, err := cache.NewClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalw("failed to connect to redis", "error", err)
		}
		defer client.Close()
		handler.catalog = cache.NewPOSCatalogCache(client, cfg.Cache.TTL)
	}

	worker := &Worker{
		relay:       postgres.NewOutboxRelay(txManager, 100, handler),
		idempotency: postgres.NewIdempotencyStore(txManager, cfg.Idempotency.TTL),
		auth: auth.NewService(
			auth_repo.NewUserRepo(txManager),
			auth_repo.NewTokenRepo(txManager),
			txManager,
			nil,
			auth.DefaultServiceConfig(),
		),
		log:           log.WithComponent("worker"),
		pollInterval:  500 * time.Millisecond,
		cleanupPeriod: time.Hour,
		retention:     7 * 24 * time.Hour,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// Worker runs the periodic background jobs.
type Worker struct {
	relay interface {
		ProcessBatch(ctx context.Context) (int, error)
		PurgePublished(ctx context.Context, cutoff time.Time) (int64, error)
	}
	idempotency interface {
		CleanupExpired(ctx context.Context) (int64, error)
	}
	auth interface {
		CleanupExpiredTokens(ctx context.Context) (int64, error)
	}
	log *logger.Logger

	pollInterval  time.Duration
	cleanupPeriod time.Duration
	retention     time.Duration // published outbox rows are kept this long
}

// Run polls the outbox and runs cleanup until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	cleanupTicker := time.NewTicker(w.cleanupPeriod)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processOutbox(ctx)
		case <-cleanupTicker.C:
			w.cleanup(ctx)
		}
	}
}

func (w *Worker) processOutbox(ctx context.Context) {
	n, err := w.relay.ProcessBatch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Errorw("outbox batch failed", "error", err)
		}
		return
	}
	if n > 0 {
		w.log.Debugw("processed outbox batch", "count", n)
	}
}

func (w *Worker) cleanup(ctx context.Context) {
	jobs := []struct {
		name string
		run  func(ctx context.Context) (int64, error)
	}{
		{"idempotency keys", w.idempotency.CleanupExpired},
		{"refresh tokens", w.auth.CleanupExpiredTokens},
		{"published outbox messages", func(ctx context.Context) (int64, error) {
			return w.relay.PurgePublished(ctx, time.Now().UTC().Add(-w.retention))
		}},
	}

	for _, job := range jobs {
		n, err := job.run(ctx)
		if err != nil {
			w.log.Warnw("cleanup failed", "job", job.name, "error", err)
			continue
		}
		if n > 0 {
			w.log.Infow("cleaned up", "job", job.name, "count", n)
		}
	}
}
