package main

import (
	"context"
	"fmt"
	"log/slog"

	goredis "github.com/redis/go-redis/v9"

	"github.com/custodia-labs/pindoc/internal/adapters/driven/memory"
	"github.com/custodia-labs/pindoc/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/pindoc/internal/adapters/driven/redis"
	httpapi "github.com/custodia-labs/pindoc/internal/adapters/driving/http"
	"github.com/custodia-labs/pindoc/internal/config"
	"github.com/custodia-labs/pindoc/internal/core/ports/driven"
)

// backends are the stateful collaborators chosen from the configuration:
// Redis when REDIS_URL is set, PostgreSQL when DATABASE_URL is set,
// in-process otherwise.
type backends struct {
	lock   driven.DistributedLock
	runs   driven.RunStore
	queue  driven.JobQueue
	checks map[string]httpapi.Pinger

	closers []func() error
}

func openBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*backends, error) {
	b := &backends{checks: make(map[string]httpapi.Pinger)}

	// ===== Redis (optional) =====
	if cfg.RedisURL != "" {
		opts, err := goredis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client := goredis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		b.closers = append(b.closers, client.Close)

		queue, err := redisadapter.NewQueue(client, cfg.JobQueueSize)
		if err != nil {
			b.Close()
			return nil, err
		}
		lock := redisadapter.NewLock(client)
		b.lock, b.queue = lock, queue
		b.checks["redis"] = lock
		logger.Info("using redis lock and job queue", "owner_id", lock.OwnerID())
	}

	// ===== PostgreSQL (optional) =====
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, db.Close)

		b.runs = postgres.NewRunStore(db)
		b.checks["postgres"] = db
		if b.lock == nil {
			b.lock = postgres.NewAdvisoryLock(db)
			logger.Info("using postgres advisory lock")
		}
		logger.Info("using postgres run store")
	}

	// ===== In-process fallbacks =====
	if b.lock == nil {
		b.lock = memory.NewLock()
		logger.Info("using in-memory lock")
	}
	if b.runs == nil {
		b.runs = memory.NewRunStore(memory.DefaultRunHistory)
	}
	if b.queue == nil {
		b.queue = memory.NewQueue(cfg.JobQueueSize)
	}
	b.closers = append(b.closers, b.queue.Close)

	return b, nil
}

// Close releases every backend in reverse order of opening
func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
}
