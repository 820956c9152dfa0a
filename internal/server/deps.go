package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gotodo/gotodo/internal/cache"
	"github.com/gotodo/gotodo/internal/config"
	"github.com/gotodo/gotodo/internal/database"
	"github.com/gotodo/gotodo/internal/handlers"
	"github.com/gotodo/gotodo/internal/repository"
	"github.com/gotodo/gotodo/pkg/logger"
)

// Dependencies are the stores the server runs on.
type Dependencies struct {
	Users repository.UserRepository
	Tags  repository.TagRepository
	Tasks repository.TaskRepository

	// Redis, when set, backs the sign-in limiter so it holds across instances.
	Redis *redis.Client

	// Checks are registered on /ready.
	Checks map[string]handlers.CheckFunc

	closers []func() error
}

// MemoryDependencies returns dependencies backed by the in-memory repositories.
func MemoryDependencies() *Dependencies {
	repos := repository.NewMemoryRepositories()
	return &Dependencies{
		Users:  repos.Users,
		Tags:   repos.Tags,
		Tasks:  repos.Tasks,
		Checks: map[string]handlers.CheckFunc{},
	}
}

// OpenDependencies connects to Postgres and Redis when they are configured.
// Without DB_HOST the in-memory repositories are used; without REDIS_HOST
// tags are read uncached.
func OpenDependencies(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Dependencies, error) {
	deps := MemoryDependencies()

	if cfg.DatabaseEnabled() {
		pool, err := database.NewPool(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, func() error { pool.Close(); return nil })

		migrator, err := database.NewSchemaMigrator(pool)
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		applied, err := migrator.Up(ctx)
		if err != nil {
			_ = deps.Close()
			return nil, fmt.Errorf("failed to migrate: %w", err)
		}
		log.Info("database ready", "host", cfg.Database.Host, "migrations_applied", applied)

		deps.Users = repository.NewPostgresUserRepository(pool)
		deps.Tags = repository.NewPostgresTagRepository(pool)
		deps.Tasks = repository.NewPostgresTaskRepository(pool)
		deps.Checks["database"] = pool.HealthCheck
	} else {
		log.Warn("DB_HOST not set, using in-memory storage")
	}

	if cfg.RedisEnabled() {
		rc, err := cache.NewRedisCache(ctx, &cfg.Redis)
		if err != nil {
			_ = deps.Close()
			return nil, err
		}
		deps.closers = append(deps.closers, rc.Close)

		tagCache := cache.NewTagCache(rc, "gotodo:", 10*time.Minute)
		deps.Tags = repository.NewCachedTagRepository(deps.Tags, tagCache)
		deps.Redis = rc.Client()
		deps.Checks["cache"] = rc.Ping
		log.Info("redis ready", "address", cfg.Redis.Address())
	}

	return deps, nil
}

// Close releases connections in reverse order of opening.
func (d *Dependencies) Close() error {
	var errs []error
	for i := len(d.closers) - 1; i >= 0; i-- {
		if err := d.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	d.closers = nil
	return errors.Join(errs...)
}
