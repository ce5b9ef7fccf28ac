package session

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"

	"shopapp/pkg/config"
	"shopapp/pkg/db"
)

// Open builds the store selected by cfg.SessionStore. The returned func
// releases any connections the store holds.
func Open(ctx context.Context, cfg config.Config) (Store, func(), error) {
	switch cfg.SessionStore {
	case "", "memory":
		return NewMemoryStore(), func() {}, nil

	case "postgres":
		if cfg.MigrationsPath != "" {
			if err := db.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("db open: %w", err)
		}
		return NewPostgresStore(pool), pool.Close, nil

	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return NewRedisStore(rdb), func() { _ = rdb.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown SESSION_STORE %q", cfg.SessionStore)
	}
}
