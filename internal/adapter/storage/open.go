package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/beer-stock/internal/config"
	"github.com/rl1809/beer-stock/internal/port"
)

// Open connects the repository selected by cfg.StoreDriver, creating the
// schema for SQL stores, and returns a func releasing its connections.
func Open(ctx context.Context, cfg *config.Config) (port.BeerRepository, func() error, error) {
	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := openDB(ctx, "mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		adapter := NewMySQLAdapter(db)
		if err := adapter.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return adapter, db.Close, nil

	case config.DriverPostgres:
		db, err := openDB(ctx, "postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		adapter := NewPostgresAdapter(db)
		if err := adapter.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		return adapter, db.Close, nil

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			PoolSize: 100,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisAdapter(rdb), rdb.Close, nil

	case config.DriverMemory:
		return NewMemoryAdapter(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openDB(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}
