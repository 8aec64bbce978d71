package slot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/config"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/db"
)

// Backend is an opened key-value store plus the function that releases it.
type Backend struct {
	KV    cart.KV
	Close func() error
}

// Open connects the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.SlotConfig, logger *zap.Logger) (*Backend, error) {
	logger = logger.With(zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case "bolt":
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		b, err := OpenBolt(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug("slot opened", zap.String("path", cfg.Path))
		return &Backend{KV: b, Close: b.Close}, nil

	case "sqlite":
		if err := ensureDir(cfg.Path); err != nil {
			return nil, err
		}
		if cfg.Migrate {
			if err := db.RunMigrations(db.DriverSQLite, cfg.Path, logger); err != nil {
				return nil, err
			}
		}
		sqlDB, err := db.OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		s := NewSQLite(sqlDB)
		return &Backend{KV: s, Close: s.Close}, nil

	case "postgres":
		if cfg.Migrate {
			if err := db.RunMigrations(db.DriverPostgres, cfg.DSN, logger); err != nil {
				return nil, err
			}
		}
		pool, err := db.NewPool(ctx, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		return &Backend{
			KV:    NewPostgres(pool),
			Close: func() error { pool.Close(); return nil },
		}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		r := NewRedis(client, cfg.RedisPrefix)
		return &Backend{KV: r, Close: r.Close}, nil

	case "memory":
		return &Backend{KV: cart.NewMemoryKV(), Close: func() error { return nil }}, nil

	default:
		return nil, fmt.Errorf("unknown slot driver %q", cfg.Driver)
	}
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}
