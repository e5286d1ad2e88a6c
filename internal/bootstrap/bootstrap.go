// Package bootstrap opens the configured persistence and export backends
// shared by the HTTP service and the CLI.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gogotex/blogdraft/internal/config"
	"github.com/gogotex/blogdraft/internal/database"
	"github.com/gogotex/blogdraft/internal/export"
	"github.com/gogotex/blogdraft/internal/kv"
	"github.com/gogotex/blogdraft/internal/storage"
	"github.com/gogotex/blogdraft/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Backends holds the opened collaborators. Close releases them.
type Backends struct {
	Store kv.Store
	// StoreBackend is the backend actually in use; it differs from the
	// configured one after a fallback to memory.
	StoreBackend string
	Redis        *redis.Client
	Saver        export.BlobSaver

	closers []func()
}

// Options tunes Open.
type Options struct {
	// FallbackToMemory keeps the process running on an in-memory store when
	// the configured backend is unreachable.
	FallbackToMemory bool
	// MongoBackoff is the first retry delay when connecting to MongoDB.
	MongoBackoff time.Duration
}

// Open connects the store and the export saver described by cfg.
func Open(ctx context.Context, cfg *config.Config, opts Options) (*Backends, error) {
	if opts.MongoBackoff <= 0 {
		opts.MongoBackoff = time.Second
	}
	b := &Backends{}

	// Redis is opened whenever configured: it backs the store and/or the
	// distributed rate limiter.
	if addr := cfg.RedisAddr(); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
			_ = client.Close()
		} else {
			logger.Infof("connected to Redis: %s", addr)
			b.Redis = client
			b.closers = append(b.closers, func() { _ = client.Close() })
		}
	}

	store, err := b.openStore(ctx, cfg, opts)
	if err != nil {
		if !opts.FallbackToMemory {
			b.Close()
			return nil, err
		}
		logger.Warnf("store backend %s unavailable (%v), using memory store", cfg.Store.Backend, err)
		store, b.StoreBackend = kv.NewMemoryStore(), "memory"
	} else {
		b.StoreBackend = cfg.Store.Backend
	}
	b.Store = store

	saver, err := openSaver(cfg)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.Saver = saver
	return b, nil
}

func (b *Backends) openStore(ctx context.Context, cfg *config.Config, opts Options) (kv.Store, error) {
	switch cfg.Store.Backend {
	case "memory":
		return kv.NewMemoryStore(), nil
	case "sqlite":
		s, err := kv.OpenSQLiteStore(ctx, cfg.Store.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = s.Close() })
		return s, nil
	case "redis":
		if b.Redis == nil {
			return nil, fmt.Errorf("redis not reachable at %s", cfg.RedisAddr())
		}
		return kv.NewRedisStore(b.Redis, cfg.Redis.Prefix), nil
	case "mongo":
		client, col, err := database.OpenCollection(ctx, cfg.MongoDB, opts.MongoBackoff)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, func() { _ = client.Disconnect(context.Background()) })
		return kv.NewMongoStore(col), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func openSaver(cfg *config.Config) (export.BlobSaver, error) {
	if cfg.Export.Backend == "minio" {
		s, err := storage.NewMinIOStorage(storage.LoadMinIOConfig())
		if err != nil {
			return nil, fmt.Errorf("export storage: %w", err)
		}
		return s, nil
	}
	return storage.NewDirSaver(cfg.Export.Dir)
}

// Close releases every opened backend in reverse order.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}
