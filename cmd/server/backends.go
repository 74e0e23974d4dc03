package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-redis/redis/v8"

	"github.com/forgo/guildhall/internal/config"
	"github.com/forgo/guildhall/internal/database"
	"github.com/forgo/guildhall/internal/repository"
)

// backends are the storage the services run on
type backends struct {
	store   *repository.RegistryStore
	locker  repository.Locker
	ledger  repository.Ledger
	redis   *redis.Client
	closers []func() error
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			slog.Warn("backend close failed", slog.String("error", err.Error()))
		}
	}
}

func (b *backends) redisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if b.redis != nil {
		return b.redis, nil
	}
	client, err := repository.NewRedisClient(ctx, repository.RedisOptions{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	b.redis = client
	b.closers = append(b.closers, client.Close)
	return client, nil
}

// openBackends opens the registry slot and ledger named by cfg
func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{locker: repository.LocalLocker{}}

	var slot repository.Slot
	switch cfg.Store.Backend {
	case config.BackendMemory:
		slot = repository.NewMemorySlot()
	case config.BackendFile:
		slot = repository.NewFileSlot(cfg.Store.FilePath, cfg.Store.FileCompress)
	case config.BackendSQLite:
		s, err := repository.OpenSQLiteSlot(cfg.Store.SQLitePath, cfg.Store.Key)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		b.closers = append(b.closers, s.Close)
		slot = s
	case config.BackendRedis:
		client, err := b.redisClient(ctx, cfg.Redis)
		if err != nil {
			b.Close()
			return nil, err
		}
		slot = repository.NewRedisSlot(client, cfg.Store.Key)
		b.locker = repository.NewRedisLocker(client, cfg.Store.Key, cfg.Redis.LockTTL)
	case config.BackendSurrealDB:
		db := database.NewSurrealDB(database.Config{
			Host:      cfg.Database.Host,
			Port:      cfg.Database.Port,
			User:      cfg.Database.User,
			Password:  cfg.Database.Password,
			Namespace: cfg.Database.Namespace,
			Database:  cfg.Database.Database,
		})
		if err := db.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect surrealdb: %w", err)
		}
		b.closers = append(b.closers, db.Close)
		slot = repository.NewSurrealSlot(db, cfg.Store.Key)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
	b.store = repository.NewRegistryStore(slot)

	switch cfg.Ledger.Backend {
	case config.BackendRedis:
		client, err := b.redisClient(ctx, cfg.Redis)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.ledger = repository.NewRedisLedger(client, cfg.Ledger.StartingBalance)
	default:
		b.ledger = repository.NewMemoryLedger(cfg.Ledger.StartingBalance)
	}

	return b, nil
}
