package main

import (
	"context"
	"database/sql"
	"errors"

	"taskmanager/configs"
	"taskmanager/internal/cache"
	"taskmanager/internal/repository"
	"taskmanager/pkg/database"
)

type databaseHandle struct {
	DB      *sql.DB
	Dialect repository.Dialect
}

func withDB(ctx context.Context, cfg configs.Config, fn func(ctx context.Context, db *databaseHandle) error) error {
	if cfg.DBDriver == "memory" {
		return errors.New("DB_DRIVER=memory has no tables to manage")
	}
	db, dialect, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(ctx, &databaseHandle{DB: db, Dialect: dialect})
}

// openStore builds the store chain: database (or memory), tables, and the
// Redis cache when REDIS_HOST is set. cleanup releases every connection.
func openStore(ctx context.Context, cfg configs.Config) (repository.Store, func(), error) {
	hasher, err := repository.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		return nil, nil, err
	}

	var store repository.Store
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.DBDriver == "memory" {
		store = repository.NewMemoryStore(hasher)
	} else {
		db, dialect, err := database.ConnectDB(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { db.Close() })
		if err := repository.CreateTableIfNotExists(ctx, db, dialect); err != nil {
			cleanup()
			return nil, nil, err
		}
		store = repository.NewSQLStore(db, dialect, hasher)
	}

	if cfg.RedisHost != "" {
		rdb, err := database.ConnectRedis(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { rdb.Close() })
		store = cache.NewCachedStore(store, cache.NewRedisCache(rdb, cfg.CacheTTL))
	}

	return store, cleanup, nil
}
