package main

import (
	"context"
	"fmt"
	"io"

	"github.com/vytor/flashrecall/internal/config"
	"github.com/vytor/flashrecall/internal/db"
	"github.com/vytor/flashrecall/internal/repository"
	"github.com/vytor/flashrecall/internal/repository/memory"
	"github.com/vytor/flashrecall/internal/repository/redisstore"
	"github.com/vytor/flashrecall/internal/repository/sqlstore"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore builds the progress store selected by STORE_BACKEND. The
// returned closer releases its connection.
func openStore(ctx context.Context, cfg config.Config) (repository.ProgressRepository, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		return memory.NewProgressRepository(), nopCloser{}, nil
	case config.BackendSQLite:
		database, err := db.Open(db.DriverSQLite, cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return sqlstore.NewProgressRepository(database.DB), database, nil
	case config.BackendPostgres:
		database, err := db.Open(db.DriverPostgres, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return sqlstore.NewProgressRepository(database.DB), database, nil
	case config.BackendRedis:
		ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout())
		defer cancel()
		rdb, err := redisstore.Connect(ctx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewProgressRepository(rdb, cfg.RedisPrefix), rdb, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
