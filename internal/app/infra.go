package app

import (
	"context"
	"database/sql"
	"fmt"

	"ws-gateway/internal/config"
	"ws-gateway/internal/db"
	"ws-gateway/internal/logger"
	"ws-gateway/internal/redis"
	"ws-gateway/internal/session"

	_ "github.com/lib/pq"
)

type Infra struct {
	Sessions session.Store
	cleanup  func() error
}

// setupInfra selects and readies the session store backing. The memory
// backing is single-process only and exists for the local stage; any
// multi-worker deployment needs redis or postgres so every worker reads
// the same bindings.
func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	switch cfg.SessionBackend {

	case config.BackendMemory:
		logger.Info("using in-memory session store", map[string]any{
			"stage": cfg.Stage,
		})
		return &Infra{
			Sessions: session.NewMemoryStore(),
			cleanup:  func() error { return nil },
		}, nil

	case config.BackendRedis:
		client, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		logger.Info("redis ready", map[string]any{
			"addr": cfg.RedisAddr,
		})
		return &Infra{
			Sessions: session.NewRedisStore(client),
			cleanup:  client.Close,
		}, nil

	case config.BackendPostgres:
		sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
		if err != nil {
			return nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return nil, err
		}
		if err := db.RunGatewayMigration(ctx, sqlDB); err != nil {
			return nil, err
		}
		logger.Info("database ready", nil)
		return &Infra{
			Sessions: session.NewPostgresStore(sqlDB),
			cleanup:  sqlDB.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown session backend: %s", cfg.SessionBackend)
	}
}
