// Package bootstrap opens the backing services shared by the commands.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/skillproof/backend/config"
	"github.com/skillproof/backend/internal/store"
	"github.com/skillproof/backend/internal/verification"
	"github.com/skillproof/backend/pkg/database"
)

// NewLogger builds the production zap logger.
func NewLogger() *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

// Store is an opened store with its health check and cleanup. Pool is nil
// for the memory driver.
type Store struct {
	store.Store
	Pool  *pgxpool.Pool
	Ready func(ctx context.Context) error
	Close func()
}

// OpenStore opens the configured storage driver. For postgres it connects,
// migrates and returns a pool-backed store.
func OpenStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Store, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Warn("using in-memory storage; data is lost on exit")
		return &Store{
			Store: store.NewMemory(),
			Ready: func(context.Context) error { return nil },
			Close: func() {},
		}, nil
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{MaxConns: cfg.Database.MaxConns}, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := database.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{
		Store: store.NewPostgres(pool),
		Pool:  pool,
		Ready: pool.Ping,
		Close: pool.Close,
	}, nil
}

// EngineConfig maps configuration onto engine defaults.
func EngineConfig(cfg *config.Config) verification.Config {
	return verification.Config{
		DefaultEnrollmentDate: cfg.Verification.DefaultEnrollmentDate,
		DefaultRoleInCompany:  cfg.Verification.DefaultRoleInCompany,
		DefaultLocation:       cfg.Verification.DefaultLocation,
	}
}
