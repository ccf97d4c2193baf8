package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/credit-report-kz/internal/common"
)

const (
	DriverSQLite = "sqlite"
	DriverPgx    = "pgx"
)

// DB is a database/sql handle plus the pgx pool behind it, when there is one.
type DB struct {
	*sql.DB
	Driver string
	pool   *pgxpool.Pool
}

// Open connects to the result store named by cfg. For pgx a pool is created
// and wrapped as *sql.DB; sqlite goes straight through database/sql.
func Open(ctx context.Context, cfg common.StorageConfig, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to result store", "driver", cfg.Driver)
	switch cfg.Driver {
	case DriverSQLite:
		db, err := sql.Open(DriverSQLite, cfg.DSN)
		if err != nil {
			logger.Error("failed to open sqlite store", "error", err)
			return nil, err
		}
		// sqlite serializes writers anyway
		db.SetMaxOpenConns(1)
		return &DB{DB: db, Driver: DriverSQLite}, nil
	case DriverPgx:
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to parse store dsn", "error", err)
			return nil, err
		}
		if cfg.MaxOpenConns > 0 {
			pc.MaxConns = int32(cfg.MaxOpenConns)
		}
		pc.MaxConnLifetime = cfg.ConnMaxLifetime
		pc.ConnConfig.RuntimeParams["application_name"] = "credit-report-kz"

		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("failed to connect to result store", "error", err)
			return nil, err
		}
		return &DB{DB: stdlib.OpenDBFromPool(pool), Driver: DriverPgx, pool: pool}, nil
	default:
		return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown store driver %q", cfg.Driver), common.ErrInvalidInput)
	}
}

// Close closes the database connections gracefully
func (d *DB) Close(logger *slog.Logger) {
	if d == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := d.DB.Close(); err != nil {
		logger.Error("failed to close result store", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	logger.Info("result store closed")
}

// HealthCheck pings the store to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := d.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", common.ErrDatabase, err)
	}
	logger.Debug("result store ping successful")
	return nil
}

// InitStore opens and migrates the result store when a driver is configured.
// It returns a nil repository and a no-op cleanup otherwise.
func InitStore(ctx context.Context, cfg common.StorageConfig, logger *slog.Logger) (ResultRepository, func(), error) {
	if cfg.Driver == "" {
		return nil, func() {}, nil
	}
	db, err := Open(ctx, cfg, logger)
	if err != nil {
		return nil, func() {}, err
	}
	cleanup := func() { db.Close(logger) }
	if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		cleanup()
		return nil, func() {}, err
	}
	repo := NewResultRepository(db, logger)
	if err := repo.Migrate(ctx); err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return repo, cleanup, nil
}
