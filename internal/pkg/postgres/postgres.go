// Package postgres opens the pgx pool and applies embedded goose migrations.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" //nolint:blank-imports // registers the "pgx" sql driver for goose
	goose "github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
)

// Config configures the pool.
type Config struct {
	DSN      string
	MaxConns int32
	// PingAttempts bounds the start-up ping loop.
	PingAttempts uint64
	PingInterval time.Duration
}

// Connect opens a pool and waits until the server answers a ping.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	dbCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.MaxConns > 0 {
		dbCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, dbCfg)
	if err != nil {
		return nil, fmt.Errorf("create db pool: %w", err)
	}

	attempts := cfg.PingAttempts
	if attempts == 0 {
		attempts = 10
	}
	interval := cfg.PingInterval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}

	backoff := retry.WithMaxRetries(attempts, retry.NewConstant(interval))
	if err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return pool, nil
}

// Migrate applies every pending migration found in migrations.
func Migrate(dsn string, migrations fs.FS) (err error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, db.Close())
	}()

	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(db, "."); err != nil && !errors.Is(err, goose.ErrNoNextVersion) {
		return err
	}

	return nil
}
