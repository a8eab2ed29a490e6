// Package postgres implements the rule and configuration store on PostgreSQL,
// using the table layout of the hosted deployment.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Veraticus/claims-triage/internal/common"
	"github.com/Veraticus/claims-triage/internal/service"
	"github.com/Veraticus/claims-triage/internal/storage"
)

var _ service.Storage = (*Store)(nil)

// Config holds connection settings.
type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	ConnectRetry     common.RetryOptions
}

// Store implements service.Storage on a pgx connection pool.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open creates a pgx pool and verifies it can reach the server, retrying
// transient connection failures.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	logger = common.OrDefault(logger)
	if err := storage.ValidateString(cfg.DSN, "dsn"); err != nil {
		return nil, err
	}

	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: database dsn: %w", common.ErrInvalidConfig, err)
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		pc.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	pc.ConnConfig.RuntimeParams["application_name"] = "claims-triage"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	logger.Info("connecting to database", "host", pc.ConnConfig.Host, "database", pc.ConnConfig.Database)

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	err = common.WithRetry(ctx, func() error {
		pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
		defer cancel()
		err := pool.Ping(pingCtx)
		// Class 28: bad credentials won't fix themselves.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "28") {
			return common.Permanent(err)
		}
		return err
	}, cfg.ConnectRetry)
	if err != nil {
		pool.Close()
		return nil, common.NewUserError("Could not connect to the rules database", err)
	}

	logger.Info("successfully connected to database")
	return &Store{pool: pool, logger: logger}, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.logger.Info("closing database connections")
	s.pool.Close()
	return nil
}

// HealthCheck pings the server.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.pool.Ping(ctx)
}

func (s *Store) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	return pgx.BeginFunc(ctx, s.pool, fn)
}

// translateError maps Postgres constraint violations onto shared sentinels.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%w: %s", common.ErrDuplicateEntry, pgErr.Message)
	case "23503":
		return fmt.Errorf("%w: %s", storage.ErrReferenced, pgErr.Message)
	}
	return err
}

func requireAffected(tag pgconn.CommandTag, what string, id any) error {
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s %v: %w", what, id, common.ErrNotFound)
	}
	return nil
}
