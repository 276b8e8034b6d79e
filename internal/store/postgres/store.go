// Package postgres implements the store contract over a pooled PostgreSQL
// connection. Every operation acquires a pooled connection for exactly one
// statement round trip (or the short fixed sequence a best-effort relation
// write needs) and releases it on every exit path.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mkurbatov/coach-assistant/internal/config"
	"mkurbatov/coach-assistant/internal/store"
)

// Default pool bounds when the config leaves them unset.
const (
	defaultPoolMin = 1
	defaultPoolMax = 10

	defaultTimeout = 60 * time.Second
)

// Store implements store.Store over a pgx connection pool.
type Store struct {
	cfg  config.DatabaseConfig
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New creates an unconnected Store; call Connect before use.
func New(cfg config.DatabaseConfig) *Store {
	if cfg.PoolMin <= 0 {
		cfg.PoolMin = defaultPoolMin
	}
	if cfg.PoolMax <= 0 {
		cfg.PoolMax = defaultPoolMax
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Store{cfg: cfg}
}

// Connect establishes the connection pool and verifies it with a ping.
func (s *Store) Connect(ctx context.Context) error {
	if s.pool != nil {
		return nil
	}

	poolCfg, err := pgxpool.ParseConfig(s.cfg.URL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MinConns = s.cfg.PoolMin
	poolCfg.MaxConns = s.cfg.PoolMax
	// Transaction poolers (pgbouncer, the Supabase pooler) cannot host
	// prepared statements, so stick to the simple protocol.
	poolCfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	connectCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return fmt.Errorf("create connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	s.pool = pool
	return nil
}

// Close releases the pool. Safe to call without a prior successful Connect.
func (s *Store) Close(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
		s.pool = nil
	}
	return nil
}

// Ping verifies a pooled connection still answers.
func (s *Store) Ping(ctx context.Context) error {
	if s.pool == nil {
		return store.StoreError("not connected")
	}
	ctx, cancel := s.opContext(ctx)
	defer cancel()
	return s.pool.Ping(ctx)
}

// opContext bounds one statement round trip.
func (s *Store) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.Timeout)
}
