package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/repository"
)

const uniqueViolation = "23505"

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgxPool interface {
	querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage acts as repository facade backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// repositories binds every repository to one querier: the pool or a transaction.
type repositories struct {
	q querier
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) repos() repositories {
	return repositories{q: s.pool}
}

// Factory methods for domain repositories.
func (s *Storage) Users() repository.UserRepository { return s.repos().Users() }

func (s *Storage) Celebrities() repository.CelebrityRepository { return s.repos().Celebrities() }

func (s *Storage) Orders() repository.OrderRepository { return s.repos().Orders() }

func (s *Storage) Tips() repository.TipRepository { return s.repos().Tips() }

func (s *Storage) Payouts() repository.PayoutRepository { return s.repos().Payouts() }

func (s *Storage) Reviews() repository.ReviewRepository { return s.repos().Reviews() }

func (s *Storage) Outbox() repository.OutboxRepository { return s.repos().Outbox() }

func (s *Storage) WebhookEvents() repository.WebhookEventRepository {
	return s.repos().WebhookEvents()
}

func (r repositories) Users() repository.UserRepository { return &userRepository{q: r.q} }

func (r repositories) Celebrities() repository.CelebrityRepository {
	return &celebrityRepository{q: r.q}
}

func (r repositories) Orders() repository.OrderRepository { return &orderRepository{q: r.q} }

func (r repositories) Tips() repository.TipRepository { return &tipRepository{q: r.q} }

func (r repositories) Payouts() repository.PayoutRepository { return &payoutRepository{q: r.q} }

func (r repositories) Reviews() repository.ReviewRepository { return &reviewRepository{q: r.q} }

func (r repositories) Outbox() repository.OutboxRepository { return &outboxRepository{q: r.q} }

func (r repositories) WebhookEvents() repository.WebhookEventRepository {
	return &webhookEventRepository{q: r.q}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            login TEXT UNIQUE NOT NULL,
            email TEXT NOT NULL DEFAULT '',
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'customer',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS celebrities (
            id BIGSERIAL PRIMARY KEY,
            user_id BIGINT UNIQUE NOT NULL REFERENCES users(id),
            slug TEXT UNIQUE NOT NULL,
            display_name TEXT NOT NULL,
            price_cents BIGINT NOT NULL,
            payout_account_id TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS orders (
            id BIGSERIAL PRIMARY KEY,
            number TEXT UNIQUE NOT NULL,
            customer_id BIGINT NOT NULL REFERENCES users(id),
            celebrity_id BIGINT NOT NULL REFERENCES celebrities(id),
            recipient_name TEXT NOT NULL,
            occasion TEXT NOT NULL DEFAULT '',
            instructions TEXT NOT NULL DEFAULT '',
            total_cents BIGINT NOT NULL,
            celebrity_cents BIGINT NOT NULL,
            platform_fee_cents BIGINT NOT NULL,
            tip_cents BIGINT NOT NULL DEFAULT 0,
            state TEXT NOT NULL,
            cancel_reason TEXT NOT NULL DEFAULT '',
            refund_status TEXT NOT NULL DEFAULT 'NONE',
            transfer_status TEXT NOT NULL DEFAULT '',
            revision_count INT NOT NULL DEFAULT 0,
            transfer_attempts INT NOT NULL DEFAULT 0,
            video_key TEXT NOT NULL DEFAULT '',
            payment_intent_id TEXT NOT NULL DEFAULT '',
            approved_at TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS tips (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            user_id BIGINT NOT NULL REFERENCES users(id),
            celebrity_id BIGINT NOT NULL REFERENCES celebrities(id),
            amount_cents BIGINT NOT NULL,
            celebrity_cents BIGINT NOT NULL,
            platform_fee_cents BIGINT NOT NULL DEFAULT 0,
            message TEXT NOT NULL DEFAULT '',
            payment_status TEXT NOT NULL,
            payment_intent_id TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS payouts (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            tip_id BIGINT REFERENCES tips(id),
            celebrity_id BIGINT NOT NULL REFERENCES celebrities(id),
            amount_cents BIGINT NOT NULL,
            platform_fee_cents BIGINT NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            simulated BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS transfers (
            id BIGSERIAL PRIMARY KEY,
            payout_id BIGINT NOT NULL REFERENCES payouts(id),
            external_id TEXT UNIQUE NOT NULL,
            destination TEXT NOT NULL,
            amount_cents BIGINT NOT NULL,
            status TEXT NOT NULL,
            simulated BOOLEAN NOT NULL DEFAULT FALSE,
            failure_reason TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
		`CREATE TABLE IF NOT EXISTS reviews (
            id BIGSERIAL PRIMARY KEY,
            order_id BIGINT NOT NULL REFERENCES orders(id),
            user_id BIGINT NOT NULL REFERENCES users(id),
            celebrity_id BIGINT NOT NULL REFERENCES celebrities(id),
            rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
            comment TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            UNIQUE (user_id, order_id)
        )`,
		`CREATE TABLE IF NOT EXISTS outbox (
            id UUID PRIMARY KEY,
            kind TEXT NOT NULL,
            payload JSONB NOT NULL,
            attempts INT NOT NULL DEFAULT 0,
            next_attempt_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            last_error TEXT NOT NULL DEFAULT '',
            dead BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            processed_at TIMESTAMPTZ
        )`,
		`CREATE TABLE IF NOT EXISTS webhook_events (
            provider TEXT NOT NULL,
            event_id TEXT NOT NULL,
            type TEXT NOT NULL,
            received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            processing_error TEXT NOT NULL DEFAULT '',
            PRIMARY KEY (provider, event_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_celebrity ON orders(celebrity_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_state ON orders(state, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_outbox_due ON outbox(next_attempt_at) WHERE processed_at IS NULL AND NOT dead`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_payouts_tip ON payouts(tip_id) WHERE tip_id IS NOT NULL`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// WithinTransaction executes function inside transaction boundary.
func (s *Storage) WithinTransaction(ctx context.Context, fn func(pgx.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	err = fn(tx)
	return err
}

// InTransaction exposes repositories bound to a single transaction.
func (s *Storage) InTransaction(ctx context.Context, fn func(repository.Factory) error) error {
	return s.WithinTransaction(ctx, func(tx pgx.Tx) error {
		return fn(repositories{q: tx})
	})
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	if s.pool == nil {
		return errors.New("database pool is not initialised")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Logger returns storage logger.
func (s *Storage) Logger() *slog.Logger {
	return s.logger
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return domainErrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domainErrors.ErrAlreadyExists
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func collect[T any](rows pgx.Rows, scan func(scanner, *T) error) ([]T, error) {
	defer rows.Close()

	var result []T
	for rows.Next() {
		var item T
		if err := scan(rows, &item); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
