package database

import (
	"context"
	"fmt"
	"time"

	"onehealth-labs/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Schema is the cart/order store DDL. The unique constraints carry two
// domain invariants: one cart per patient, and at most one cart item per
// test id per cart (the merge policy's upsert target).
const Schema = `
	CREATE TABLE IF NOT EXISTS lab_carts (
		id         UUID PRIMARY KEY,
		patient_id BIGINT NOT NULL UNIQUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS lab_cart_items (
		id             UUID PRIMARY KEY,
		cart_id        UUID NOT NULL REFERENCES lab_carts (id) ON DELETE CASCADE,
		test_id        BIGINT NOT NULL,
		test_name      TEXT NOT NULL,
		quantity       INT NOT NULL CHECK (quantity >= 1),
		total_price    DOUBLE PRECISION NOT NULL,
		lab_id         BIGINT NOT NULL,
		lab_name       TEXT NOT NULL,
		lab_address    TEXT NOT NULL,
		test_category  TEXT NOT NULL,
		scheduled_date TIMESTAMPTZ NOT NULL,
		UNIQUE (cart_id, test_id)
	);

	CREATE TABLE IF NOT EXISTS lab_orders (
		id             UUID PRIMARY KEY,
		patient_id     BIGINT NOT NULL,
		patient_name   TEXT NOT NULL,
		transaction_id BIGINT NOT NULL DEFAULT 0,
		total_amount   DOUBLE PRECISION NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS lab_order_items (
		id             UUID PRIMARY KEY,
		order_id       UUID NOT NULL REFERENCES lab_orders (id) ON DELETE CASCADE,
		test_id        BIGINT NOT NULL,
		test_name      TEXT NOT NULL,
		lab_id         BIGINT NOT NULL,
		lab_name       TEXT NOT NULL,
		lab_address    TEXT NOT NULL,
		test_category  TEXT NOT NULL,
		scheduled_date TIMESTAMPTZ NOT NULL,
		price          DOUBLE PRECISION NOT NULL,
		quantity       INT NOT NULL,
		order_status   TEXT NOT NULL,
		payment_mode   TEXT NOT NULL,
		payment_status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lab_orders_patient_id ON lab_orders (patient_id);
	CREATE INDEX IF NOT EXISTS idx_lab_order_items_lab_id ON lab_order_items (lab_id);
`

// NewPool creates a new PostgreSQL connection pool.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, logger zerolog.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = time.Duration(cfg.MaxConnLifetime) * time.Second
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	logger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Str("database", cfg.Database).
		Int("max_connections", cfg.MaxConnections).
		Int("min_connections", cfg.MinConnections).
		Msg("creating database connection pool")

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info().Msg("database connection pool created successfully")

	return pool, nil
}

// Migrate applies the schema. The DDL is idempotent so startup can run it
// unconditionally.
func Migrate(ctx context.Context, pool *pgxpool.Pool, logger zerolog.Logger) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	logger.Info().Msg("database schema applied")
	return nil
}
