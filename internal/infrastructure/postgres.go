package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	// Auto-migrate schema
	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) Migrate() error {
	ctx := context.Background()

	// Users Table
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			telegram_id BIGINT UNIQUE NOT NULL,
			username VARCHAR(100),
			first_name VARCHAR(100),
			last_name VARCHAR(100),
			referral_id BIGINT,
			join_date TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			is_partner BOOLEAN DEFAULT FALSE
		);
	`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	// "referrals of X" is a hot lookup for commission tiering
	_, err = p.Pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_users_referral_id ON users (referral_id);`)
	if err != nil {
		return fmt.Errorf("create referral index: %w", err)
	}

	// Orders Table
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS orders (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			partner_id BIGINT,
			bot_type VARCHAR(100),
			functionality TEXT,
			target_audience TEXT,
			preferences TEXT,
			status VARCHAR(50) DEFAULT 'new',
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP,
			partner_paid BOOLEAN DEFAULT FALSE,
			partner_percent DOUBLE PRECISION DEFAULT 0,
			amount DOUBLE PRECISION DEFAULT 0
		);
	`)
	if err != nil {
		return fmt.Errorf("create orders table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_orders_status ON orders (status);`)
	if err != nil {
		return fmt.Errorf("create order status index: %w", err)
	}
	_, err = p.Pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_orders_partner_id ON orders (partner_id);`)
	if err != nil {
		return fmt.Errorf("create order partner index: %w", err)
	}

	// Partner Payments Ledger (one row per attributed order)
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS partner_payments (
			id BIGSERIAL PRIMARY KEY,
			partner_id BIGINT NOT NULL,
			order_id BIGINT UNIQUE NOT NULL,
			amount DOUBLE PRECISION NOT NULL,
			percent DOUBLE PRECISION NOT NULL,
			paid BOOLEAN DEFAULT FALSE,
			payment_date TIMESTAMPTZ,
			created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("create partner_payments table: %w", err)
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
