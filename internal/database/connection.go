package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/smarttransit/walkin-pos/internal/config"
)

// DB interface defines database operations
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	PingContext(ctx context.Context) error
	Close() error
}

// PostgresDB implements the DB interface using sqlx
type PostgresDB struct {
	*sqlx.DB
}

// NewConnection creates a new database connection
func NewConnection(cfg config.DatabaseConfig) (*PostgresDB, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database URL is required")
	}

	// Connection poolers (Supavisor, pgbouncer) need the simple protocol
	connectionURL := cfg.URL
	if !strings.Contains(connectionURL, "prefer_simple_protocol") {
		separator := "?"
		if strings.Contains(connectionURL, "?") {
			separator = "&"
		}
		connectionURL = connectionURL + separator + "prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", connectionURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdleConnections)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxLifetime / 2)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{DB: db}, nil
}

// NewFromSQL wraps an existing *sql.DB, e.g. one opened by sqlmock
func NewFromSQL(db *sql.DB) *PostgresDB {
	return &PostgresDB{DB: sqlx.NewDb(db, "postgres")}
}

const walkInSalesSchema = `
CREATE TABLE IF NOT EXISTS walk_in_sales (
	id             UUID PRIMARY KEY,
	session_id     UUID NOT NULL,
	ticketer_id    UUID NOT NULL,
	schedule_id    TEXT NOT NULL,
	seat_number    INTEGER NOT NULL,
	amount         NUMERIC(12, 2) NOT NULL,
	payment_method TEXT NOT NULL,
	payment_status TEXT NOT NULL,
	event_type     TEXT NOT NULL,
	reference_code TEXT,
	checkout_url   TEXT,
	ip_address     TEXT NOT NULL DEFAULT '',
	device_info    JSONB,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_walk_in_sales_ticketer_created
	ON walk_in_sales (ticketer_id, created_at);
`

// EnsureSchema creates the ledger table if it does not exist
func EnsureSchema(ctx context.Context, db DB) error {
	if _, err := db.ExecContext(ctx, walkInSalesSchema); err != nil {
		return fmt.Errorf("failed to create walk_in_sales schema: %w", err)
	}
	return nil
}
