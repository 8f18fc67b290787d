// ./internal/state/db.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS pool_membership_events (
			event_id SERIAL PRIMARY KEY,
			position VARCHAR(42) NOT NULL,
			pool VARCHAR(42) NOT NULL,
			event_type VARCHAR(16) NOT NULL, -- 'added' | 'removed'
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_pool_membership_events_position ON pool_membership_events(position, created_at DESC);

		CREATE TABLE IF NOT EXISTS action_receipts (
			receipt_id SERIAL PRIMARY KEY,
			trace_id VARCHAR(36) NOT NULL,
			position VARCHAR(42) NOT NULL,
			action VARCHAR(32) NOT NULL,
			target VARCHAR(42) NOT NULL,
			amount NUMERIC(78, 0) NOT NULL,
			success BOOLEAN NOT NULL,
			message TEXT,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_action_receipts_position ON action_receipts(position, created_at DESC);

		CREATE TABLE IF NOT EXISTS valuation_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			cycle_id VARCHAR(36) NOT NULL,
			position VARCHAR(42) NOT NULL,
			assets JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_valuation_snapshots_position ON valuation_snapshots(position, created_at DESC);
	`

	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to apply database schema: %w", err)
	}

	log.Info().Msg("Database schema is up to date.")
	return nil
}

// TestDBConnection verifies the database connection is alive.
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	if err := DB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
