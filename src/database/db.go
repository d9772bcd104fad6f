package database

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//go:embed schema.sql
var schemaSQL string

// Database holds the PostgreSQL connection pool
type Database struct {
	pool *pgxpool.Pool
}

// Options tunes the connection pool
type Options struct {
	MaxConns int32
}

// New creates a new database connection and makes sure the schema exists
func New(ctx context.Context, databaseURL string, opts Options) (*Database, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Small fixed pool; callers queue for a connection when it is exhausted
	config.MaxConns = 10
	if opts.MaxConns > 0 {
		config.MaxConns = opts.MaxConns
	}
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	db := &Database{pool: pool}

	if err := db.initializeSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// GetPool returns the connection pool
func (db *Database) GetPool() *pgxpool.Pool {
	return db.pool
}

// initializeSchema executes the embedded schema and migrations
func (db *Database) initializeSchema(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := db.runMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info().Msg("database schema initialized")
	return nil
}

// runMigrations applies in-place changes to tables created by older releases
func (db *Database) runMigrations(ctx context.Context) error {
	// Migration 1: keep only the newest active row per kind so the partial unique index holds
	result, err := db.pool.Exec(ctx, `
		UPDATE integration_credentials c
		SET is_active = false
		WHERE c.is_active
		  AND EXISTS (
			SELECT 1 FROM integration_credentials n
			WHERE n.kind = c.kind AND n.is_active
			  AND (n.last_updated, n.id) > (c.last_updated, c.id)
		  )
	`)
	if err != nil {
		log.Warn().Err(err).Msg("migration: failed to deactivate duplicate credentials")
	} else if result.RowsAffected() > 0 {
		log.Info().Int64("rows", result.RowsAffected()).Msg("migration: deactivated duplicate credentials")
	}

	// Migration 2: one active credential per kind
	_, err = db.pool.Exec(ctx, `
		CREATE UNIQUE INDEX IF NOT EXISTS idx_integration_credentials_active_kind
		ON integration_credentials (kind) WHERE is_active;
	`)
	if err != nil {
		return fmt.Errorf("failed to create active credential index: %w", err)
	}

	return nil
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	if db == nil || db.pool == nil {
		return fmt.Errorf("database connection not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return db.pool.Ping(ctx)
}
