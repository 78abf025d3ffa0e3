package warnings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

const createTableSQL = `CREATE TABLE IF NOT EXISTS ` + CollectionName + ` (
	identity TEXT PRIMARY KEY,
	"timestamp" BIGINT NOT NULL
)`

// PostgresStore stores records in a "warnings" table
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a connection pool for dsn and verifies it
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return NewPostgresStore(db), nil
}

// NewPostgresStore wraps an open *sql.DB
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the warnings table if it does not exist
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("create table %s: %w", CollectionName, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, identity string) (time.Time, bool, error) {
	key := NormalizeIdentity(identity)

	var ms int64
	err := s.db.QueryRowContext(ctx,
		`SELECT "timestamp" FROM `+CollectionName+` WHERE identity = $1`, key).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, storageErr("get", key, err)
	}
	return time.UnixMilli(ms), true, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, identity string, at time.Time) error {
	key := NormalizeIdentity(identity)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO `+CollectionName+` (identity, "timestamp") VALUES ($1, $2)
		 ON CONFLICT (identity) DO UPDATE SET "timestamp" = EXCLUDED."timestamp"`,
		key, at.UnixMilli())
	return storageErr("upsert", key, err)
}

func (s *PostgresStore) Delete(ctx context.Context, identity string) error {
	key := NormalizeIdentity(identity)
	_, err := s.db.ExecContext(ctx, `DELETE FROM `+CollectionName+` WHERE identity = $1`, key)
	return storageErr("delete", key, err)
}

func (s *PostgresStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
