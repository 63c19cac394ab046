package blob

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// pgDiskFull is the SQLSTATE postgres reports when it cannot extend a file.
const pgDiskFull = "53100"

// SQLStore keeps blobs in a single kv table of a sqlite or postgres database.
type SQLStore struct {
	db       *sqlx.DB
	maxBytes int64
}

// NewSQLStore creates the kv table when missing and returns the store.
func NewSQLStore(ctx context.Context, db *sqlx.DB, maxBytes int64) (*SQLStore, error) {
	s := &SQLStore{db: db, maxBytes: maxBytes}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate kv_blobs: %w", err)
	}
	return s, nil
}

func (s *SQLStore) migrate(ctx context.Context) error {
	valueType, timeType := "BLOB", "DATETIME"
	if s.db.DriverName() == "postgres" {
		valueType, timeType = "BYTEA", "TIMESTAMPTZ"
	}
	schema := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS kv_blobs (
		blob_key TEXT PRIMARY KEY,
		blob_value %s NOT NULL,
		updated_at %s NOT NULL
	)`, valueType, timeType)
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Read returns the blob stored under key.
func (s *SQLStore) Read(ctx context.Context, key string) ([]byte, error) {
	query := s.db.Rebind(`SELECT blob_value FROM kv_blobs WHERE blob_key = ?`)
	var data []byte
	if err := s.db.GetContext(ctx, &data, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select blob %s: %w", key, err)
	}
	return data, nil
}

// Write upserts the blob stored under key.
func (s *SQLStore) Write(ctx context.Context, key string, data []byte) error {
	if err := checkQuota(s.maxBytes, data); err != nil {
		return err
	}
	query := s.db.Rebind(`INSERT INTO kv_blobs (blob_key, blob_value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (blob_key) DO UPDATE SET blob_value = excluded.blob_value, updated_at = excluded.updated_at`)
	if _, err := s.db.ExecContext(ctx, query, key, data, time.Now().UTC()); err != nil {
		if isDiskFull(err) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("upsert blob %s: %w", key, err)
	}
	return nil
}

// Delete removes the blob stored under key.
func (s *SQLStore) Delete(ctx context.Context, key string) error {
	query := s.db.Rebind(`DELETE FROM kv_blobs WHERE blob_key = ?`)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}

// Close closes the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func isDiskFull(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgDiskFull
	}
	// SQLITE_FULL
	return strings.Contains(err.Error(), "database or disk is full")
}
