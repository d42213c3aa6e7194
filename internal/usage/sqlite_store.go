package usage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists usage counters in a local SQLite database. Writes go
// through a single UPSERT so the read-modify-write is atomic at the storage
// layer.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and initializes) the counter database
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS usage_counters (
			user_id TEXT NOT NULL,
			feature_key TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			last_used DATETIME,
			PRIMARY KEY (user_id, feature_key)
		)
	`
	_, err := s.db.Exec(query)
	return err
}

// Read retrieves the counter for a user and feature; absent rows read as a
// zero record
func (s *SQLiteStore) Read(ctx context.Context, userID, featureKey string) (Record, error) {
	var rec Record
	var lastUsed sql.NullTime

	row := s.db.QueryRowContext(ctx,
		`SELECT count, last_used FROM usage_counters WHERE user_id = ? AND feature_key = ?`,
		userID, featureKey)
	if err := row.Scan(&rec.Count, &lastUsed); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, nil
		}
		return Record{}, fmt.Errorf("failed to read counter: %w", err)
	}
	if lastUsed.Valid {
		rec.LastUsed = lastUsed.Time.UTC()
	}
	return rec, nil
}

// Write stores the counter for a user and feature
func (s *SQLiteStore) Write(ctx context.Context, userID, featureKey string, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO usage_counters (user_id, feature_key, count, last_used)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, feature_key)
		DO UPDATE SET count = excluded.count, last_used = excluded.last_used`,
		userID, featureKey, rec.Count, rec.LastUsed.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write counter: %w", err)
	}
	return nil
}
