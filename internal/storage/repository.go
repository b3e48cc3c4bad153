package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a preference key has never been written.
var ErrNotFound = errors.New("preference not found")

// SQLiteRepository stores UI preferences in a single SQLite file.
type SQLiteRepository struct {
	db            *sql.DB
	queries       *Queries
	schemaVersion uint
}

// NewSQLiteRepository migrates the file at dbPath, creating it and its
// directory when missing, then opens it.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	version, err := Migrate(dbPath)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One writer at a time; SQLite serializes writes anyway.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db), schemaVersion: version}, nil
}

// SchemaVersion is the migration version the database was opened at.
func (r *SQLiteRepository) SchemaVersion() uint {
	return r.schemaVersion
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping is used by the readiness probe.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// GetPreference returns the stored value for key or ErrNotFound.
func (r *SQLiteRepository) GetPreference(ctx context.Context, key string) (string, error) {
	p, err := r.queries.GetPreference(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get preference %s: %w", key, err)
	}
	return p.Value, nil
}

// SetPreference inserts or overwrites key.
func (r *SQLiteRepository) SetPreference(ctx context.Context, key, value string) error {
	if err := r.queries.UpsertPreference(ctx, UpsertPreferenceParams{Key: key, Value: value}); err != nil {
		return fmt.Errorf("set preference %s: %w", key, err)
	}
	slog.DebugContext(ctx, "Preference saved to SQLite", "key", key, "value", value)
	return nil
}

// ListPreferences returns every stored preference as a key/value map.
func (r *SQLiteRepository) ListPreferences(ctx context.Context) (map[string]string, error) {
	rows, err := r.queries.ListPreferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	out := make(map[string]string, len(rows))
	for _, p := range rows {
		out[p.Key] = p.Value
	}
	return out, nil
}
