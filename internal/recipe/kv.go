package recipe

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresKV stores slots in a single key/value table.
type PostgresKV struct {
	db *sqlx.DB
}

// NewPostgresKV connects to PostgreSQL and ensures the storage table exists.
func NewPostgresKV(dataSourceName string) (*PostgresKV, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS app_storage (
		slot TEXT PRIMARY KEY,
		value TEXT
	);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create app_storage table: %w", err)
	}

	return &PostgresKV{db: db}, nil
}

// Get retrieves a slot value.
func (p *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRowContext(ctx, "SELECT value FROM app_storage WHERE slot = $1", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get slot %q: %w", key, err)
	}
	return value, true, nil
}

// Set writes a slot value, replacing any previous one.
func (p *PostgresKV) Set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx,
		"INSERT INTO app_storage (slot, value) VALUES ($1, $2) ON CONFLICT (slot) DO UPDATE SET value = $2",
		key,
		value,
	)
	if err != nil {
		return fmt.Errorf("failed to set slot %q: %w", key, err)
	}
	return nil
}

// FileKV stores each slot as a file under a base directory. It is the
// default backend when no database is configured.
type FileKV struct {
	baseDir string
}

// NewFileKV creates the base directory if needed.
func NewFileKV(baseDir string) (*FileKV, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileKV{baseDir: baseDir}, nil
}

// Get reads a slot file. A missing file means the slot was never written.
func (f *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	path, err := f.slotPath(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read slot %q: %w", key, err)
	}
	return string(data), true, nil
}

// Set writes a slot file.
func (f *FileKV) Set(ctx context.Context, key, value string) error {
	path, err := f.slotPath(key)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("failed to write slot %q: %w", key, err)
	}
	return nil
}

func (f *FileKV) slotPath(key string) (string, error) {
	// Keys are fixed slot names, never user input, but guard anyway.
	if key == "" || strings.ContainsAny(key, `/\`) || key != filepath.Base(key) {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(f.baseDir, key+".json"), nil
}
