package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// indexFilename is the SQLite file holding export metadata.
const indexFilename = "exports.db"

// Entry is one recorded export file.
type Entry struct {
	// Filename is the export file's name within the export directory.
	Filename string

	// Format is the export format (json or csv).
	Format string

	// Host is the scanned target recorded in the export.
	Host string

	// Modules is the comma-joined list of modules the export covers.
	Modules string

	// CreatedAt is when the export was written (UTC).
	CreatedAt time.Time
}

// Index tracks export files in a SQLite database so they can be
// listed and cleaned later. It stores file metadata only, never scan
// results themselves.
type Index struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// OpenIndex opens or creates the export index inside dir.
func OpenIndex(dir string) (*Index, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	dbPath := filepath.Join(dir, indexFilename)

	db, err := sql.Open("sqlite", dbPath+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open export index: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	idx := &Index{db: db, dbPath: dbPath}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if err := idx.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return idx, nil
}

// Close closes the database connection.
func (idx *Index) Close() error {
	return idx.db.Close()
}

// Path returns the index database file path.
func (idx *Index) Path() string {
	return idx.dbPath
}

// createTables creates the index schema if it doesn't exist.
func (idx *Index) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS exports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filename TEXT NOT NULL UNIQUE,
		format TEXT NOT NULL,
		host TEXT NOT NULL,
		modules TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_exports_host ON exports(host);
	CREATE INDEX IF NOT EXISTS idx_exports_created ON exports(created_at);
	`
	_, err := idx.db.ExecContext(context.Background(), schema)
	return err
}

// Record upserts an export entry keyed by filename. Re-exporting to
// the same name replaces the old metadata.
func (idx *Index) Record(ctx context.Context, entry Entry) error {
	query := `
	INSERT INTO exports (filename, format, host, modules, created_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(filename) DO UPDATE SET
		format = excluded.format,
		host = excluded.host,
		modules = excluded.modules,
		created_at = excluded.created_at
	`
	_, err := idx.db.ExecContext(ctx, query,
		entry.Filename, entry.Format, entry.Host, entry.Modules, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record export: %w", err)
	}
	return nil
}

// List returns all export entries, newest first.
func (idx *Index) List(ctx context.Context) ([]Entry, error) {
	query := `
	SELECT filename, format, host, modules, created_at
	FROM exports
	ORDER BY created_at DESC, id DESC
	`
	rows, err := idx.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list exports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		if err := rows.Scan(&entry.Filename, &entry.Format, &entry.Host, &entry.Modules, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exports: %w", err)
	}
	return entries, nil
}

// Remove deletes an export entry by filename.
func (idx *Index) Remove(ctx context.Context, filename string) error {
	if _, err := idx.db.ExecContext(ctx, "DELETE FROM exports WHERE filename = ?", filename); err != nil {
		return fmt.Errorf("failed to remove export entry: %w", err)
	}
	return nil
}
