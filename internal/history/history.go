// Package history keeps a sqlite log of every wallpaper dw applied.
package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultFile is the database name inside the data directory.
const DefaultFile = "history.db"

// timeLayout is fixed width so applied_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

//go:embed schema.sql
var schemaSQL string

// Entry is one applied wallpaper.
type Entry struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Source    string    `json:"source"`
	AppliedAt time.Time `json:"applied_at"`
}

// Log is an open history database.
type Log struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Log{db: db, now: time.Now}, nil
}

// Record appends an entry for path applied by the named command.
func (l *Log) Record(path, source string) (Entry, error) {
	e := Entry{
		ID:        uuid.New().String(),
		Path:      path,
		Source:    source,
		AppliedAt: l.now().UTC(),
	}
	_, err := l.db.Exec(
		`INSERT INTO history (entry_id, path, source, applied_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Path, e.Source, e.AppliedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record history: %w", err)
	}
	return e, nil
}

// List returns up to limit entries, newest first. A limit of zero or less
// returns everything.
func (l *Log) List(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := l.db.Query(
		`SELECT entry_id, path, source, applied_at FROM history
		ORDER BY applied_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var applied string
		if err := rows.Scan(&e.ID, &e.Path, &e.Source, &applied); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.AppliedAt, err = time.Parse(timeLayout, applied)
		if err != nil {
			return nil, fmt.Errorf("parse applied_at %q: %w", applied, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Close releases the database.
func (l *Log) Close() error {
	return l.db.Close()
}
