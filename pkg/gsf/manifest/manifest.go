// Package manifest records every container a build writes in a SQLite
// database, so a script's output can be listed and checked later.
package manifest

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	// SQLite driver (pure Go, no CGO required)
	_ "modernc.org/sqlite"
)

// Kind says which sort of container an entry describes.
type Kind string

const (
	KindLibrary Kind = "gsflib"
	KindMini    Kind = "minigsf"
)

// Entry is one written file.
type Entry struct {
	ID         int64
	Run        int64
	Kind       Kind
	Path       string
	Script     string
	Line       int
	SongID     uint32
	SongNumber uint32
	Size       int64
	CRC32      uint32
	Timestamp  time.Time
}

// Manifest is an open manifest database. Each Open starts a new run; the
// entries it records share the run number.
type Manifest struct {
	db   *sql.DB
	path string
	run  int64
}

// Open opens or creates the manifest at path.
func Open(path string) (*Manifest, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating manifest directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening manifest database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to manifest database: %w", err)
	}
	db.SetMaxOpenConns(1)

	m := &Manifest{db: db, path: path}
	if err := m.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating manifest schema: %w", err)
	}
	if err := db.QueryRow(`SELECT COALESCE(MAX(run), 0) + 1 FROM files`).Scan(&m.run); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading manifest runs: %w", err)
	}
	return m, nil
}

func (m *Manifest) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run INTEGER NOT NULL,
			kind TEXT NOT NULL,
			path TEXT NOT NULL,
			script TEXT NOT NULL DEFAULT '',
			line INTEGER NOT NULL DEFAULT 0,
			song_id INTEGER NOT NULL DEFAULT 0,
			song_number INTEGER NOT NULL DEFAULT 0,
			size INTEGER NOT NULL DEFAULT 0,
			crc32 INTEGER NOT NULL DEFAULT 0,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_files_run ON files(run);
		CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);
	`
	_, err := m.db.Exec(schema)
	return err
}

// Path returns the database file path.
func (m *Manifest) Path() string { return m.path }

// Run returns the run number entries recorded through m receive.
func (m *Manifest) Run() int64 { return m.run }

// Record stores one written file under the current run.
func (m *Manifest) Record(e Entry) error {
	_, err := m.db.Exec(`
		INSERT INTO files (run, kind, path, script, line, song_id, song_number, size, crc32)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.run, string(e.Kind), e.Path, e.Script, e.Line, e.SongID, e.SongNumber, e.Size, e.CRC32)
	return err
}

// Entries returns the entries of one run in the order they were recorded.
// A run of 0 returns every entry.
func (m *Manifest) Entries(run int64) ([]Entry, error) {
	query := `
		SELECT id, run, kind, path, script, line, song_id, song_number, size, crc32, timestamp
		FROM files`
	args := []any{}
	if run != 0 {
		query += ` WHERE run = ?`
		args = append(args, run)
	}
	query += ` ORDER BY id`

	rows, err := m.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			kind string
			ts   string
		)
		if err := rows.Scan(&e.ID, &e.Run, &kind, &e.Path, &e.Script, &e.Line,
			&e.SongID, &e.SongNumber, &e.Size, &e.CRC32, &ts); err != nil {
			return nil, fmt.Errorf("scanning manifest entry: %w", err)
		}
		e.Kind = Kind(kind)
		e.Timestamp = parseTimestamp(ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// parseTimestamp accepts the layouts SQLite and the driver produce.
func parseTimestamp(ts string) time.Time {
	for _, layout := range []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Close closes the database.
func (m *Manifest) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}
