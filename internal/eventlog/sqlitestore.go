package eventlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Mavwarf/reveil/internal/paths"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) a SQLite database at path and
// creates the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DirPerm); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Set PRAGMAs before any DDL.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	ddl := `
CREATE TABLE IF NOT EXISTS ring_events (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    kind      TEXT NOT NULL,
    alarm_id  TEXT NOT NULL DEFAULT '',
    label     TEXT NOT NULL DEFAULT '',
    detail    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_ring_events_timestamp ON ring_events(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_ring_events_kind      ON ring_events(kind);
`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Record inserts an event. Failures are printed to stderr but never
// fatal (best-effort).
func (s *SQLiteStore) Record(kind, alarmID, label, detail string) {
	_, err := s.db.Exec(
		`INSERT INTO ring_events (timestamp, kind, alarm_id, label, detail) VALUES (?, ?, ?, ?, ?)`,
		time.Now().Format(time.RFC3339), kind, alarmID, label, detail,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "eventlog: record %s: %v\n", kind, err)
	}
}

// Entries returns the newest-first events of the last days days; 0
// means all.
func (s *SQLiteStore) Entries(days int) ([]Entry, error) {
	query := `SELECT id, timestamp, kind, alarm_id, label, detail FROM ring_events`
	var args []any
	if days > 0 {
		query += ` WHERE timestamp >= ?`
		args = append(args, cutoff(days))
	}
	query += ` ORDER BY timestamp DESC, id DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("eventlog query: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Kind, &e.AlarmID, &e.Label, &e.Detail); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Time = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Clean removes entries older than days days and returns the removed count.
func (s *SQLiteStore) Clean(days int) (int, error) {
	res, err := s.db.Exec(`DELETE FROM ring_events WHERE timestamp < ?`, cutoff(days))
	if err != nil {
		return 0, fmt.Errorf("eventlog clean: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Clear deletes all data.
func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM ring_events`)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Path() string {
	return s.path
}

func cutoff(days int) string {
	return time.Now().AddDate(0, 0, -days).Format(time.RFC3339)
}
