// Package archive persists heap snapshots to a durable SQLite store,
// keyed by an arbitrary label (e.g. a run id or a timestamp).
package archive

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/chazu/maggie/pkg/heap/snapshot"
)

// Archive stores heap snapshots in a SQLite database. Writes are
// serialized with a mutex, matching the corpus's persistence layer,
// since database/sql's own locking is not enough to avoid interleaved
// multi-statement writes under the pure-Go SQLite driver.
type Archive struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open creates or opens the SQLite database at path and ensures the
// snapshots table exists.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: setting busy timeout: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS snapshots (
		label TEXT PRIMARY KEY,
		taken_at TEXT NOT NULL,
		compressed INTEGER NOT NULL DEFAULT 0,
		payload BLOB NOT NULL
	)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: creating table: %w", err)
	}

	return &Archive{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Save encodes s and stores it under label, replacing any prior
// snapshot with the same label. takenAt should be an RFC3339 string
// supplied by the caller so the archive stays free of wall-clock
// reads. When compress is true, the payload is zstd-compressed CBOR
// (snapshot.MarshalCompressed) rather than plain CBOR, and Load
// reverses whichever form was stored.
func (a *Archive) Save(label, takenAt string, s *snapshot.Snapshot, compress bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var payload []byte
	var err error
	if compress {
		payload, err = snapshot.MarshalCompressed(s)
	} else {
		payload, err = snapshot.Marshal(s)
	}
	if err != nil {
		return fmt.Errorf("archive: encoding snapshot: %w", err)
	}

	_, err = a.db.Exec(
		"INSERT OR REPLACE INTO snapshots (label, taken_at, compressed, payload) VALUES (?, ?, ?, ?)",
		label, takenAt, compress, payload,
	)
	if err != nil {
		return fmt.Errorf("archive: saving snapshot %q: %w", label, err)
	}
	return nil
}

// Load fetches and decodes the snapshot stored under label, using
// whichever encoding it was saved with.
func (a *Archive) Load(label string) (*snapshot.Snapshot, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var payload []byte
	var compressed bool
	err := a.db.QueryRow("SELECT payload, compressed FROM snapshots WHERE label = ?", label).Scan(&payload, &compressed)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("archive: no snapshot labeled %q", label)
	}
	if err != nil {
		return nil, fmt.Errorf("archive: loading snapshot %q: %w", label, err)
	}
	if compressed {
		return snapshot.UnmarshalCompressed(payload)
	}
	return snapshot.Unmarshal(payload)
}

// Labels returns every snapshot label currently stored, most recently
// taken first.
func (a *Archive) Labels() ([]string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.Query("SELECT label FROM snapshots ORDER BY taken_at DESC")
	if err != nil {
		return nil, fmt.Errorf("archive: listing snapshots: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("archive: scanning label: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}
