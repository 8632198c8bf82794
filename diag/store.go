// store.go — durable history of pool health snapshots, backed by sqlite.
//
// This persists diagnostic snapshots only (timestamp + counters), never the
// pool's sample data itself — the pool's own Non-goals exclude persisting
// the sample stream, not persisting an operator's health-history log about
// it.

package diag

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a local sqlite-backed history of Snapshots.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if necessary) a sqlite database at path and
// ensures its schema exists.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("diag: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("diag: ping %s: %w", path, err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS pool_health (
			taken_at_unix_nano INTEGER NOT NULL,
			write_index        INTEGER NOT NULL,
			read_index         INTEGER NOT NULL,
			overflow_count     INTEGER NOT NULL,
			capacity           INTEGER NOT NULL,
			slot_len           INTEGER NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("diag: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record persists one Snapshot.
func (s *Store) Record(snap Snapshot) error {
	_, err := s.db.Exec(
		`INSERT INTO pool_health
			(taken_at_unix_nano, write_index, read_index, overflow_count, capacity, slot_len)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.TakenAtUnixNano, snap.WriteIndex, snap.ReadIndex, snap.OverflowCount, snap.Capacity, snap.SlotLen,
	)
	if err != nil {
		return fmt.Errorf("diag: record snapshot: %w", err)
	}
	return nil
}

// Recent returns the most recent limit snapshots, newest first.
func (s *Store) Recent(limit int) ([]Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT taken_at_unix_nano, write_index, read_index, overflow_count, capacity, slot_len
		 FROM pool_health
		 ORDER BY taken_at_unix_nano DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("diag: query recent snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		if err := rows.Scan(&s.TakenAtUnixNano, &s.WriteIndex, &s.ReadIndex, &s.OverflowCount, &s.Capacity, &s.SlotLen); err != nil {
			return nil, fmt.Errorf("diag: scan snapshot row: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
