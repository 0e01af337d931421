package audit

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS transitions (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	at          TEXT NOT NULL,
	proposal_id TEXT NOT NULL,
	bank_id     TEXT NOT NULL,
	from_status TEXT NOT NULL,
	to_status   TEXT NOT NULL,
	note        TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transitions_proposal ON transitions(proposal_id);
`

// SQLiteRecorder persists transition events to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
}

// NewSQLiteRecorder opens (creating if necessary) the audit database at the
// given path.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("audit database path is required")
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create audit directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	// The engine is single-threaded; one connection keeps SQLite happy.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply audit schema: %w", err)
	}

	return &SQLiteRecorder{db: db}, nil
}

// Record appends one transition event.
func (r *SQLiteRecorder) Record(event Event) error {
	at := event.At
	if at.IsZero() {
		at = time.Now().UTC()
	}

	_, err := r.db.Exec(
		`INSERT INTO transitions (at, proposal_id, bank_id, from_status, to_status, note) VALUES (?, ?, ?, ?, ?, ?)`,
		at.Format(time.RFC3339), event.ProposalID, event.BankID, event.From, event.To, event.Note,
	)
	if err != nil {
		return fmt.Errorf("failed to record transition: %w", err)
	}
	return nil
}

// Events returns the recorded transitions for one proposal, oldest first.
func (r *SQLiteRecorder) Events(proposalID string) ([]Event, error) {
	rows, err := r.db.Query(
		`SELECT at, proposal_id, bank_id, from_status, to_status, note FROM transitions WHERE proposal_id = ? ORDER BY id`,
		proposalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query transitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []Event
	for rows.Next() {
		var ev Event
		var at string
		if err := rows.Scan(&at, &ev.ProposalID, &ev.BankID, &ev.From, &ev.To, &ev.Note); err != nil {
			return nil, fmt.Errorf("failed to scan transition: %w", err)
		}
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return nil, fmt.Errorf("invalid transition timestamp %q: %w", at, err)
		}
		ev.At = parsed
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transitions: %w", err)
	}

	return events, nil
}

// Close closes the underlying database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
