package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/DeanBeanBEER-WARE/interact/internal/engine"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one persisted mutation record. ElementID is empty for a pass
// that resolved no targets.
type Entry struct {
	Session   string   `json:"session"`
	Seq       int64    `json:"seq"`
	RuleID    string   `json:"rule"`
	ElementID string   `json:"element,omitempty"`
	Action    string   `json:"action"`
	Labels    []string `json:"labels"`
}

// Journal records mutation observations in a SQLite database.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path.
//
// WAL mode allows the trace tooling to read while a run is still
// recording; the connection pool is capped at one writer to avoid
// SQLITE_BUSY. Idempotent.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record inserts one live mutation observation. Duplicate (session, seq)
// pairs are silently ignored so a replayed trace never double-writes.
func (j *Journal) Record(ctx context.Context, m engine.Mutation) error {
	e := Entry{
		Session: m.Session,
		Seq:     m.Seq,
		RuleID:  m.RuleID,
		Action:  string(m.Action),
		Labels:  m.Labels,
	}
	if m.Element != nil {
		e.ElementID = m.Element.ID()
	}
	return j.RecordEntry(ctx, e)
}

// RecordEntry inserts one already-serialized record, for callers that
// hold a captured trace rather than live mutations.
func (j *Journal) RecordEntry(ctx context.Context, e Entry) error {
	labels, err := json.Marshal(e.Labels)
	if err != nil {
		return fmt.Errorf("record mutation: %w", err)
	}

	var elementID any
	if e.ElementID != "" {
		elementID = e.ElementID
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO mutations (session, seq, rule_id, element_id, action, labels)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session, seq) DO NOTHING
	`,
		e.Session,
		e.Seq,
		e.RuleID,
		elementID,
		string(e.Action),
		string(labels),
	)
	if err != nil {
		return fmt.Errorf("record mutation: %w", err)
	}
	return nil
}

// Observer adapts the journal to the engine's observer contract. Write
// failures surface through errFn; a nil errFn drops them, keeping the
// mutation pass itself unaffected.
func (j *Journal) Observer(ctx context.Context, errFn func(error)) engine.Observer {
	return func(m engine.Mutation) {
		if err := j.Record(ctx, m); err != nil && errFn != nil {
			errFn(err)
		}
	}
}

// Entries returns every record for a session in seq order.
func (j *Journal) Entries(ctx context.Context, session string) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session, seq, rule_id, COALESCE(element_id, ''), action, labels
		FROM mutations
		WHERE session = ?
		ORDER BY seq
	`, session)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var labels string
		if err := rows.Scan(&e.Session, &e.Seq, &e.RuleID, &e.ElementID, &e.Action, &labels); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		if err := json.Unmarshal([]byte(labels), &e.Labels); err != nil {
			return nil, fmt.Errorf("decode labels for seq %d: %w", e.Seq, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return out, nil
}

// Sessions returns the distinct session tokens present, most recent
// first by insertion order.
func (j *Journal) Sessions(ctx context.Context) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session FROM mutations GROUP BY session ORDER BY MAX(rowid) DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
