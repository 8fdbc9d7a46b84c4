// Package journal persists generated and dispatched broker commands to a
// SQLite database, one row per command, grouped by run.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure-Go SQLite driver.

	"kisquant/internal/kis"
)

// Entry is one journaled command, optionally annotated with the broker's
// response code once dispatched.
type Entry struct {
	ID        string
	RunID     string
	StepIdx   int
	Path      string
	TrID      string
	Method    string
	Params    map[string]string
	RtCd      string
	Msg       string
	CreatedAt time.Time
}

// Journal is an append-only command log for a single run. It implements the
// backtest CommandSink.
type Journal struct {
	db    *sql.DB
	runID string
}

// Open opens (or creates) the journal database at dbPath and starts a new
// run with a fresh run id.
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	j := &Journal{db: db, runID: uuid.NewString()}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return j, nil
}

// RunID returns the identifier of the current run.
func (j *Journal) RunID() string { return j.runID }

// Close closes the underlying database.
func (j *Journal) Close() error { return j.db.Close() }

func (j *Journal) migrate() error {
	_, err := j.db.Exec(`CREATE TABLE IF NOT EXISTS commands (
		id         TEXT PRIMARY KEY,
		run_id     TEXT NOT NULL,
		step_idx   INTEGER NOT NULL,
		path       TEXT NOT NULL,
		tr_id      TEXT NOT NULL,
		method     TEXT NOT NULL,
		params     TEXT NOT NULL,
		rt_cd      TEXT NOT NULL DEFAULT '',
		msg        TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`)
	return err
}

// Record journals the commands a strategy emitted at the given step offset.
func (j *Journal) Record(idx int, commands []kis.Command) error {
	for _, cmd := range commands {
		if err := j.insert(idx, cmd, "", ""); err != nil {
			return err
		}
	}
	return nil
}

// RecordDispatch journals one dispatched command together with the broker's
// response code and message. A nil response records an empty code.
func (j *Journal) RecordDispatch(cmd kis.Command, response map[string]any) error {
	rtCd, _ := response["rt_cd"].(string)
	msg, _ := response["msg1"].(string)
	return j.insert(0, cmd, rtCd, msg)
}

func (j *Journal) insert(idx int, cmd kis.Command, rtCd, msg string) error {
	params, err := json.Marshal(cmd.Params)
	if err != nil {
		return fmt.Errorf("encoding params for %s: %w", cmd.Path, err)
	}
	_, err = j.db.Exec(
		`INSERT INTO commands (id, run_id, step_idx, path, tr_id, method, params, rt_cd, msg, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), j.runID, idx, cmd.Path, cmd.TrID, string(cmd.Method),
		string(params), rtCd, msg, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("inserting command %s: %w", cmd.TrID, err)
	}
	return nil
}

// Entries returns every journaled command for the given run, oldest first.
func (j *Journal) Entries(runID string) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT id, run_id, step_idx, path, tr_id, method, params, rt_cd, msg, created_at
		 FROM commands WHERE run_id = ? ORDER BY created_at, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying commands: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var params string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.RunID, &e.StepIdx, &e.Path, &e.TrID,
			&e.Method, &params, &e.RtCd, &e.Msg, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning command row: %w", err)
		}
		if err := json.Unmarshal([]byte(params), &e.Params); err != nil {
			return nil, fmt.Errorf("decoding params for %s: %w", e.ID, err)
		}
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
