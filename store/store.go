/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package store provides SQLite-backed audit storage for converter runs:
// one row per run, plus per-run summaries of the securities and
// undisclosed order-ids the translator saw. This is a run-level audit
// trail, never on the per-record hot path the translator itself runs.
package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	session_id    TEXT PRIMARY KEY,
	input_path    TEXT NOT NULL,
	output_path   TEXT NOT NULL,
	started_at    TEXT NOT NULL,
	finished_at   TEXT,
	records_read  INTEGER NOT NULL DEFAULT 0,
	lines_written INTEGER NOT NULL DEFAULT 0,
	decode_errors INTEGER NOT NULL DEFAULT 0,
	ok            INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS run_securities (
	session_id TEXT NOT NULL REFERENCES runs(session_id),
	security   TEXT NOT NULL,
	PRIMARY KEY (session_id, security)
);

CREATE TABLE IF NOT EXISTS run_undisclosed (
	session_id TEXT NOT NULL REFERENCES runs(session_id),
	order_id   TEXT NOT NULL,
	PRIMARY KEY (session_id, order_id)
);
`

const (
	insertRunQuery           = `INSERT INTO runs (session_id, input_path, output_path, started_at) VALUES (?, ?, ?, ?)`
	finishRunQuery           = `UPDATE runs SET finished_at = ?, records_read = ?, lines_written = ?, decode_errors = ?, ok = ? WHERE session_id = ?`
	insertRunSecurityQuery   = `INSERT OR IGNORE INTO run_securities (session_id, security) VALUES (?, ?)`
	insertRunUndisclosedQuery = `INSERT OR IGNORE INTO run_undisclosed (session_id, order_id) VALUES (?, ?)`
)

// Store is the SQLite audit log for converter runs. Prepared statements
// are initialized once and reused across the life of a run, avoiding SQL
// parsing overhead on every security/undisclosed-id recorded.
type Store struct {
	db *sql.DB

	stmtInsertSecurity   *sql.Stmt
	stmtInsertUndisclosed *sql.Stmt
}

// Open creates (or reuses) a SQLite database at path and ensures the audit
// schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing audit schema: %w", err)
	}

	s := &Store{db: db}
	if s.stmtInsertSecurity, err = db.Prepare(insertRunSecurityQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("preparing security statement: %w", err)
	}
	if s.stmtInsertUndisclosed, err = db.Prepare(insertRunUndisclosedQuery); err != nil {
		_ = s.stmtInsertSecurity.Close()
		_ = db.Close()
		return nil, fmt.Errorf("preparing undisclosed statement: %w", err)
	}
	return s, nil
}

// Close releases the prepared statements and the underlying connection.
func (s *Store) Close() error {
	if s.stmtInsertSecurity != nil {
		_ = s.stmtInsertSecurity.Close()
	}
	if s.stmtInsertUndisclosed != nil {
		_ = s.stmtInsertUndisclosed.Close()
	}
	return s.db.Close()
}

// RunSummary is the end-of-run tally a caller reports via FinishRun.
type RunSummary struct {
	RecordsRead  int
	LinesWritten int
	DecodeErrors int
	OK           bool
}

// StartRun records the beginning of one converter run, keyed by sessionID
// (see cmd/chixconvert, which mints one google/uuid per run).
func (s *Store) StartRun(sessionID, inputPath, outputPath, startedAt string) error {
	_, err := s.db.Exec(insertRunQuery, sessionID, inputPath, outputPath, startedAt)
	if err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	return nil
}

// FinishRun records the end-of-run tally for sessionID.
func (s *Store) FinishRun(sessionID, finishedAt string, summary RunSummary) error {
	_, err := s.db.Exec(finishRunQuery, finishedAt, summary.RecordsRead, summary.LinesWritten, summary.DecodeErrors, summary.OK, sessionID)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// RecordSecurity notes that security was seen live during sessionID. Safe
// to call repeatedly for the same security; duplicates are ignored.
func (s *Store) RecordSecurity(sessionID, security string) error {
	_, err := s.stmtInsertSecurity.Exec(sessionID, security)
	if err != nil {
		return fmt.Errorf("recording security: %w", err)
	}
	return nil
}

// RecordUndisclosed notes that orderID was seen as an undisclosed order
// during sessionID.
func (s *Store) RecordUndisclosed(sessionID, orderID string) error {
	_, err := s.stmtInsertUndisclosed.Exec(sessionID, orderID)
	if err != nil {
		return fmt.Errorf("recording undisclosed order: %w", err)
	}
	return nil
}

// RecordFromTranslator drains a translator's diagnostic accessors into the
// run's security/undisclosed tables. Called once at the end of a run
// rather than per-record, since the translator's own sets are already the
// deduplicated view.
func (s *Store) RecordFromTranslator(sessionID string, securities, undisclosed []string) error {
	for _, sec := range securities {
		if err := s.RecordSecurity(sessionID, sec); err != nil {
			return err
		}
	}
	for _, id := range undisclosed {
		if err := s.RecordUndisclosed(sessionID, id); err != nil {
			return err
		}
	}
	return nil
}
