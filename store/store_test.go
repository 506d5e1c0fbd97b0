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

package store

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audit.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStartAndFinishRun(t *testing.T) {
	s := openTestStore(t)

	if err := s.StartRun("session-1", "in.txt", "out.txt", "2026-07-30T00:00:00Z"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	summary := RunSummary{RecordsRead: 10, LinesWritten: 7, DecodeErrors: 1, OK: true}
	if err := s.FinishRun("session-1", "2026-07-30T00:00:01Z", summary); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}
}

func TestRecordSecurityAndUndisclosedAreIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.StartRun("session-1", "in.txt", "out.txt", "2026-07-30T00:00:00Z"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := s.RecordSecurity("session-1", "FMG"); err != nil {
			t.Fatalf("RecordSecurity: %v", err)
		}
		if err := s.RecordUndisclosed("session-1", "100000001"); err != nil {
			t.Fatalf("RecordUndisclosed: %v", err)
		}
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM run_securities WHERE session_id = ?`, "session-1").Scan(&count); err != nil {
		t.Fatalf("querying run_securities: %v", err)
	}
	if count != 1 {
		t.Errorf("run_securities rows = %d, want 1 (duplicates ignored)", count)
	}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM run_undisclosed WHERE session_id = ?`, "session-1").Scan(&count); err != nil {
		t.Fatalf("querying run_undisclosed: %v", err)
	}
	if count != 1 {
		t.Errorf("run_undisclosed rows = %d, want 1 (duplicates ignored)", count)
	}
}

func TestRecordFromTranslator(t *testing.T) {
	s := openTestStore(t)
	if err := s.StartRun("session-1", "in.txt", "out.txt", "2026-07-30T00:00:00Z"); err != nil {
		t.Fatalf("StartRun: %v", err)
	}

	err := s.RecordFromTranslator("session-1", []string{"FMG", "BHP"}, []string{"100000001"})
	if err != nil {
		t.Fatalf("RecordFromTranslator: %v", err)
	}

	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM run_securities WHERE session_id = ?`, "session-1").Scan(&count); err != nil {
		t.Fatalf("querying run_securities: %v", err)
	}
	if count != 2 {
		t.Errorf("run_securities rows = %d, want 2", count)
	}
}
