package rundb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// waitForRun polls until the background writer has landed the row.
func waitForRun(t *testing.T, s *Store, runID string) RunRecord {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rec, err := s.Run(context.Background(), runID)
		if err == nil {
			return rec
		}
		if !errors.Is(err, sql.ErrNoRows) {
			t.Fatalf("Run: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("run %s never appeared", runID)
	return RunRecord{}
}

func TestRecordRun_InsertAndLookup(t *testing.T) {
	s := openTestStore(t)

	want := RunRecord{
		RunID:     "run-1",
		Persona:   "balanced",
		Seed:      1337,
		StartedAt: "2026-08-23T10:00:00Z",
		EndedAt:   "2026-08-23T10:05:00Z",
		Depth:     4,
		Turns:     812,
		Outcome:   "died",
		FinalHP:   0,
	}
	s.RecordRun(want)

	got := waitForRun(t, s, "run-1")
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestRecordRun_Floors(t *testing.T) {
	s := openTestStore(t)

	want := []FloorRecord{
		{Depth: 1, EnteredTurn: 1, ExitedTurn: 210},
		{Depth: 2, EnteredTurn: 211, ExitedTurn: 540},
		{Depth: 3, EnteredTurn: 541, ExitedTurn: 812},
	}
	s.RecordRun(RunRecord{
		RunID: "run-f", Persona: "balanced", Seed: 7,
		StartedAt: "a", EndedAt: "b", Depth: 3, Turns: 812,
		Outcome: "died", Floors: want,
	})
	waitForRun(t, s, "run-f")

	got, err := s.Floors(context.Background(), "run-f")
	if err != nil {
		t.Fatalf("Floors: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("floors = %+v, want %+v", got, want)
	}

	none, err := s.Floors(context.Background(), "no-such-run")
	if err != nil {
		t.Fatalf("Floors missing run: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no floors, got %+v", none)
	}
}

func TestRecordRun_ReplaceOnSameID(t *testing.T) {
	s := openTestStore(t)

	rec := RunRecord{RunID: "run-1", Persona: "balanced", Seed: 1, StartedAt: "a", EndedAt: "b", Outcome: "turn_cap"}
	s.RecordRun(rec)
	waitForRun(t, s, "run-1")

	rec.Outcome = "died"
	rec.Depth = 2
	s.RecordRun(rec)

	deadline := time.Now().Add(5 * time.Second)
	for {
		got := waitForRun(t, s, "run-1")
		if got.Outcome == "died" && got.Depth == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("replacement never landed: %+v", got)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRuns_NewestFirst(t *testing.T) {
	s := openTestStore(t)

	for i, ts := range []string{"2026-08-23T10:00:00Z", "2026-08-23T11:00:00Z", "2026-08-23T12:00:00Z"} {
		s.RecordRun(RunRecord{
			RunID: []string{"a", "b", "c"}[i], Persona: "balanced", Seed: int64(i),
			StartedAt: ts, EndedAt: ts, Outcome: "depth_cap",
		})
	}
	waitForRun(t, s, "c")
	waitForRun(t, s, "a")

	runs, err := s.Runs(context.Background(), 2)
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "c" || runs[1].RunID != "b" {
		t.Fatalf("runs = %+v, want c then b", runs)
	}
}

func TestRun_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Run(context.Background(), "nope")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestSetMeta(t *testing.T) {
	s := openTestStore(t)
	if err := s.SetMeta("schema_version", "1"); err != nil {
		t.Fatalf("SetMeta: %v", err)
	}
	if err := s.SetMeta("schema_version", "2"); err != nil {
		t.Fatalf("SetMeta replace: %v", err)
	}
}

func TestRecordRun_ConcurrentWithClose(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Writers racing Close must drop records, never panic on a closed
	// channel.
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.RecordRun(RunRecord{RunID: fmt.Sprintf("run-%d-%d", g, i), Outcome: "turn_cap"})
			}
		}(g)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()
}

func TestClose_DropsLateRecords(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Must not panic on a closed store.
	s.RecordRun(RunRecord{RunID: "late"})
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatal("expected error for empty path")
	}
}
