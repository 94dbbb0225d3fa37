package soak

import (
	"io"
	"log"
	"testing"

	"github.com/RafeHatfield/yarl-sub007/internal/bot/persona"
	"github.com/RafeHatfield/yarl-sub007/internal/persistence/runlog"
)

func quiet() *log.Logger { return log.New(io.Discard, "", 0) }

func TestRun_UnknownPersona(t *testing.T) {
	_, err := Run(quiet(), persona.Builtin(), RunConfig{RunID: "r", Persona: "reckless", Seed: 1}, nil)
	if err == nil {
		t.Fatal("expected error for unknown persona")
	}
}

func TestRun_SameSeedSameDigests(t *testing.T) {
	cfg := RunConfig{RunID: "r", Persona: "balanced", Seed: 1337, MaxTurns: 400}

	collect := func() ([]runlog.TurnLogEntry, Result) {
		var entries []runlog.TurnLogEntry
		res, err := Run(quiet(), persona.Builtin(), cfg, func(e runlog.TurnLogEntry) {
			entries = append(entries, e)
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return entries, res
	}

	e1, r1 := collect()
	e2, r2 := collect()

	if r1 != r2 {
		t.Fatalf("results differ: %+v vs %+v", r1, r2)
	}
	if len(e1) == 0 || len(e1) != len(e2) {
		t.Fatalf("entry counts differ: %d vs %d", len(e1), len(e2))
	}
	for i := range e1 {
		if e1[i].Digest != e2[i].Digest {
			t.Fatalf("digest mismatch at entry %d (turn %d): %s vs %s",
				i, e1[i].Turn, e1[i].Digest, e2[i].Digest)
		}
		if e1[i].State != e2[i].State || e1[i].X != e2[i].X || e1[i].Y != e2[i].Y {
			t.Fatalf("entry %d diverged: %+v vs %+v", i, e1[i], e2[i])
		}
	}
}

func TestRun_DifferentSeedsDiverge(t *testing.T) {
	run := func(seed int64) []string {
		var digests []string
		_, err := Run(quiet(), persona.Builtin(), RunConfig{
			RunID: "r", Persona: "balanced", Seed: seed, MaxTurns: 100,
		}, func(e runlog.TurnLogEntry) {
			digests = append(digests, e.Digest)
		})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		return digests
	}

	d1 := run(1)
	d2 := run(2)
	if len(d1) == len(d2) {
		same := true
		for i := range d1 {
			if d1[i] != d2[i] {
				same = false
				break
			}
		}
		if same {
			t.Fatal("different seeds produced identical digest streams")
		}
	}
}

func TestRun_TurnCap(t *testing.T) {
	res, err := Run(quiet(), persona.Builtin(), RunConfig{
		RunID: "r", Persona: "cautious", Seed: 7, MaxTurns: 5,
	}, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Outcome != "turn_cap" && res.Outcome != "died" {
		t.Fatalf("outcome = %q, want turn_cap (or an early death)", res.Outcome)
	}
	if res.Turns > 5 {
		t.Fatalf("turns = %d, cap was 5", res.Turns)
	}
}

func TestRun_EntriesCarryRunMetadata(t *testing.T) {
	var entries []runlog.TurnLogEntry
	_, err := Run(quiet(), persona.Builtin(), RunConfig{
		RunID: "my-run", Persona: "balanced", Seed: 3, MaxTurns: 20,
	}, func(e runlog.TurnLogEntry) {
		entries = append(entries, e)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("no entries emitted")
	}
	for i, e := range entries {
		if e.RunID != "my-run" {
			t.Fatalf("entry %d run_id = %q", i, e.RunID)
		}
		if e.Digest == "" || e.State == "" {
			t.Fatalf("entry %d incomplete: %+v", i, e)
		}
	}
}
