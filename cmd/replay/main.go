package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/RafeHatfield/yarl-sub007/internal/bot/persona"
	"github.com/RafeHatfield/yarl-sub007/internal/persistence/rundb"
	"github.com/RafeHatfield/yarl-sub007/internal/persistence/runlog"
	"github.com/RafeHatfield/yarl-sub007/internal/soak"
)

// replay re-simulates a recorded run from its seed and verifies the
// world digest of every logged turn. A mismatch means the engine is no
// longer deterministic relative to when the run was recorded.
func main() {
	var (
		logPath      = flag.String("log", "", "path to run-*.jsonl.zst")
		dbPath       = flag.String("db", "./data/runs.db", "runs database (source of seed and persona)")
		personasPath = flag.String("personas", "", "optional personas.yaml override file")
	)
	flag.Parse()

	if *logPath == "" {
		fmt.Fprintln(os.Stderr, "missing -log")
		os.Exit(2)
	}

	var entries []runlog.TurnLogEntry
	if err := runlog.Read(*logPath, func(e runlog.TurnLogEntry) error {
		entries = append(entries, e)
		return nil
	}); err != nil {
		fmt.Fprintln(os.Stderr, "read run log:", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "empty run log")
		os.Exit(1)
	}
	runID := entries[0].RunID

	store, err := rundb.Open(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open rundb:", err)
		os.Exit(1)
	}
	defer store.Close()

	rec, err := store.Run(context.Background(), runID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "lookup run %s: %v\n", runID, err)
		os.Exit(1)
	}

	reg := persona.Builtin()
	if *personasPath != "" {
		if reg, err = persona.LoadFile(*personasPath); err != nil {
			fmt.Fprintln(os.Stderr, "load personas:", err)
			os.Exit(1)
		}
	}

	quiet := log.New(io.Discard, "", 0)

	idx := 0
	checked := 0
	_, err = soak.Run(quiet, reg, soak.RunConfig{
		RunID:   runID,
		Persona: rec.Persona,
		Seed:    rec.Seed,
		// Caps are implied by the recording: replay the same horizon.
		MaxDepth: rec.Depth,
		MaxTurns: rec.Turns + 1,
	}, func(e runlog.TurnLogEntry) {
		if idx >= len(entries) {
			return
		}
		want := entries[idx]
		idx++
		if e.Digest != want.Digest {
			fmt.Fprintf(os.Stderr, "digest mismatch at turn %d: got=%s want=%s\n", e.Turn, e.Digest, want.Digest)
			os.Exit(1)
		}
		checked++
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay:", err)
		os.Exit(1)
	}

	fmt.Printf("replay ok: run=%s persona=%s seed=%d checked=%d turns outcome=%s\n",
		runID, rec.Persona, rec.Seed, checked, rec.Outcome)
}
