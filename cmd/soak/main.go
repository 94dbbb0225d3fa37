package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/RafeHatfield/yarl-sub007/internal/bot/persona"
	"github.com/RafeHatfield/yarl-sub007/internal/persistence/rundb"
	"github.com/RafeHatfield/yarl-sub007/internal/persistence/runlog"
	"github.com/RafeHatfield/yarl-sub007/internal/soak"
	"github.com/RafeHatfield/yarl-sub007/internal/transport/ws"
)

func main() {
	var (
		personaName  = flag.String("persona", "balanced", "bot persona")
		runs         = flag.Int("runs", 1, "number of automated runs")
		seed         = flag.Int64("seed", time.Now().UnixNano(), "base seed; run i uses seed+i")
		dataDir      = flag.String("data", "./data", "data directory (db + run logs)")
		personasPath = flag.String("personas", "", "optional personas.yaml override file")
		listen       = flag.String("listen", "", "optional ws observer address, e.g. :8080")
		maxDepth     = flag.Int("max_depth", 10, "stop a run after descending past this depth")
		maxTurns     = flag.Uint64("max_turns", 5000, "per-run turn cap")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[soak] ", log.LstdFlags|log.Lmicroseconds)

	reg := persona.Builtin()
	if *personasPath != "" {
		r, err := persona.LoadFile(*personasPath)
		if err != nil {
			logger.Fatalf("load personas: %v", err)
		}
		reg = r
	}
	if _, err := reg.ByName(*personaName); err != nil {
		logger.Fatalf("%v", err)
	}

	store, err := rundb.Open(filepath.Join(*dataDir, "runs.db"))
	if err != nil {
		logger.Fatalf("open rundb: %v", err)
	}
	defer store.Close()

	var obs *ws.Observer
	if *listen != "" {
		obs = ws.NewObserver(logger)
		mux := http.NewServeMux()
		mux.HandleFunc("/v1/observe", obs.Handler())
		go func() {
			logger.Printf("observer listening on %s", *listen)
			if err := http.ListenAndServe(*listen, mux); err != nil {
				logger.Printf("observer server: %v", err)
			}
		}()
	}

	logDir := filepath.Join(*dataDir, "logs")
	for i := 0; i < *runs; i++ {
		runID := uuid.NewString()
		runSeed := *seed + int64(i)
		started := time.Now().UTC().Format(time.RFC3339)

		w, err := runlog.NewWriter(logDir, runID)
		if err != nil {
			logger.Fatalf("open run log: %v", err)
		}

		var floors []rundb.FloorRecord
		res, err := soak.Run(logger, reg, soak.RunConfig{
			RunID:    runID,
			Persona:  *personaName,
			Seed:     runSeed,
			MaxDepth: *maxDepth,
			MaxTurns: *maxTurns,
		}, func(entry runlog.TurnLogEntry) {
			if n := len(floors); n == 0 || floors[n-1].Depth != entry.Depth {
				floors = append(floors, rundb.FloorRecord{Depth: entry.Depth, EnteredTurn: entry.Turn})
			}
			floors[len(floors)-1].ExitedTurn = entry.Turn
			if err := w.Write(entry); err != nil {
				logger.Printf("run log write: %v", err)
			}
			if obs != nil {
				obs.Broadcast(ws.Frame{
					RunID: entry.RunID, Depth: entry.Depth, Turn: entry.Turn,
					X: entry.X, Y: entry.Y, HP: entry.HP,
					State: entry.State, Action: entry.Action.Kind(),
					StopReason: entry.StopReason,
				})
			}
		})
		if cerr := w.Close(); cerr != nil {
			logger.Printf("run log close: %v", cerr)
		}
		if err != nil {
			logger.Fatalf("run %s: %v", runID, err)
		}

		store.RecordRun(rundb.RunRecord{
			RunID:     runID,
			Persona:   *personaName,
			Seed:      runSeed,
			StartedAt: started,
			EndedAt:   time.Now().UTC().Format(time.RFC3339),
			Depth:     res.Depth,
			Turns:     res.Turns,
			Outcome:   res.Outcome,
			FinalHP:   res.FinalHP,
			Floors:    floors,
		})
		logger.Printf("run %d/%d id=%s persona=%s seed=%d outcome=%s depth=%d turns=%d hp=%d",
			i+1, *runs, runID, *personaName, runSeed, res.Outcome, res.Depth, res.Turns, res.FinalHP)
	}

	recent, err := store.Runs(context.Background(), *runs)
	if err == nil {
		died := 0
		for _, r := range recent {
			if r.Outcome == "died" {
				died++
			}
		}
		logger.Printf("done: %d runs, %d deaths", len(recent), died)
	}
}
