// Package soak drives complete automated runs: decide, apply, log,
// repeat until the bot dies, aborts or hits a cap. The same loop backs
// the soak binary, the replay verifier and the end-to-end tests.
package soak

import (
	"fmt"
	"log"
	"math/rand"

	"github.com/RafeHatfield/yarl-sub007/internal/bot/brain"
	"github.com/RafeHatfield/yarl-sub007/internal/bot/persona"
	"github.com/RafeHatfield/yarl-sub007/internal/game"
	"github.com/RafeHatfield/yarl-sub007/internal/persistence/runlog"
	"github.com/RafeHatfield/yarl-sub007/internal/protocol"
)

type RunConfig struct {
	RunID   string
	Persona string
	Seed    int64

	// MaxDepth ends the run successfully once the bot descends past it.
	MaxDepth int
	// MaxTurns is the hard cap against pathological loops.
	MaxTurns uint64
}

type Result struct {
	Outcome string // "died", "aborted", "depth_cap", "turn_cap"
	Depth   int
	Turns   uint64
	FinalHP int
}

// Run plays one automated run to completion. onTurn, when non-nil,
// receives every turn's log entry in order; it is the hook the harness
// uses for run logs and observer frames.
func Run(logger *log.Logger, reg *persona.Registry, cfg RunConfig, onTurn func(runlog.TurnLogEntry)) (Result, error) {
	if cfg.MaxTurns == 0 {
		cfg.MaxTurns = 5000
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = 10
	}

	w := game.NewWorld(cfg.Seed, logger)
	// The decision rng is seeded alongside the world so a replay with the
	// same seed reproduces the run bit for bit.
	rng := rand.New(rand.NewSource(cfg.Seed))
	b, err := brain.New(logger, rng, reg, cfg.Persona)
	if err != nil {
		return Result{}, fmt.Errorf("brain: %w", err)
	}

	var res Result
	for {
		if w.Turn() >= cfg.MaxTurns {
			res.Outcome = "turn_cap"
			break
		}

		act := b.Decide(w.Map(), w.Entities(), w.Vis(), w.Player())

		if act.BotAbortRun {
			res.Outcome = "aborted"
			emit(onTurn, cfg, w, b, act)
			break
		}
		if act.StartAutoExplore {
			quote := b.Explorer().Start(w.Map(), w.Entities(), w.Vis(), w.Player())
			if logger != nil {
				logger.Printf("auto-explore: %s", quote)
			}
			// Starting costs the turn; movement begins next tick.
			act = protocol.Noop()
		} else if act.IsNoop() && b.Explorer().IsActive() {
			if step := b.Explorer().NextAction(w.Map(), w.Entities(), w.Vis(), w.Player()); step != nil {
				act = step
			}
		}

		w.Apply(act)
		emit(onTurn, cfg, w, b, act)

		if w.Over() {
			res.Outcome = "died"
			break
		}
		if w.Depth() > cfg.MaxDepth {
			res.Outcome = "depth_cap"
			break
		}
	}

	res.Depth = w.Depth()
	res.Turns = w.Turn()
	res.FinalHP = w.Player().Fighter().HP
	return res, nil
}

func emit(onTurn func(runlog.TurnLogEntry), cfg RunConfig, w *game.World, b *brain.Brain, act *protocol.Action) {
	if onTurn == nil {
		return
	}
	onTurn(runlog.TurnLogEntry{
		RunID:      cfg.RunID,
		Depth:      w.Depth(),
		Turn:       w.Turn(),
		State:      b.State().String(),
		Action:     act,
		X:          w.Player().X,
		Y:          w.Player().Y,
		HP:         w.Player().Fighter().HP,
		StopReason: b.Explorer().StopReason(),
		Digest:     w.Digest(),
	})
}
