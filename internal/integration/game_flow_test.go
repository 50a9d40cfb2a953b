package integration

import (
	"context"
	"testing"

	"golang.org/x/sync/errgroup"

	"github.com/ufsim/ufsim-server-go/internal/game"
	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/rules"
	"github.com/ufsim/ufsim-server-go/internal/sim"
)

func countZone(t *testing.T, engine *game.Engine, playerID int, z card.Zone) int {
	t.Helper()
	cards, err := engine.Cards(playerID, z)
	if err != nil {
		t.Fatalf("Failed to read %s of player %d: %v", z, playerID, err)
	}
	return len(cards)
}

// TestBundledGameFlow walks the bundled decks through one full turn.
func TestBundledGameFlow(t *testing.T) {
	env := newTestEnv(t, 42, 10)
	mgr := game.NewManager(env.logger)
	engine := env.newGame(t, mgr)

	state := engine.GameState()
	if state.Phase != rules.PhaseReview || state.TurnNumber != 1 || state.ActivePlayerID != 1 {
		t.Fatalf("Expected REVIEW turn 1 for player 1, got %+v", state)
	}
	for _, id := range []int{1, 2} {
		if got := countZone(t, engine, id, card.ZoneHand); got != 7 {
			t.Errorf("Player %d: expected 7 cards in hand, got %d", id, got)
		}
		if got := countZone(t, engine, id, card.ZoneDeck); got != 53 {
			t.Errorf("Player %d: expected 53 cards in deck, got %d", id, got)
		}
	}

	// Review → Ready → Combat → End
	for _, want := range []rules.Phase{rules.PhaseReady, rules.PhaseCombat, rules.PhaseEnd} {
		state, err := engine.AdvancePhase()
		if err != nil {
			t.Fatalf("Failed to advance to %s: %v", want, err)
		}
		if state.Phase != want {
			t.Fatalf("Expected %s, got %s", want, state.Phase)
		}
	}
	if state := engine.GameState(); state.ActivePlayerID != 2 {
		t.Fatalf("Expected player 2 active after end of turn, got %d", state.ActivePlayerID)
	}

	// End → Review of turn 2: player 2 discards the opening hand and redraws.
	state, err := engine.AdvancePhase()
	if err != nil {
		t.Fatalf("Failed to start turn 2: %v", err)
	}
	if state.Phase != rules.PhaseReview || state.TurnNumber != 2 {
		t.Fatalf("Expected REVIEW turn 2, got %+v", state)
	}
	if got := countZone(t, engine, 2, card.ZoneHand); got != 7 {
		t.Errorf("Expected player 2 to redraw to 7, got %d", got)
	}
	if got := countZone(t, engine, 2, card.ZoneDiscard); got != 7 {
		t.Errorf("Expected player 2 to discard 7, got %d", got)
	}
	if got := countZone(t, engine, 2, card.ZoneDeck); got != 46 {
		t.Errorf("Expected 46 cards left in player 2's deck, got %d", got)
	}
	if got := countZone(t, engine, 1, card.ZoneHand); got != 7 {
		t.Errorf("Expected player 1's hand untouched, got %d", got)
	}
}

// TestSimulationIsDeterministic runs the same seed twice in separate managers.
func TestSimulationIsDeterministic(t *testing.T) {
	env := newTestEnv(t, 1234, 12)

	var results [2]*sim.Result
	for i := range results {
		engine := env.newGame(t, game.NewManager(env.logger))
		res, err := sim.NewRunner(engine, env.cfg.Game.MaxTurns, env.logger).Run(context.Background())
		if err != nil {
			t.Fatalf("Run %d failed: %v", i, err)
		}
		results[i] = res
	}

	if results[0].Checksum != results[1].Checksum {
		t.Errorf("Expected identical checksums, got %s and %s", results[0].Checksum, results[1].Checksum)
	}
	if results[0].Turns != results[1].Turns || results[0].Winner != results[1].Winner {
		t.Errorf("Expected identical outcomes, got %+v and %+v", results[0], results[1])
	}
	if results[0].GameID == results[1].GameID {
		t.Errorf("Expected distinct game ids")
	}
}

// TestSimulationReplay checks the replay ends on the final state.
func TestSimulationReplay(t *testing.T) {
	env := newTestEnv(t, 7, 8)
	engine := env.newGame(t, game.NewManager(env.logger))

	res, err := sim.NewRunner(engine, env.cfg.Game.MaxTurns, env.logger).Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	replay := engine.Replay()
	if replay.Size() < res.Turns {
		t.Fatalf("Expected at least one recorded state per turn, got %d for %d turns", replay.Size(), res.Turns)
	}
	if last := replay.Last(); last == nil || last.Checksum() != res.Checksum {
		t.Errorf("Expected the last recorded state to match the final checksum")
	}
	if first := replay.GetStateAt(0); first == nil || first.Turn.TurnNumber != 1 || first.Turn.Phase != rules.PhaseReview {
		t.Errorf("Expected the first recorded state to be REVIEW of turn 1")
	}

	if res.Status == game.StatusFinished {
		loser, ok := engine.Snapshot().Player(3 - res.Winner)
		if res.Winner != 0 && (!ok || loser.Health > 0) {
			t.Errorf("Expected player %d to be defeated", 3-res.Winner)
		}
	}
}

// TestConcurrentGames runs several simulations on one manager at once.
func TestConcurrentGames(t *testing.T) {
	const games = 6
	env := newTestEnv(t, 0, 10)
	mgr := game.NewManager(env.logger)

	engines := make([]*game.Engine, games)
	for i := range engines {
		engines[i] = env.newGame(t, mgr)
	}
	if mgr.Len() != games {
		t.Fatalf("Expected %d games, got %d", games, mgr.Len())
	}

	var g errgroup.Group
	for _, engine := range engines {
		g.Go(func() error {
			_, err := sim.NewRunner(engine, env.cfg.Game.MaxTurns, env.logger).Run(context.Background())
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("Simulation failed: %v", err)
	}

	for _, id := range mgr.List() {
		if !mgr.Remove(id) {
			t.Errorf("Failed to remove game %s", id)
		}
	}
	if mgr.Len() != 0 {
		t.Errorf("Expected empty manager, got %d games", mgr.Len())
	}
}
