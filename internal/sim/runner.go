// Package sim drives a game with a fixed script for both players: play a foundation,
// attempt one check, attack with the first attack in hand and block when the zones
// line up. It exists to exercise the engine end to end, not to play well.
package sim

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ufsim/ufsim-server-go/internal/game"
	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/check"
	"github.com/ufsim/ufsim-server-go/internal/game/rules"
)

// ErrNotStarted is returned by Run for an engine still in setup.
var ErrNotStarted = errors.New("game not started")

// DefaultMaxTurns caps a simulation when the caller does not.
const DefaultMaxTurns = 20

// Stats are per-player totals over the whole game.
type Stats struct {
	ChecksPassed int
	ChecksFailed int
	Attacks      int
	Blocks       int
	DamageTaken  int
}

// Result summarizes a finished simulation.
type Result struct {
	GameID   string
	Turns    int
	Status   game.Status
	Winner   int
	Checksum string
	Stats    map[int]*Stats
}

// Runner plays one engine to completion or the turn cap.
type Runner struct {
	engine   *game.Engine
	logger   *zap.Logger
	maxTurns int
	stats    map[int]*Stats
}

// NewRunner creates a runner for an engine that has already been started.
func NewRunner(engine *game.Engine, maxTurns int, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Runner{
		engine:   engine,
		logger:   logger.With(zap.String("game_id", engine.ID())),
		maxTurns: maxTurns,
		stats:    map[int]*Stats{1: {}, 2: {}},
	}
}

// Run advances phases until the game ends, the turn cap is reached or ctx is done.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	if r.engine.Status() == game.StatusSetup {
		return nil, ErrNotStarted
	}

	handle := r.engine.Subscribe(r.tally)
	defer r.engine.Unsubscribe(handle)

	for r.engine.Status() == game.StatusInProgress {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		state := r.engine.GameState()
		if state.Phase == rules.PhaseEnd && state.TurnNumber >= r.maxTurns {
			r.logger.Info("turn limit reached", zap.Int("max_turns", r.maxTurns))
			break
		}

		var err error
		switch state.Phase {
		case rules.PhaseReady:
			err = r.ready(state.ActivePlayerID)
		case rules.PhaseCombat:
			err = r.combat(state.ActivePlayerID)
		}
		if err != nil {
			return nil, err
		}
		if r.engine.Status() != game.StatusInProgress {
			break
		}

		next, err := r.engine.AdvancePhase()
		if err != nil {
			return nil, fmt.Errorf("advance phase: %w", err)
		}
		r.logger.Debug("phase",
			zap.Int("turn", next.TurnNumber),
			zap.Stringer("phase", next.Phase),
			zap.Int("active_player", next.ActivePlayerID),
		)
	}

	snap := r.engine.Snapshot()
	res := &Result{
		GameID:   r.engine.ID(),
		Turns:    snap.Turn.TurnNumber,
		Status:   snap.Status,
		Winner:   snap.Winner,
		Checksum: snap.Checksum(),
		Stats:    r.stats,
	}
	r.logger.Info("simulation finished",
		zap.Int("turns", res.Turns),
		zap.Stringer("status", res.Status),
		zap.Int("winner", res.Winner),
		zap.String("checksum", res.Checksum),
	)
	return res, nil
}

// ready plays one foundation and attempts a check for the first non-attack card left
// in hand.
func (r *Runner) ready(playerID int) error {
	hand, err := r.engine.Cards(playerID, card.ZoneHand)
	if err != nil {
		return err
	}

	if f := first(hand, func(c *card.Card) bool { return c.Kind() == card.KindFoundation }); f != nil {
		if err := r.tolerate(r.engine.PlayFoundation(playerID, f)); err != nil {
			return err
		}
	}

	hand, err = r.engine.Cards(playerID, card.ZoneHand)
	if err != nil {
		return err
	}
	target := first(hand, func(c *card.Card) bool { return c.Kind() != card.KindAttack })
	if target == nil {
		return nil
	}
	_, err = r.attempt(playerID, target)
	return err
}

// combat declares the first attack in hand and plays it through its check. An attack
// that passes is blocked when the defender holds a card covering its zone and deals
// its damage otherwise.
func (r *Runner) combat(playerID int) (err error) {
	hand, err := r.engine.Cards(playerID, card.ZoneHand)
	if err != nil {
		return err
	}
	atk := first(hand, func(c *card.Card) bool { return c.Kind() == card.KindAttack })
	if atk == nil {
		return nil
	}

	if err := r.tolerate(r.engine.DeclareAttack(playerID, atk)); err != nil {
		return err
	}
	defer r.closeAttack(&err)

	passed, err := r.attempt(playerID, atk)
	if err != nil || !passed {
		return err
	}

	attack, ok := r.engine.CurrentAttack()
	if !ok {
		return nil
	}
	blocked, err := r.block(attack)
	if err != nil || blocked {
		return err
	}

	health, err := r.engine.DealDamage(attack.DefenderID, atk.AttackDamage())
	if err != nil {
		return err
	}
	r.logger.Debug("attack hit",
		zap.Int("attacker", playerID),
		zap.String("card", atk.Name()),
		zap.Int("damage", atk.AttackDamage()),
		zap.Int("defender_health", health),
	)
	return nil
}

func (r *Runner) block(attack game.Attack) (bool, error) {
	hand, err := r.engine.Cards(attack.DefenderID, card.ZoneHand)
	if err != nil {
		return false, err
	}
	zone := attack.Card.AttackZone()
	blocker := first(hand, func(c *card.Card) bool {
		return zone != card.BlockNone && c.BaseBlockZone() == zone
	})
	if blocker == nil {
		return false, nil
	}
	if err := r.engine.DeclareBlock(attack.DefenderID, blocker); err != nil {
		return false, r.tolerate(err)
	}
	return true, nil
}

// attempt runs a check for c, commits foundations when that is enough to pass and
// forfeits otherwise.
func (r *Runner) attempt(playerID int, c *card.Card) (bool, error) {
	outcome, err := r.engine.AttemptCheck(playerID, c)
	if err != nil {
		return false, r.tolerate(err)
	}
	if outcome.Status != check.StatusNeedsCommitment {
		return outcome.Passed(), nil
	}

	if outcome.MinCommit() <= outcome.Available {
		outcome, err = r.engine.CommitToCheck(playerID, outcome.MinCommit())
		if err != nil {
			return false, r.tolerate(err)
		}
		return outcome.Passed(), nil
	}
	return false, r.tolerate(r.engine.ForfeitCheck(playerID))
}

// closeAttack resolves an attack left open by combat. A resolution failure is
// reported through err unless combat already failed.
func (r *Runner) closeAttack(err *error) {
	if _, open := r.engine.CurrentAttack(); !open {
		return
	}
	resolveErr := r.tolerate(r.engine.ResolveAttack())
	if resolveErr == nil {
		return
	}
	if *err != nil {
		r.logger.Warn("resolve attack failed", zap.Error(resolveErr))
		return
	}
	*err = fmt.Errorf("resolve attack: %w", resolveErr)
}

// tolerate swallows rule violations, which the script can run into legitimately.
func (r *Runner) tolerate(err error) error {
	if err == nil || game.IsRuleViolation(err) {
		if err != nil {
			r.logger.Debug("move rejected", zap.Error(err))
		}
		return nil
	}
	return err
}

func (r *Runner) tally(evt rules.Event) {
	s, ok := r.stats[evt.PlayerID]
	if !ok {
		return
	}
	switch evt.Type {
	case rules.EventCheckResolved:
		if evt.CardID == "" {
			return
		}
		if evt.Flag {
			s.ChecksPassed++
		} else {
			s.ChecksFailed++
		}
	case rules.EventAttackDeclared:
		s.Attacks++
	case rules.EventBlockDeclared:
		s.Blocks++
	case rules.EventDamageDealt:
		s.DamageTaken += evt.Amount
	}
}

func first(cards []*card.Card, match func(*card.Card) bool) *card.Card {
	for _, c := range cards {
		if match(c) {
			return c
		}
	}
	return nil
}
