package game

import (
	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/player"
	"github.com/ufsim/ufsim-server-go/internal/game/rules"
)

// Phases binds the turn structure to the two players and runs the per-phase
// processing. Transitions and processing are separate calls: AdvancePhase only moves
// the state, the Process methods carry out what a phase does.
type Phases struct {
	turns   *rules.TurnManager
	players map[int]*player.Player
}

// NewPhases creates the phase machine with first as the starting player.
func NewPhases(first, second *player.Player) *Phases {
	return &Phases{
		turns: rules.NewTurnManager(first.ID, second.ID),
		players: map[int]*player.Player{
			first.ID:  first,
			second.ID: second,
		},
	}
}

// State returns a snapshot of the turn structure.
func (ph *Phases) State() rules.TurnState {
	return ph.turns.State()
}

// ActivePlayer returns the player whose turn it is.
func (ph *Phases) ActivePlayer() *player.Player {
	return ph.players[ph.turns.ActivePlayer()]
}

// OpponentPlayer returns the player waiting for the turn.
func (ph *Phases) OpponentPlayer() *player.Player {
	return ph.players[ph.turns.OpponentPlayer()]
}

// StartTurn increments the turn counter and enters Review.
func (ph *Phases) StartTurn() rules.TurnState {
	ph.turns.StartTurn()
	return ph.turns.State()
}

// AdvancePhase moves to the next phase: Review→Ready→Combat, Combat ends the turn,
// End starts the next one.
func (ph *Phases) AdvancePhase() rules.TurnState {
	ph.turns.AdvancePhase()
	return ph.turns.State()
}

// EndTurn hands the turn to the opponent and enters End.
func (ph *Phases) EndTurn() rules.TurnState {
	ph.turns.EndTurn()
	return ph.turns.State()
}

// SetStep records the display step, ignored outside its phase.
func (ph *Phases) SetStep(step rules.Step) bool {
	return ph.turns.SetStep(step)
}

// ProcessReviewPhase discards the active player's hand and then draws to hand size.
func (ph *Phases) ProcessReviewPhase() (discarded, drawn []*card.Card) {
	p := ph.ActivePlayer()

	ph.turns.SetStep(rules.StepReviewDiscard)
	discarded = p.Hand.Cards()
	p.DiscardHand()

	ph.turns.SetStep(rules.StepReviewDraw)
	drawn = p.DrawToHandSize()
	return discarded, drawn
}

// ProcessReadyPhase readies every card in the active player's play area.
func (ph *Phases) ProcessReadyPhase() []*card.Card {
	p := ph.ActivePlayer()

	ph.turns.SetStep(rules.StepReadyCards)
	readied := p.PlayArea.Committed()
	p.PlayArea.ReadyAll()

	ph.turns.SetStep(rules.StepReadyMain)
	return readied
}
