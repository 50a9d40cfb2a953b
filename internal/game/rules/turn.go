package rules

import (
	"fmt"
)

// Phase represents the broad phases of a turn.
type Phase int

const (
	PhaseReview Phase = iota
	PhaseReady
	PhaseCombat
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseReview: "REVIEW",
	PhaseReady:  "READY",
	PhaseCombat: "COMBAT",
	PhaseEnd:    "END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// Step is the display granularity inside a phase. Steps are informational; only
// phase transitions are enforced.
type Step int

const (
	StepReviewStart Step = iota
	StepReviewDiscard
	StepReviewDraw
	StepReadyStart
	StepReadyCards
	StepReadyMain
	StepCombatStart
	StepDeclareAttack
	StepEnhance
	StepBlock
	StepReveal
	StepDamage
	StepCombatEnd
	StepTurnEnd
)

var stepNames = map[Step]string{
	StepReviewStart:   "REVIEW_START",
	StepReviewDiscard: "REVIEW_DISCARD",
	StepReviewDraw:    "REVIEW_DRAW",
	StepReadyStart:    "READY_START",
	StepReadyCards:    "READY_CARDS",
	StepReadyMain:     "READY_MAIN",
	StepCombatStart:   "COMBAT_START",
	StepDeclareAttack: "DECLARE_ATTACK",
	StepEnhance:       "ENHANCE",
	StepBlock:         "BLOCK",
	StepReveal:        "REVEAL",
	StepDamage:        "DAMAGE",
	StepCombatEnd:     "COMBAT_END",
	StepTurnEnd:       "TURN_END",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STEP_%d", int(s))
}

// stepPhases maps every step to the phase it belongs to.
var stepPhases = map[Step]Phase{
	StepReviewStart:   PhaseReview,
	StepReviewDiscard: PhaseReview,
	StepReviewDraw:    PhaseReview,
	StepReadyStart:    PhaseReady,
	StepReadyCards:    PhaseReady,
	StepReadyMain:     PhaseReady,
	StepCombatStart:   PhaseCombat,
	StepDeclareAttack: PhaseCombat,
	StepEnhance:       PhaseCombat,
	StepBlock:         PhaseCombat,
	StepReveal:        PhaseCombat,
	StepDamage:        PhaseCombat,
	StepCombatEnd:     PhaseCombat,
	StepTurnEnd:       PhaseEnd,
}

// PhaseOf returns the phase a step belongs to.
func PhaseOf(s Step) Phase {
	return stepPhases[s]
}

// TurnState is an immutable snapshot of the turn structure.
type TurnState struct {
	Phase          Phase
	Step           Step
	TurnNumber     int
	ActivePlayer   int
	OpponentPlayer int
}

// TurnManager tracks the phase, step, turn counter and which player is active.
type TurnManager struct {
	phase      Phase
	step       Step
	turnNumber int
	active     int
	opponent   int
}

// NewTurnManager creates a turn manager before turn 1. StartTurn begins play.
func NewTurnManager(activePlayer, opponentPlayer int) *TurnManager {
	return &TurnManager{
		phase:    PhaseEnd,
		step:     StepTurnEnd,
		active:   activePlayer,
		opponent: opponentPlayer,
	}
}

// CurrentPhase returns the phase currently in progress.
func (tm *TurnManager) CurrentPhase() Phase {
	return tm.phase
}

// CurrentStep returns the step currently in progress.
func (tm *TurnManager) CurrentStep() Step {
	return tm.step
}

// TurnNumber returns the current turn number, 0 before the first turn.
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the player who currently has the turn.
func (tm *TurnManager) ActivePlayer() int {
	return tm.active
}

// OpponentPlayer returns the player waiting for the turn.
func (tm *TurnManager) OpponentPlayer() int {
	return tm.opponent
}

// State returns a snapshot of the turn structure.
func (tm *TurnManager) State() TurnState {
	return TurnState{
		Phase:          tm.phase,
		Step:           tm.step,
		TurnNumber:     tm.turnNumber,
		ActivePlayer:   tm.active,
		OpponentPlayer: tm.opponent,
	}
}

// SetStep records the step phase processing has reached. Steps outside the current
// phase are ignored.
func (tm *TurnManager) SetStep(step Step) bool {
	if PhaseOf(step) != tm.phase {
		return false
	}
	tm.step = step
	return true
}

// StartTurn increments the turn counter and enters Review.
func (tm *TurnManager) StartTurn() (Phase, Step) {
	tm.turnNumber++
	tm.phase = PhaseReview
	tm.step = StepReviewStart
	return tm.phase, tm.step
}

// EndTurn swaps the active and opponent players and enters End.
func (tm *TurnManager) EndTurn() (Phase, Step) {
	tm.active, tm.opponent = tm.opponent, tm.active
	tm.phase = PhaseEnd
	tm.step = StepTurnEnd
	return tm.phase, tm.step
}

// AdvancePhase moves Review→Ready→Combat, ends the turn from Combat and starts the
// next turn from End. Per-phase processing is the caller's job.
func (tm *TurnManager) AdvancePhase() (Phase, Step) {
	switch tm.phase {
	case PhaseReview:
		tm.phase = PhaseReady
		tm.step = StepReadyStart
	case PhaseReady:
		tm.phase = PhaseCombat
		tm.step = StepCombatStart
	case PhaseCombat:
		return tm.EndTurn()
	default:
		return tm.StartTurn()
	}
	return tm.phase, tm.step
}
