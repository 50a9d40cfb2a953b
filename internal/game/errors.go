package game

import "errors"

// Rule violations. Actions that break a game rule return one of these (possibly
// wrapped) and leave the game unchanged.
var (
	ErrWrongPhase              = errors.New("action not allowed in the current phase")
	ErrCardNotInHand           = errors.New("card is not in the player's hand")
	ErrCardNotInPlay           = errors.New("card is not an uncommitted foundation in the player's play area")
	ErrWrongCardKind           = errors.New("card kind cannot be used for this action")
	ErrNoOpenAttack            = errors.New("no attack is open")
	ErrNoPendingCheck          = errors.New("no check is waiting for foundations")
	ErrCheckPending            = errors.New("a check is already waiting for foundations")
	ErrInsufficientFoundations = errors.New("not enough uncommitted foundations")
	ErrGameNotInProgress       = errors.New("game is not in progress")
	ErrUnknownPlayer           = errors.New("unknown player")
)

// Programmer errors. These point at a caller bug rather than a game state.
var (
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrPlayerNotReady     = errors.New("player has no character")
)

var ruleViolations = []error{
	ErrWrongPhase,
	ErrCardNotInHand,
	ErrCardNotInPlay,
	ErrWrongCardKind,
	ErrNoOpenAttack,
	ErrNoPendingCheck,
	ErrCheckPending,
	ErrInsufficientFoundations,
	ErrGameNotInProgress,
	ErrUnknownPlayer,
}

// IsRuleViolation reports whether err is an expected, recoverable rule violation.
func IsRuleViolation(err error) bool {
	for _, target := range ruleViolations {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
