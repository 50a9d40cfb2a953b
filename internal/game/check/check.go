// Package check resolves checks: a revealed card's check value is compared against a
// required difficulty, and ready foundations can be committed to cover a shortfall.
package check

import (
	"fmt"

	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/player"
	"github.com/ufsim/ufsim-server-go/internal/game/zone"
)

// MeetsDifficulty returns true if total >= difficulty.
func MeetsDifficulty(total, difficulty int) bool {
	return total >= difficulty
}

// Margin is positive on success and negative on failure.
func Margin(total, difficulty int) int {
	return total - difficulty
}

// Status is the state of a single-reveal check.
type Status int

const (
	// StatusPassed means the revealed value met the difficulty.
	StatusPassed Status = iota
	// StatusNeedsCommitment means committing foundations can still pass the check.
	StatusNeedsCommitment
	// StatusFailed means even full commitment cannot reach the difficulty.
	StatusFailed
)

var statusNames = map[Status]string{
	StatusPassed:          "PASSED",
	StatusNeedsCommitment: "NEEDS_COMMITMENT",
	StatusFailed:          "FAILED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_%d", int(s))
}

// Outcome describes a single-reveal check.
type Outcome struct {
	Required  int
	Revealed  int
	Committed int
	Available int
	Status    Status
}

// Evaluate compares a revealed value against required with available uncommitted
// foundations, each worth +1.
func Evaluate(required, revealed, available int) Outcome {
	o := Outcome{
		Required:  required,
		Revealed:  revealed,
		Available: max(available, 0),
	}
	o.Status = o.status()
	return o
}

func (o Outcome) status() Status {
	switch {
	case MeetsDifficulty(o.Total(), o.Required):
		return StatusPassed
	case o.Shortfall() <= o.Available:
		return StatusNeedsCommitment
	default:
		return StatusFailed
	}
}

// Total is the revealed value plus committed foundations.
func (o Outcome) Total() int {
	return o.Revealed + o.Committed
}

// Shortfall is how many more points the check needs, never negative.
func (o Outcome) Shortfall() int {
	return max(0, o.Required-o.Total())
}

// MinCommit is the fewest foundations that must still be committed to pass.
func (o Outcome) MinCommit() int {
	return o.Shortfall()
}

// Passed reports whether the check has passed.
func (o Outcome) Passed() bool {
	return o.Status == StatusPassed
}

// WithCommitted returns the outcome after n more foundations are committed.
func (o Outcome) WithCommitted(n int) Outcome {
	if n <= 0 {
		return o
	}
	n = min(n, o.Available)
	o.Committed += n
	o.Available -= n
	o.Status = o.status()
	return o
}

// Result is the outcome of a batch check.
type Result struct {
	Success  bool
	Total    int
	Revealed []*card.Card
}

// ApplyProgressive sets c's progressive difficulty to the number of cards already in
// pool and returns the required difficulty for c.
func ApplyProgressive(c *card.Card, pool *zone.CardPool) int {
	c.ProgressiveDifficulty = pool.Count()
	return c.Difficulty()
}

// Reveal moves the top card of p's deck to discard and returns it with its check
// value. An empty deck reveals nothing and contributes 0.
func Reveal(p *player.Player) (*card.Card, int) {
	c, ok := p.Deck.Draw()
	if !ok {
		return nil, 0
	}
	c.Zone = card.ZoneDiscard
	p.Discard.Add(c)
	return c, c.Check()
}

// AvailableFoundations counts p's uncommitted foundations in play.
func AvailableFoundations(p *player.Player) int {
	return len(p.PlayArea.UncommittedOfKind(card.KindFoundation))
}

// CommitFoundations commits n of p's uncommitted foundations and returns them. It
// commits nothing and returns nil when fewer than n are available.
func CommitFoundations(p *player.Player, n int) []*card.Card {
	if n <= 0 {
		return nil
	}
	ready := p.PlayArea.UncommittedOfKind(card.KindFoundation)
	if len(ready) < n {
		return nil
	}
	for _, c := range ready[:n] {
		c.Commit()
	}
	return ready[:n]
}

// RevealUntil reveals cards from p's deck into the card pool, summing their check
// values, until the sum reaches difficulty or the deck runs out.
func RevealUntil(p *player.Player, difficulty int) Result {
	var res Result
	for !MeetsDifficulty(res.Total, difficulty) {
		c, ok := p.Deck.Draw()
		if !ok {
			break
		}
		c.Zone = card.ZoneCardPool
		p.CardPool.Add(c)
		res.Total += c.Check()
		res.Revealed = append(res.Revealed, c)
	}
	res.Success = MeetsDifficulty(res.Total, difficulty)
	return res
}

// Mill discards up to n cards from the top of p's deck without a check.
func Mill(p *player.Player, n int) []*card.Card {
	var milled []*card.Card
	for i := 0; i < n; i++ {
		c, ok := p.Deck.Draw()
		if !ok {
			break
		}
		c.Zone = card.ZoneDiscard
		p.Discard.Add(c)
		milled = append(milled, c)
	}
	return milled
}
