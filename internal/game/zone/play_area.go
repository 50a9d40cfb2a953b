package zone

import "github.com/ufsim/ufsim-server-go/internal/game/card"

// PlayArea holds foundations and assets in play.
type PlayArea struct{ pile }

func NewPlayArea() *PlayArea { return &PlayArea{} }

func (a *PlayArea) Type() card.Zone { return card.ZonePlayArea }

// Committed returns the exhausted cards.
func (a *PlayArea) Committed() []*card.Card {
	return a.filter(func(c *card.Card) bool { return c.IsCommitted() })
}

// Uncommitted returns the ready cards.
func (a *PlayArea) Uncommitted() []*card.Card {
	return a.filter(func(c *card.Card) bool { return !c.IsCommitted() })
}

// UncommittedOfKind returns the ready cards of the given variant.
func (a *PlayArea) UncommittedOfKind(kind card.Kind) []*card.Card {
	return a.filter(func(c *card.Card) bool { return !c.IsCommitted() && c.Kind() == kind })
}

// ReadyAll resets every card in the area. It is the only bulk reset and runs at the
// start of each Ready phase.
func (a *PlayArea) ReadyAll() {
	for _, c := range a.cards {
		c.Reset()
	}
}

func (a *PlayArea) filter(keep func(*card.Card) bool) []*card.Card {
	var out []*card.Card
	for _, c := range a.cards {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}
