// Package zone provides the card containers a player owns. Containers only hold
// cards; keeping Card.Zone in sync is the player's job.
package zone

import (
	"math/rand"
	"slices"

	"github.com/ufsim/ufsim-server-go/internal/game/card"
)

// Zone is the behaviour shared by every container.
type Zone interface {
	Type() card.Zone
	Add(c *card.Card)
	Remove(c *card.Card) bool
	Contains(c *card.Card) bool
	Count() int
	IsEmpty() bool
	Cards() []*card.Card
}

// pile is an ordered slice of cards without duplicates. Index 0 is the bottom.
type pile struct {
	cards []*card.Card
}

func (p *pile) index(c *card.Card) int {
	if c == nil {
		return -1
	}
	for i, existing := range p.cards {
		if existing.ID() == c.ID() {
			return i
		}
	}
	return -1
}

// Add appends c unless it is already present.
func (p *pile) Add(c *card.Card) {
	if c == nil || p.index(c) >= 0 {
		return
	}
	p.cards = append(p.cards, c)
}

// Remove takes c out and reports whether it was present.
func (p *pile) Remove(c *card.Card) bool {
	i := p.index(c)
	if i < 0 {
		return false
	}
	p.cards = slices.Delete(p.cards, i, i+1)
	return true
}

func (p *pile) Contains(c *card.Card) bool { return p.index(c) >= 0 }
func (p *pile) Count() int                 { return len(p.cards) }
func (p *pile) IsEmpty() bool              { return len(p.cards) == 0 }

// Cards returns a copy of the contents, bottom first.
func (p *pile) Cards() []*card.Card { return slices.Clone(p.cards) }

// Deck is an ordered draw pile. The last element is the top card.
type Deck struct{ pile }

func NewDeck() *Deck { return &Deck{} }

func (d *Deck) Type() card.Zone { return card.ZoneDeck }

// AddTop puts c on top of the deck. Add is an alias.
func (d *Deck) AddTop(c *card.Card) { d.Add(c) }

// AddBottom puts c under every other card.
func (d *Deck) AddBottom(c *card.Card) {
	if c == nil || d.index(c) >= 0 {
		return
	}
	d.cards = slices.Insert(d.cards, 0, c)
}

// Draw removes and returns the top card. ok is false when the deck is empty.
func (d *Deck) Draw() (c *card.Card, ok bool) {
	if len(d.cards) == 0 {
		return nil, false
	}
	top := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return top, true
}

// Peek returns the top card without removing it.
func (d *Deck) Peek() (*card.Card, bool) {
	if len(d.cards) == 0 {
		return nil, false
	}
	return d.cards[len(d.cards)-1], true
}

// Shuffle permutes the remaining cards in place with a Fisher-Yates shuffle.
func (d *Deck) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Hand holds the cards a player can play.
type Hand struct{ pile }

func NewHand() *Hand { return &Hand{} }

func (h *Hand) Type() card.Zone { return card.ZoneHand }

// Discard is a stack; Add pushes onto the top.
type Discard struct{ pile }

func NewDiscard() *Discard { return &Discard{} }

func (d *Discard) Type() card.Zone { return card.ZoneDiscard }

// Top returns the most recently discarded card.
func (d *Discard) Top() (*card.Card, bool) {
	if len(d.cards) == 0 {
		return nil, false
	}
	return d.cards[len(d.cards)-1], true
}

// CardPool records cards in the order they were placed.
type CardPool struct{ pile }

func NewCardPool() *CardPool { return &CardPool{} }

func (p *CardPool) Type() card.Zone { return card.ZoneCardPool }

// TotalCheck sums the printed check value of every card in the pool.
func (p *CardPool) TotalCheck() int {
	total := 0
	for _, c := range p.cards {
		total += c.Check()
	}
	return total
}

// Position returns the zero-based placement index of c, or -1.
func (p *CardPool) Position(c *card.Card) int { return p.index(c) }

// StagingArea holds cards that are mid-resolution.
type StagingArea struct{ pile }

func NewStagingArea() *StagingArea { return &StagingArea{} }

func (s *StagingArea) Type() card.Zone { return card.ZoneStaging }

// Removed holds cards taken out of the game.
type Removed struct{ pile }

func NewRemoved() *Removed { return &Removed{} }

func (r *Removed) Type() card.Zone { return card.ZoneRemoved }
