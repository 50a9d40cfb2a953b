// Package player aggregates a character, the seven zones and resource counters of one
// participant. Every zone transition goes through MoveCard so Card.Zone stays in sync.
package player

import (
	"math/rand"

	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/counters"
	"github.com/ufsim/ufsim-server-go/internal/game/zone"
	"github.com/ufsim/ufsim-server-go/internal/random"
)

// Player is one of the two participants.
type Player struct {
	ID        int
	Name      string
	Character *card.Card

	Deck     *zone.Deck
	Hand     *zone.Hand
	Discard  *zone.Discard
	CardPool *zone.CardPool
	Staging  *zone.StagingArea
	PlayArea *zone.PlayArea
	Removed  *zone.Removed

	Counters *counters.Counters

	rng *rand.Rand
}

// New creates a player with empty zones. A nil rng gets a crypto-seeded generator.
func New(id int, name string, rng *rand.Rand) *Player {
	if rng == nil {
		rng = random.NewRand(0)
	}
	return &Player{
		ID:       id,
		Name:     name,
		Deck:     zone.NewDeck(),
		Hand:     zone.NewHand(),
		Discard:  zone.NewDiscard(),
		CardPool: zone.NewCardPool(),
		Staging:  zone.NewStagingArea(),
		PlayArea: zone.NewPlayArea(),
		Removed:  zone.NewRemoved(),
		Counters: counters.NewCounters(),
		rng:      rng,
	}
}

// Zone returns the container for z.
func (p *Player) Zone(z card.Zone) zone.Zone {
	switch z {
	case card.ZoneDeck:
		return p.Deck
	case card.ZoneHand:
		return p.Hand
	case card.ZoneDiscard:
		return p.Discard
	case card.ZoneCardPool:
		return p.CardPool
	case card.ZoneStaging:
		return p.Staging
	case card.ZonePlayArea:
		return p.PlayArea
	case card.ZoneRemoved:
		return p.Removed
	default:
		return nil
	}
}

// Owns reports whether c is held in the zone its Zone field names.
func (p *Player) Owns(c *card.Card) bool {
	if c == nil {
		return false
	}
	z := p.Zone(c.Zone)
	return z != nil && z.Contains(c)
}

// MoveCard removes c from its current zone and adds it to the destination.
// It returns false, changing nothing, when c is not where its Zone field says.
func (p *Player) MoveCard(c *card.Card, to card.Zone) bool {
	dest := p.Zone(to)
	if dest == nil || !p.Owns(c) {
		return false
	}
	p.Zone(c.Zone).Remove(c)
	dest.Add(c)
	c.Zone = to
	return true
}

// SetCharacter installs the character card.
func (p *Player) SetCharacter(c *card.Card) {
	if c != nil {
		c.ControllerID = p.ID
	}
	p.Character = c
}

// SetupGame assigns every card to this player, puts them in the deck and shuffles.
// It is called once before the game starts.
func (p *Player) SetupGame(deck []*card.Card) {
	for _, c := range deck {
		c.ControllerID = p.ID
		c.Zone = card.ZoneDeck
		p.Deck.Add(c)
	}
	p.Deck.Shuffle(p.rng)
	p.Counters.Clear(counters.TypeMomentum)
}

// DrawCards draws up to n cards into hand and returns them. It stops quietly when
// the deck runs out.
func (p *Player) DrawCards(n int) []*card.Card {
	var drawn []*card.Card
	for i := 0; i < n; i++ {
		c, ok := p.Deck.Draw()
		if !ok {
			break
		}
		c.Zone = card.ZoneHand
		p.Hand.Add(c)
		drawn = append(drawn, c)
	}
	return drawn
}

// DrawToHandSize tops the hand up to the character's hand size. It never discards.
func (p *Player) DrawToHandSize() []*card.Card {
	return p.DrawCards(max(0, p.HandSize()-p.Hand.Count()))
}

// DiscardHand moves every card in hand onto the discard pile.
func (p *Player) DiscardHand() {
	for _, c := range p.Hand.Cards() {
		p.MoveCard(c, card.ZoneDiscard)
	}
}

// ShuffleDiscardIntoDeck puts the discard pile under the deck, in discard order,
// then shuffles the deck.
func (p *Player) ShuffleDiscardIntoDeck() {
	for _, c := range p.Discard.Cards() {
		p.Discard.Remove(c)
		c.Zone = card.ZoneDeck
		p.Deck.AddBottom(c)
	}
	p.Deck.Shuffle(p.rng)
}

// Health returns the character's health, 0 without a character.
func (p *Player) Health() int {
	if p.Character == nil {
		return 0
	}
	return p.Character.Health()
}

// MaxHealth returns the character's maximum health, 0 without a character.
func (p *Player) MaxHealth() int {
	if p.Character == nil {
		return 0
	}
	return p.Character.MaxHealth()
}

// HandSize returns the character's hand size, 0 without a character.
func (p *Player) HandSize() int {
	if p.Character == nil {
		return 0
	}
	return p.Character.HandSize()
}

// IsDefeated reports whether the character has no health left.
func (p *Player) IsDefeated() bool {
	return p.Character != nil && p.Character.IsDefeated()
}

// Momentum returns the momentum counter.
func (p *Player) Momentum() int {
	return p.Counters.GetCount(counters.TypeMomentum)
}

// GainMomentum adds momentum.
func (p *Player) GainMomentum(amount int) {
	p.Counters.Add(counters.TypeMomentum, amount)
}

// SpendMomentum removes momentum if enough is available.
func (p *Player) SpendMomentum(amount int) bool {
	return p.Counters.Spend(counters.TypeMomentum, amount)
}
