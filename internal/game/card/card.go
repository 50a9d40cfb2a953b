// Package card models a single card instance: the attributes printed on it and the
// runtime state it picks up while it moves between zones.
package card

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
)

// Data is the flat printed record a card is built from.
type Data struct {
	Name          string    `yaml:"name"`
	Kind          Kind      `yaml:"kind"`
	Check         int       `yaml:"check"`
	Difficulty    int       `yaml:"difficulty"`
	BlockZone     BlockZone `yaml:"block_zone"`
	BlockModifier int       `yaml:"block_modifier"`
	Symbols       []string  `yaml:"symbols"`
	Keywords      []string  `yaml:"keywords"`
	Text          string    `yaml:"text"`
	Unique        bool      `yaml:"unique"`
	Enhance       bool      `yaml:"enhance"`
	Response      bool      `yaml:"response"`
	Form          bool      `yaml:"form"`
	Blitz         bool      `yaml:"blitz"`

	// Character and Backup
	Vitality int `yaml:"vitality"`
	HandSize int `yaml:"hand_size"`

	// Attack
	Speed      int       `yaml:"speed"`
	Damage     int       `yaml:"damage"`
	AttackZone BlockZone `yaml:"attack_zone"`
	Throw      bool      `yaml:"throw"`
	Flash      bool      `yaml:"flash"`
}

// Validate reports whether d can be turned into a card.
func (d Data) Validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("card %q: invalid kind %s", d.Name, d.Kind)
	}
	if d.Vitality < 0 {
		return fmt.Errorf("card %q: negative vitality %d", d.Name, d.Vitality)
	}
	if d.HandSize < 0 {
		return fmt.Errorf("card %q: negative hand size %d", d.Name, d.HandSize)
	}
	return nil
}

type vitals struct {
	max     int
	current int
}

type attack struct {
	activeZones []BlockZone
}

// Card is one physical card in a game. Printed attributes are read through methods and
// never change; the exported fields are runtime state owned by the player's zones.
type Card struct {
	id   string
	data Data

	// Zone is the zone currently holding the card. Player keeps it in sync.
	Zone Zone
	// ControllerID is the controlling player's id, 0 until the deck is assigned.
	ControllerID int
	// ProgressiveDifficulty is the card's position penalty inside a card pool.
	ProgressiveDifficulty int
	// CurrentDifficulty starts at the printed difficulty and may be changed by effects.
	CurrentDifficulty int
	// CurrentBlockZone starts at the printed block zone and may be changed by effects.
	CurrentBlockZone BlockZone

	committed bool
	vitals    *vitals
	attack    *attack
}

// New builds a card instance with a fresh id. It panics when data carries an invalid
// kind, which only happens when a caller skipped Data.Validate.
func New(data Data) *Card {
	if err := data.Validate(); err != nil {
		panic(err)
	}

	data.Symbols = normalizeSet(data.Symbols)
	data.Keywords = normalizeSet(data.Keywords)

	c := &Card{
		id:   uuid.NewString(),
		data: data,
		Zone: ZoneDeck,
	}

	switch data.Kind {
	case KindCharacter, KindBackup:
		c.vitals = &vitals{max: data.Vitality, current: data.Vitality}
	case KindAttack:
		c.attack = &attack{}
	}

	c.Reset()
	return c
}

func normalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := slices.Clone(values)
	slices.Sort(out)
	return slices.Compact(out)
}

// ID returns the instance id, unique per physical card.
func (c *Card) ID() string { return c.id }

// Name returns the printed name.
func (c *Card) Name() string { return c.data.Name }

// Kind returns the printed variant.
func (c *Card) Kind() Kind { return c.data.Kind }

// Data returns a copy of the printed record.
func (c *Card) Data() Data {
	d := c.data
	d.Symbols = slices.Clone(c.data.Symbols)
	d.Keywords = slices.Clone(c.data.Keywords)
	return d
}

// Check returns the printed check value used when the card is revealed.
func (c *Card) Check() int { return c.data.Check }

// BaseDifficulty returns the printed difficulty.
func (c *Card) BaseDifficulty() int { return c.data.Difficulty }

// BaseBlockZone returns the printed block zone.
func (c *Card) BaseBlockZone() BlockZone { return c.data.BlockZone }

// BlockModifier returns the printed block modifier.
func (c *Card) BlockModifier() int { return c.data.BlockModifier }

// Symbols returns the deck-building symbols, sorted.
func (c *Card) Symbols() []string { return slices.Clone(c.data.Symbols) }

// HasSymbol reports whether the card carries symbol.
func (c *Card) HasSymbol(symbol string) bool {
	_, found := slices.BinarySearch(c.data.Symbols, symbol)
	return found
}

// Keywords returns the keyword tags, sorted.
func (c *Card) Keywords() []string { return slices.Clone(c.data.Keywords) }

// HasKeyword reports whether the card carries keyword.
func (c *Card) HasKeyword(keyword string) bool {
	_, found := slices.BinarySearch(c.data.Keywords, keyword)
	return found
}

// Text returns the rules text. It is display-only.
func (c *Card) Text() string { return c.data.Text }

// Unique reports whether a player may control only one copy of the card.
func (c *Card) Unique() bool { return c.data.Unique }

// Enhance reports whether the card carries an enhance ability.
func (c *Card) Enhance() bool { return c.data.Enhance }

// Response reports whether the card carries a response ability.
func (c *Card) Response() bool { return c.data.Response }

// Form reports whether the card carries a form ability.
func (c *Card) Form() bool { return c.data.Form }

// Blitz reports whether the card carries a blitz ability.
func (c *Card) Blitz() bool { return c.data.Blitz }

// Difficulty is the total difficulty: current difficulty plus progressive difficulty.
func (c *Card) Difficulty() int {
	return c.CurrentDifficulty + c.ProgressiveDifficulty
}

// Reset restores every effect-mutable field to its printed default.
func (c *Card) Reset() {
	c.committed = false
	c.ProgressiveDifficulty = 0
	c.CurrentDifficulty = c.data.Difficulty
	c.CurrentBlockZone = c.data.BlockZone
	if c.attack != nil {
		c.attack.activeZones = nil
		if c.data.AttackZone != BlockNone {
			c.attack.activeZones = []BlockZone{c.data.AttackZone}
		}
	}
}

// Commit exhausts the card. Committing a committed card does nothing.
func (c *Card) Commit() { c.committed = true }

// Uncommit readies the card.
func (c *Card) Uncommit() { c.committed = false }

// IsCommitted reports whether the card is exhausted.
func (c *Card) IsCommitted() bool { return c.committed }

func (c *Card) String() string {
	return fmt.Sprintf("%s (%s)", c.data.Name, c.data.Kind)
}
