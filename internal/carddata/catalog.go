// Package carddata loads printed card records and deck lists from YAML and turns them
// into card instances.
package carddata

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/ufsim/ufsim-server-go/internal/game/card"
)

// ErrUnknownCard is returned when a deck names a card the catalog does not hold.
var ErrUnknownCard = errors.New("unknown card")

// CatalogFile is the top-level YAML structure of a card catalog.
type CatalogFile struct {
	Cards []card.Data `yaml:"cards"`
}

// Catalog indexes printed card records by name.
type Catalog struct {
	records map[string]card.Data
}

// NewCatalog validates records and indexes them by name. Names must be unique.
func NewCatalog(records []card.Data) (*Catalog, error) {
	c := &Catalog{records: make(map[string]card.Data, len(records))}
	for i, data := range records {
		if data.Name == "" {
			return nil, fmt.Errorf("card %d: missing name", i)
		}
		if err := data.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.records[data.Name]; dup {
			return nil, fmt.Errorf("card %q: duplicate name", data.Name)
		}
		c.records[data.Name] = data
	}
	return c, nil
}

// ParseCatalog decodes a YAML catalog.
func ParseCatalog(raw []byte) (*Catalog, error) {
	var cf CatalogFile
	if err := yaml.Unmarshal(raw, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	return NewCatalog(cf.Cards)
}

// LoadCatalog reads and decodes the catalog at path.
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(raw)
}

// Len returns the number of distinct cards.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Names returns every card name in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.records))
	for name := range c.records {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the printed record for name.
func (c *Catalog) Lookup(name string) (card.Data, bool) {
	data, ok := c.records[name]
	return data, ok
}

// Instantiate builds a fresh card instance of name.
func (c *Catalog) Instantiate(name string) (*card.Card, error) {
	data, ok := c.records[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCard, name)
	}
	return card.New(data), nil
}

// BuildDeck instantiates the character and every deck card of entry. Each copy is a
// separate card with its own id.
func (c *Catalog) BuildDeck(entry DeckEntry) (*card.Card, []*card.Card, error) {
	character, err := c.Instantiate(entry.Character)
	if err != nil {
		return nil, nil, fmt.Errorf("deck %q: %w", entry.Name, err)
	}
	if character.Kind() != card.KindCharacter {
		return nil, nil, fmt.Errorf("deck %q: %q is a %s, not a character", entry.Name, entry.Character, character.Kind())
	}

	var cards []*card.Card
	for _, ce := range entry.Cards {
		if ce.Count <= 0 {
			return nil, nil, fmt.Errorf("deck %q: card %q has count %d", entry.Name, ce.Name, ce.Count)
		}
		data, ok := c.records[ce.Name]
		if !ok {
			return nil, nil, fmt.Errorf("deck %q: %w: %q", entry.Name, ErrUnknownCard, ce.Name)
		}
		if data.Kind == card.KindCharacter {
			return nil, nil, fmt.Errorf("deck %q: character %q cannot be a deck card", entry.Name, ce.Name)
		}
		for i := 0; i < ce.Count; i++ {
			cards = append(cards, card.New(data))
		}
	}

	return character, cards, nil
}
