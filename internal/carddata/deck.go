package carddata

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeckFile represents the top-level YAML structure.
type DeckFile struct {
	Decks []DeckEntry `yaml:"decks"`
}

// DeckEntry represents a single deck in the YAML file.
type DeckEntry struct {
	Name      string      `yaml:"name"`
	Character string      `yaml:"character"`
	Cards     []CardEntry `yaml:"cards"`
}

// CardEntry represents a card and its count in a deck.
type CardEntry struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

// Size returns the number of cards in the deck, character excluded.
func (d DeckEntry) Size() int {
	n := 0
	for _, ce := range d.Cards {
		n += ce.Count
	}
	return n
}

// ParseDeckFile decodes a YAML deck file.
func ParseDeckFile(raw []byte) (*DeckFile, error) {
	var df DeckFile
	if err := yaml.Unmarshal(raw, &df); err != nil {
		return nil, fmt.Errorf("parse deck YAML: %w", err)
	}
	return &df, nil
}

// LoadDecks reads and decodes the deck file at path.
func LoadDecks(path string) (*DeckFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseDeckFile(raw)
}

// DeckByNumber returns the Nth deck (1-indexed).
func (df *DeckFile) DeckByNumber(n int) (DeckEntry, error) {
	if n < 1 || n > len(df.Decks) {
		return DeckEntry{}, fmt.Errorf("deck %d not found (have %d decks)", n, len(df.Decks))
	}
	return df.Decks[n-1], nil
}

// DeckByName returns the deck called name.
func (df *DeckFile) DeckByName(name string) (DeckEntry, error) {
	for _, d := range df.Decks {
		if d.Name == name {
			return d, nil
		}
	}
	return DeckEntry{}, fmt.Errorf("deck %q not found", name)
}
