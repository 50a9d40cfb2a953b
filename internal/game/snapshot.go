package game

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/player"
	"github.com/ufsim/ufsim-server-go/internal/game/rules"
)

// CardSnapshot is a read-only view of one card.
type CardSnapshot struct {
	ID         string
	Name       string
	Kind       card.Kind
	Committed  bool
	Difficulty int
}

// PlayerSnapshot is a read-only view of one player.
type PlayerSnapshot struct {
	ID        int
	Name      string
	Character string
	Health    int
	MaxHealth int
	Momentum  int
	Zones     map[card.Zone][]CardSnapshot
}

// Count returns the number of cards in z.
func (ps PlayerSnapshot) Count(z card.Zone) int {
	return len(ps.Zones[z])
}

// Snapshot is a point-in-time copy of a game.
type Snapshot struct {
	GameID    string
	Status    Status
	Winner    int
	Turn      rules.TurnState
	Players   []PlayerSnapshot
	Timestamp time.Time
}

// Player returns the snapshot of the given player.
func (s *Snapshot) Player(id int) (PlayerSnapshot, bool) {
	for _, ps := range s.Players {
		if ps.ID == id {
			return ps, true
		}
	}
	return PlayerSnapshot{}, false
}

func snapshotCards(cards []*card.Card) []CardSnapshot {
	out := make([]CardSnapshot, len(cards))
	for i, c := range cards {
		out[i] = CardSnapshot{
			ID:         c.ID(),
			Name:       c.Name(),
			Kind:       c.Kind(),
			Committed:  c.IsCommitted(),
			Difficulty: c.Difficulty(),
		}
	}
	return out
}

func snapshotPlayer(p *player.Player) PlayerSnapshot {
	ps := PlayerSnapshot{
		ID:        p.ID,
		Name:      p.Name,
		Health:    p.Health(),
		MaxHealth: p.MaxHealth(),
		Momentum:  p.Momentum(),
		Zones:     make(map[card.Zone][]CardSnapshot, len(card.AllZones)),
	}
	if p.Character != nil {
		ps.Character = p.Character.Name()
	}
	for _, z := range card.AllZones {
		ps.Zones[z] = snapshotCards(p.Zone(z).Cards())
	}
	return ps
}

// Checksum computes a BLAKE2b-256 hash over a deterministic rendering of the snapshot. Card
// and game ids and the timestamp are left out, so two games played from the same seed
// with the same actions produce the same checksum.
func (s *Snapshot) Checksum() string {
	sum := blake2b.Sum256([]byte(s.deterministicRepresentation()))
	return hex.EncodeToString(sum[:])
}

// deterministicRepresentation renders the snapshot in a canonical form. Zone
// contents keep their order since deck and card pool order are game state.
func (s *Snapshot) deterministicRepresentation() string {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%s|%d|%s|%s|%d|%d|%d\n",
		s.Status,
		s.Winner,
		s.Turn.Phase,
		s.Turn.Step,
		s.Turn.TurnNumber,
		s.Turn.ActivePlayer,
		s.Turn.OpponentPlayer,
	)

	for _, ps := range s.Players {
		fmt.Fprintf(&buf, "PLAYER:%d|%s|%s|%d|%d|%d\n",
			ps.ID,
			ps.Name,
			ps.Character,
			ps.Health,
			ps.MaxHealth,
			ps.Momentum,
		)
		for _, z := range card.AllZones {
			fmt.Fprintf(&buf, "  %s:", z)
			for i, c := range ps.Zones[z] {
				if i > 0 {
					buf.WriteString(",")
				}
				fmt.Fprintf(&buf, "%s/%t/%d", c.Name, c.Committed, c.Difficulty)
			}
			buf.WriteString("\n")
		}
	}

	return buf.String()
}
