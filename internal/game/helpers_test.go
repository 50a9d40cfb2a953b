package game_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ufsim/ufsim-server-go/internal/game"
	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/rules"
)

func newCharacter(handSize, vitality int) *card.Card {
	return card.New(card.Data{
		Name:     "Test Character",
		Kind:     card.KindCharacter,
		HandSize: handSize,
		Vitality: vitality,
	})
}

// standardDeck is 40 foundations with check values 2-5 and 20 attacks.
func standardDeck() []*card.Card {
	deck := make([]*card.Card, 0, 60)
	for i := 0; i < 40; i++ {
		deck = append(deck, card.New(card.Data{Name: "Foundation", Kind: card.KindFoundation, Check: 2 + i%4}))
	}
	for i := 0; i < 20; i++ {
		deck = append(deck, card.New(card.Data{Name: "Strike", Kind: card.KindAttack, Check: 3, Difficulty: 4, Speed: 4, Damage: 3, AttackZone: card.BlockMid}))
	}
	return deck
}

// flatDeck holds foundations and difficulty-4 attacks that all reveal for check 5.
func flatDeck(foundations, attacks int) []*card.Card {
	deck := make([]*card.Card, 0, foundations+attacks)
	for i := 0; i < foundations; i++ {
		deck = append(deck, card.New(card.Data{Name: "Foundation", Kind: card.KindFoundation, Check: 5}))
	}
	for i := 0; i < attacks; i++ {
		deck = append(deck, card.New(card.Data{Name: "Strike", Kind: card.KindAttack, Check: 5, Difficulty: 4, Damage: 2, BlockZone: card.BlockMid}))
	}
	return deck
}

type setup struct {
	opts     game.Options
	handSize int
	vitality int
	deck     func() []*card.Card
}

func startEngine(t *testing.T, s setup) (*game.Engine, [2]*card.Card) {
	t.Helper()

	if s.opts.Seed == 0 {
		s.opts.Seed = 42
	}
	if s.handSize == 0 {
		s.handSize = 7
	}
	if s.vitality == 0 {
		s.vitality = 20
	}
	if s.deck == nil {
		s.deck = standardDeck
	}

	engine := game.NewEngine(zaptest.NewLogger(t), s.opts)
	var characters [2]*card.Card
	for i, id := range []int{1, 2} {
		characters[i] = newCharacter(s.handSize, s.vitality)
		require.NoError(t, engine.SetupPlayer(id, characters[i], s.deck()))
	}
	require.NoError(t, engine.StartGame())
	return engine, characters
}

func advanceTo(t *testing.T, engine *game.Engine, phase rules.Phase) game.GameState {
	t.Helper()
	for i := 0; i < 8; i++ {
		state := engine.GameState()
		if state.Phase == phase {
			return state
		}
		_, err := engine.AdvancePhase()
		require.NoError(t, err)
	}
	t.Fatalf("never reached phase %s", phase)
	return game.GameState{}
}

func cardsOfKind(t *testing.T, engine *game.Engine, playerID int, z card.Zone, kind card.Kind) []*card.Card {
	t.Helper()
	cards, err := engine.Cards(playerID, z)
	require.NoError(t, err)
	var out []*card.Card
	for _, c := range cards {
		if c.Kind() == kind {
			out = append(out, c)
		}
	}
	return out
}

func playFoundations(t *testing.T, engine *game.Engine, playerID, n int) []*card.Card {
	t.Helper()
	hand := cardsOfKind(t, engine, playerID, card.ZoneHand, card.KindFoundation)
	require.GreaterOrEqual(t, len(hand), n)
	for _, c := range hand[:n] {
		require.NoError(t, engine.PlayFoundation(playerID, c))
	}
	return hand[:n]
}

func count(t *testing.T, engine *game.Engine, playerID int, z card.Zone) int {
	t.Helper()
	cards, err := engine.Cards(playerID, z)
	require.NoError(t, err)
	return len(cards)
}
