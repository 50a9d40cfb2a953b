package zone

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ufsim/ufsim-server-go/internal/game/card"
)

func foundation(check int) *card.Card {
	return card.New(card.Data{Name: "Foundation", Kind: card.KindFoundation, Check: check, Difficulty: 1})
}

func ids(cards []*card.Card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID()
	}
	return out
}

func TestZonesImplementInterface(t *testing.T) {
	zones := []Zone{NewDeck(), NewHand(), NewDiscard(), NewCardPool(), NewStagingArea(), NewPlayArea(), NewRemoved()}
	for i, z := range zones {
		assert.Equal(t, card.AllZones[i], z.Type())
	}
}

func TestAddIgnoresDuplicates(t *testing.T) {
	h := NewHand()
	c := foundation(3)
	h.Add(c)
	h.Add(c)
	assert.Equal(t, 1, h.Count())
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	h := NewHand()
	a, b := foundation(1), foundation(2)
	h.Add(a)

	assert.False(t, h.Remove(b))
	assert.Equal(t, 1, h.Count())
	assert.True(t, h.Remove(a))
	assert.True(t, h.IsEmpty())
	assert.False(t, h.Contains(a))
}

func TestCardsIsDefensiveCopy(t *testing.T) {
	h := NewHand()
	h.Add(foundation(1))
	cards := h.Cards()
	cards[0] = nil
	assert.NotNil(t, h.Cards()[0])
}

func TestDeckDrawOrder(t *testing.T) {
	d := NewDeck()
	bottom, middle, top := foundation(1), foundation(2), foundation(3)
	d.AddTop(middle)
	d.AddTop(top)
	d.AddBottom(bottom)

	peek, ok := d.Peek()
	require.True(t, ok)
	assert.Same(t, top, peek)

	for _, want := range []*card.Card{top, middle, bottom} {
		got, ok := d.Draw()
		require.True(t, ok)
		assert.Same(t, want, got)
	}

	got, ok := d.Draw()
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestDeckShuffleIsPermutation(t *testing.T) {
	for _, size := range []int{0, 1, 2, 10, 60} {
		d := NewDeck()
		for i := 0; i < size; i++ {
			d.Add(foundation(i % 5))
		}
		before := ids(d.Cards())
		sort.Strings(before)

		d.Shuffle(rand.New(rand.NewSource(int64(size))))

		after := ids(d.Cards())
		sort.Strings(after)
		assert.Equal(t, before, after, "size %d", size)
		assert.Equal(t, size, d.Count())
	}
}

func TestDeckShuffleIsDeterministicForSeed(t *testing.T) {
	cards := make([]*card.Card, 20)
	for i := range cards {
		cards[i] = foundation(i)
	}
	build := func() *Deck {
		d := NewDeck()
		for _, c := range cards {
			d.Add(c)
		}
		return d
	}

	a, b := build(), build()
	a.Shuffle(rand.New(rand.NewSource(42)))
	b.Shuffle(rand.New(rand.NewSource(42)))
	assert.Equal(t, ids(a.Cards()), ids(b.Cards()))
}

func TestDiscardTop(t *testing.T) {
	d := NewDiscard()
	_, ok := d.Top()
	assert.False(t, ok)

	first, second := foundation(1), foundation(2)
	d.Add(first)
	d.Add(second)
	top, ok := d.Top()
	require.True(t, ok)
	assert.Same(t, second, top)
}

func TestCardPoolTotalsCheckNotDifficulty(t *testing.T) {
	p := NewCardPool()
	a := card.New(card.Data{Name: "A", Kind: card.KindAttack, Check: 3, Difficulty: 6})
	b := card.New(card.Data{Name: "B", Kind: card.KindAction, Check: 4, Difficulty: 2})
	p.Add(a)
	p.Add(b)
	b.ProgressiveDifficulty = 1

	assert.Equal(t, 7, p.TotalCheck())
	assert.Equal(t, 0, p.Position(a))
	assert.Equal(t, 1, p.Position(b))
	assert.Equal(t, -1, p.Position(foundation(1)))
}

func TestPlayAreaReadyAll(t *testing.T) {
	a := NewPlayArea()
	cards := []*card.Card{foundation(2), foundation(3), foundation(4)}
	for i, c := range cards {
		a.Add(c)
		c.ProgressiveDifficulty = i + 1
		c.CurrentDifficulty = 9
	}
	cards[0].Commit()
	cards[2].Commit()

	assert.Len(t, a.Committed(), 2)
	assert.Len(t, a.Uncommitted(), 1)

	a.ReadyAll()

	assert.Empty(t, a.Committed())
	for _, c := range cards {
		assert.False(t, c.IsCommitted())
		assert.Equal(t, 0, c.ProgressiveDifficulty)
		assert.Equal(t, c.BaseDifficulty(), c.CurrentDifficulty)
	}
}

func TestPlayAreaUncommittedOfKind(t *testing.T) {
	a := NewPlayArea()
	f := foundation(2)
	asset := card.New(card.Data{Name: "Dojo", Kind: card.KindAsset})
	a.Add(f)
	a.Add(asset)

	got := a.UncommittedOfKind(card.KindFoundation)
	require.Len(t, got, 1)
	assert.Same(t, f, got[0])
}
