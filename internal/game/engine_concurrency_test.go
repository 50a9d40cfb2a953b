package game_test

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/rules"
	"github.com/ufsim/ufsim-server-go/internal/game/watchers"
)

// Run with -race: watchers and listeners must only ever see one delivery at a time.
func TestConcurrentActionsOnOneEngine(t *testing.T) {
	engine, characters := startEngine(t, setup{vitality: 1000})
	damage, ok := engine.Watchers().GetWatcher("DamageWatcher").(*watchers.DamageWatcher)
	require.True(t, ok)

	var (
		delivering atomic.Int32
		overlapped atomic.Bool
		zoneEvents int
		snapshots  int
	)
	engine.Subscribe(func(evt rules.Event) {
		if delivering.Add(1) > 1 {
			overlapped.Store(true)
		}
		defer delivering.Add(-1)

		if evt.Type == rules.EventZoneChange {
			zoneEvents++
		}
		// Listeners may read the engine while events are being delivered.
		if engine.Snapshot() != nil {
			snapshots++
		}
	})

	var milled atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		playerID := i%2 + 1
		g.Go(func() error {
			for j := 0; j < 50; j++ {
				cards, err := engine.Mill(playerID, 1)
				if err != nil {
					return err
				}
				milled.Add(int32(len(cards)))
				if _, err := engine.DealDamage(playerID, 1); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.False(t, overlapped.Load(), "two deliveries ran at once")
	assert.Equal(t, 200, damage.Taken(1))
	assert.Equal(t, 200, damage.Taken(2))
	assert.Equal(t, 800, characters[0].Health())
	assert.Equal(t, 800, characters[1].Health())

	// The opening hand leaves 53 cards in each deck.
	assert.Equal(t, int32(106), milled.Load())
	assert.Equal(t, 106, zoneEvents)
	assert.Equal(t, 106+400, snapshots)
	assert.Equal(t, 0, count(t, engine, 1, card.ZoneDeck))
}

func TestListenerActionIsDeliveredAfterCurrentEvent(t *testing.T) {
	engine, _ := startEngine(t, setup{})

	var seen []rules.EventType
	engine.Subscribe(func(evt rules.Event) {
		seen = append(seen, evt.Type)
		if evt.Type == rules.EventZoneChange {
			_, err := engine.DealDamage(2, 1)
			require.NoError(t, err)
		}
	})

	_, err := engine.Mill(1, 1)
	require.NoError(t, err)
	assert.Equal(t, []rules.EventType{rules.EventZoneChange, rules.EventDamageDealt}, seen)

	_, err = engine.Mill(1, 1)
	require.NoError(t, err)
	assert.Len(t, seen, 4)
}
