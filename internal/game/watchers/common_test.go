package watchers

import (
	"testing"

	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/rules"
)

func checkEvent(playerID int, passed bool) rules.Event {
	event := rules.NewEvent(rules.EventCheckResolved, "card1", playerID)
	event.Flag = passed
	return event
}

func zoneEvent(cardID string, playerID int, from, to card.Zone) rules.Event {
	event := rules.NewEvent(rules.EventZoneChange, cardID, playerID)
	event.Metadata[MetaFromZone] = from.String()
	event.Metadata[MetaToZone] = to.String()
	return event
}

func TestChecksWatcher(t *testing.T) {
	watcher := NewChecksWatcher()

	if watcher.ConditionMet() {
		t.Fatal("watcher should not have condition met initially")
	}

	watcher.Watch(checkEvent(1, true))
	watcher.Watch(checkEvent(1, false))
	watcher.Watch(checkEvent(2, true))
	watcher.Watch(rules.NewEvent(rules.EventAttackDeclared, "card2", 1))

	if !watcher.ConditionMet() {
		t.Fatal("watcher should have condition met after a check")
	}
	if watcher.Attempted(1) != 2 || watcher.Passed(1) != 1 || watcher.Failed(1) != 1 {
		t.Fatalf("unexpected counts for player 1: attempted %d passed %d", watcher.Attempted(1), watcher.Passed(1))
	}
	if watcher.Attempted(2) != 1 {
		t.Fatalf("expected 1 check for player 2, got %d", watcher.Attempted(2))
	}

	watcher.Reset()
	if watcher.ConditionMet() || watcher.Attempted(1) != 0 {
		t.Fatal("watcher should be cleared after reset")
	}
}

func TestCardsPlayedWatcher(t *testing.T) {
	watcher := NewCardsPlayedWatcher()

	watcher.Watch(zoneEvent("f1", 1, card.ZoneHand, card.ZonePlayArea))
	watcher.Watch(zoneEvent("a1", 1, card.ZoneStaging, card.ZoneCardPool))
	watcher.Watch(zoneEvent("x1", 1, card.ZoneHand, card.ZoneDiscard))
	watcher.Watch(zoneEvent("f2", 2, card.ZoneHand, card.ZonePlayArea))

	if watcher.GetCount(1) != 2 {
		t.Fatalf("expected 2 cards played by player 1, got %d", watcher.GetCount(1))
	}
	played := watcher.CardsPlayed(1)
	if played[0] != "f1" || played[1] != "a1" {
		t.Fatalf("unexpected play order %v", played)
	}
	if watcher.GetCount(2) != 1 {
		t.Fatalf("expected 1 card played by player 2, got %d", watcher.GetCount(2))
	}

	watcher.Reset()
	if watcher.GetCount(1) != 0 {
		t.Fatal("watcher should be cleared after reset")
	}
}

func TestCardsDrawnWatcher(t *testing.T) {
	watcher := NewCardsDrawnWatcher()

	for i := 0; i < 3; i++ {
		watcher.Watch(rules.NewEvent(rules.EventCardDrawn, "c", 2))
	}
	if watcher.GetCount(2) != 3 {
		t.Fatalf("expected 3 cards drawn, got %d", watcher.GetCount(2))
	}
	if watcher.GetCount(1) != 0 {
		t.Fatalf("expected 0 cards drawn for player 1, got %d", watcher.GetCount(1))
	}
}

func TestWatchersInRegistry(t *testing.T) {
	registry := rules.NewWatcherRegistry()
	checks := NewChecksWatcher()
	registry.AddWatcher(checks)
	registry.AddWatcher(NewCardsPlayedWatcher())

	registry.NotifyWatchers(checkEvent(1, true))
	if checks.Passed(1) != 1 {
		t.Fatalf("expected registry to route event, got %d", checks.Passed(1))
	}

	registry.ResetTurnWatchers()
	if checks.Attempted(1) != 0 {
		t.Fatal("expected registry reset to clear watcher")
	}
}

func TestDamageWatcherLastsTheGame(t *testing.T) {
	registry := rules.NewWatcherRegistry()
	damage := NewDamageWatcher()
	registry.AddWatcher(damage)

	registry.NotifyWatchers(rules.NewEventWithAmount(rules.EventDamageDealt, "ryu", 1, 4))
	registry.ResetTurnWatchers()
	registry.NotifyWatchers(rules.NewEventWithAmount(rules.EventDamageDealt, "ryu", 1, 3))
	registry.NotifyWatchers(rules.NewEventWithAmount(rules.EventCardDrawn, "x", 2, 1))

	if damage.Taken(1) != 7 {
		t.Fatalf("expected 7 damage across turns, got %d", damage.Taken(1))
	}
	if damage.Taken(2) != 0 || damage.Lifetime() != rules.LifetimeGame {
		t.Fatalf("unexpected state: taken %d lifetime %s", damage.Taken(2), damage.Lifetime())
	}
}
