package watchers

import (
	"github.com/ufsim/ufsim-server-go/internal/game/card"
	"github.com/ufsim/ufsim-server-go/internal/game/rules"
)

// Metadata keys carried by ZONE_CHANGE events.
const (
	MetaFromZone = "from"
	MetaToZone   = "to"
)

// ChecksWatcher tracks checks attempted and passed by each player this turn.
type ChecksWatcher struct {
	*rules.BaseWatcher
	attempted map[int]int
	passed    map[int]int
}

// NewChecksWatcher creates a new checks watcher.
func NewChecksWatcher() *ChecksWatcher {
	return &ChecksWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.LifetimeTurn, "ChecksWatcher"),
		attempted:   make(map[int]int),
		passed:      make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *ChecksWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCheckResolved || event.PlayerID == 0 {
		return
	}
	w.attempted[event.PlayerID]++
	if event.Flag {
		w.passed[event.PlayerID]++
	}
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *ChecksWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.attempted = make(map[int]int)
	w.passed = make(map[int]int)
}

// Attempted returns the number of checks a player resolved this turn.
func (w *ChecksWatcher) Attempted(playerID int) int {
	return w.attempted[playerID]
}

// Passed returns the number of checks a player passed this turn.
func (w *ChecksWatcher) Passed(playerID int) int {
	return w.passed[playerID]
}

// Failed returns the number of checks a player failed this turn.
func (w *ChecksWatcher) Failed(playerID int) int {
	return w.attempted[playerID] - w.passed[playerID]
}

// CardsPlayedWatcher tracks cards that entered the play area or card pool.
type CardsPlayedWatcher struct {
	*rules.BaseWatcher
	played map[int][]string // playerID -> card ids in play order
}

// NewCardsPlayedWatcher creates a new cards played watcher.
func NewCardsPlayedWatcher() *CardsPlayedWatcher {
	return &CardsPlayedWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.LifetimeTurn, "CardsPlayedWatcher"),
		played:      make(map[int][]string),
	}
}

// Watch implements the Watcher interface.
func (w *CardsPlayedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventZoneChange || event.CardID == "" {
		return
	}
	to := event.Metadata[MetaToZone]
	if to != card.ZonePlayArea.String() && to != card.ZoneCardPool.String() {
		return
	}
	w.played[event.PlayerID] = append(w.played[event.PlayerID], event.CardID)
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsPlayedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.played = make(map[int][]string)
}

// CardsPlayed returns the ids of cards a player put into play this turn.
func (w *CardsPlayedWatcher) CardsPlayed(playerID int) []string {
	return append([]string(nil), w.played[playerID]...)
}

// GetCount returns the number of cards a player put into play this turn.
func (w *CardsPlayedWatcher) GetCount(playerID int) int {
	return len(w.played[playerID])
}

// CardsDrawnWatcher tracks cards drawn by players.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	cardsDrawn map[int]int
}

// NewCardsDrawnWatcher creates a new cards drawn watcher.
func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	return &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.LifetimeTurn, "CardsDrawnWatcher"),
		cardsDrawn:  make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardDrawn || event.PlayerID == 0 {
		return
	}
	w.cardsDrawn[event.PlayerID]++
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *CardsDrawnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.cardsDrawn = make(map[int]int)
}

// GetCount returns the number of cards drawn by a player.
func (w *CardsDrawnWatcher) GetCount(playerID int) int {
	return w.cardsDrawn[playerID]
}

// DamageWatcher totals the damage each player's character has taken over the whole
// game.
type DamageWatcher struct {
	*rules.BaseWatcher
	taken map[int]int
}

// NewDamageWatcher creates a damage watcher.
func NewDamageWatcher() *DamageWatcher {
	return &DamageWatcher{
		BaseWatcher: rules.NewBaseWatcher(rules.LifetimeGame, "DamageWatcher"),
		taken:       make(map[int]int),
	}
}

// Watch implements the Watcher interface.
func (w *DamageWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventDamageDealt || event.PlayerID == 0 {
		return
	}
	w.taken[event.PlayerID] += event.Amount
	w.SetCondition(true)
}

// Reset clears the watcher's state.
func (w *DamageWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.taken = make(map[int]int)
}

// Taken returns the total damage dealt to a player's character.
func (w *DamageWatcher) Taken(playerID int) int {
	return w.taken[playerID]
}
