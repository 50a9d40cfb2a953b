package rules

import (
	"fmt"
	"sync"
)

// Lifetime says when a watcher's tracking is cleared.
type Lifetime int

const (
	// LifetimeTurn watchers are cleared at the start of every turn.
	LifetimeTurn Lifetime = iota
	// LifetimeGame watchers keep their state until the game ends.
	LifetimeGame
)

var lifetimeNames = map[Lifetime]string{
	LifetimeTurn: "TURN",
	LifetimeGame: "GAME",
}

func (l Lifetime) String() string {
	if name, ok := lifetimeNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LIFETIME_%d", int(l))
}

// Watcher observes published events and records whether something it cares about
// has happened.
type Watcher interface {
	Watch(event Event)
	Reset()
	ConditionMet() bool
	Lifetime() Lifetime
	Key() string
}

// BaseWatcher holds the bookkeeping shared by every watcher. Embed it and implement
// Watch.
type BaseWatcher struct {
	lifetime  Lifetime
	key       string
	condition bool
}

// NewBaseWatcher creates a base watcher. An empty key is filled in by the registry.
func NewBaseWatcher(lifetime Lifetime, key string) *BaseWatcher {
	return &BaseWatcher{lifetime: lifetime, key: key}
}

// Lifetime returns when the watcher is cleared.
func (bw *BaseWatcher) Lifetime() Lifetime {
	return bw.lifetime
}

// Key returns the registry key.
func (bw *BaseWatcher) Key() string {
	return bw.key
}

// SetKey replaces the registry key.
func (bw *BaseWatcher) SetKey(key string) {
	bw.key = key
}

// ConditionMet reports whether the watched thing happened since the last reset.
func (bw *BaseWatcher) ConditionMet() bool {
	return bw.condition
}

// SetCondition sets the condition flag.
func (bw *BaseWatcher) SetCondition(condition bool) {
	bw.condition = condition
}

// Reset clears the condition flag.
func (bw *BaseWatcher) Reset() {
	bw.condition = false
}

// WatcherRegistry holds a game's watchers. Events reach watchers in registration
// order.
type WatcherRegistry struct {
	mu       sync.RWMutex
	order    []Watcher
	watchers map[string]Watcher
	unnamed  int
}

// NewWatcherRegistry creates an empty registry.
func NewWatcherRegistry() *WatcherRegistry {
	return &WatcherRegistry{watchers: make(map[string]Watcher)}
}

// AddWatcher registers a watcher, replacing any watcher with the same key. A
// watcher without a key gets a generated one if it can store it.
func (wr *WatcherRegistry) AddWatcher(watcher Watcher) {
	if watcher == nil {
		return
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	key := watcher.Key()
	if key == "" {
		wr.unnamed++
		key = fmt.Sprintf("%s_watcher_%d", watcher.Lifetime(), wr.unnamed)
		if setter, ok := watcher.(interface{ SetKey(string) }); ok {
			setter.SetKey(key)
		}
	}

	wr.removeLocked(key)
	wr.watchers[key] = watcher
	wr.order = append(wr.order, watcher)
}

// RemoveWatcher unregisters the watcher stored under key.
func (wr *WatcherRegistry) RemoveWatcher(key string) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	wr.removeLocked(key)
}

func (wr *WatcherRegistry) removeLocked(key string) {
	watcher, ok := wr.watchers[key]
	if !ok {
		return
	}
	delete(wr.watchers, key)
	for i, w := range wr.order {
		if w == watcher {
			wr.order = append(wr.order[:i], wr.order[i+1:]...)
			break
		}
	}
}

// GetWatcher returns the watcher stored under key, or nil.
func (wr *WatcherRegistry) GetWatcher(key string) Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	return wr.watchers[key]
}

// ByLifetime returns the watchers with the given lifetime in registration order.
func (wr *WatcherRegistry) ByLifetime(lifetime Lifetime) []Watcher {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	var out []Watcher
	for _, w := range wr.order {
		if w.Lifetime() == lifetime {
			out = append(out, w)
		}
	}
	return out
}

// Keys returns the registered keys in registration order.
func (wr *WatcherRegistry) Keys() []string {
	wr.mu.RLock()
	defer wr.mu.RUnlock()
	keys := make([]string, len(wr.order))
	for i, w := range wr.order {
		keys[i] = w.Key()
	}
	return keys
}

// ResetTurnWatchers clears every turn-lifetime watcher. Game-lifetime watchers keep
// their state.
func (wr *WatcherRegistry) ResetTurnWatchers() {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	for _, w := range wr.order {
		if w.Lifetime() == LifetimeTurn {
			w.Reset()
		}
	}
}

// NotifyWatchers hands event to every watcher; each filters for what it tracks.
// Watchers update their own state, so delivery holds the write lock.
func (wr *WatcherRegistry) NotifyWatchers(event Event) {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	for _, w := range wr.order {
		w.Watch(event)
	}
}
