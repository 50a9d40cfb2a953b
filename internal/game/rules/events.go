package rules

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType indicates the category of a rules event.
type EventType string

const (
	// Game/Turn events
	EventGameStarted  EventType = "GAME_STARTED"
	EventTurnStarted  EventType = "TURN_STARTED"
	EventPhaseChanged EventType = "PHASE_CHANGED"
	EventTurnEnded    EventType = "TURN_ENDED"
	EventGameOver     EventType = "GAME_OVER"

	// Zone events
	EventZoneChange EventType = "ZONE_CHANGE"
	EventCardDrawn  EventType = "CARD_DRAWN"

	// Check events
	EventCardRevealed         EventType = "CARD_REVEALED"
	EventCheckResolved        EventType = "CHECK_RESOLVED"
	EventFoundationsCommitted EventType = "FOUNDATIONS_COMMITTED"

	// Combat events
	EventAttackDeclared EventType = "ATTACK_DECLARED"
	EventBlockDeclared  EventType = "BLOCK_DECLARED"
	EventDamageDealt    EventType = "DAMAGE_DEALT"
)

// Event represents a state change that other subsystems may react to.
type Event struct {
	Type        EventType
	ID          string            // Unique event ID
	CardID      string            // Card the event is about, if any
	PlayerID    int               // Player the event is about, 0 if none
	Amount      int               // Numeric value (check total, damage, count)
	Flag        bool              // Boolean outcome (check passed, etc.)
	Turn        int               // Turn number when the event occurred
	Timestamp   time.Time         // When the event occurred
	Metadata    map[string]string // Additional metadata
	Description string            // Human-readable description
}

// Listener defines a callback that reacts to incoming events.
type Listener func(Event)

// subscription is one registered listener. A blank only matches every event type.
type subscription struct {
	handle   int
	only     EventType
	listener Listener
}

// EventBus delivers events synchronously to subscribers in the order they
// subscribed. Listeners run outside the bus lock and may subscribe or unsubscribe
// while an event is being delivered; the change applies from the next Publish.
type EventBus struct {
	mu         sync.RWMutex
	subs       []subscription
	nextHandle int
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{}
}

// Subscribe registers a listener for every event and returns its handle, or -1 for a
// nil listener.
func (bus *EventBus) Subscribe(listener Listener) int {
	return bus.add("", listener)
}

// SubscribeTyped registers a listener for one event type.
func (bus *EventBus) SubscribeTyped(eventType EventType, callback func(Event)) int {
	return bus.add(eventType, callback)
}

func (bus *EventBus) add(only EventType, listener Listener) int {
	if listener == nil {
		return -1
	}
	bus.mu.Lock()
	defer bus.mu.Unlock()
	handle := bus.nextHandle
	bus.nextHandle++
	bus.subs = append(bus.subs, subscription{handle: handle, only: only, listener: listener})
	return handle
}

// Unsubscribe removes the listener identified by handle. Unknown handles are ignored.
func (bus *EventBus) Unsubscribe(handle int) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subs = slices.DeleteFunc(bus.subs, func(s subscription) bool {
		return s.handle == handle
	})
}

// Len returns the number of subscribed listeners.
func (bus *EventBus) Len() int {
	bus.mu.RLock()
	defer bus.mu.RUnlock()
	return len(bus.subs)
}

// Publish delivers event to every matching listener in subscription order.
func (bus *EventBus) Publish(event Event) {
	bus.mu.RLock()
	subs := slices.Clone(bus.subs)
	bus.mu.RUnlock()

	for _, s := range subs {
		if s.only == "" || s.only == event.Type {
			s.listener(event)
		}
	}
}

// NewEvent creates a new event with common fields populated.
func NewEvent(eventType EventType, cardID string, playerID int) Event {
	return Event{
		Type:      eventType,
		ID:        uuid.NewString(),
		CardID:    cardID,
		PlayerID:  playerID,
		Timestamp: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// NewEventWithAmount creates a new event with an amount value.
func NewEventWithAmount(eventType EventType, cardID string, playerID, amount int) Event {
	evt := NewEvent(eventType, cardID, playerID)
	evt.Amount = amount
	return evt
}
