package counters

// Type names a player resource tracked as a counter.
type Type string

const (
	TypeMomentum Type = "momentum"
)

// Counter is a named non-negative amount.
type Counter struct {
	Name  Type
	Count int
}

// NewCounter creates a counter. Negative counts start at 0.
func NewCounter(name Type, count int) *Counter {
	if count < 0 {
		count = 0
	}
	return &Counter{
		Name:  name,
		Count: count,
	}
}

// Add adds amount to the counter. Non-positive amounts are ignored.
func (c *Counter) Add(amount int) {
	if amount > 0 {
		c.Count += amount
	}
}

// Remove removes amount from the counter, never going below 0.
func (c *Counter) Remove(amount int) {
	if amount <= 0 {
		return
	}
	if c.Count >= amount {
		c.Count -= amount
	} else {
		c.Count = 0
	}
}

// Copy creates a copy of the counter.
func (c *Counter) Copy() *Counter {
	return &Counter{
		Name:  c.Name,
		Count: c.Count,
	}
}

// Counters manages a collection of counters keyed by name.
type Counters struct {
	Counters map[Type]*Counter
}

// NewCounters creates an empty collection.
func NewCounters() *Counters {
	return &Counters{
		Counters: make(map[Type]*Counter),
	}
}

// Add adds amount to the named counter, creating it if needed.
func (cs *Counters) Add(name Type, amount int) {
	if amount <= 0 {
		return
	}
	if existing, ok := cs.Counters[name]; ok {
		existing.Add(amount)
		return
	}
	cs.Counters[name] = NewCounter(name, amount)
}

// Spend removes amount from the named counter only if enough is available.
// Returns true if the amount was removed.
func (cs *Counters) Spend(name Type, amount int) bool {
	if amount <= 0 {
		return true
	}
	counter, ok := cs.Counters[name]
	if !ok || counter.Count < amount {
		return false
	}
	counter.Remove(amount)
	if counter.Count == 0 {
		delete(cs.Counters, name)
	}
	return true
}

// Clear drops the named counter.
func (cs *Counters) Clear(name Type) {
	delete(cs.Counters, name)
}

// GetCount returns the count for name, 0 if absent.
func (cs *Counters) GetCount(name Type) int {
	if counter, ok := cs.Counters[name]; ok {
		return counter.Count
	}
	return 0
}

// GetAll returns a copy of every counter.
func (cs *Counters) GetAll() map[Type]*Counter {
	result := make(map[Type]*Counter, len(cs.Counters))
	for name, counter := range cs.Counters {
		result[name] = counter.Copy()
	}
	return result
}
