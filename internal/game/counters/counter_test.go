package counters

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCounterRemoveFloorsAtZero(t *testing.T) {
	c := NewCounter(TypeMomentum, 2)
	c.Remove(5)
	assert.Equal(t, 0, c.Count)

	c.Add(-1)
	assert.Equal(t, 0, c.Count)
	assert.Equal(t, 0, NewCounter(TypeMomentum, -4).Count)
}

func TestCountersSpend(t *testing.T) {
	cs := NewCounters()
	cs.Add(TypeMomentum, 3)

	assert.False(t, cs.Spend(TypeMomentum, 4))
	assert.Equal(t, 3, cs.GetCount(TypeMomentum))

	assert.True(t, cs.Spend(TypeMomentum, 3))
	assert.Equal(t, 0, cs.GetCount(TypeMomentum))
	assert.NotContains(t, cs.Counters, TypeMomentum)
}

func TestCountersGetAllCopies(t *testing.T) {
	cs := NewCounters()
	cs.Add(TypeMomentum, 1)
	all := cs.GetAll()
	all[TypeMomentum].Count = 10
	assert.Equal(t, 1, cs.GetCount(TypeMomentum))

	cs.Clear(TypeMomentum)
	assert.Equal(t, 0, cs.GetCount(TypeMomentum))
}
