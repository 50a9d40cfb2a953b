package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeed(t *testing.T) {
	_, err := NewSeed()
	require.NoError(t, err)
}

func TestNewRandFixedSeedRepeats(t *testing.T) {
	a := NewRand(7)
	b := NewRand(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Int63(), b.Int63())
	}
}

func TestNewRandZeroSeed(t *testing.T) {
	assert.NotNil(t, NewRand(0))
}
