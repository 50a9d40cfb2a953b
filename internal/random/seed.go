// Package random builds the seeded generators used for deck shuffles.
//
// Games take a *rand.Rand instead of using the global source so a fixed seed
// reproduces the same shuffles.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// NewRand returns a generator for seed. A zero seed draws one from crypto/rand and
// falls back to the clock if that fails.
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		var err error
		if seed, err = NewSeed(); err != nil {
			seed = time.Now().UnixNano()
		}
	}
	return rand.New(rand.NewSource(seed))
}
