// Package rng provides the seeded random streams used by the simulation.
//
// Every component draws from its own stream derived from the run seed and a
// salt, so the sequence one component sees does not depend on how many values
// another component consumed. Runs with the same seed are reproducible.
package rng

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// Source is the randomness needed by the simulation components
type Source interface {
	Float64() float64
	IntN(n int) int
}

// New returns a deterministic stream for (seed, salt)
func New(seed int64, salt string) *rand.Rand {
	// Non-cryptographic PRNG is intentional for deterministic simulation behavior.
	// #nosec G404
	return rand.New(rand.NewPCG(seedWord(seed, salt+":a"), seedWord(seed, salt+":b")))
}

// ForPlant returns the stream of plant id
func ForPlant(seed int64, id int) *rand.Rand {
	return New(seed, fmt.Sprintf("plant-%d", id))
}

// Uniform draws from [lo, hi)
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// Resolve returns seed, or a time-derived seed when seed is 0
func Resolve(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	s := time.Now().UnixNano()
	if s == 0 {
		s = 1
	}
	return s
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}
