package generator

import (
	"math/rand/v2"
	"sync"
)

// Random is the source of randomness for synthetic telemetry.
type Random interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

type lockedRandom struct {
	mu  sync.Mutex
	src *rand.Rand
}

// NewRandom returns a goroutine-safe PCG source. Equal seeds produce equal
// sequences.
func NewRandom(seed uint64) Random {
	return &lockedRandom{src: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.Float64()
}

func (r *lockedRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.src.IntN(n)
}
