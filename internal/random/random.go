package random

import (
	"math/rand"
	"sync"
	"time"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_source.go github.com/KirkDiggler/codered/internal/random Source

// Source provides the randomness behind role assignment and content selection
type Source interface {
	// Intn returns a uniform value in [0, n)
	Intn(n int) int

	// Perm returns a uniform permutation of [0, n)
	Perm(n int) []int
}

// Roller is a Source safe for use from many rooms at once
type Roller struct {
	mu     sync.Mutex
	random *rand.Rand
}

// Config for the roller
type Config struct {
	// Optional seed for testing
	Seed int64
}

// New creates a new roller
func New(cfg *Config) *Roller {
	var seed int64
	if cfg != nil && cfg.Seed != 0 {
		seed = cfg.Seed
	} else {
		seed = time.Now().UnixNano()
	}

	return &Roller{
		random: rand.New(rand.NewSource(seed)),
	}
}

// Intn returns a uniform value in [0, n). n < 1 yields 0.
func (r *Roller) Intn(n int) int {
	if n < 1 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Intn(n)
}

// Perm returns a uniform permutation of [0, n)
func (r *Roller) Perm(n int) []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.random.Perm(n)
}
