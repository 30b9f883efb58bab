package dice

import (
	"math/rand"
	"sync"
)

// randomRoller implements Roller over a math/rand source
type randomRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomRoller creates a dice roller backed by the shared math/rand source
func NewRandomRoller() Roller {
	return &randomRoller{}
}

// NewSeededRoller creates a dice roller with its own deterministic source.
// Intended for tests that need reproducible sequences.
func NewSeededRoller(seed int64) Roller {
	return &randomRoller{rng: rand.New(rand.NewSource(seed))}
}

func (r *randomRoller) die(sides int) int {
	if r.rng == nil {
		// The global source is already safe for concurrent use.
		return rand.Intn(sides) + 1
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(sides) + 1
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(notation string) (*RollResult, error) {
	return roll(notation, false, false, r.die)
}

// RollWithAdvantage implements Roller.RollWithAdvantage
func (r *randomRoller) RollWithAdvantage(notation string) (*RollResult, error) {
	return roll(notation, true, false, r.die)
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage
func (r *randomRoller) RollWithDisadvantage(notation string) (*RollResult, error) {
	return roll(notation, false, true, r.die)
}
