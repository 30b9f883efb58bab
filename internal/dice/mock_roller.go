package dice

import (
	"fmt"
	"sync"
)

// MockRoller implements Roller for testing with predetermined results
type MockRoller struct {
	mu        sync.Mutex
	rolls     []int
	rollIndex int
}

// NewMockRoller creates a new mock dice roller
func NewMockRoller() *MockRoller {
	return &MockRoller{
		rolls: []int{},
	}
}

// SetNextRoll appends the next roll result
func (m *MockRoller) SetNextRoll(roll int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = append(m.rolls, roll)
}

// SetRolls sets multiple roll results
func (m *MockRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// Reset clears all rolls and resets the index
func (m *MockRoller) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = []int{}
	m.rollIndex = 0
}

// getNextRoll returns the next predetermined roll
func (m *MockRoller) getNextRoll(sides int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rollIndex >= len(m.rolls) {
		return 0, fmt.Errorf("no more predetermined rolls available (used %d of %d)", m.rollIndex, len(m.rolls))
	}

	roll := m.rolls[m.rollIndex]
	if roll < 1 || roll > sides {
		return 0, fmt.Errorf("predetermined roll %d is invalid for a d%d", roll, sides)
	}
	m.rollIndex++
	return roll, nil
}

func (m *MockRoller) resolve(notation string, advantage, disadvantage bool) (*RollResult, error) {
	var dieErr error
	result, err := roll(notation, advantage, disadvantage, func(sides int) int {
		next, nextErr := m.getNextRoll(sides)
		if nextErr != nil && dieErr == nil {
			dieErr = nextErr
		}
		return next
	})
	if err != nil {
		return nil, err
	}
	if dieErr != nil {
		return nil, dieErr
	}
	return result, nil
}

// Roll implements Roller.Roll
func (m *MockRoller) Roll(notation string) (*RollResult, error) {
	return m.resolve(notation, false, false)
}

// RollWithAdvantage implements Roller.RollWithAdvantage
func (m *MockRoller) RollWithAdvantage(notation string) (*RollResult, error) {
	return m.resolve(notation, true, false)
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage
func (m *MockRoller) RollWithDisadvantage(notation string) (*RollResult, error) {
	return m.resolve(notation, false, true)
}
