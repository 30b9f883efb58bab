// uuid simple generator that allows mocking
package uuid

import (
	"github.com/google/uuid"
)

// Generator is an interface for generating unique identifiers
type Generator interface {
	New() string
}

// GoogleUUIDGenerator implements the Generator interface using Google's UUID package
type GoogleUUIDGenerator struct{}

// New generates a new UUID string
func (g *GoogleUUIDGenerator) New() string {
	return uuid.New().String()
}

// NewGoogleUUIDGenerator creates a new GoogleUUIDGenerator
func NewGoogleUUIDGenerator() *GoogleUUIDGenerator {
	return &GoogleUUIDGenerator{}
}

// ShortIDGenerator generates compact 8-character identifiers for sessions
// and turns, where full UUIDs would be unwieldy in player-facing output.
type ShortIDGenerator struct{}

// New generates a new short ID string
func (g *ShortIDGenerator) New() string {
	return uuid.New().String()[:8]
}

// NewShortIDGenerator creates a new ShortIDGenerator
func NewShortIDGenerator() *ShortIDGenerator {
	return &ShortIDGenerator{}
}
