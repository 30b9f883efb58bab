package dice

// Roller provides an interface for resolving dice notation
// This allows us to inject different implementations for testing
type Roller interface {
	// Roll resolves standard dice notation like "2d6+3"
	Roll(notation string) (*RollResult, error)

	// RollWithAdvantage rolls twice and counts the higher (single d20 only)
	RollWithAdvantage(notation string) (*RollResult, error)

	// RollWithDisadvantage rolls twice and counts the lower (single d20 only)
	RollWithDisadvantage(notation string) (*RollResult, error)
}
