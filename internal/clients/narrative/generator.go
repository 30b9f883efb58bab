package narrative

//go:generate mockgen -destination=mock/mock_generator.go -package=mocknarrative -source=generator.go

import "context"

// Generator produces narration text from a system prompt and a player-facing
// query. Implementations are safe for concurrent use.
type Generator interface {
	// Generate returns the model's narration for the given prompts
	Generate(ctx context.Context, system, query string) (string, error)
}
