package voice

import "context"

// Synthesizer converts a line of dialogue into an audio file and returns the
// file path. Voice IDs identify the speaker profile used for the line.
type Synthesizer interface {
	Synthesize(ctx context.Context, voiceID, text string) (string, error)
}

// disabled is a no-op synthesizer used when voice mode is off or no speech
// backend is configured. It never fails and produces no audio.
type disabled struct{}

// NewDisabled creates a synthesizer that skips audio generation
func NewDisabled() Synthesizer {
	return disabled{}
}

func (disabled) Synthesize(ctx context.Context, voiceID, text string) (string, error) {
	return "", nil
}
