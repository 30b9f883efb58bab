package entities

import (
	"time"

	"github.com/mythgate/dungeonmind/internal/dice"
)

// PlayerType distinguishes who produced a turn record
type PlayerType string

const (
	PlayerTypeHuman     PlayerType = "human"
	PlayerTypeCompanion PlayerType = "companion"
	PlayerTypeNarrator  PlayerType = "narrator"
)

// GameTurn is one atomic event in the session history. Turns are immutable
// once appended; ordering is insertion order.
type GameTurn struct {
	ID         string             `json:"id"`
	PlayerName string             `json:"player_name"`
	PlayerType PlayerType         `json:"player_type"`
	Action     string             `json:"action"`
	Dialogue   string             `json:"dialogue"`
	VoiceID    string             `json:"voice_id,omitempty"`
	AudioFile  string             `json:"audio_file,omitempty"`
	Rolls      []*dice.RollResult `json:"rolls,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}
