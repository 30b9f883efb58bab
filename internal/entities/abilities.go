package entities

import (
	"math"

	"github.com/mythgate/dungeonmind/internal/dice"
)

// AbilityScores holds the six standard ability scores
type AbilityScores struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// Modifier computes the ability modifier (score-10)/2, floored
func Modifier(score int) int {
	return int(math.Floor(float64(score-10) / 2))
}

// RollAbilityScores generates a fresh array via 4d6-drop-lowest draws
func RollAbilityScores(r dice.Roller) (*AbilityScores, error) {
	scores, err := dice.RollAbilityScores(r)
	if err != nil {
		return nil, err
	}

	return &AbilityScores{
		Strength:     scores["strength"],
		Dexterity:    scores["dexterity"],
		Constitution: scores["constitution"],
		Intelligence: scores["intelligence"],
		Wisdom:       scores["wisdom"],
		Charisma:     scores["charisma"],
	}, nil
}
