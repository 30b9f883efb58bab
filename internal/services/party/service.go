package party

//go:generate mockgen -destination=mock/mock_service.go -package=mockparty -source=service.go

import (
	"context"
	"strings"

	"github.com/mythgate/dungeonmind/internal/dice"
	"github.com/mythgate/dungeonmind/internal/entities"
	dmerr "github.com/mythgate/dungeonmind/internal/errors"
)

// Situation classifies what the party is reacting to
type Situation string

const (
	SituationCombat      Situation = "combat"
	SituationExploration Situation = "exploration"
	SituationSocial      Situation = "social"
)

// Reaction is a companion's in-character response to the current situation
type Reaction struct {
	CompanionName string                  `json:"companion_name"`
	Class         entities.CompanionClass `json:"class"`
	Personality   entities.Personality    `json:"personality"`
	VoiceID       string                  `json:"voice_id"`
	Dialogue      string                  `json:"dialogue"`
	ActionType    string                  `json:"action_type"`
	HP            int                     `json:"hp"`
	MaxHP         int                     `json:"max_hp"`
	Level         int                     `json:"level"`
}

// Service generates companion reactions to player actions
type Service interface {
	// React returns the companion's response to the situation text
	React(ctx context.Context, companion *entities.Companion, situation string) (*Reaction, error)

	// Classify determines the situation type from the given text
	Classify(situation string) Situation
}

// ServiceConfig holds configuration for the party service
type ServiceConfig struct {
	Roller dice.Roller
}

type service struct {
	roller dice.Roller
}

// NewService creates a new party reaction service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil || cfg.Roller == nil {
		panic("roller is required")
	}

	return &service{roller: cfg.Roller}
}

var (
	combatKeywords = []string{"fight", "combat", "attack", "enemy", "battle"}
	socialKeywords = []string{"talk", "speak", "negotiate", "conversation", "meet"}

	actionCombatKeywords = []string{"fight", "combat", "attack", "enemy"}
	healKeywords         = []string{"heal", "hurt", "injured", "damage"}
	searchKeywords       = []string{"investigate", "search", "explore"}
)

// responseLines is the closed (personality, situation) response table. Every
// personality in the default roster must have all three situations.
var responseLines = map[entities.Personality]map[Situation][]string{
	entities.PersonalityBrave: {
		SituationCombat: {
			"Let's charge in and show them what we're made of!",
			"I'll lead the charge! Follow me, companions!",
			"No enemy can stand against our united strength!",
		},
		SituationExploration: {
			"I say we press forward! Adventure awaits!",
			"Whatever lies ahead, we'll face it together!",
			"Bold action is the path to glory!",
		},
		SituationSocial: {
			"Let me speak for the party - we mean business!",
			"We stand united in our cause!",
			"Honor and courage guide our path!",
		},
	},
	entities.PersonalityWise: {
		SituationCombat: {
			"Let us think strategically about this encounter.",
			"Knowledge of our foe will serve us better than rash action.",
			"Ancient wisdom teaches patience in battle.",
		},
		SituationExploration: {
			"These ancient markings suggest we should proceed carefully.",
			"The arcane energies here are... unusual. We must be cautious.",
			"My studies have prepared me for such mysteries.",
		},
		SituationSocial: {
			"Perhaps diplomacy would serve us better than force.",
			"Let us hear all perspectives before deciding.",
			"Wisdom often lies in understanding others.",
		},
	},
	entities.PersonalityWitty: {
		SituationCombat: {
			"Well, this looks like fun! Anyone else excited about potential death?",
			"I vote we try the 'not dying' strategy. Anyone else on board?",
			"Great, another chance to test my running speed!",
		},
		SituationExploration: {
			"Nothing says 'adventure' like a suspiciously convenient entrance!",
			"I love when ancient places look this welcoming and safe.",
			"What could possibly go wrong? Famous last words, party!",
		},
		SituationSocial: {
			"I'm sure this conversation will go perfectly smoothly.",
			"Let me handle this with my legendary charm and tact.",
			"Time to deploy my secret weapon: sarcasm!",
		},
	},
	entities.PersonalityProtective: {
		SituationCombat: {
			"Stay close, my friends. I'll keep you safe.",
			"May the divine light protect us in this battle.",
			"I call upon sacred power to shield our party!",
		},
		SituationExploration: {
			"Let me check for dangers before we proceed.",
			"The gods watch over righteous travelers.",
			"I sense we are not alone here. Stay vigilant.",
		},
		SituationSocial: {
			"Let us approach with open hearts and peaceful intent.",
			"All souls deserve compassion and understanding.",
			"May we find common ground in this exchange.",
		},
	},
}

// React builds the companion's in-character reaction
func (s *service) React(ctx context.Context, companion *entities.Companion, situation string) (*Reaction, error) {
	if companion == nil {
		return nil, dmerr.InvalidArgument("companion cannot be nil")
	}

	dialogue, err := s.pickLine(companion, s.Classify(situation))
	if err != nil {
		return nil, err
	}

	if companion.Class == entities.ClassWarrior {
		dialogue, err = s.maybeRoughen(dialogue)
		if err != nil {
			return nil, err
		}
	}

	return &Reaction{
		CompanionName: companion.Name,
		Class:         companion.Class,
		Personality:   companion.Personality,
		VoiceID:       companion.VoiceID,
		Dialogue:      dialogue,
		ActionType:    actionType(companion.Class, situation),
		HP:            companion.HP,
		MaxHP:         companion.MaxHP,
		Level:         companion.Level,
	}, nil
}

// Classify determines the situation type from keyword matches
func (s *service) Classify(situation string) Situation {
	lower := strings.ToLower(situation)

	if containsAny(lower, combatKeywords) {
		return SituationCombat
	}
	if containsAny(lower, socialKeywords) {
		return SituationSocial
	}
	return SituationExploration
}

// pickLine chooses uniformly among the three lines for the pair. A roster
// personality without a table entry is a programming error, not a fallback.
func (s *service) pickLine(companion *entities.Companion, situation Situation) (string, error) {
	lines, ok := responseLines[companion.Personality][situation]
	if !ok {
		return "", dmerr.Internalf("no response table for personality %q in situation %q",
			companion.Personality, situation).
			WithMeta("companion", companion.Name)
	}

	roll, err := s.roller.Roll("1d3")
	if err != nil {
		return "", dmerr.Wrap(err, "failed to pick response line")
	}

	return lines[roll.Total-1], nil
}

// maybeRoughen applies the warrior's accent to about half the lines
func (s *service) maybeRoughen(line string) (string, error) {
	if strings.Contains(line, "ye") {
		return line, nil
	}

	roll, err := s.roller.Roll("1d2")
	if err != nil {
		return "", dmerr.Wrap(err, "failed to roll accent chance")
	}
	if roll.Total == 1 {
		line = strings.ReplaceAll(line, "you", "ye")
		line = strings.ReplaceAll(line, "your", "yer")
	}

	return line, nil
}

// actionType determines what the companion wants to do about the situation
func actionType(class entities.CompanionClass, situation string) string {
	lower := strings.ToLower(situation)

	switch {
	case containsAny(lower, actionCombatKeywords):
		switch class {
		case entities.ClassWarrior:
			return "melee_attack"
		case entities.ClassMage:
			return "cast_spell"
		case entities.ClassRogue:
			return "sneak_attack"
		case entities.ClassCleric:
			return "support_party"
		}
	case containsAny(lower, healKeywords):
		if class == entities.ClassCleric {
			return "heal_party"
		}
	case containsAny(lower, searchKeywords):
		if class == entities.ClassRogue {
			return "search_area"
		}
	}

	return "roleplay"
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
