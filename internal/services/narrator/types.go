package narrator

import (
	"time"

	"github.com/mythgate/dungeonmind/internal/entities"
)

// Analysis is the structured reading of a single player input
type Analysis struct {
	ExplicitIntent      string  `json:"explicit_intent"`
	ImplicitIntent      string  `json:"implicit_intent"`
	EmotionalState      string  `json:"emotional_state"`
	PlayStyle           string  `json:"play_style"`
	RiskTolerance       float64 `json:"risk_tolerance"`
	CharacterAttachment float64 `json:"character_attachment"`
	NarrativePreference string  `json:"narrative_preference"`
	InteractionLevel    float64 `json:"interaction_level"`

	// FromModel is false when the keyword fallback produced this analysis
	FromModel bool `json:"-"`
}

// BehaviorModel is the running estimate of how the player likes to play.
// Continuous fields live in [0,1] and are updated by exponential smoothing;
// the play style is locked in the first time it is observed.
type BehaviorModel struct {
	PreferredPlayStyle   string  `json:"preferred_play_style"`
	RiskTolerance        float64 `json:"risk_tolerance"`
	NarrativePreference  string  `json:"narrative_preference"`
	InteractionFrequency float64 `json:"interaction_frequency"`
	CharacterAttachment  float64 `json:"character_attachment"`
}

// WorldState is the mutable background world the narrator steers
type WorldState struct {
	Location         string   `json:"location"`
	TimeOfDay        string   `json:"time_of_day"`
	Weather          string   `json:"weather"`
	Season           string   `json:"season"`
	PoliticalTension float64  `json:"political_tension"`
	MagicalActivity  float64  `json:"magical_activity"`
	EconomicState    float64  `json:"economic_state"`
	ActiveThreats    []string `json:"active_threats"`
	Rumors           []string `json:"rumors_and_news"`
	OngoingEvents    []string `json:"ongoing_events"`
}

// CompanionAction is an autonomous micro-action for a single companion
type CompanionAction struct {
	CompanionName string `json:"companion_name"`
	Action        string `json:"action"`
	Reasoning     string `json:"reasoning"`
}

// WorldEvent is something happening in the background of the scene
type WorldEvent struct {
	EventType   string `json:"event_type"`
	Description string `json:"description"`
	Impact      string `json:"impact"`
}

// CharacterDevelopment lists growth opportunities planned for the player
type CharacterDevelopment struct {
	Opportunities []string `json:"opportunities"`
	Timing        string   `json:"timing"`
}

// Decisions is the narrator's verdict set for one cycle
type Decisions struct {
	StoryDirection       string                `json:"story_direction"`
	TensionAdjustment    string                `json:"tension_adjustment"`
	CompanionActions     []*CompanionAction    `json:"companion_actions"`
	WorldEvents          []*WorldEvent         `json:"world_events"`
	CharacterDevelopment *CharacterDevelopment `json:"character_development,omitempty"`
}

// PlannedAction is a deferred narrative beat in the backlog
type PlannedAction struct {
	ActionType      string
	Target          string
	Reasoning       string
	ExpectedOutcome string
	Priority        int
	Development     *CharacterDevelopment
}

// Fragment is a piece of content produced by executing a planned action
type Fragment struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Effect  string `json:"effect"`
}

// CharacterContext describes the human player's character for this cycle
type CharacterContext struct {
	Name  string
	Class string
	Level int
	HP    int
	MaxHP int
}

// Input is one player turn handed to the decision engine
type Input struct {
	PlayerName string
	Text       string
	Character  *CharacterContext
	Companions []*entities.Companion
}

// Outcome is the full result of one processed input
type Outcome struct {
	Narration string
	Analysis  *Analysis
	Decisions *Decisions
	Fragments []*Fragment
}

// StatusReport is a diagnostic snapshot of one engine's state
type StatusReport struct {
	PlannedActions     int           `json:"planned_actions"`
	BehaviorModel      BehaviorModel `json:"behavior_model"`
	WorldState         WorldState    `json:"world_state"`
	ContextSize        int           `json:"context_size"`
	DecisionCount      int           `json:"decision_count"`
	EmotionCount       int           `json:"emotion_count"`
	LastProcessedInput time.Time     `json:"last_processed_input"`
}

// contextEntry is one remembered exchange in the conversation window
type contextEntry struct {
	Timestamp time.Time
	Analysis  *Analysis
	Narration string
	Decisions *Decisions
}

func newBehaviorModel() BehaviorModel {
	return BehaviorModel{
		PreferredPlayStyle:   "unknown",
		RiskTolerance:        0.5,
		NarrativePreference:  "unknown",
		InteractionFrequency: 0.5,
		CharacterAttachment:  0.5,
	}
}

func newWorldState() WorldState {
	return WorldState{
		Location:         "The Prancing Pony Tavern",
		TimeOfDay:        "evening",
		Weather:          "clear",
		Season:           "autumn",
		PoliticalTension: 0.3,
		MagicalActivity:  0.4,
		EconomicState:    0.6,
	}
}
