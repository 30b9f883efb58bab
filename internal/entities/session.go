package entities

import (
	"strings"
	"time"
)

// SessionState represents the current state of a game session
type SessionState string

const (
	SessionStateWaiting     SessionState = "waiting"     // Session is being set up
	SessionStateActive      SessionState = "active"      // Session is in progress
	SessionStateCombat      SessionState = "combat"      // Active, currently in combat
	SessionStateExploration SessionState = "exploration" // Active, currently exploring
	SessionStateSocial      SessionState = "social"      // Active, currently in a social scene
	SessionStatePaused      SessionState = "paused"      // Session is temporarily paused
	SessionStateCompleted   SessionState = "completed"   // Session has concluded
)

// AcceptsActions reports whether player actions may be processed in this state
func (s SessionState) AcceptsActions() bool {
	switch s {
	case SessionStateActive, SessionStateCombat, SessionStateExploration, SessionStateSocial:
		return true
	}
	return false
}

// Session represents one ongoing play session with a fixed human + companion
// roster and turn order.
type Session struct {
	ID         string       `json:"id"`
	HumanName  string       `json:"human_name"`
	State      SessionState `json:"state"`
	Companions []*Companion `json:"companions"`

	// TurnOrder is a permutation of {human} and all companions, fixed for
	// the session lifetime. The human is always at index 0.
	TurnOrder        []string `json:"turn_order"`
	CurrentTurnIndex int      `json:"current_turn_index"`
	TotalTurns       int      `json:"total_turns"`

	CampaignTitle string `json:"campaign_title"`
	CurrentScene  string `json:"current_scene"`

	PartyLevel int    `json:"party_level"`
	PartyGold  int    `json:"party_gold"`
	Location   string `json:"location"`

	VoiceMode bool      `json:"voice_mode"`
	CreatedAt time.Time `json:"created_at"`

	// Turns is the append-only session history.
	Turns []*GameTurn `json:"turns"`
}

// NewSession creates an active session with the given turn order. The caller
// is responsible for placing the human first and shuffling companions.
func NewSession(id, humanName string, companions []*Companion, turnOrder []string, voiceMode bool) *Session {
	return &Session{
		ID:            id,
		HumanName:     humanName,
		State:         SessionStateActive,
		Companions:    companions,
		TurnOrder:     turnOrder,
		CampaignTitle: "The Enchanted Caverns",
		CurrentScene:  "The party stands before a mysterious cave entrance...",
		PartyLevel:    3,
		PartyGold:     150,
		Location:      "Forest Clearing",
		VoiceMode:     voiceMode,
		CreatedAt:     time.Now(),
	}
}

// CurrentTurn returns the name of the participant whose turn it is
func (s *Session) CurrentTurn() string {
	if len(s.TurnOrder) == 0 {
		return ""
	}
	return s.TurnOrder[s.CurrentTurnIndex]
}

// AddTurn appends a turn record to the session history
func (s *Session) AddTurn(turn *GameTurn) {
	s.Turns = append(s.Turns, turn)
}

// AdvanceTurn moves the turn pointer forward once and bumps the counter.
// Called exactly once per processed human action.
func (s *Session) AdvanceTurn() {
	if len(s.TurnOrder) == 0 {
		return
	}
	s.CurrentTurnIndex = (s.CurrentTurnIndex + 1) % len(s.TurnOrder)
	s.TotalTurns++
}

// CompanionByName finds a companion by case-insensitive name match
func (s *Session) CompanionByName(name string) *Companion {
	for _, companion := range s.Companions {
		if strings.EqualFold(companion.Name, name) {
			return companion
		}
	}
	return nil
}

// Pause pauses an active-family session
func (s *Session) Pause() bool {
	if !s.State.AcceptsActions() {
		return false
	}
	s.State = SessionStatePaused
	return true
}

// Resume returns a paused session to active
func (s *Session) Resume() bool {
	if s.State != SessionStatePaused {
		return false
	}
	s.State = SessionStateActive
	return true
}

// Complete moves the session to its terminal state
func (s *Session) Complete() bool {
	if s.State == SessionStateCompleted {
		return false
	}
	s.State = SessionStateCompleted
	return true
}

// SetMode switches between the active sub-states (combat, exploration,
// social) without leaving the active family.
func (s *Session) SetMode(state SessionState) bool {
	if !s.State.AcceptsActions() || !state.AcceptsActions() {
		return false
	}
	s.State = state
	return true
}

// Duration returns wall-clock time since session creation
func (s *Session) Duration() time.Duration {
	return time.Since(s.CreatedAt).Truncate(time.Second)
}

// Clone returns a deep copy of the session
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.TurnOrder = append([]string(nil), s.TurnOrder...)
	clone.Companions = make([]*Companion, len(s.Companions))
	for i, companion := range s.Companions {
		clone.Companions[i] = companion.Clone()
	}
	// Turn records are immutable once appended, so sharing them is safe.
	clone.Turns = append([]*GameTurn(nil), s.Turns...)
	return &clone
}
