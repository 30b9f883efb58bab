package gamesession

//go:generate mockgen -destination=mock/mock_service.go -package=mockgamesession -source=service.go

import (
	"context"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mythgate/dungeonmind/internal/clients/voice"
	"github.com/mythgate/dungeonmind/internal/dice"
	"github.com/mythgate/dungeonmind/internal/entities"
	dmerr "github.com/mythgate/dungeonmind/internal/errors"
	"github.com/mythgate/dungeonmind/internal/repositories/gamesessions"
	"github.com/mythgate/dungeonmind/internal/services/narrator"
	"github.com/mythgate/dungeonmind/internal/services/party"
	"github.com/mythgate/dungeonmind/internal/uuid"
)

const narratorName = "Dungeon Master"

// checkKeywords in a player action trigger a d20 check attached to the
// narrator's turn record.
var checkKeywords = []string{"check", "roll", "attempt"}

// Service orchestrates session lifecycle and turn processing
type Service interface {
	// CreateSession starts a fresh session for the named human player
	CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error)

	// ProcessTurn runs one full turn: human action, companion reactions,
	// narrator cycle, turn advancement
	ProcessTurn(ctx context.Context, input *ProcessTurnInput) (*TurnOutcome, error)

	// GetSessionInfo returns a read-only projection of the session
	GetSessionInfo(ctx context.Context, sessionID string) (*SessionInfo, error)

	// EndSession removes the session and returns its summary
	EndSession(ctx context.Context, sessionID string) (*SessionSummary, error)

	// SetVoiceMode toggles voice synthesis for the session
	SetVoiceMode(ctx context.Context, sessionID string, enabled bool) error
}

// CreateSessionInput holds parameters for session creation
type CreateSessionInput struct {
	HumanName string
	VoiceMode bool
}

// CreateSessionOutput is the result of session creation
type CreateSessionOutput struct {
	Session *entities.Session
	Opening *Scenario
	Welcome string
}

// ProcessTurnInput holds one human action to process
type ProcessTurnInput struct {
	SessionID  string
	PlayerName string
	Action     string
	Dialogue   string

	// Character optionally describes the player's character sheet for the
	// narrator's development decisions
	Character *narrator.CharacterContext
}

// TurnOutcome is the full result of one processed human action
type TurnOutcome struct {
	SessionID string

	HumanTurn *entities.GameTurn
	Reactions []*party.Reaction

	// DMTurn carries the rendered narration. It is returned to the caller
	// but not part of the append-only turn history.
	DMTurn *entities.GameTurn

	CurrentTurn string
	TurnNumber  int
	PartyStats  *PartyStats
	VoiceMode   bool
}

// PartyStats aggregates the party's current condition
type PartyStats struct {
	Level      int           `json:"party_level"`
	Gold       int           `json:"party_gold"`
	HP         int           `json:"party_hp"`
	MaxHP      int           `json:"party_max_hp"`
	Location   string        `json:"location"`
	TotalTurns int           `json:"total_turns"`
	Duration   time.Duration `json:"session_duration"`
}

// SessionInfo is a read-only projection of a session
type SessionInfo struct {
	Session     *entities.Session
	CurrentTurn string
	Stats       *PartyStats
}

// SessionSummary describes an ended session
type SessionSummary struct {
	SessionID     string
	HumanName     string
	CampaignTitle string
	TotalTurns    int
	Duration      time.Duration
}

// ServiceConfig holds configuration for the orchestrator
type ServiceConfig struct {
	Repository gamesessions.Repository
	Party      party.Service
	Narrator   narrator.Service
	Voice      voice.Synthesizer // Optional - defaults to disabled synthesis
	UUID       uuid.Generator    // Optional - defaults to short IDs
	Roller     dice.Roller       // Optional - defaults to a random roller
	Random     *rand.Rand        // Optional - defaults to a time-seeded source
}

type service struct {
	repo     gamesessions.Repository
	party    party.Service
	narrator narrator.Service
	voice    voice.Synthesizer
	uuid     uuid.Generator
	roller   dice.Roller

	randMu sync.Mutex
	random *rand.Rand

	// One exclusive lock per session keeps the turn-order invariants safe
	// under concurrent calls for the same session.
	lockMu sync.Mutex
	locks  map[string]*sync.Mutex
}

// NewService creates a new session orchestrator
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("config is required")
	}
	if cfg.Repository == nil {
		panic("repository is required")
	}
	if cfg.Party == nil {
		panic("party service is required")
	}
	if cfg.Narrator == nil {
		panic("narrator service is required")
	}

	synthesizer := cfg.Voice
	if synthesizer == nil {
		synthesizer = voice.NewDisabled()
	}

	generator := cfg.UUID
	if generator == nil {
		generator = uuid.NewShortIDGenerator()
	}

	roller := cfg.Roller
	if roller == nil {
		roller = dice.NewRandomRoller()
	}

	random := cfg.Random
	if random == nil {
		random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &service{
		repo:     cfg.Repository,
		party:    cfg.Party,
		narrator: cfg.Narrator,
		voice:    synthesizer,
		uuid:     generator,
		roller:   roller,
		random:   random,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *service) sessionLock(sessionID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	lock, ok := s.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[sessionID] = lock
	}
	return lock
}

func (s *service) dropLock(sessionID string) {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	delete(s.locks, sessionID)
}

// CreateSession builds a session with the fixed roster, a shuffled turn order
// (human always first) and a uniformly chosen opening scenario.
func (s *service) CreateSession(ctx context.Context, input *CreateSessionInput) (*CreateSessionOutput, error) {
	if input == nil || input.HumanName == "" {
		return nil, dmerr.InvalidArgument("human player name is required")
	}

	companions := entities.DefaultParty()

	order := make([]string, 0, len(companions)+1)
	order = append(order, input.HumanName)

	s.randMu.Lock()
	for _, i := range s.random.Perm(len(companions)) {
		order = append(order, companions[i].Name)
	}
	scenario := openingScenarios[s.random.Intn(len(openingScenarios))]
	s.randMu.Unlock()

	session := entities.NewSession(s.uuid.New(), input.HumanName, companions, order, input.VoiceMode)
	session.CampaignTitle = scenario.Title
	session.CurrentScene = scenario.Description

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, dmerr.Wrap(err, "failed to create session")
	}

	return &CreateSessionOutput{
		Session: session,
		Opening: scenario,
		Welcome: "Welcome, " + input.HumanName + "! You are joined by your trusted companions. What do you wish to do?",
	}, nil
}

// ProcessTurn handles one human action end to end. The session is saved
// exactly once, after the narrator cycle succeeds; a failed cycle leaves the
// stored session untouched.
func (s *service) ProcessTurn(ctx context.Context, input *ProcessTurnInput) (*TurnOutcome, error) {
	if input == nil || input.SessionID == "" {
		return nil, dmerr.InvalidArgument("session ID is required")
	}
	if input.Action == "" {
		return nil, dmerr.InvalidArgument("action is required")
	}

	lock := s.sessionLock(input.SessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.repo.Get(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	if !session.State.AcceptsActions() {
		return nil, dmerr.InvalidArgument("session is not accepting actions").
			WithMeta("session_id", session.ID).
			WithMeta("state", string(session.State))
	}

	situation := input.Action
	if input.Dialogue != "" {
		situation = input.Action + ". " + input.Dialogue
	}

	humanTurn := &entities.GameTurn{
		ID:         s.uuid.New(),
		PlayerName: input.PlayerName,
		PlayerType: entities.PlayerTypeHuman,
		Action:     input.Action,
		Dialogue:   input.Dialogue,
		Timestamp:  time.Now(),
	}
	session.AddTurn(humanTurn)

	// Every companion reacts to every human turn
	reactions := make([]*party.Reaction, 0, len(session.Companions))
	for _, companion := range session.Companions {
		reaction, reactErr := s.party.React(ctx, companion, situation)
		if reactErr != nil {
			return nil, dmerr.Wrap(reactErr, "companion reaction failed").
				WithMeta("companion", companion.Name)
		}
		reactions = append(reactions, reaction)

		session.AddTurn(&entities.GameTurn{
			ID:         s.uuid.New(),
			PlayerName: companion.Name,
			PlayerType: entities.PlayerTypeCompanion,
			Action:     reaction.ActionType,
			Dialogue:   reaction.Dialogue,
			VoiceID:    reaction.VoiceID,
			Timestamp:  time.Now(),
		})
	}

	outcome, err := s.narrator.ProcessInput(ctx, session.ID, &narrator.Input{
		PlayerName: input.PlayerName,
		Text:       situation,
		Character:  input.Character,
		Companions: session.Companions,
	})
	if err != nil {
		return nil, err
	}

	dmTurn := &entities.GameTurn{
		ID:         s.uuid.New(),
		PlayerName: narratorName,
		PlayerType: entities.PlayerTypeNarrator,
		Action:     outcome.Decisions.StoryDirection,
		Dialogue:   outcome.Narration,
		VoiceID:    "dm_narrator",
		Rolls:      s.checkRoll(input.Action),
		Timestamp:  time.Now(),
	}

	if session.VoiceMode {
		s.attachAudio(ctx, session, dmTurn)
	}

	session.AdvanceTurn()

	if err := s.repo.Update(ctx, session); err != nil {
		// The session was ended while this turn was in flight: the store
		// drops the write rather than resurrecting the session, and the
		// turn completes against its snapshot.
		if !dmerr.IsNotFound(err) {
			return nil, err
		}
		log.Printf("Session %s ended mid-turn, write dropped", session.ID)
	}

	return &TurnOutcome{
		SessionID:   session.ID,
		HumanTurn:   humanTurn,
		Reactions:   reactions,
		DMTurn:      dmTurn,
		CurrentTurn: session.CurrentTurn(),
		TurnNumber:  session.TotalTurns,
		PartyStats:  partyStats(session),
		VoiceMode:   session.VoiceMode,
	}, nil
}

// checkRoll rolls a d20 when the player's action reads like an ability check.
// The roll is flavor for the narration, so a roller failure only logs.
func (s *service) checkRoll(action string) []*dice.RollResult {
	lowered := strings.ToLower(action)
	match := false
	for _, keyword := range checkKeywords {
		if strings.Contains(lowered, keyword) {
			match = true
			break
		}
	}
	if !match {
		return nil
	}

	result, err := s.roller.Roll("1d20")
	if err != nil {
		log.Printf("Check roll failed: %v", err)
		return nil
	}
	return []*dice.RollResult{result}
}

// attachAudio synthesizes speech for the voiced turns of this round. Voice is
// post-processing only: failures are logged and never gate the turn.
func (s *service) attachAudio(ctx context.Context, session *entities.Session, dmTurn *entities.GameTurn) {
	voiced := make([]*entities.GameTurn, 0, len(session.Companions)+1)
	start := len(session.Turns) - len(session.Companions)
	if start >= 0 {
		voiced = append(voiced, session.Turns[start:]...)
	}
	voiced = append(voiced, dmTurn)

	for _, turn := range voiced {
		if turn.VoiceID == "" || turn.Dialogue == "" {
			continue
		}
		audio, err := s.voice.Synthesize(ctx, turn.VoiceID, turn.Dialogue)
		if err != nil {
			log.Printf("Voice synthesis failed for %s: %v", turn.PlayerName, err)
			continue
		}
		turn.AudioFile = audio
	}
}

// GetSessionInfo returns a projection of the session and party aggregates
func (s *service) GetSessionInfo(ctx context.Context, sessionID string) (*SessionInfo, error) {
	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &SessionInfo{
		Session:     session,
		CurrentTurn: session.CurrentTurn(),
		Stats:       partyStats(session),
	}, nil
}

// EndSession removes the session and drops its narrator state
func (s *service) EndSession(ctx context.Context, sessionID string) (*SessionSummary, error) {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return nil, err
	}

	s.narrator.Forget(sessionID)
	s.dropLock(sessionID)

	return &SessionSummary{
		SessionID:     session.ID,
		HumanName:     session.HumanName,
		CampaignTitle: session.CampaignTitle,
		TotalTurns:    session.TotalTurns,
		Duration:      session.Duration(),
	}, nil
}

// SetVoiceMode toggles the session's voice flag. Idempotent.
func (s *service) SetVoiceMode(ctx context.Context, sessionID string, enabled bool) error {
	lock := s.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	session, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return err
	}

	if session.VoiceMode == enabled {
		return nil
	}

	session.VoiceMode = enabled
	return s.repo.Update(ctx, session)
}

func partyStats(session *entities.Session) *PartyStats {
	hp, maxHP := 0, 0
	for _, companion := range session.Companions {
		hp += companion.HP
		maxHP += companion.MaxHP
	}

	return &PartyStats{
		Level:      session.PartyLevel,
		Gold:       session.PartyGold,
		HP:         hp,
		MaxHP:      maxHP,
		Location:   session.Location,
		TotalTurns: session.TotalTurns,
		Duration:   session.Duration(),
	}
}
