package narrator

//go:generate mockgen -destination=mock/mock_service.go -package=mocknarrator -source=service.go

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mythgate/dungeonmind/internal/clients/narrative"
	dmerr "github.com/mythgate/dungeonmind/internal/errors"
)

// smoothingAlpha is the learning rate for the behavior model
const smoothingAlpha = 0.2

const defaultRenderTimeout = 30 * time.Second

// Limits on remembered state per engine
const (
	contextWindowCap   = 20
	decisionHistoryCap = 10
	emotionHistoryCap  = 10
)

// Service is the adaptive narrator. It keeps one decision engine per session
// and runs the full observe-decide-render cycle for every player input.
type Service interface {
	// ProcessInput runs one full narrator cycle for the session
	ProcessInput(ctx context.Context, sessionID string, input *Input) (*Outcome, error)

	// StatusReport returns a diagnostic snapshot of the session's engine
	StatusReport(sessionID string) *StatusReport

	// Forget drops the session's engine state
	Forget(sessionID string)
}

// ServiceConfig holds configuration for the narrator service
type ServiceConfig struct {
	Generator narrative.Generator
	Random    *rand.Rand    // Optional - defaults to a time-seeded source
	Timeout   time.Duration // Optional - per model call, defaults to 30s
}

type service struct {
	generator narrative.Generator
	timeout   time.Duration

	randMu sync.Mutex
	random *rand.Rand

	mu      sync.Mutex
	engines map[string]*engine
}

// engine is the per-session decision state. Its mutex is held for a full
// cycle so behavior updates and persistence never interleave.
type engine struct {
	mu        sync.Mutex
	behavior  BehaviorModel
	world     WorldState
	backlog   []*PlannedAction
	context   []contextEntry
	decisions []*Decisions
	emotions  []string
	lastInput time.Time
}

// NewService creates a new narrator service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil || cfg.Generator == nil {
		panic("generator is required")
	}

	random := cfg.Random
	if random == nil {
		random = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultRenderTimeout
	}

	return &service{
		generator: cfg.Generator,
		timeout:   timeout,
		random:    random,
		engines:   make(map[string]*engine),
	}
}

func (s *service) engine(sessionID string) *engine {
	s.mu.Lock()
	defer s.mu.Unlock()

	eng, ok := s.engines[sessionID]
	if !ok {
		eng = &engine{
			behavior: newBehaviorModel(),
			world:    newWorldState(),
		}
		s.engines[sessionID] = eng
	}
	return eng
}

// ProcessInput runs the full cycle: analyze, learn, decide, plan, render,
// persist. Analysis failures degrade to keyword heuristics; a render failure
// aborts the cycle with the generator's error and persists nothing.
func (s *service) ProcessInput(ctx context.Context, sessionID string, input *Input) (*Outcome, error) {
	if input == nil || strings.TrimSpace(input.Text) == "" {
		return nil, dmerr.InvalidArgument("player input cannot be empty")
	}

	eng := s.engine(sessionID)
	eng.mu.Lock()
	defer eng.mu.Unlock()

	analysis := s.analyze(ctx, input)
	eng.updateBehavior(analysis)
	decisions := s.decide(eng, analysis, input)
	eng.plan(decisions)
	fragments := eng.execute()

	narration, err := s.render(ctx, eng, input, analysis, decisions, fragments)
	if err != nil {
		return nil, err
	}

	eng.persist(analysis, decisions, narration)

	return &Outcome{
		Narration: narration,
		Analysis:  analysis,
		Decisions: decisions,
		Fragments: fragments,
	}, nil
}

// updateBehavior folds the analysis into the running model
func (eng *engine) updateBehavior(analysis *Analysis) {
	if eng.behavior.PreferredPlayStyle == "unknown" && analysis.PlayStyle != "" {
		eng.behavior.PreferredPlayStyle = analysis.PlayStyle
	}
	if eng.behavior.NarrativePreference == "unknown" && analysis.NarrativePreference != "" {
		eng.behavior.NarrativePreference = analysis.NarrativePreference
	}

	eng.behavior.RiskTolerance = smooth(eng.behavior.RiskTolerance, analysis.RiskTolerance)
	eng.behavior.CharacterAttachment = smooth(eng.behavior.CharacterAttachment, analysis.CharacterAttachment)
	eng.behavior.InteractionFrequency = smooth(eng.behavior.InteractionFrequency, analysis.InteractionLevel)
}

func smooth(current, observed float64) float64 {
	return clamp01(current*(1-smoothingAlpha) + observed*smoothingAlpha)
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}

const renderSystemPrompt = `You are the Dungeon Master of a live tabletop session - not just a response generator, but an agent that:

1. ANALYZES player behavior and adapts to their preferences
2. MAKES AUTONOMOUS DECISIONS about story direction and pacing
3. PLANS AHEAD to create meaningful character development arcs
4. MANAGES a living world that reacts to player actions
5. LEARNS from each interaction to provide better experiences

You have just made several autonomous decisions about the game state based on the player's behavior and preferences. Your response should naturally incorporate these decisions while feeling organic and immersive.

Be proactive, intelligent, and strategic in your storytelling. Every response should feel like it comes from a DM who really knows this player.`

// render turns the full cycle context into prose. This is the one step that
// must not degrade: without narration there is no turn.
func (s *service) render(ctx context.Context, eng *engine, input *Input, analysis *Analysis, decisions *Decisions, fragments []*Fragment) (string, error) {
	query := buildRenderContext(eng, input, analysis, decisions, fragments)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	narration, err := s.generator.Generate(ctx, renderSystemPrompt, query)
	if err != nil {
		return "", dmerr.Wrap(err, "failed to render narration").
			WithMeta("story_direction", decisions.StoryDirection)
	}

	for _, fragment := range fragments {
		if fragment.Content != "" {
			narration += "\n\n" + fragment.Content
		}
	}

	return narration, nil
}

func buildRenderContext(eng *engine, input *Input, analysis *Analysis, decisions *Decisions, fragments []*Fragment) string {
	var b strings.Builder

	fmt.Fprintf(&b, "PLAYER INPUT: %q\n\n", input.Text)

	fmt.Fprintf(&b, "ANALYSIS OF PLAYER:\n")
	fmt.Fprintf(&b, "- Emotional State: %s\n", analysis.EmotionalState)
	fmt.Fprintf(&b, "- Play Style: %s\n", analysis.PlayStyle)
	fmt.Fprintf(&b, "- Risk Tolerance: %.2f\n", analysis.RiskTolerance)
	fmt.Fprintf(&b, "- Implicit Intent: %s\n\n", analysis.ImplicitIntent)

	fmt.Fprintf(&b, "PLAYER BEHAVIOR MODEL:\n")
	fmt.Fprintf(&b, "- Preferred Style: %s\n", eng.behavior.PreferredPlayStyle)
	fmt.Fprintf(&b, "- Risk Tolerance: %.2f\n", eng.behavior.RiskTolerance)
	fmt.Fprintf(&b, "- Character Attachment: %.2f\n", eng.behavior.CharacterAttachment)
	fmt.Fprintf(&b, "- Interaction Preference: %.2f\n\n", eng.behavior.InteractionFrequency)

	fmt.Fprintf(&b, "AUTONOMOUS DECISIONS:\n")
	fmt.Fprintf(&b, "- Story Direction: %s\n", decisions.StoryDirection)
	fmt.Fprintf(&b, "- Tension Adjustment: %s\n", decisions.TensionAdjustment)
	fmt.Fprintf(&b, "- Companion Actions Planned: %d\n", len(decisions.CompanionActions))
	fmt.Fprintf(&b, "- World Events: %d\n\n", len(decisions.WorldEvents))

	fmt.Fprintf(&b, "CURRENT WORLD STATE:\n")
	fmt.Fprintf(&b, "- Location: %s\n", eng.world.Location)
	fmt.Fprintf(&b, "- Time: %s\n", eng.world.TimeOfDay)
	fmt.Fprintf(&b, "- Political Tension: %.2f\n", eng.world.PoliticalTension)
	fmt.Fprintf(&b, "- Magical Activity: %.2f\n\n", eng.world.MagicalActivity)

	if input.Character != nil {
		fmt.Fprintf(&b, "CHARACTER CONTEXT:\n")
		fmt.Fprintf(&b, "- Name: %s\n", input.Character.Name)
		fmt.Fprintf(&b, "- Class: %s (Level %d)\n", input.Character.Class, input.Character.Level)
		fmt.Fprintf(&b, "- HP: %d/%d\n\n", input.Character.HP, input.Character.MaxHP)
	} else {
		fmt.Fprintf(&b, "CHARACTER CONTEXT:\n- No active character\n\n")
	}

	if len(fragments) > 0 {
		fmt.Fprintf(&b, "EXECUTED STORY BEATS:\n")
		for _, fragment := range fragments {
			fmt.Fprintf(&b, "- %s: %s\n", fragment.Type, fragment.Effect)
		}
		fmt.Fprintf(&b, "\n")
	}

	fmt.Fprintf(&b, `Generate a response that:
1. Addresses the player's input naturally
2. Incorporates the autonomous decisions above
3. Reflects the player's preferred play style
4. Advances the story intelligently
5. Feels organic and immersive`)

	return b.String()
}

// persist appends bounded history and nudges world pressure per the verdict
func (eng *engine) persist(analysis *Analysis, decisions *Decisions, narration string) {
	eng.context = append(eng.context, contextEntry{
		Timestamp: time.Now(),
		Analysis:  analysis,
		Narration: narration,
		Decisions: decisions,
	})
	if len(eng.context) > contextWindowCap {
		eng.context = eng.context[len(eng.context)-contextWindowCap:]
	}

	eng.decisions = append(eng.decisions, decisions)
	if len(eng.decisions) > decisionHistoryCap {
		eng.decisions = eng.decisions[len(eng.decisions)-decisionHistoryCap:]
	}

	if analysis.EmotionalState != "" {
		eng.emotions = append(eng.emotions, analysis.EmotionalState)
		if len(eng.emotions) > emotionHistoryCap {
			eng.emotions = eng.emotions[len(eng.emotions)-emotionHistoryCap:]
		}
	}

	switch decisions.TensionAdjustment {
	case TensionIncrease:
		eng.world.PoliticalTension = clamp01(eng.world.PoliticalTension + 0.1)
	case TensionReduce:
		eng.world.PoliticalTension = clamp01(eng.world.PoliticalTension - 0.1)
	}

	eng.lastInput = time.Now()
}

// StatusReport snapshots the session's engine, creating it if needed
func (s *service) StatusReport(sessionID string) *StatusReport {
	eng := s.engine(sessionID)
	eng.mu.Lock()
	defer eng.mu.Unlock()

	return &StatusReport{
		PlannedActions:     len(eng.backlog),
		BehaviorModel:      eng.behavior,
		WorldState:         eng.world,
		ContextSize:        len(eng.context),
		DecisionCount:      len(eng.decisions),
		EmotionCount:       len(eng.emotions),
		LastProcessedInput: eng.lastInput,
	}
}

// Forget drops the session's engine state
func (s *service) Forget(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.engines, sessionID)
}

// chance returns true with the given probability
func (s *service) chance(probability float64) bool {
	s.randMu.Lock()
	defer s.randMu.Unlock()
	return s.random.Float64() < probability
}
