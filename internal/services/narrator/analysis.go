package narrator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"
)

// jsonBlockPattern extracts the outermost JSON object from free-form model
// output that may wrap it in prose or code fences.
var jsonBlockPattern = regexp.MustCompile(`(?s)\{.*\}`)

const analysisSystemPrompt = `You are an analyst observing a tabletop role-playing session. ` +
	`You read a single player input and return a strictly structured JSON assessment of it. ` +
	`Be insightful and analytical. Look for subtext and deeper motivations.`

// analyze asks the model for a structured reading of the input; any failure
// falls back to keyword analysis so the cycle always has a complete,
// typed analysis to work with.
func (s *service) analyze(ctx context.Context, input *Input) *Analysis {
	query := buildAnalysisQuery(input)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generator.Generate(ctx, analysisSystemPrompt, query)
	if err != nil {
		log.Printf("Input analysis failed, using keyword fallback: %v", err)
		return fallbackAnalysis(input.Text)
	}

	return parseAnalysis(raw)
}

func buildAnalysisQuery(input *Input) string {
	characterLine := "None"
	if input.Character != nil {
		characterLine = fmt.Sprintf("%s (%s)", input.Character.Name, input.Character.Class)
	}

	return fmt.Sprintf(`Analyze this D&D player input:

PLAYER INPUT: %q
CHARACTER: %s

Provide a JSON object with these keys:
1. explicit_intent (what they're saying they want to do)
2. implicit_intent (what they might really want)
3. emotional_state (excited, cautious, frustrated, etc.)
4. play_style (combat, roleplay, exploration, puzzle)
5. risk_tolerance (how bold or cautious they're being)
6. character_attachment (how invested they seem in their character)
7. narrative_preference (linear, branching, sandbox)
8. interaction_level (high engagement vs casual)`, input.Text, characterLine)
}

// parseAnalysis extracts and normalizes the model's JSON. A response without
// usable JSON yields the neutral "engaged" reading.
func parseAnalysis(raw string) *Analysis {
	if block := jsonBlockPattern.FindString(raw); block != "" {
		var fields map[string]any
		if err := json.Unmarshal([]byte(block), &fields); err == nil {
			return normalizeAnalysis(fields)
		}
	}

	return normalizeAnalysis(map[string]any{
		"explicit_intent":      "perform_action",
		"implicit_intent":      "progress_story",
		"emotional_state":      "engaged",
		"play_style":           "mixed",
		"risk_tolerance":       "medium",
		"character_attachment": "moderate",
		"narrative_preference": "branching",
		"interaction_level":    "active",
	})
}

// normalizeAnalysis converts text qualifiers to numbers so the behavior
// model can do arithmetic on them
func normalizeAnalysis(fields map[string]any) *Analysis {
	return &Analysis{
		ExplicitIntent:      stringField(fields, "explicit_intent"),
		ImplicitIntent:      stringField(fields, "implicit_intent"),
		EmotionalState:      stringField(fields, "emotional_state"),
		PlayStyle:           stringField(fields, "play_style"),
		NarrativePreference: stringField(fields, "narrative_preference"),
		RiskTolerance: numericField(fields, "risk_tolerance",
			[]string{"high", "bold", "aggressive"}, []string{"low", "cautious", "careful"}),
		CharacterAttachment: numericField(fields, "character_attachment",
			[]string{"high", "strong", "invested"}, []string{"low", "detached"}),
		InteractionLevel: numericField(fields, "interaction_level",
			[]string{"high", "active", "engaged"}, []string{"low", "passive"}),
		FromModel: true,
	}
}

func stringField(fields map[string]any, key string) string {
	value, _ := fields[key].(string)
	return value
}

// numericField maps a qualifier word to 0.8 / 0.3 / 0.5 or passes a numeric
// value through unchanged
func numericField(fields map[string]any, key string, highWords, lowWords []string) float64 {
	switch value := fields[key].(type) {
	case float64:
		return value
	case string:
		lower := strings.ToLower(value)
		switch {
		case containsAny(lower, highWords):
			return 0.8
		case containsAny(lower, lowWords):
			return 0.3
		case containsAny(lower, []string{"medium", "moderate"}):
			return 0.5
		}
	}
	return 0.5
}

// fallbackAnalysis is the keyword reading used when the model is unreachable
func fallbackAnalysis(text string) *Analysis {
	lower := strings.ToLower(text)

	playStyle := "action"
	if containsAny(lower, []string{"look", "search", "examine"}) {
		playStyle = "exploration"
	}

	riskTolerance := 0.4
	if containsAny(lower, []string{"attack", "fight", "charge"}) {
		riskTolerance = 0.7
	}

	return &Analysis{
		ExplicitIntent:      "perform_action",
		ImplicitIntent:      "progress_story",
		EmotionalState:      "neutral",
		PlayStyle:           playStyle,
		RiskTolerance:       riskTolerance,
		CharacterAttachment: 0.5,
		NarrativePreference: "branching",
		InteractionLevel:    0.6,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
