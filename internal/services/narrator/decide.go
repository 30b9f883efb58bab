package narrator

import (
	"sort"
	"strings"

	"github.com/mythgate/dungeonmind/internal/entities"
)

// Story directions
const (
	DirectionRevealMystery        = "reveal_mystery"
	DirectionEscalateAction       = "escalate_action"
	DirectionIntroduceConflict    = "introduce_conflict"
	DirectionCharacterDevelopment = "character_development"
)

// Tension verdicts
const (
	TensionReduce   = "reduce"
	TensionIncrease = "increase"
	TensionMaintain = "maintain"
)

const (
	// Only high-priority beats survive between turns
	backlogKeepPriority = 7

	// At most this many backlog beats fire per turn
	executePerTurn = 2

	// Companion micro-actions only consider the front of the roster
	companionActionLimit = 3
)

// decide chooses the narrator's verdicts for this cycle
func (s *service) decide(eng *engine, analysis *Analysis, input *Input) *Decisions {
	decisions := &Decisions{}

	tension := eng.world.PoliticalTension
	risk := eng.behavior.RiskTolerance

	switch {
	case analysis.PlayStyle == "exploration":
		decisions.StoryDirection = DirectionRevealMystery
	case analysis.EmotionalState == "excited":
		decisions.StoryDirection = DirectionEscalateAction
	case tension < 0.3 && risk > 0.6:
		decisions.StoryDirection = DirectionIntroduceConflict
	default:
		decisions.StoryDirection = DirectionCharacterDevelopment
	}

	switch {
	case tension > 0.8 && risk < 0.4:
		decisions.TensionAdjustment = TensionReduce
	case tension < 0.2 && risk > 0.7:
		decisions.TensionAdjustment = TensionIncrease
	default:
		decisions.TensionAdjustment = TensionMaintain
	}

	companions := input.Companions
	if len(companions) > companionActionLimit {
		companions = companions[:companionActionLimit]
	}
	for _, companion := range companions {
		if action := s.decideCompanionAction(companion, analysis, decisions); action != nil {
			decisions.CompanionActions = append(decisions.CompanionActions, action)
		}
	}

	if event := s.decideWorldEvent(eng, decisions); event != nil {
		decisions.WorldEvents = append(decisions.WorldEvents, event)
	}

	if input.Character != nil && eng.behavior.CharacterAttachment > 0.6 {
		decisions.CharacterDevelopment = planDevelopment(input.Character, analysis)
	}

	return decisions
}

// decideCompanionAction lets a companion act on its own initiative
func (s *service) decideCompanionAction(companion *entities.Companion, analysis *Analysis, decisions *Decisions) *CompanionAction {
	if isFriendly(companion) && analysis.EmotionalState == "frustrated" {
		return &CompanionAction{
			CompanionName: companion.Name,
			Action:        "offer_help",
			Reasoning:     "Friendly companion notices player frustration",
		}
	}

	if decisions.StoryDirection == DirectionIntroduceConflict && s.chance(0.3) {
		return &CompanionAction{
			CompanionName: companion.Name,
			Action:        "reveal_information",
			Reasoning:     "Time to advance the plot with new information",
		}
	}

	return nil
}

func isFriendly(companion *entities.Companion) bool {
	if companion.Personality == entities.PersonalityProtective {
		return true
	}
	for _, trait := range companion.Traits {
		if strings.Contains(strings.ToLower(trait), "friendly") {
			return true
		}
	}
	return false
}

// decideWorldEvent picks at most one background happening
func (s *service) decideWorldEvent(eng *engine, decisions *Decisions) *WorldEvent {
	if decisions.TensionAdjustment == TensionIncrease {
		return &WorldEvent{
			EventType:   "distant_commotion",
			Description: "Sounds of conflict echo from the distance",
			Impact:      "increases_tension",
		}
	}

	if eng.world.TimeOfDay == "night" && s.chance(0.2) {
		return &WorldEvent{
			EventType:   "mysterious_arrival",
			Description: "A hooded figure enters the establishment",
			Impact:      "introduces_mystery",
		}
	}

	return nil
}

// planDevelopment collects growth opportunities for an attached player
func planDevelopment(character *CharacterContext, analysis *Analysis) *CharacterDevelopment {
	var opportunities []string

	if float64(character.HP) < float64(character.MaxHP)*0.5 {
		opportunities = append(opportunities, "healing_opportunity")
	}

	if analysis.RiskTolerance < 0.3 {
		opportunities = append(opportunities, "courage_test")
	}

	switch strings.ToLower(character.Class) {
	case "wizard", "mage":
		opportunities = append(opportunities, "magical_discovery")
	case "rogue":
		opportunities = append(opportunities, "stealth_challenge")
	}

	return &CharacterDevelopment{
		Opportunities: opportunities,
		Timing:        "near_future",
	}
}

// plan prunes the stale backlog and queues beats implied by this cycle's
// decisions
func (eng *engine) plan(decisions *Decisions) {
	kept := eng.backlog[:0]
	for _, action := range eng.backlog {
		if action.Priority >= backlogKeepPriority {
			kept = append(kept, action)
		}
	}
	eng.backlog = kept

	if decisions.StoryDirection == DirectionRevealMystery {
		eng.backlog = append(eng.backlog, &PlannedAction{
			ActionType:      "introduce_clue",
			Target:          "mystery_plot",
			Reasoning:       "Player enjoys exploration, time to reveal mystery elements",
			ExpectedOutcome: "Increased engagement and story progression",
			Priority:        8,
		})
	}

	if decisions.CharacterDevelopment != nil {
		eng.backlog = append(eng.backlog, &PlannedAction{
			ActionType:      "character_growth_opportunity",
			Target:          "main_character",
			Reasoning:       "Player is attached to character, provide growth opportunity",
			ExpectedOutcome: "Deeper character investment",
			Priority:        7,
			Development:     decisions.CharacterDevelopment,
		})
	}
}

// execute fires the top backlog beats and removes them
func (eng *engine) execute() []*Fragment {
	if len(eng.backlog) == 0 {
		return nil
	}

	sort.SliceStable(eng.backlog, func(i, j int) bool {
		return eng.backlog[i].Priority > eng.backlog[j].Priority
	})

	count := executePerTurn
	if count > len(eng.backlog) {
		count = len(eng.backlog)
	}

	var fragments []*Fragment
	for _, action := range eng.backlog[:count] {
		if fragment := executeAction(action); fragment != nil {
			fragments = append(fragments, fragment)
		}
	}
	eng.backlog = eng.backlog[count:]

	return fragments
}

func executeAction(action *PlannedAction) *Fragment {
	switch action.ActionType {
	case "introduce_clue":
		return &Fragment{
			Type:    "story_element",
			Content: "You notice something unusual that catches your attention...",
			Effect:  "mystery_advanced",
		}
	case "character_growth_opportunity":
		if action.Development != nil {
			for _, opportunity := range action.Development.Opportunities {
				if opportunity == "healing_opportunity" {
					return &Fragment{
						Type:    "world_element",
						Content: "A warm, magical spring bubbles nearby, emanating healing energy.",
						Effect:  "healing_available",
					}
				}
			}
		}
	}
	return nil
}
