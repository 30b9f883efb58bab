package dice

import (
	"fmt"
	"sort"
)

// AbilityNames lists the six ability scores in standard order.
var AbilityNames = []string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}

// RollAbilityScores rolls 4d6 drop lowest for each of the six abilities.
// Every score falls in [3, 18].
func RollAbilityScores(r Roller) (map[string]int, error) {
	scores := make(map[string]int, len(AbilityNames))

	for _, ability := range AbilityNames {
		result, err := r.Roll("4d6")
		if err != nil {
			return nil, err
		}

		rolls := append([]int(nil), result.Rolls...)
		sort.Sort(sort.Reverse(sort.IntSlice(rolls)))

		score := rolls[0] + rolls[1] + rolls[2]
		scores[ability] = score
	}

	return scores, nil
}

// RollHitPoints rolls hit points for a character level. Level 1 gets the
// maximum die value plus the constitution modifier; later levels roll the
// hit die, with a floor of 1 HP per level.
func RollHitPoints(r Roller, hitDie string, constitutionModifier, level int) (int, error) {
	_, sides, _, err := ParseNotation(hitDie)
	if err != nil {
		return 0, err
	}

	if level == 1 {
		return sides + constitutionModifier, nil
	}

	result, err := r.Roll(hitDie)
	if err != nil {
		return 0, err
	}

	hp := result.Total + constitutionModifier
	if hp < 1 {
		hp = 1
	}
	return hp, nil
}

// RollDamage rolls damage dice, doubling the die count (not the modifier)
// on a critical hit.
func RollDamage(r Roller, damageDice string, critical bool) (*RollResult, error) {
	if !critical {
		return r.Roll(damageDice)
	}

	count, sides, modifier, err := ParseNotation(damageDice)
	if err != nil {
		return nil, err
	}

	criticalNotation := fmt.Sprintf("%dd%d%+d", count*2, sides, modifier)
	result, err := r.Roll(criticalNotation)
	if err != nil {
		return nil, err
	}

	result.Critical = true
	return result, nil
}

// RollSkillCheck rolls 1d20 and adds the bonus after the fact, so advantage
// selection operates on the raw die.
func RollSkillCheck(r Roller, bonus int, advantage, disadvantage bool) (*RollResult, error) {
	var result *RollResult
	var err error

	// Advantage takes precedence when both flags are set.
	switch {
	case advantage:
		result, err = r.RollWithAdvantage("1d20")
	case disadvantage:
		result, err = r.RollWithDisadvantage("1d20")
	default:
		result, err = r.Roll("1d20")
	}
	if err != nil {
		return nil, err
	}

	result.Total += bonus
	result.Modifier = bonus
	return result, nil
}

// RollInitiative rolls initiative (1d20 + dexterity modifier)
func RollInitiative(r Roller, dexterityModifier int) (*RollResult, error) {
	return RollSkillCheck(r, dexterityModifier, false, false)
}

// RollAttack rolls an attack roll (1d20 + attack bonus)
func RollAttack(r Roller, attackBonus int, advantage, disadvantage bool) (*RollResult, error) {
	return RollSkillCheck(r, attackBonus, advantage, disadvantage)
}

// RollSavingThrow rolls a saving throw (1d20 + save bonus)
func RollSavingThrow(r Roller, saveBonus int, advantage, disadvantage bool) (*RollResult, error) {
	return RollSkillCheck(r, saveBonus, advantage, disadvantage)
}
