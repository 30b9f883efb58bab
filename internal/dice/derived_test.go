package dice_test

import (
	"sort"
	"testing"

	"github.com/mythgate/dungeonmind/internal/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollAbilityScores(t *testing.T) {
	roller := dice.NewSeededRoller(99)

	for i := 0; i < 100; i++ {
		scores, err := dice.RollAbilityScores(roller)
		require.NoError(t, err)

		require.Len(t, scores, 6)
		for _, name := range dice.AbilityNames {
			score, ok := scores[name]
			require.True(t, ok, "missing ability %s", name)
			assert.GreaterOrEqual(t, score, 3)
			assert.LessOrEqual(t, score, 18)
		}
	}
}

func TestRollAbilityScores_DropsLowest(t *testing.T) {
	roller := dice.NewMockRoller()

	// Six draws of 4d6; each score should be the sum of the top three.
	draws := [][]int{
		{6, 6, 6, 1},
		{1, 2, 3, 4},
		{5, 5, 5, 5},
		{1, 1, 1, 1},
		{6, 1, 6, 1},
		{2, 3, 2, 3},
	}
	var all []int
	for _, draw := range draws {
		all = append(all, draw...)
	}
	roller.SetRolls(all)

	scores, err := dice.RollAbilityScores(roller)
	require.NoError(t, err)

	for i, name := range dice.AbilityNames {
		sorted := append([]int(nil), draws[i]...)
		sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
		want := sorted[0] + sorted[1] + sorted[2]
		assert.Equal(t, want, scores[name], "ability %s", name)
	}
}

func TestRollHitPoints(t *testing.T) {
	roller := dice.NewMockRoller()

	// Level 1 gets max die + con modifier, no roll consumed.
	hp, err := dice.RollHitPoints(roller, "1d10", 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, hp)

	// Higher levels roll the die.
	roller.SetRolls([]int{4})
	hp, err = dice.RollHitPoints(roller, "1d10", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 6, hp)

	// Floor of 1 HP per level.
	roller.SetRolls([]int{1})
	hp, err = dice.RollHitPoints(roller, "1d6", -4, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, hp)
}

func TestRollDamage_CriticalDoublesDiceNotModifier(t *testing.T) {
	roller := dice.NewMockRoller()

	// "2d6+3" under critical becomes 4d6+3, consuming four dice.
	roller.SetRolls([]int{2, 3, 4, 5})
	result, err := dice.RollDamage(roller, "2d6+3", true)
	require.NoError(t, err)

	assert.Len(t, result.Rolls, 4)
	assert.Equal(t, 2+3+4+5+3, result.Total)
	assert.Equal(t, 3, result.Modifier)
	assert.True(t, result.Critical)

	// Non-critical rolls the notation as written.
	roller.SetRolls([]int{2, 3})
	result, err = dice.RollDamage(roller, "2d6+3", false)
	require.NoError(t, err)
	assert.Len(t, result.Rolls, 2)
	assert.Equal(t, 8, result.Total)
}

func TestRollSkillCheck_BonusAppliedAfterSelection(t *testing.T) {
	roller := dice.NewMockRoller()

	roller.SetRolls([]int{11, 15})
	result, err := dice.RollSkillCheck(roller, 4, true, false)
	require.NoError(t, err)

	assert.Equal(t, 15, result.Counted)
	assert.Equal(t, 19, result.Total)
	assert.Equal(t, 4, result.Modifier)
}

func TestRollSkillCheck_AdvantageWinsWhenBothSet(t *testing.T) {
	roller := dice.NewMockRoller()

	roller.SetRolls([]int{8, 17})
	result, err := dice.RollSkillCheck(roller, 0, true, true)
	require.NoError(t, err)

	assert.Equal(t, []int{8, 17}, result.Rolls)
	assert.Equal(t, 17, result.Counted)
	assert.True(t, result.Advantage)
}

func TestRollInitiative(t *testing.T) {
	roller := dice.NewMockRoller()

	roller.SetRolls([]int{13})
	result, err := dice.RollInitiative(roller, 3)
	require.NoError(t, err)

	assert.Equal(t, 16, result.Total)
	assert.Equal(t, 3, result.Modifier)
}

func TestRollAttackAndSavingThrow(t *testing.T) {
	roller := dice.NewMockRoller()

	roller.SetRolls([]int{20})
	attack, err := dice.RollAttack(roller, 5, false, false)
	require.NoError(t, err)
	assert.Equal(t, 25, attack.Total)
	assert.True(t, attack.Critical)

	roller.SetRolls([]int{9, 2})
	save, err := dice.RollSavingThrow(roller, 1, false, true)
	require.NoError(t, err)
	assert.Equal(t, 2, save.Counted)
	assert.Equal(t, 3, save.Total)
}
