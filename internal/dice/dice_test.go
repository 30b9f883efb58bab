package dice_test

import (
	"testing"

	"github.com/mythgate/dungeonmind/internal/dice"
	dmerr "github.com/mythgate/dungeonmind/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotation(t *testing.T) {
	tests := []struct {
		name         string
		notation     string
		wantCount    int
		wantSides    int
		wantModifier int
		wantErr      bool
	}{
		{name: "simple", notation: "2d6", wantCount: 2, wantSides: 6},
		{name: "with positive modifier", notation: "1d20+5", wantCount: 1, wantSides: 20, wantModifier: 5},
		{name: "with negative modifier", notation: "1d4-1", wantCount: 1, wantSides: 4, wantModifier: -1},
		{name: "count defaults to one", notation: "d8", wantCount: 1, wantSides: 8},
		{name: "whitespace and case", notation: " 2 D 6 + 3 ", wantCount: 2, wantSides: 6, wantModifier: 3},
		{name: "missing sides", notation: "2d", wantErr: true},
		{name: "not dice at all", notation: "fireball", wantErr: true},
		{name: "trailing garbage", notation: "2d6+3x", wantErr: true},
		{name: "zero count", notation: "0d6", wantErr: true},
		{name: "empty", notation: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, sides, modifier, err := dice.ParseNotation(tt.notation)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dmerr.IsInvalidArgument(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, count)
			assert.Equal(t, tt.wantSides, sides)
			assert.Equal(t, tt.wantModifier, modifier)
		})
	}
}

func TestRoll_TotalMatchesDice(t *testing.T) {
	roller := dice.NewSeededRoller(42)

	for i := 0; i < 1000; i++ {
		result, err := roller.Roll("3d6+2")
		require.NoError(t, err)

		require.Len(t, result.Rolls, 3)
		sum := 0
		for _, roll := range result.Rolls {
			assert.GreaterOrEqual(t, roll, 1)
			assert.LessOrEqual(t, roll, 6)
			sum += roll
		}
		assert.Equal(t, sum+2, result.Total)
		assert.Equal(t, 2, result.Modifier)
		assert.False(t, result.Critical)
	}
}

func TestRoll_CriticalRate(t *testing.T) {
	roller := dice.NewSeededRoller(7)

	const trials = 10000
	crits := 0
	for i := 0; i < trials; i++ {
		result, err := roller.Roll("1d20")
		require.NoError(t, err)
		if result.Critical {
			assert.Equal(t, 20, result.Rolls[0])
			crits++
		}
	}

	// Expect roughly 1/20 criticals with generous statistical tolerance.
	rate := float64(crits) / float64(trials)
	assert.InDelta(t, 0.05, rate, 0.01)
}

func TestRoll_CriticalOnlyForSingleD20(t *testing.T) {
	roller := dice.NewMockRoller()

	roller.SetRolls([]int{20, 20})
	result, err := roller.Roll("2d20")
	require.NoError(t, err)
	assert.False(t, result.Critical)

	roller.SetRolls([]int{6})
	result, err = roller.Roll("1d6")
	require.NoError(t, err)
	assert.False(t, result.Critical)

	roller.SetRolls([]int{20})
	result, err = roller.Roll("1d20")
	require.NoError(t, err)
	assert.True(t, result.Critical)
}

func TestRollWithAdvantage(t *testing.T) {
	roller := dice.NewMockRoller()

	roller.SetRolls([]int{8, 17})
	result, err := roller.RollWithAdvantage("1d20+3")
	require.NoError(t, err)

	assert.Equal(t, []int{8, 17}, result.Rolls)
	assert.Equal(t, 17, result.Counted)
	assert.Equal(t, 20, result.Total)
	assert.True(t, result.Advantage)
	assert.False(t, result.Critical)

	roller.SetRolls([]int{20, 3})
	result, err = roller.RollWithAdvantage("1d20")
	require.NoError(t, err)
	assert.Equal(t, 20, result.Counted)
	assert.True(t, result.Critical)
}

func TestRollWithDisadvantage(t *testing.T) {
	roller := dice.NewMockRoller()

	roller.SetRolls([]int{8, 17})
	result, err := roller.RollWithDisadvantage("1d20+3")
	require.NoError(t, err)

	assert.Equal(t, 8, result.Counted)
	assert.Equal(t, 11, result.Total)
	assert.True(t, result.Disadvantage)

	// A 20 that is not counted is not a critical.
	roller.SetRolls([]int{20, 3})
	result, err = roller.RollWithDisadvantage("1d20")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Counted)
	assert.False(t, result.Critical)
}

func TestRollWithAdvantage_NoEffectOffD20(t *testing.T) {
	roller := dice.NewMockRoller()

	// Advantage on 2d6 is accepted but rolls the plain pool.
	roller.SetRolls([]int{4, 5})
	result, err := roller.RollWithAdvantage("2d6+1")
	require.NoError(t, err)

	assert.Equal(t, []int{4, 5}, result.Rolls)
	assert.Equal(t, 10, result.Total)
	assert.True(t, result.Advantage)
}

func TestMockRoller_Exhausted(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{4})

	_, err := roller.Roll("2d6")
	require.Error(t, err)
}

func TestMockRoller_InvalidForDieSize(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{7})

	_, err := roller.Roll("1d6")
	require.Error(t, err)
}
