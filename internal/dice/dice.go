package dice

import (
	"regexp"
	"strconv"
	"strings"

	dmerr "github.com/mythgate/dungeonmind/internal/errors"
)

// notationPattern matches standard dice notation like "2d6+3", "d20", "1d8-1".
// The leading count defaults to 1 when omitted.
var notationPattern = regexp.MustCompile(`^(\d*)d(\d+)([+-]\d+)?$`)

// RollResult holds the outcome of a single dice resolution.
type RollResult struct {
	Notation     string `json:"notation"`
	Rolls        []int  `json:"rolls"`
	Counted      int    `json:"counted"`
	Total        int    `json:"total"`
	Modifier     int    `json:"modifier"`
	Advantage    bool   `json:"advantage,omitempty"`
	Disadvantage bool   `json:"disadvantage,omitempty"`
	Critical     bool   `json:"critical,omitempty"`
}

// ParseNotation parses dice notation into (count, sides, modifier).
// Whitespace is stripped and matching is case-insensitive.
func ParseNotation(notation string) (count, sides, modifier int, err error) {
	cleaned := strings.ToLower(strings.ReplaceAll(notation, " ", ""))

	match := notationPattern.FindStringSubmatch(cleaned)
	if match == nil {
		return 0, 0, 0, dmerr.InvalidArgumentf("invalid dice notation: %s", notation)
	}

	count = 1
	if match[1] != "" {
		count, err = strconv.Atoi(match[1])
		if err != nil {
			return 0, 0, 0, dmerr.InvalidArgumentf("invalid dice notation: %s", notation)
		}
	}

	sides, err = strconv.Atoi(match[2])
	if err != nil || sides < 1 {
		return 0, 0, 0, dmerr.InvalidArgumentf("invalid dice notation: %s", notation)
	}

	if match[3] != "" {
		modifier, err = strconv.Atoi(match[3])
		if err != nil {
			return 0, 0, 0, dmerr.InvalidArgumentf("invalid dice notation: %s", notation)
		}
	}

	if count < 1 {
		return 0, 0, 0, dmerr.InvalidArgumentf("invalid dice notation: %s", notation)
	}

	return count, sides, modifier, nil
}

// roll resolves a parsed notation using the given die function. dieFn must
// return a uniform value in [1, sides].
func roll(notation string, advantage, disadvantage bool, dieFn func(sides int) int) (*RollResult, error) {
	count, sides, modifier, err := ParseNotation(notation)
	if err != nil {
		return nil, err
	}

	result := &RollResult{
		Notation:     notation,
		Modifier:     modifier,
		Advantage:    advantage,
		Disadvantage: disadvantage,
	}

	// Advantage and disadvantage only have a numeric effect on a single d20.
	// When both flags are set, advantage wins the selection.
	if (advantage || disadvantage) && sides == 20 && count == 1 {
		roll1 := dieFn(sides)
		roll2 := dieFn(sides)

		counted := roll1
		if advantage {
			if roll2 > counted {
				counted = roll2
			}
		} else {
			if roll2 < counted {
				counted = roll2
			}
		}

		result.Rolls = []int{roll1, roll2}
		result.Counted = counted
		result.Total = counted + modifier
		result.Critical = counted == 20
		return result, nil
	}

	rolls := make([]int, count)
	total := 0
	for i := 0; i < count; i++ {
		rolls[i] = dieFn(sides)
		total += rolls[i]
	}

	result.Rolls = rolls
	result.Total = total + modifier
	if count == 1 {
		result.Counted = rolls[0]
	}
	result.Critical = sides == 20 && count == 1 && rolls[0] == 20

	return result, nil
}
