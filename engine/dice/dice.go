// Package dice parses NdM dice notation and produces roll outcomes,
// including single-die advantage rolls.
package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrNotation indicates malformed dice notation.
var ErrNotation = errors.New("dice: use NdM notation, e.g. '2d20'")

// ErrAdvantageCount indicates an advantage roll with more than one die.
var ErrAdvantageCount = errors.New("dice: advantage uses a single die, e.g. 'd20'")

// RollResult is the structured outcome of an NdM roll.
type RollResult struct {
	Notation string `json:"notation"`
	Count    int    `json:"count"`
	Sides    int    `json:"sides"`
	Rolls    []int  `json:"rolls"`
	Total    int    `json:"total"`
}

// AdvantageResult is the structured outcome of a single-die advantage roll.
type AdvantageResult struct {
	Notation          string `json:"notation"`
	Sides             int    `json:"sides"`
	Rolls             []int  `json:"rolls"`
	Result            int    `json:"result"`
	IsCriticalSuccess bool   `json:"is_critical_success"`
	IsCriticalFail    bool   `json:"is_critical_fail"`
	Message           string `json:"message"`
}

// Parse splits NdM notation into (count, sides). Count defaults to 1 when
// omitted ("d20" means "1d20"). Returns ErrNotation for anything else.
func Parse(notation string) (count, sides int, err error) {
	s := strings.ToLower(strings.TrimSpace(notation))
	before, after, found := strings.Cut(s, "d")
	if !found || after == "" {
		return 0, 0, fmt.Errorf("%w: got %q", ErrNotation, notation)
	}

	count = 1
	if before != "" {
		count, err = strconv.Atoi(before)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: got %q", ErrNotation, notation)
		}
	}
	sides, err = strconv.Atoi(after)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: got %q", ErrNotation, notation)
	}
	if count <= 0 || sides <= 0 {
		return 0, 0, fmt.Errorf("%w: count and sides must be positive", ErrNotation)
	}
	return count, sides, nil
}

// Roll rolls dice according to NdM notation using the given RNG
// (nil uses the process-wide generator).
func (r *RNG) Roll(notation string) (RollResult, error) {
	count, sides, err := Parse(notation)
	if err != nil {
		return RollResult{}, err
	}

	rolls := make([]int, count)
	total := 0
	for i := range rolls {
		rolls[i] = r.Die(sides)
		total += rolls[i]
	}

	return RollResult{
		Notation: notation,
		Count:    count,
		Sides:    sides,
		Rolls:    rolls,
		Total:    total,
	}, nil
}

// RollWithAdvantage rolls a single die twice and takes the higher result.
// The notation must resolve to exactly one die ("d20" or "1d20"); anything
// else returns ErrAdvantageCount. On a d20, a message flags natural 20s
// and 1s.
func (r *RNG) RollWithAdvantage(notation string) (AdvantageResult, error) {
	count, sides, err := Parse(notation)
	if err != nil {
		return AdvantageResult{}, err
	}
	if count != 1 {
		return AdvantageResult{}, fmt.Errorf("%w: got %q", ErrAdvantageCount, notation)
	}

	first := r.Die(sides)
	second := r.Die(sides)
	result := max(first, second)

	critSuccess := sides == 20 && result == 20
	critFail := sides == 20 && result == 1
	message := ""
	switch {
	case critSuccess:
		message = "Critical success"
	case critFail:
		message = "Critical fail"
	}

	return AdvantageResult{
		Notation:          fmt.Sprintf("d%d", sides),
		Sides:             sides,
		Rolls:             []int{first, second},
		Result:            result,
		IsCriticalSuccess: critSuccess,
		IsCriticalFail:    critFail,
		Message:           message,
	}, nil
}

// Roll rolls dice with the process-wide generator.
func Roll(notation string) (RollResult, error) {
	return (*RNG)(nil).Roll(notation)
}

// RollWithAdvantage rolls a single die with advantage using the
// process-wide generator.
func RollWithAdvantage(notation string) (AdvantageResult, error) {
	return (*RNG)(nil).RollWithAdvantage(notation)
}
