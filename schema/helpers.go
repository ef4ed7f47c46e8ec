package schema

import (
	"slices"
	"strings"
)

// PlayLabel returns the control label shown for a unit in the given state.
func PlayLabel(unit StepUnit, state PlaybackState) string {
	noun := UnitNoun(unit)
	if state == RunningState {
		return "⏸ Pause " + noun
	}
	return "▶ Play " + noun
}

// UnitNoun returns the plural display noun of a step unit.
func UnitNoun(unit StepUnit) string {
	switch unit {
	case DayStep:
		return "Days"
	default:
		return "Years"
	}
}

// IsKnownVariable reports whether v is served by the frame endpoint.
func IsKnownVariable(v string) bool { return slices.Contains(Variables, v) }

// IsKnownModel reports whether m is served by the frame endpoint.
func IsKnownModel(m string) bool { return slices.Contains(Models, m) }

// IsKnownScenario reports whether s is served by the frame endpoint.
func IsKnownScenario(s string) bool { return slices.Contains(Scenarios, s) }

// ParseStepUnit converts user input into a StepUnit.
func ParseStepUnit(s string) (StepUnit, bool) {
	unit := StepUnit(strings.ToLower(strings.TrimSpace(s)))
	switch unit {
	case "years", "y":
		unit = YearStep
	case "days", "d":
		unit = DayStep
	}
	_, ok := ValidStepUnits[unit]
	return unit, ok
}
