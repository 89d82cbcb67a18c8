package recommend

import "math"

// PlateauStrategy is a way of breaking through a plateau.
type PlateauStrategy string

const (
	StrategyMicroLoad        PlateauStrategy = "micro_load"
	StrategyAddSet           PlateauStrategy = "add_set"
	StrategyExtendRepCeiling PlateauStrategy = "extend_rep_ceiling"
	StrategyReset            PlateauStrategy = "reset"
)

//nolint:gochecknoglobals // fixed rotation order
var plateauRotation = [...]PlateauStrategy{
	StrategyMicroLoad,
	StrategyAddSet,
	StrategyExtendRepCeiling,
	StrategyReset,
}

const (
	plateauSessions        = 3
	plateauSpreadThreshold = 0.02
	weightTolerance        = 1e-6
)

// IsPlateau reports whether the best sets of the last three sessions lie within 2% of each
// other.
func IsPlateau(sessions []SessionBest) bool {
	if len(sessions) < plateauSessions {
		return false
	}
	last := sessions[len(sessions)-plateauSessions:]
	best, worst := last[0].Estimate, last[0].Estimate
	for _, s := range last[1:] {
		best = max(best, s.Estimate)
		worst = min(worst, s.Estimate)
	}
	if worst <= 0 {
		return false
	}
	return best-worst < worst*plateauSpreadThreshold
}

// SelectStrategy rotates through the strategies by the number of entries already logged at
// the current weight, so consecutive plateaus get different treatments.
func SelectStrategy(entries []WorkoutEntry, currentWeightKg float64) PlateauStrategy {
	atWeight := 0
	for _, e := range entries {
		if e.IsActive() && math.Abs(e.WeightKg-currentWeightKg) < weightTolerance {
			atWeight++
		}
	}
	return plateauRotation[atWeight%len(plateauRotation)]
}
