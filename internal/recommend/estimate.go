package recommend

import (
	"math"

	"github.com/myrjola/nextlift/internal/ptr"
)

const (
	// defaultRepsInReserve is assumed when a set was logged without reps in reserve.
	defaultRepsInReserve = 2
	// maxEffectiveReps caps the fatigue model, which is unreliable past about 12 reps.
	maxEffectiveReps = 12
	// LoadIncrementKg is the plate step every prescribed weight snaps to.
	LoadIncrementKg = 1.25
)

// EstimateOneRepMax estimates the one-rep max of a set from its weight, reps and reps in
// reserve. A nil rir counts as 2. Non-positive weight or reps is no lift and estimates 0.
func EstimateOneRepMax(weightKg float64, reps int, rir *int) float64 {
	return estimateWithModifier(weightKg, reps, rir, 1)
}

func estimateWithModifier(weightKg float64, reps int, rir *int, modifier float64) float64 {
	if weightKg <= 0 || reps <= 0 {
		return 0
	}
	margin := max(ptr.Deref(rir, defaultRepsInReserve), 0)
	effectiveReps := min(reps+margin, maxEffectiveReps)
	raw := weightKg * 36 / float64(37-effectiveReps) //nolint:mnd // Brzycki coefficients
	if modifier > 0 {
		raw *= modifier
	}
	return roundOneDecimal(raw)
}

// RoundToIncrement rounds a weight to the nearest multiple of LoadIncrementKg.
func RoundToIncrement(weightKg float64) float64 {
	if weightKg <= 0 {
		return 0
	}
	return math.Round(weightKg/LoadIncrementKg) * LoadIncrementKg
}

// roundWeight is RoundToIncrement for a load that must stay on the bar.
func roundWeight(weightKg float64) float64 {
	return max(RoundToIncrement(weightKg), LoadIncrementKg)
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10 //nolint:mnd // one decimal
}
