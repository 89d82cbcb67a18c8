package recommend

import (
	"fmt"
	"math"

	"github.com/myrjola/nextlift/internal/ptr"
)

const (
	minSets = 2

	recoveryWeightFactor    = 0.75
	recoveryExtraRIR        = 2
	resetWeightFactor       = 0.9
	extendedRepCeilingBonus = 2
	baselineFactor          = 0.7
	// sessionsPerWeek splits an exercise's weekly set budget into a per-session cap.
	sessionsPerWeek = 2
)

// AgeMultiplier scales training volume down as recovery capacity declines with age.
func AgeMultiplier(age int) float64 {
	switch {
	case age <= 30: //nolint:mnd // age brackets
		return 1.0
	case age <= 40: //nolint:mnd // age brackets
		return 0.95
	case age <= 50: //nolint:mnd // age brackets
		return 0.85
	case age <= 60: //nolint:mnd // age brackets
		return 0.75
	default:
		return 0.65
	}
}

// AdjustedSetCount is the phase's base set count scaled by AgeMultiplier, never below two.
func AdjustedSetCount(baseSets, age int) int {
	return max(int(math.Round(float64(baseSets)*AgeMultiplier(age))), minSets)
}

func (a *analysis) prescribe() Recommendation {
	switch a.status {
	case StatusProgressing:
		if !a.lastUsable() {
			return a.establish()
		}
		return a.progress(StatusProgressing)
	case StatusPlateau:
		if !a.lastUsable() {
			return a.establish()
		}
		return a.resolvePlateau()
	case StatusRegressing:
		return a.recover()
	default:
		return a.establish()
	}
}

// workingPrescription builds the prescription shared by the progression branches.
func (a *analysis) workingPrescription(weight float64, sets int, reps Range, targetReps int) Prescription {
	return Prescription{
		Sets:               Fixed(sets),
		Reps:               reps,
		TargetReps:         &targetReps,
		WeightKg:           ptr.Ref(roundWeight(weight)),
		RestSeconds:        a.restMidpoint(),
		EffortMarginTarget: a.effortTarget(),
	}
}

// progress applies double progression: add load once the top of the rep range is reached
// with the target reps in reserve, otherwise add a rep.
func (a *analysis) progress(status Status) Recommendation {
	last := a.last
	rir := last.RepsInReserve
	if last.Reps < a.phase.Reps.Max || (rir != nil && *rir > a.effortTarget()) {
		return a.hold(status)
	}

	weight := last.WeightKg + a.cfg.LoadIncrementKg
	p := a.workingPrescription(weight, a.sets, a.phase.Reps, a.phase.Reps.Min)
	a.derivation = fmt.Sprintf("Top of the %s rep range reached. %s kg + %s kg increment = %s kg.",
		a.phase.Reps, formatKg(last.WeightKg), formatKg(a.cfg.LoadIncrementKg), formatKg(*p.WeightKg))
	return Recommendation{
		Prescription:   p,
		TrainingStatus: status,
		Rationale: fmt.Sprintf("You reached %d reps at %s kg. Add %s kg and restart at %d reps.",
			last.Reps, formatKg(last.WeightKg), formatKg(a.cfg.LoadIncrementKg), a.phase.Reps.Min),
	}
}

// hold keeps the weight and asks for one more rep, capped at the top of the rep range.
func (a *analysis) hold(status Status) Recommendation {
	last := a.last
	targetReps := min(last.Reps+1, a.phase.Reps.Max)
	p := a.workingPrescription(last.WeightKg, a.sets, a.phase.Reps, targetReps)
	a.derivation = fmt.Sprintf("Weight held at %s kg. %d reps + 1 = %d reps, capped at %d.",
		formatKg(*p.WeightKg), last.Reps, last.Reps+1, a.phase.Reps.Max)
	return Recommendation{
		Prescription:   p,
		TrainingStatus: status,
		Rationale: fmt.Sprintf("Stay at %s kg and aim for %d reps before adding load.",
			formatKg(*p.WeightKg), targetReps),
	}
}

// resolvePlateau applies the rotated plateau strategy when the last sessions have stalled.
func (a *analysis) resolvePlateau() Recommendation {
	if !IsPlateau(a.sessions) {
		return a.hold(StatusPlateau)
	}

	last := a.last
	reps := a.phase.Reps
	strategy := SelectStrategy(a.snapshot.Entries(), last.WeightKg)

	var (
		p         Prescription
		rationale string
	)
	increment := a.cfg.LoadIncrementKg / 2 //nolint:mnd // half step
	if strategy == StrategyMicroLoad && increment < LoadIncrementKg {
		// Half a step would round back up to a full step, so add volume instead.
		strategy = StrategyAddSet
	}
	switch strategy {
	case StrategyMicroLoad:
		p = a.workingPrescription(last.WeightKg+increment, a.sets, reps, reps.Min)
		a.derivation = fmt.Sprintf("Micro load: %s kg + %s kg = %s kg, reps back to %d.",
			formatKg(last.WeightKg), formatKg(increment), formatKg(*p.WeightKg), reps.Min)
		rationale = fmt.Sprintf("Progress has stalled. Add a small %s kg step and restart at %d reps.",
			formatKg(*p.WeightKg-last.WeightKg), reps.Min)
	case StrategyAddSet:
		p, rationale = a.addSet()
	case StrategyExtendRepCeiling:
		extended := Range{Min: reps.Min, Max: reps.Max + extendedRepCeilingBonus}
		p = a.workingPrescription(last.WeightKg, a.sets, extended, extended.Max)
		a.derivation = fmt.Sprintf("Extended rep ceiling: %d + %d = %d reps at %s kg.",
			reps.Max, extendedRepCeilingBonus, extended.Max, formatKg(*p.WeightKg))
		rationale = fmt.Sprintf("Progress has stalled. Keep %s kg and push the rep ceiling to %d.",
			formatKg(*p.WeightKg), extended.Max)
	case StrategyReset:
		raw := last.WeightKg * resetWeightFactor
		p = a.workingPrescription(raw, a.sets, reps, reps.Max)
		a.derivation = fmt.Sprintf("Reset: %s kg × 90%% = %s kg, rounded to %s kg, for %d reps.",
			formatKg(last.WeightKg), formatKg(raw), formatKg(*p.WeightKg), reps.Max)
		rationale = fmt.Sprintf("Progress has stalled. Drop to %s kg and build back up from %d reps.",
			formatKg(*p.WeightKg), reps.Max)
	}

	return Recommendation{
		Prescription:   p,
		TrainingStatus: StatusPlateau,
		Rationale:      rationale,
	}
}

// addSet holds the weight and adds one set, capped at the per-session share of the
// weekly set budget.
func (a *analysis) addSet() (Prescription, string) {
	last := a.last
	reps := a.phase.Reps
	limit := max(a.cfg.MaxWeeklySets/sessionsPerWeek, minSets)
	sets := a.sets + 1
	if sets > limit {
		sets = a.sets
	}
	targetReps := max(min(last.Reps, reps.Max), reps.Min)
	p := a.workingPrescription(last.WeightKg, sets, reps, targetReps)
	a.derivation = fmt.Sprintf("Add set: %d sets + 1 = %d sets (at most %d of %d weekly), weight held at %s kg.",
		a.sets, a.sets+1, limit, a.cfg.MaxWeeklySets, formatKg(*p.WeightKg))
	rationale := fmt.Sprintf("Progress has stalled. Keep %s kg and add a set to raise the training volume.",
		formatKg(*p.WeightKg))
	if sets == a.sets {
		rationale = fmt.Sprintf("Progress has stalled. Keep %s kg at %d sets, the most a single session allows.",
			formatKg(*p.WeightKg), sets)
	}
	return p, rationale
}

// recover prescribes a lighter recovery week after a regression.
func (a *analysis) recover() Recommendation {
	a.flag(FlagRecoveryWeekRecommended)
	targetReps := a.phase.Reps.Min
	p := Prescription{
		Sets:               Fixed(max(a.sets/2, minSets)), //nolint:mnd // half the volume
		Reps:               a.phase.Reps,
		TargetReps:         &targetReps,
		RestSeconds:        a.phase.RestSeconds.Max,
		EffortMarginTarget: a.effortTarget() + recoveryExtraRIR,
	}
	rationale := "Your estimated max is trending down. Take a recovery week with fewer, lighter sets."
	if a.lastUsable() {
		raw := a.last.WeightKg * recoveryWeightFactor
		p.WeightKg = ptr.Ref(roundWeight(raw))
		a.derivation = fmt.Sprintf("Recovery: %s kg × 75%% = %s kg, rounded to %s kg. %d sets halved to %s.",
			formatKg(a.last.WeightKg), formatKg(raw), formatKg(*p.WeightKg), a.sets, p.Sets)
		rationale = fmt.Sprintf("Your estimated max is trending down. Take a recovery week at %s kg "+
			"with %s sets and %d reps in reserve.", formatKg(*p.WeightKg), p.Sets, p.EffortMarginTarget)
	} else {
		a.derivation = fmt.Sprintf("Recovery: %d sets halved to %s. The last session has no usable weight.",
			a.sets, p.Sets)
	}
	return Recommendation{
		Prescription:   p,
		TrainingStatus: StatusRegressing,
		Rationale:      rationale,
	}
}

// establish moves early sessions forward from the last usable set, or falls back to a
// conservative share of the estimate.
func (a *analysis) establish() Recommendation {
	if a.lastUsable() {
		a.flag(FlagProgressiveLoadingFromRecent)
		return a.progress(a.status)
	}

	a.flag(FlagBaselineEstablishmentPhase)
	estimate := a.working
	if estimate <= 0 {
		for _, s := range a.sessions {
			estimate = max(estimate, s.Estimate)
		}
	}
	targetReps := a.phase.Reps.Min
	p := Prescription{
		Sets:               Fixed(a.sets),
		Reps:               a.phase.Reps,
		TargetReps:         &targetReps,
		RestSeconds:        a.restMidpoint(),
		EffortMarginTarget: a.effortTarget(),
	}
	if estimate > 0 {
		a.working = estimate
		raw := estimate * baselineFactor
		p.WeightKg = ptr.Ref(roundWeight(raw))
		a.derivation = fmt.Sprintf("Baseline: %s kg estimate × 70%% = %s kg, rounded to %s kg.",
			formatKg(estimate), formatKg(raw), formatKg(*p.WeightKg))
	} else {
		a.derivation = "No analyzable sets yet, so no weight can be derived."
	}
	return Recommendation{
		Prescription:   p,
		TrainingStatus: a.status,
		Rationale:      "Not enough usable history to judge a trend. Train at a conservative baseline while it builds up.",
	}
}
