package recommend

import (
	"fmt"
	"slices"
	"time"

	"github.com/myrjola/nextlift/internal/ptr"
)

const (
	longBreakDays          = 14
	extendedBreakDays      = 28
	longBreakReduction     = 0.10
	extendedBreakReduction = 0.15
	regressionThreshold    = 0.90
	highRepThreshold       = 15

	benchmarkEffortMargin = 3
	benchmarkRestSeconds  = 120
)

//nolint:gochecknoglobals // static template
var benchmarkInstructions = []string{
	"Warm up with 2-3 light sets, adding load each set.",
	"Pick a load you can lift for 5-12 clean reps, stopping with about 3 reps in reserve.",
	"Perform 3-5 working sets and adjust the load between sets if reps fall outside 5-12.",
	"Log weight, reps and reps in reserve for every working set.",
}

// guard either settles the recommendation or annotates the analysis and lets the next one
// run.
type guard struct {
	name  string
	check func(a *analysis) (Recommendation, bool)
}

// edgeCaseGuards run in order and the first settling guard wins.
//
//nolint:gochecknoglobals // ordered dispatch table
var edgeCaseGuards = []guard{
	{name: "benchmark", check: benchmarkGuard},
	{name: "long_break", check: longBreakGuard},
	{name: "single_session", check: singleSessionGuard},
	{name: "significant_regression", check: significantRegressionGuard},
	{name: "high_rep_outlier", check: highRepOutlierGuard},
}

func (a *analysis) route() (Recommendation, bool) {
	for _, g := range edgeCaseGuards {
		if rec, ok := g.check(a); ok {
			return rec, true
		}
	}
	return Recommendation{}, false
}

func (a *analysis) benchmarkRecommendation(rationale string) Recommendation {
	a.derivation = "No estimate yet. The benchmark session establishes the first one."
	return Recommendation{
		Prescription: Prescription{
			Sets:                  Range{Min: 3, Max: 5},  //nolint:mnd // exploration template
			Reps:                  Range{Min: 5, Max: 12}, //nolint:mnd // exploration template
			RestSeconds:           benchmarkRestSeconds,
			EffortMarginTarget:    benchmarkEffortMargin,
			BenchmarkInstructions: slices.Clone(benchmarkInstructions),
		},
		TrainingStatus: StatusBenchmarkMode,
		Rationale:      rationale,
		BenchmarkMode:  true,
	}
}

// benchmarkGuard handles an exercise without active history.
func benchmarkGuard(a *analysis) (Recommendation, bool) {
	if a.snapshot.Len() > 0 {
		return Recommendation{}, false
	}
	a.flag(FlagBenchmarkMode)
	return a.benchmarkRecommendation(fmt.Sprintf(
		"No sessions logged for %s yet. Run a benchmark session to find your working weights.", a.exercise)), true
}

// longBreakGuard handles a lifter returning after more than two weeks off. It runs before the
// single session guard so one old entry counts as a break.
func longBreakGuard(a *analysis) (Recommendation, bool) {
	days, ok := a.snapshot.DaysSinceLastSession()
	if !ok || days <= longBreakDays {
		return Recommendation{}, false
	}
	a.flag(FlagReturningFromBreak)

	reduction := longBreakReduction
	if days > extendedBreakDays {
		reduction = extendedBreakReduction
	}
	// The reduction starts from the last session's best, not from an older peak.
	base := a.sessions[len(a.sessions)-1].Estimate
	a.working = roundOneDecimal(base * (1 - reduction))

	targetReps := a.phase.Reps.Min
	p := Prescription{
		Sets:               Fixed(a.sets),
		Reps:               a.phase.Reps,
		TargetReps:         &targetReps,
		RestSeconds:        a.phase.RestSeconds.Max,
		EffortMarginTarget: a.effortTarget() + 1,
	}
	if a.working > 0 {
		raw := a.working * a.phase.MidIntensity()
		p.WeightKg = ptr.Ref(roundWeight(raw))
		a.derivation = fmt.Sprintf("%s kg last session estimate - %s%% = %s kg. %s kg × %s%% = %s kg, rounded to %s kg.",
			formatKg(base), formatPercent(reduction), formatKg(a.working),
			formatKg(a.working), formatPercent(a.phase.MidIntensity()), formatKg(raw), formatKg(*p.WeightKg))
	} else {
		a.derivation = "The last session has no analyzable sets, so no weight can be derived."
	}

	return Recommendation{
		Prescription:   p,
		TrainingStatus: StatusInsufficientData,
		Rationale: fmt.Sprintf("It has been %d days since your last %s session. "+
			"Your estimated max is reduced by %s%% to %s kg, so ease back in at moderate intensity "+
			"with an extra rep in reserve.", days, a.exercise, formatPercent(reduction), formatKg(a.working)),
	}, true
}

// singleSessionGuard issues the first real prescription after a benchmark session.
func singleSessionGuard(a *analysis) (Recommendation, bool) {
	if len(a.sessions) != 1 {
		return Recommendation{}, false
	}
	session := a.sessions[0]
	date := session.Date.Format(time.DateOnly)

	if session.Estimate <= 0 {
		a.flag(FlagBenchmarkAnalysisFailed)
		return a.benchmarkRecommendation(fmt.Sprintf(
			"None of the %s sets logged on %s could be analyzed. Repeat the benchmark session "+
				"and log weight and reps for every working set.", a.exercise, date)), true
	}

	a.flag(FlagPostBenchmarkFirstPrescription)
	a.working = session.Estimate
	raw := a.working * a.phase.MidIntensity()
	weight := roundWeight(raw)
	targetReps := a.phase.Reps.Min
	best := describeSet(session.Entry)
	a.derivation = fmt.Sprintf("Best benchmark set %s estimates %s kg. %s kg × %s%% = %s kg, rounded to %s kg.",
		best, formatKg(a.working), formatKg(a.working), formatPercent(a.phase.MidIntensity()),
		formatKg(raw), formatKg(weight))

	return Recommendation{
		Prescription: Prescription{
			Sets:               Fixed(a.sets),
			Reps:               a.phase.Reps,
			TargetReps:         &targetReps,
			WeightKg:           &weight,
			RestSeconds:        a.restMidpoint(),
			EffortMarginTarget: a.effortTarget(),
		},
		TrainingStatus: StatusProgressive,
		Rationale: fmt.Sprintf("First prescription after your benchmark on %s. Your best set (%s) "+
			"puts your estimated max at %s kg.", date, best, formatKg(a.working)),
		BenchmarkBaseline: &BenchmarkBaseline{
			Estimate:    a.working,
			BestSet:     best,
			SessionDate: session.Date,
		},
	}, true
}

// significantRegressionGuard bases the prescription on the last two weeks when they are more
// than 10% below the estimate of four to six weeks ago.
func significantRegressionGuard(a *analysis) (Recommendation, bool) {
	if a.previous > 0 && a.current > 0 && a.current < a.previous*regressionThreshold {
		a.flag(FlagSignificantStrengthLoss)
		a.working = a.current
	}
	return Recommendation{}, false
}

// highRepOutlierGuard marks estimates resting on a very high rep set as less reliable.
func highRepOutlierGuard(a *analysis) (Recommendation, bool) {
	if a.hasLast && a.last.Reps > highRepThreshold {
		a.flag(FlagHighRepData)
	}
	return Recommendation{}, false
}
