package recommend

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

func formatKg(kg float64) string {
	return strconv.FormatFloat(math.Round(kg*100)/100, 'f', -1, 64) //nolint:mnd // two decimals
}

// formatPercent formats a fraction as a percentage without the sign.
func formatPercent(fraction float64) string {
	return strconv.FormatFloat(roundOneDecimal(fraction*100), 'f', -1, 64) //nolint:mnd // percent
}

// describeSet formats a set like "110 kg × 8 reps @ 2 RIR".
func describeSet(e WorkoutEntry) string {
	s := fmt.Sprintf("%s kg × %d reps", formatKg(e.WeightKg), e.Reps)
	if e.RepsInReserve != nil {
		s += fmt.Sprintf(" @ %d RIR", *e.RepsInReserve)
	}
	return s
}

// explain derives the reasoning texts from the analysis and the finished prescription.
func (a *analysis) explain(rec Recommendation) ReasoningBreakdown {
	return ReasoningBreakdown{
		LastSession: a.explainLastSession(),
		Trend:       a.explainTrend(),
		NextStep:    explainNextStep(rec.Prescription),
		Calculation: a.derivation,
	}
}

func (a *analysis) explainLastSession() string {
	if !a.hasLast {
		return "No sets logged yet."
	}
	margin := "reps in reserve not logged"
	if a.last.RepsInReserve != nil {
		margin = fmt.Sprintf("%d reps in reserve", *a.last.RepsInReserve)
	}
	return fmt.Sprintf("%s: %s kg × %d reps, %s.",
		a.last.Date.Format(time.DateOnly), formatKg(a.last.WeightKg), a.last.Reps, margin)
}

func (a *analysis) explainTrend() string {
	switch {
	case !a.hasLast:
		return "No trend yet. The benchmark session sets the starting point."
	case a.current > 0 && a.previous > 0:
		change := (a.current - a.previous) * 100 / a.previous //nolint:mnd // percent
		return fmt.Sprintf("Estimated max %s kg against %s kg four to six weeks ago (%+.1f%%).",
			formatKg(a.current), formatKg(a.previous), change)
	case a.current == 0:
		return "No analyzable sessions in the last two weeks."
	case len(a.recent) >= 2: //nolint:mnd // two sessions make a trend
		window := a.recent[max(len(a.recent)-shortTermSessions, 0):]
		return fmt.Sprintf("Best set estimate went from %s kg to %s kg over the last %d sessions.",
			formatKg(window[0].Estimate), formatKg(window[len(window)-1].Estimate), len(window))
	default:
		return "Not enough sessions yet to judge a trend."
	}
}

func explainNextStep(p Prescription) string {
	if p.WeightKg == nil {
		return fmt.Sprintf("Explore loads for %s sets of %s reps, stopping each set with about %d reps in reserve.",
			p.Sets, p.Reps, p.EffortMarginTarget)
	}
	reps := p.Reps.String()
	if p.TargetReps != nil {
		reps = strconv.Itoa(*p.TargetReps)
	}
	return fmt.Sprintf("Do %s sets of %s reps at %s kg with %d reps in reserve, resting %d seconds between sets.",
		p.Sets, reps, formatKg(*p.WeightKg), p.EffortMarginTarget, p.RestSeconds)
}
