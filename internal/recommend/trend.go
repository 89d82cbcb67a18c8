package recommend

const (
	longTermThresholdPercent   = 2.5
	shortTermProgressPercent   = 1.0
	shortTermRegressionPercent = -2.0
	shortTermSessions          = 3
)

// Classify decides the training status from the estimate of the last two weeks, the estimate
// of four to six weeks ago and the recent sessions.
//
// Without an estimate from four to six weeks ago the status comes from the earliest and latest
// of the last three recent sessions, so a new lifter is not stuck without a trend.
func Classify(current, previous float64, sessionCount int, recent []SessionBest) Status {
	if sessionCount < 2 { //nolint:mnd // a trend needs two sessions
		return StatusInsufficientData
	}

	if previous > 0 {
		change := (current - previous) * 100 / previous
		switch {
		case change >= longTermThresholdPercent:
			return StatusProgressing
		case change <= -longTermThresholdPercent:
			return StatusRegressing
		default:
			return StatusPlateau
		}
	}

	entries := 0
	for _, session := range recent {
		entries += session.Sets
	}
	if entries < 2 || len(recent) == 0 { //nolint:mnd // two data points
		return StatusInsufficientData
	}

	window := recent[max(len(recent)-shortTermSessions, 0):]
	earliest, latest := window[0].Estimate, window[len(window)-1].Estimate
	if earliest <= 0 {
		return StatusInsufficientData
	}
	change := (latest - earliest) * 100 / earliest
	switch {
	case change > shortTermProgressPercent:
		return StatusProgressing
	case change < shortTermRegressionPercent:
		return StatusRegressing
	default:
		return StatusPlateau
	}
}
