package recommend

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

// WorkoutEntry is one logged set of an exercise.
//
// Date is a calendar day; any time-of-day component is ignored. Excluded entries are
// soft-deleted by the user and never contribute to a recommendation.
type WorkoutEntry struct {
	ID            string    `json:"id"`
	ExerciseName  string    `json:"exerciseName"`
	Date          time.Time `json:"date"`
	WeightKg      float64   `json:"weightKg"`
	Reps          int       `json:"reps"`
	SetsLogged    *int      `json:"setsLogged,omitempty"`
	RepsInReserve *int      `json:"repsInReserve,omitempty"`
	Excluded      bool      `json:"excluded"`
}

// IsActive reports whether the entry takes part in recommendations.
func (e WorkoutEntry) IsActive() bool {
	return !e.Excluded
}

// Status classifies the training state a recommendation was built for.
type Status string

const (
	StatusProgressing      Status = "progressing"
	StatusPlateau          Status = "plateau"
	StatusRegressing       Status = "regressing"
	StatusInsufficientData Status = "insufficient_data"
	StatusBenchmarkMode    Status = "benchmark_mode"
	StatusProgressive      Status = "progressive"
)

// Flag is a stable tag consumers use to pick display text.
type Flag string

const (
	FlagBenchmarkMode                  Flag = "benchmark_mode"
	FlagReturningFromBreak             Flag = "returning_from_break"
	FlagPostBenchmarkFirstPrescription Flag = "post_benchmark_first_prescription"
	FlagBenchmarkAnalysisFailed        Flag = "benchmark_analysis_failed"
	FlagSignificantStrengthLoss        Flag = "significant_strength_loss_detected"
	FlagHighRepData                    Flag = "high_rep_data_detected_e1rm_estimated"
	FlagRecoveryWeekRecommended        Flag = "recovery_week_recommended"
	FlagProgressiveLoadingFromRecent   Flag = "progressive_loading_from_recent_session"
	FlagBaselineEstablishmentPhase     Flag = "baseline_establishment_phase"
)

// Range is an inclusive integer range such as a rep range. A range with Min == Max is a
// specific number.
type Range struct {
	Min int
	Max int
}

// Fixed returns the range containing only n.
func Fixed(n int) Range {
	return Range{Min: n, Max: n}
}

// IsFixed reports whether the range is a single number.
func (r Range) IsFixed() bool {
	return r.Min == r.Max
}

// String formats the range as "3-5", or "8" for a specific number.
func (r Range) String() string {
	if r.IsFixed() {
		return strconv.Itoa(r.Min)
	}
	return fmt.Sprintf("%d-%d", r.Min, r.Max)
}

// MarshalJSON encodes a specific number as a JSON number and a range as a "min-max" string.
func (r Range) MarshalJSON() ([]byte, error) {
	if r.IsFixed() {
		return json.Marshal(r.Min)
	}
	return json.Marshal(r.String())
}

func (r *Range) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*r = Fixed(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("range must be a number or a \"min-max\" string: %w", err)
	}
	parsed, err := ParseRange(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRange parses "8" or "8-12".
func ParseRange(s string) (Range, error) {
	lo, hi, found := strings.Cut(strings.TrimSpace(s), "-")
	minimum, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return Range{}, fmt.Errorf("parse range %q: %w", s, err)
	}
	if !found {
		return Fixed(minimum), nil
	}
	maximum, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return Range{}, fmt.Errorf("parse range %q: %w", s, err)
	}
	if maximum < minimum {
		return Range{}, fmt.Errorf("parse range %q: max below min", s)
	}
	return Range{Min: minimum, Max: maximum}, nil
}

// Prescription is what the lifter should do in the next session.
type Prescription struct {
	Sets                  Range    `json:"sets"`
	Reps                  Range    `json:"reps"`
	TargetReps            *int     `json:"targetReps,omitempty"`
	WeightKg              *float64 `json:"weightKg"`
	RestSeconds           int      `json:"restSeconds"`
	EffortMarginTarget    int      `json:"effortMarginTarget"`
	BenchmarkInstructions []string `json:"benchmarkInstructions,omitempty"`
}

// ReasoningBreakdown explains a prescription in four short texts.
type ReasoningBreakdown struct {
	LastSession string `json:"lastSession"`
	Trend       string `json:"trend"`
	NextStep    string `json:"nextStep"`
	Calculation string `json:"calculation"`
}

// BenchmarkBaseline describes the set a first real prescription was derived from.
type BenchmarkBaseline struct {
	Estimate    float64   `json:"estimate"`
	BestSet     string    `json:"bestSet"`
	SessionDate time.Time `json:"sessionDate"`
}

// Recommendation is the engine output. It is recomputed on every call and never stored.
type Recommendation struct {
	Exercise           string             `json:"exercise"`
	Phase              Phase              `json:"phase"`
	Prescription       Prescription       `json:"prescription"`
	IntensityPercent   *float64           `json:"intensityPercent"`
	CalculatedEstimate float64            `json:"calculatedEstimate"`
	TrainingStatus     Status             `json:"trainingStatus"`
	Rationale          string             `json:"rationale"`
	Flags              []Flag             `json:"flags"`
	ReasoningBreakdown ReasoningBreakdown `json:"reasoningBreakdown"`
	BenchmarkMode      bool               `json:"benchmarkMode"`
	BenchmarkBaseline  *BenchmarkBaseline `json:"benchmarkBaseline,omitempty"`
}

// HasFlag reports whether flag is set on the recommendation.
func (r Recommendation) HasFlag(flag Flag) bool {
	return slices.Contains(r.Flags, flag)
}
