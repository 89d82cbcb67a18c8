package recommend

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// Estimate windows in days before today, both ends inclusive.
const (
	currentWindowStart  = 0
	currentWindowEnd    = 14
	previousWindowStart = 28
	previousWindowEnd   = 42
	recentWindowStart   = 0
	recentWindowEnd     = 27
)

// Request is the input of a single recommendation.
type Request struct {
	Exercise string
	// History may contain excluded entries and entries of any order.
	History []WorkoutEntry
	Age     int
	Phase   Phase
	// Now is the day the recommendation is made for. The zero value means today.
	Now time.Time
}

// Engine turns an exercise history into the next prescription. It holds no mutable state and
// is safe for concurrent use.
type Engine struct {
	catalog *Catalog
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine creates an engine. A nil catalog uses DefaultCatalog.
func NewEngine(catalog *Catalog, logger *slog.Logger) *Engine {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		catalog: catalog,
		logger:  logger,
		now:     time.Now,
	}
}

// Catalog returns the exercise table the engine was built with.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Generate recommends the next session for req.Exercise.
func (e *Engine) Generate(ctx context.Context, req Request) Recommendation {
	a := e.analyze(req)

	rec, routed := a.route()
	if !routed {
		rec = a.prescribe()
	}
	a.finish(&rec)

	e.logger.LogAttrs(ctx, slog.LevelDebug, "generated recommendation",
		slog.String("exercise", rec.Exercise),
		slog.String("phase", string(rec.Phase)),
		slog.String("status", string(rec.TrainingStatus)),
		slog.Any("flags", rec.Flags),
		slog.Float64("estimate", rec.CalculatedEstimate),
		slog.Int("entries", a.snapshot.Len()))

	return rec
}

// analysis carries everything derived from one request while the recommendation is built.
type analysis struct {
	exercise string
	phase    PhaseConfig
	cfg      ExerciseConfig
	snapshot Snapshot
	sessions []SessionBest
	recent   []SessionBest

	current  float64
	previous float64
	// working is the estimate the prescription is based on.
	working float64
	status  Status

	last    WorkoutEntry
	hasLast bool
	sets    int

	flags      []Flag
	derivation string
}

func (e *Engine) analyze(req Request) *analysis {
	now := req.Now
	if now.IsZero() {
		now = e.now()
	}
	cfg := e.catalog.Lookup(req.Exercise)
	phase := PhaseConfigFor(req.Phase)
	snapshot := NewSnapshot(req.History, now, cfg.modifier())

	a := &analysis{
		exercise: strings.TrimSpace(req.Exercise),
		phase:    phase,
		cfg:      cfg,
		snapshot: snapshot,
		sessions: snapshot.SessionBests(),
		recent:   snapshot.sessionBests(snapshot.InRange(recentWindowStart, recentWindowEnd)),
		current:  snapshot.HighestEstimateInRange(currentWindowStart, currentWindowEnd),
		previous: snapshot.HighestEstimateInRange(previousWindowStart, previousWindowEnd),
		sets:     AdjustedSetCount(phase.BaseSets, req.Age),
	}
	a.working = max(a.current, a.previous)
	a.last, a.hasLast = snapshot.MostRecentEntry()
	a.status = Classify(a.current, a.previous, len(a.sessions), a.recent)
	return a
}

func (a *analysis) flag(f Flag) {
	if !slices.Contains(a.flags, f) {
		a.flags = append(a.flags, f)
	}
}

// effortTarget is the reps-in-reserve target of the phase adjusted for the exercise.
func (a *analysis) effortTarget() int {
	return max(a.phase.RIRTarget+a.cfg.RIRAdjustment, 0)
}

func (a *analysis) restMidpoint() int {
	return (a.phase.RestSeconds.Min + a.phase.RestSeconds.Max) / 2 //nolint:mnd // midpoint
}

func (a *analysis) lastUsable() bool {
	return a.hasLast && a.last.WeightKg > 0 && a.last.Reps > 0
}

// finish fills the fields every branch shares.
func (a *analysis) finish(rec *Recommendation) {
	rec.Exercise = a.exercise
	rec.Phase = a.phase.Phase
	rec.CalculatedEstimate = roundOneDecimal(max(a.working, 0))
	rec.Flags = append([]Flag{}, a.flags...)
	if w := rec.Prescription.WeightKg; w != nil && a.working > 0 {
		intensity := roundOneDecimal(*w / a.working * 100) //nolint:mnd // percent
		rec.IntensityPercent = &intensity
	}
	rec.ReasoningBreakdown = a.explain(*rec)
}
