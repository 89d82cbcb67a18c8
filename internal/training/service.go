package training

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/myrjola/nextlift/internal/recommend"
	"github.com/myrjola/nextlift/internal/sqlite"
)

// Observer is told about logged entries and generated recommendations.
type Observer interface {
	EntriesLogged(n int)
	Recommended(rec recommend.Recommendation, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) EntriesLogged(int)                                  {}
func (nopObserver) Recommended(recommend.Recommendation, time.Duration) {}

// maxConcurrentRecommendations bounds the fan-out of RecommendAll.
const maxConcurrentRecommendations = 4

// Service keeps the workout history and produces recommendations from it.
type Service struct {
	repo     *entryRepository
	engine   *recommend.Engine
	validate *validator.Validate
	observer Observer
	logger   *slog.Logger
}

// NewService creates a new training service. observer may be nil.
func NewService(db *sqlite.Database, engine *recommend.Engine, observer Observer, logger *slog.Logger) *Service {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Service{
		repo:     newEntryRepository(db, logger),
		engine:   engine,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		observer: observer,
		logger:   logger,
	}
}

func (s *Service) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}
	return nil
}

// LogEntry sanitizes and stores a new entry.
func (s *Service) LogEntry(ctx context.Context, in EntryInput) (recommend.WorkoutEntry, error) {
	in.ExerciseName = strings.TrimSpace(in.ExerciseName)
	if err := s.check(in); err != nil {
		return recommend.WorkoutEntry{}, err
	}
	entry := recommend.WorkoutEntry{
		ID:            uuid.NewString(),
		ExerciseName:  in.ExerciseName,
		Date:          in.Date,
		WeightKg:      in.WeightKg,
		Reps:          in.Reps,
		SetsLogged:    in.SetsLogged,
		RepsInReserve: in.RepsInReserve,
		Excluded:      false,
	}
	if err := s.repo.insert(ctx, sourceManual, entry); err != nil {
		return recommend.WorkoutEntry{}, fmt.Errorf("insert entry: %w", err)
	}
	s.observer.EntriesLogged(1)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "logged entry",
		slog.String("id", entry.ID), slog.String("exercise", entry.ExerciseName))

	// Return the stored form so the date carries no time of day.
	return s.repo.get(ctx, entry.ID)
}

// UpdateEntry edits the date, weight or reps of an entry.
func (s *Service) UpdateEntry(ctx context.Context, id string, upd EntryUpdate) (recommend.WorkoutEntry, error) {
	if err := s.check(upd); err != nil {
		return recommend.WorkoutEntry{}, err
	}
	entry, err := s.repo.update(ctx, id, func(e *recommend.WorkoutEntry) (bool, error) {
		changed := false
		if upd.Date != nil {
			if upd.Date.IsZero() {
				return false, fmt.Errorf("%w: date is empty", ErrInvalidEntry)
			}
			e.Date = *upd.Date
			changed = true
		}
		if upd.WeightKg != nil {
			e.WeightKg = *upd.WeightKg
			changed = true
		}
		if upd.Reps != nil {
			e.Reps = *upd.Reps
			changed = true
		}
		return changed, nil
	})
	if err != nil {
		return recommend.WorkoutEntry{}, fmt.Errorf("update entry: %w", err)
	}
	return entry, nil
}

// SetExcluded soft-deletes an entry or restores it. Excluded entries stay in the history but
// never count towards a recommendation.
func (s *Service) SetExcluded(ctx context.Context, id string, excluded bool) (recommend.WorkoutEntry, error) {
	entry, err := s.repo.update(ctx, id, func(e *recommend.WorkoutEntry) (bool, error) {
		if e.Excluded == excluded {
			return false, nil
		}
		e.Excluded = excluded
		return true, nil
	})
	if err != nil {
		return recommend.WorkoutEntry{}, fmt.Errorf("set excluded: %w", err)
	}
	return entry, nil
}

// DeleteEntry removes an entry permanently.
func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	if err := s.repo.delete(ctx, id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	return nil
}

// ListEntries returns the full history of an exercise, excluded entries included, oldest first.
func (s *Service) ListEntries(ctx context.Context, exercise string) ([]recommend.WorkoutEntry, error) {
	entries, err := s.repo.listByExercise(ctx, exercise)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

// ListExercises returns the exercises that have logged entries.
func (s *Service) ListExercises(ctx context.Context) ([]ExerciseSummary, error) {
	exercises, err := s.repo.listExercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	return exercises, nil
}

// Recommend computes the next prescription for exercise from its stored history.
func (s *Service) Recommend(
	ctx context.Context,
	exercise string,
	age int,
	phase recommend.Phase,
) (recommend.Recommendation, error) {
	exercise = strings.TrimSpace(exercise)
	if exercise == "" {
		return recommend.Recommendation{}, fmt.Errorf("%w: exercise name is empty", ErrInvalidEntry)
	}
	if err := s.validate.Var(age, "gte=0,lte=120"); err != nil {
		return recommend.Recommendation{}, fmt.Errorf("%w: age: %w", ErrInvalidEntry, err)
	}

	history, err := s.repo.listByExercise(ctx, exercise)
	if err != nil {
		return recommend.Recommendation{}, fmt.Errorf("load history: %w", err)
	}
	if len(history) > 0 {
		exercise = history[len(history)-1].ExerciseName
	}

	start := time.Now()
	rec := s.engine.Generate(ctx, recommend.Request{
		Exercise: exercise,
		History:  history,
		Age:      age,
		Phase:    phase,
		Now:      time.Time{},
	})
	s.observer.Recommended(rec, time.Since(start))
	return rec, nil
}

// RecommendAll computes a recommendation for every logged exercise in ListExercises order.
func (s *Service) RecommendAll(ctx context.Context, age int, phase recommend.Phase) ([]recommend.Recommendation, error) {
	exercises, err := s.ListExercises(ctx)
	if err != nil {
		return nil, err
	}

	recs := make([]recommend.Recommendation, len(exercises))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRecommendations)
	for i, ex := range exercises {
		g.Go(func() error {
			rec, recErr := s.Recommend(gctx, ex.Name, age, phase)
			if recErr != nil {
				return fmt.Errorf("recommend %s: %w", ex.Name, recErr)
			}
			recs[i] = rec
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return recs, nil
}

// ImportAlpha imports an Alpha Progression CSV export. Working sets become entries and warm-ups
// are skipped. Importing a file again replaces the previously imported entries of its dates, so
// the import is idempotent.
func (s *Service) ImportAlpha(ctx context.Context, r io.Reader) (ImportResult, error) {
	sessions, err := parseAlpha(r)
	if err != nil {
		return ImportResult{}, fmt.Errorf("%w: %w", ErrInvalidImport, err)
	}

	var (
		result  ImportResult
		entries []recommend.WorkoutEntry
		dates   []time.Time
		seen    = make(map[time.Time]bool)
	)
	for _, session := range sessions {
		result.Sessions++
		if !seen[session.date] {
			seen[session.date] = true
			dates = append(dates, session.date)
		}
		for _, ex := range session.exercises {
			for _, set := range ex.sets {
				if !set.usable() {
					result.Skipped++
					continue
				}
				in := EntryInput{
					ExerciseName:  strings.TrimSpace(ex.name),
					Date:          session.date,
					WeightKg:      set.weightKg,
					Reps:          set.reps,
					SetsLogged:    nil,
					RepsInReserve: set.repsInReserve(),
				}
				if err = s.check(in); err != nil {
					return ImportResult{}, fmt.Errorf("%s on %s: %w", ex.name, session.date.Format(dateFormat), err)
				}
				entries = append(entries, recommend.WorkoutEntry{
					ID:            uuid.NewString(),
					ExerciseName:  in.ExerciseName,
					Date:          in.Date,
					WeightKg:      in.WeightKg,
					Reps:          in.Reps,
					SetsLogged:    nil,
					RepsInReserve: in.RepsInReserve,
					Excluded:      false,
				})
			}
		}
	}

	if err = s.repo.replaceImported(ctx, dates, entries); err != nil {
		return ImportResult{}, fmt.Errorf("store imported entries: %w", err)
	}
	result.Entries = len(entries)
	s.observer.EntriesLogged(len(entries))
	s.logger.LogAttrs(ctx, slog.LevelInfo, "imported alpha progression export",
		slog.Int("sessions", result.Sessions),
		slog.Int("entries", result.Entries),
		slog.Int("skipped", result.Skipped))
	return result, nil
}
