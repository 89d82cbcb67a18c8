package main

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/myrjola/nextlift/internal/e2etest"
	"github.com/myrjola/nextlift/internal/logging"
	"github.com/myrjola/nextlift/internal/testhelpers"
)

const (
	requestTimeout          = 10 * time.Second
	historyTimeout          = 5 * time.Minute
	maxConcurrentOperations = 20
	numExercises            = 10
	requestsPerExercise     = 20
	baseWeight              = 40.0
	weeklyIncrease          = 1.25
	maxWeightVariation      = 5
	baseReps                = 8
	maxRepsVariation        = 3
	setsPerSession          = 3
	workoutHistoryWeeks     = 26 // 6 months of weekly workouts
	daysPerWeek             = 7
	successRateThreshold    = 95.0
	percentageMultiplier    = 100
	expectedArgsCount       = 2
)

type entryRequest struct {
	Date          string  `json:"date"`
	WeightKg      float64 `json:"weightKg"`
	Reps          int     `json:"reps"`
	RepsInReserve *int    `json:"repsInReserve,omitempty"`
}

func exerciseName(i int) string {
	return fmt.Sprintf("Stress Test Lift %d", i)
}

// generateHistory logs weekly sessions with a slowly rising load and random noise for one exercise.
func generateHistory(ctx context.Context, client *e2etest.Client, exercise string) error {
	path := "/api/exercises/" + url.PathEscape(exercise) + "/entries"
	today := time.Now()
	for week := workoutHistoryWeeks; week >= 0; week-- {
		date := today.AddDate(0, 0, -week*daysPerWeek).Format(time.DateOnly)
		weight := baseWeight + float64(workoutHistoryWeeks-week)*weeklyIncrease +
			float64(rand.IntN(maxWeightVariation*2+1)-maxWeightVariation) //nolint:gosec // load test noise
		for range setsPerSession {
			rir := rand.IntN(4) //nolint:gosec,mnd // load test noise up to 3 reps in reserve
			req := entryRequest{
				Date:          date,
				WeightKg:      max(weight, 1),
				Reps:          baseReps + rand.IntN(maxRepsVariation*2+1) - maxRepsVariation, //nolint:gosec // noise
				RepsInReserve: &rir,
			}
			status, err := client.JSON(ctx, http.MethodPost, path, req, nil)
			if err != nil {
				return fmt.Errorf("log %s on %s: %w", exercise, date, err)
			}
			if status != http.StatusCreated {
				return fmt.Errorf("log %s on %s: unexpected status %d", exercise, date, status)
			}
		}
	}
	return nil
}

func generateHistoryForExercises(ctx context.Context, client *e2etest.Client, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, historyTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)
	for i := range numExercises {
		g.Go(func() error {
			if err := generateHistory(ctx, client, exerciseName(i)); err != nil {
				return err
			}
			logger.LogAttrs(ctx, slog.LevelDebug, "history generated", slog.String("exercise", exerciseName(i)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("generate history: %w", err)
	}
	return nil
}

// recommendationScenario fetches the recommendation of one exercise in both response formats and the
// overview of all exercises.
func recommendationScenario(ctx context.Context, client *e2etest.Client, exercise string) error {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	path := "/api/exercises/" + url.PathEscape(exercise) + "/recommendation"
	for _, query := range []string{"", "?format=legacy", "?age=55&phase=strength"} {
		var rec map[string]any
		status, err := client.JSON(ctx, http.MethodGet, path+query, nil, &rec)
		if err != nil {
			return fmt.Errorf("recommend %s%s: %w", exercise, query, err)
		}
		if status != http.StatusOK {
			return fmt.Errorf("recommend %s%s: unexpected status %d", exercise, query, status)
		}
	}

	var recs []map[string]any
	status, err := client.JSON(ctx, http.MethodGet, "/api/recommendations", nil, &recs)
	if err != nil {
		return fmt.Errorf("recommend all: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("recommend all: unexpected status %d", status)
	}
	return nil
}

func runLoadTest(ctx context.Context, client *e2etest.Client, logger *slog.Logger) error {
	var (
		successCount int64
		failureCount int64
		total        = numExercises * requestsPerExercise
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)
	for i := range total {
		g.Go(func() error {
			if err := recommendationScenario(ctx, client, exerciseName(i%numExercises)); err != nil {
				logger.LogAttrs(ctx, slog.LevelWarn, "scenario failed", slog.Any("error", err))
				atomic.AddInt64(&failureCount, 1)
				return nil
			}
			atomic.AddInt64(&successCount, 1)
			return nil
		})
	}
	_ = g.Wait()

	successRate := float64(successCount) / float64(total) * percentageMultiplier
	logger.LogAttrs(ctx, slog.LevelInfo, "Load test results",
		slog.Int64("successful", successCount),
		slog.Int64("failed", failureCount),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	serverURL := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		serverURL = "http://" + hostname
	}

	client := e2etest.NewClient(serverURL)
	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	historyStart := time.Now()
	if err := generateHistoryForExercises(ctx, client, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "history generation failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "History generation completed",
		slog.Duration("history_duration", time.Since(historyStart)),
		slog.Int("exercises", numExercises),
		slog.Int("weeks_per_exercise", workoutHistoryWeeks))

	loadTestStart := time.Now()
	if err := runLoadTest(ctx, client, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully",
		slog.Duration("total_duration", time.Since(start)),
		slog.Duration("load_test_duration", time.Since(loadTestStart)))
}
