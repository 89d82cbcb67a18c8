package main

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/myrjola/nextlift/internal/recommend"
)

func Test_application_recommendation(t *testing.T) {
	var (
		ctx    = t.Context()
		server = startTestServer(t)
		client = server.Client()
	)

	t.Run("Unknown exercise starts with a benchmark", func(t *testing.T) {
		var rec recommend.Recommendation
		status, err := client.JSON(ctx, http.MethodGet, "/api/exercises/Deadlift/recommendation", nil, &rec)
		if err != nil {
			t.Fatalf("Failed to get recommendation: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		if rec.TrainingStatus != recommend.StatusBenchmarkMode || !rec.BenchmarkMode {
			t.Errorf("Expected benchmark mode, got %s", rec.TrainingStatus)
		}
		if rec.Prescription.WeightKg != nil {
			t.Errorf("Expected no weight for a benchmark, got %v", *rec.Prescription.WeightKg)
		}
		if len(rec.Prescription.BenchmarkInstructions) == 0 {
			t.Errorf("Expected benchmark instructions")
		}
	})

	for _, name := range []string{"Squat", "Bench Press"} {
		postEntry(t, server, name, 40, 60, 8)
		postEntry(t, server, name, 9, 62.5, 8)
		postEntry(t, server, name, 2, 65, 8)
	}

	t.Run("Progressing history", func(t *testing.T) {
		var rec recommend.Recommendation
		_, err := client.JSON(ctx, http.MethodGet, "/api/exercises/squat/recommendation?age=45&phase=strength", nil, &rec)
		if err != nil {
			t.Fatalf("Failed to get recommendation: %v", err)
		}
		if rec.Exercise != "Squat" {
			t.Errorf("Expected the stored exercise name, got %q", rec.Exercise)
		}
		if rec.TrainingStatus != recommend.StatusProgressing {
			t.Errorf("Expected progressing, got %s", rec.TrainingStatus)
		}
		if rec.Phase != recommend.PhaseStrength {
			t.Errorf("Expected strength phase, got %s", rec.Phase)
		}
		if rec.Prescription.WeightKg == nil || *rec.Prescription.WeightKg <= 0 {
			t.Errorf("Expected a working weight")
		}
	})

	t.Run("Legacy format", func(t *testing.T) {
		var legacy recommend.LegacyRecommendation
		_, err := client.JSON(ctx, http.MethodGet, "/api/exercises/Squat/recommendation?format=legacy", nil, &legacy)
		if err != nil {
			t.Fatalf("Failed to get recommendation: %v", err)
		}
		if legacy.TrainingStatus != recommend.LegacyProgress {
			t.Errorf("Expected legacy status progress, got %s", legacy.TrainingStatus)
		}
		if legacy.Sets <= 0 || legacy.TargetReps <= 0 {
			t.Errorf("Expected sets and target reps, got %+v", legacy)
		}
	})

	t.Run("All exercises", func(t *testing.T) {
		var recs []recommend.Recommendation
		if _, err := client.JSON(ctx, http.MethodGet, "/api/recommendations", nil, &recs); err != nil {
			t.Fatalf("Failed to get recommendations: %v", err)
		}
		var names []string
		for _, rec := range recs {
			names = append(names, rec.Exercise)
		}
		if diff := cmp.Diff([]string{"Bench Press", "Squat"}, names); diff != "" {
			t.Errorf("Recommendations mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("Invalid age", func(t *testing.T) {
		for _, query := range []string{"?age=old", "?age=130"} {
			var resp errorResponse
			status, err := client.JSON(ctx, http.MethodGet, "/api/exercises/Squat/recommendation"+query, nil, &resp)
			if err != nil {
				t.Fatalf("Failed to get recommendation: %v", err)
			}
			if status != http.StatusBadRequest {
				t.Errorf("%s: expected status 400, got %d", query, status)
			}
		}
	})
}
