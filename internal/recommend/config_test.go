package recommend_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/nextlift/internal/recommend"
)

func TestPhaseConfigFor(t *testing.T) {
	tests := []struct {
		phase    recommend.Phase
		want     recommend.Phase
		wantReps recommend.Range
	}{
		{phase: recommend.PhaseStrength, want: recommend.PhaseStrength, wantReps: recommend.Range{Min: 3, Max: 6}},
		{phase: "Peaking ", want: recommend.PhasePeaking, wantReps: recommend.Range{Min: 1, Max: 3}},
		{phase: "cutting", want: recommend.PhaseHypertrophy, wantReps: recommend.Range{Min: 8, Max: 12}},
		{phase: "", want: recommend.PhaseHypertrophy, wantReps: recommend.Range{Min: 8, Max: 12}},
	}
	for _, tt := range tests {
		t.Run(string(tt.phase), func(t *testing.T) {
			got := recommend.PhaseConfigFor(tt.phase)
			if got.Phase != tt.want {
				t.Errorf("Expected phase %q, got %q", tt.want, got.Phase)
			}
			if got.Reps != tt.wantReps {
				t.Errorf("Expected reps %v, got %v", tt.wantReps, got.Reps)
			}
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := recommend.DefaultCatalog()

	if got := c.Lookup("  DEADLIFT ").LoadIncrementKg; got != 5 {
		t.Errorf("Expected deadlift increment 5, got %v", got)
	}
	if got := c.Lookup("Lateral Raise").LoadIncrementKg; got != 1.25 {
		t.Errorf("Expected lateral raise increment 1.25, got %v", got)
	}
	if diff := cmp.Diff(c.Default(), c.Lookup("Zercher Carry")); diff != "" {
		t.Errorf("unknown exercise should resolve to the default (-want +got):\n%s", diff)
	}
	if got := c.Lookup("Rack Pull").EstimateModifier; got != 0.85 {
		t.Errorf("Expected rack pull modifier 0.85, got %v", got)
	}
	if got := c.Lookup("power clean").RIRAdjustment; got != 1 {
		t.Errorf("Expected power clean RIR adjustment 1, got %d", got)
	}
}

func TestLoadCatalog(t *testing.T) {
	t.Run("overrides merge onto defaults", func(t *testing.T) {
		c, err := recommend.LoadCatalog(strings.NewReader(`
default:
  max_weekly_sets: 18
exercises:
  Hip Thrust:
    load_increment_kg: 5
  squat:
    load_increment_kg: 2.5
    rir_adjustment: 1
`))
		if err != nil {
			t.Fatalf("LoadCatalog: %v", err)
		}
		want := recommend.ExerciseConfig{LoadIncrementKg: 5, MaxWeeklySets: 18, EstimateModifier: 0, RIRAdjustment: 0}
		if diff := cmp.Diff(want, c.Lookup("hip thrust")); diff != "" {
			t.Errorf("hip thrust mismatch (-want +got):\n%s", diff)
		}
		squat := c.Lookup("Squat")
		if squat.LoadIncrementKg != 2.5 || squat.RIRAdjustment != 1 {
			t.Errorf("Expected squat override, got %+v", squat)
		}
		if got := c.Lookup("deadlift").LoadIncrementKg; got != 5 {
			t.Errorf("Expected built-in deadlift to survive, got %v", got)
		}
	})

	t.Run("empty document keeps the built-in table", func(t *testing.T) {
		c, err := recommend.LoadCatalog(strings.NewReader(""))
		if err != nil {
			t.Fatalf("LoadCatalog: %v", err)
		}
		if diff := cmp.Diff(recommend.DefaultCatalog().Default(), c.Default()); diff != "" {
			t.Errorf("default mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		if _, err := recommend.LoadCatalog(strings.NewReader("default:\n  increment: 2\n")); err == nil {
			t.Error("Expected an error for an unknown field")
		}
	})

	t.Run("negative values are rejected", func(t *testing.T) {
		_, err := recommend.LoadCatalog(strings.NewReader("exercises:\n  squat:\n    load_increment_kg: -1\n"))
		if err == nil {
			t.Error("Expected an error for a negative increment")
		}
	})

	t.Run("from file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.yaml")
		if err := os.WriteFile(path, []byte("exercises:\n  dips:\n    max_weekly_sets: 10\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		c, err := recommend.LoadCatalogFile(path)
		if err != nil {
			t.Fatalf("LoadCatalogFile: %v", err)
		}
		if got := c.Lookup("Dips").MaxWeeklySets; got != 10 {
			t.Errorf("Expected 10 max weekly sets, got %d", got)
		}
	})
}
