package recommend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEdgeCaseGuardOrder(t *testing.T) {
	var names []string
	for _, g := range edgeCaseGuards {
		names = append(names, g.name)
	}
	want := []string{"benchmark", "long_break", "single_session", "significant_regression", "high_rep_outlier"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("guard order mismatch (-want +got):\n%s", diff)
	}
}

func TestAnnotatingGuardsFallThrough(t *testing.T) {
	a := &analysis{ //nolint:exhaustruct // only the compared fields matter
		current:  80,
		previous: 100,
		working:  100,
		hasLast:  true,
		last:     WorkoutEntry{Reps: 20}, //nolint:exhaustruct // reps only
	}
	for _, g := range []func(*analysis) (Recommendation, bool){significantRegressionGuard, highRepOutlierGuard} {
		if _, settled := g(a); settled {
			t.Error("Expected annotating guard to fall through")
		}
	}
	if a.working != 80 {
		t.Errorf("Expected working estimate 80, got %v", a.working)
	}
	if diff := cmp.Diff([]Flag{FlagSignificantStrengthLoss, FlagHighRepData}, a.flags); diff != "" {
		t.Errorf("flags mismatch (-want +got):\n%s", diff)
	}
}
