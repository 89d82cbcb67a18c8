package recommend_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/nextlift/internal/ptr"
	"github.com/myrjola/nextlift/internal/recommend"
)

func TestToLegacy(t *testing.T) {
	if recommend.ToLegacy(nil) != nil {
		t.Error("Expected nil for nil input")
	}

	base := func(status recommend.Status, flags ...recommend.Flag) *recommend.Recommendation {
		return &recommend.Recommendation{ //nolint:exhaustruct // only the mapped fields matter
			Exercise: "Squat",
			Prescription: recommend.Prescription{ //nolint:exhaustruct // no benchmark instructions
				Sets:               recommend.Fixed(4),
				Reps:               recommend.Range{Min: 8, Max: 12},
				WeightKg:           ptr.Ref(100.0),
				RestSeconds:        90,
				EffortMarginTarget: 2,
			},
			TrainingStatus: status,
			Rationale:      "because",
			Flags:          flags,
		}
	}

	tests := []struct {
		name       string
		rec        *recommend.Recommendation
		wantStatus recommend.LegacyStatus
		wantReps   int
	}{
		{name: "progressing", rec: base(recommend.StatusProgressing), wantStatus: recommend.LegacyProgress, wantReps: 8},
		{name: "plateau", rec: base(recommend.StatusPlateau), wantStatus: recommend.LegacyMaintain, wantReps: 8},
		{name: "regressing", rec: base(recommend.StatusRegressing), wantStatus: recommend.LegacyDeload, wantReps: 8},
		{name: "insufficient data", rec: base(recommend.StatusInsufficientData),
			wantStatus: recommend.LegacyMaintain, wantReps: 8},
		{name: "benchmark", rec: base(recommend.StatusBenchmarkMode), wantStatus: recommend.LegacyMaintain, wantReps: 8},
		{name: "progressive", rec: base(recommend.StatusProgressive), wantStatus: recommend.LegacyProgress, wantReps: 8},
		{name: "recovery flag forces deload", rec: base(recommend.StatusInsufficientData,
			recommend.FlagRecoveryWeekRecommended), wantStatus: recommend.LegacyDeload, wantReps: 8},
		{name: "explicit target wins", rec: func() *recommend.Recommendation {
			r := base(recommend.StatusProgressing)
			r.Prescription.TargetReps = ptr.Ref(11)
			return r
		}(), wantStatus: recommend.LegacyProgress, wantReps: 11},
		{name: "specific rep count", rec: func() *recommend.Recommendation {
			r := base(recommend.StatusPlateau)
			r.Prescription.Reps = recommend.Fixed(5)
			return r
		}(), wantStatus: recommend.LegacyMaintain, wantReps: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := recommend.ToLegacy(tt.rec)
			want := &recommend.LegacyRecommendation{
				Exercise:       "Squat",
				Sets:           4,
				TargetReps:     tt.wantReps,
				WeightKg:       ptr.Ref(100.0),
				RestSeconds:    90,
				TrainingStatus: tt.wantStatus,
				Rationale:      "because",
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("ToLegacy mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestToLegacy_Benchmark(t *testing.T) {
	rec := generate(t, "Squat", nil)
	got := recommend.ToLegacy(&rec)
	if got.Sets != 3 || got.TargetReps != 5 || got.WeightKg != nil {
		t.Errorf("Expected 3 sets of 5 without weight, got %+v", got)
	}
}
