package training_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/myrjola/nextlift/internal/ptr"
	"github.com/myrjola/nextlift/internal/recommend"
	"github.com/myrjola/nextlift/internal/sqlite"
	"github.com/myrjola/nextlift/internal/testhelpers"
	"github.com/myrjola/nextlift/internal/training"
)

type countingObserver struct {
	logged      int
	recommended []recommend.Status
}

func (o *countingObserver) EntriesLogged(n int) { o.logged += n }

func (o *countingObserver) Recommended(rec recommend.Recommendation, _ time.Duration) {
	o.recommended = append(o.recommended, rec.TrainingStatus)
}

func newTestService(t *testing.T) (*training.Service, *countingObserver) {
	t.Helper()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	db, err := sqlite.NewDatabase(t.Context(), ":memory:", logger)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() {
		if err = db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	observer := &countingObserver{logged: 0, recommended: nil}
	return training.NewService(db, recommend.NewEngine(nil, logger), observer, logger), observer
}

func daysAgo(n int) time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC).AddDate(0, 0, -n)
}

func logEntry(t *testing.T, svc *training.Service, exercise string, days int, weight float64, reps int,
) recommend.WorkoutEntry {
	t.Helper()
	e, err := svc.LogEntry(t.Context(), training.EntryInput{
		ExerciseName:  exercise,
		Date:          daysAgo(days),
		WeightKg:      weight,
		Reps:          reps,
		SetsLogged:    nil,
		RepsInReserve: ptr.Ref(2),
	})
	if err != nil {
		t.Fatalf("LogEntry: %v", err)
	}
	return e
}

func TestService_LogEntry(t *testing.T) {
	ctx := t.Context()
	svc, observer := newTestService(t)

	entry, err := svc.LogEntry(ctx, training.EntryInput{
		ExerciseName:  "  Back Squat ",
		Date:          time.Date(2026, 10, 17, 18, 45, 0, 0, time.UTC),
		WeightKg:      110,
		Reps:          8,
		SetsLogged:    ptr.Ref(3),
		RepsInReserve: ptr.Ref(1),
	})
	if err != nil {
		t.Fatalf("LogEntry: %v", err)
	}

	want := recommend.WorkoutEntry{
		ID:            entry.ID,
		ExerciseName:  "Back Squat",
		Date:          time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC),
		WeightKg:      110,
		Reps:          8,
		SetsLogged:    ptr.Ref(3),
		RepsInReserve: ptr.Ref(1),
		Excluded:      false,
	}
	if diff := cmp.Diff(want, entry); diff != "" {
		t.Errorf("Stored entry mismatch (-want +got):\n%s", diff)
	}
	if len(entry.ID) != 36 {
		t.Errorf("Expected a UUID id, got %q", entry.ID)
	}
	if observer.logged != 1 {
		t.Errorf("Expected observer to see 1 logged entry, got %d", observer.logged)
	}

	entries, err := svc.ListEntries(ctx, "back squat")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if diff := cmp.Diff([]recommend.WorkoutEntry{want}, entries); diff != "" {
		t.Errorf("Case-insensitive listing mismatch (-want +got):\n%s", diff)
	}
}

func TestService_LogEntry_Invalid(t *testing.T) {
	svc, observer := newTestService(t)
	valid := training.EntryInput{
		ExerciseName:  "Bench Press",
		Date:          daysAgo(1),
		WeightKg:      80,
		Reps:          8,
		SetsLogged:    nil,
		RepsInReserve: nil,
	}

	tests := []struct {
		name   string
		mutate func(in *training.EntryInput)
	}{
		{name: "blank exercise", mutate: func(in *training.EntryInput) { in.ExerciseName = "   " }},
		{name: "zero weight", mutate: func(in *training.EntryInput) { in.WeightKg = 0 }},
		{name: "negative weight", mutate: func(in *training.EntryInput) { in.WeightKg = -20 }},
		{name: "zero reps", mutate: func(in *training.EntryInput) { in.Reps = 0 }},
		{name: "negative RIR", mutate: func(in *training.EntryInput) { in.RepsInReserve = ptr.Ref(-1) }},
		{name: "zero sets", mutate: func(in *training.EntryInput) { in.SetsLogged = ptr.Ref(0) }},
		{name: "missing date", mutate: func(in *training.EntryInput) { in.Date = time.Time{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.LogEntry(t.Context(), in)
			if !errors.Is(err, training.ErrInvalidEntry) {
				t.Errorf("Expected ErrInvalidEntry, got %v", err)
			}
		})
	}
	if observer.logged != 0 {
		t.Errorf("Expected no logged entries, got %d", observer.logged)
	}
}

func TestService_UpdateEntry(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	entry := logEntry(t, svc, "Deadlift", 3, 140, 5)

	newDate := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	updated, err := svc.UpdateEntry(ctx, entry.ID, training.EntryUpdate{
		Date:     &newDate,
		WeightKg: ptr.Ref(145.0),
		Reps:     nil,
	})
	if err != nil {
		t.Fatalf("UpdateEntry: %v", err)
	}
	if !updated.Date.Equal(newDate) || updated.WeightKg != 145 || updated.Reps != 5 {
		t.Errorf("Unexpected updated entry %+v", updated)
	}

	zeroReps := training.EntryUpdate{Date: nil, WeightKg: nil, Reps: ptr.Ref(0)}
	if _, err = svc.UpdateEntry(ctx, entry.ID, zeroReps); !errors.Is(err, training.ErrInvalidEntry) {
		t.Errorf("Expected ErrInvalidEntry for zero reps, got %v", err)
	}
	lighter := training.EntryUpdate{Date: nil, WeightKg: ptr.Ref(1.0), Reps: nil}
	if _, err = svc.UpdateEntry(ctx, "missing", lighter); !errors.Is(err, training.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestService_DeleteEntry(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	entry := logEntry(t, svc, "Deadlift", 3, 140, 5)

	if err := svc.DeleteEntry(ctx, entry.ID); err != nil {
		t.Fatalf("DeleteEntry: %v", err)
	}
	if err := svc.DeleteEntry(ctx, entry.ID); !errors.Is(err, training.ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
	}
	exercises, err := svc.ListExercises(ctx)
	if err != nil {
		t.Fatalf("ListExercises: %v", err)
	}
	if len(exercises) != 0 {
		t.Errorf("Expected no exercises after delete, got %+v", exercises)
	}
}

func TestService_SetExcluded(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	logEntry(t, svc, "Bench Press", 10, 80, 8)
	logEntry(t, svc, "Bench Press", 5, 82.5, 8)
	outlier := logEntry(t, svc, "Bench Press", 2, 200, 8)

	before, err := svc.Recommend(ctx, "Bench Press", 30, recommend.PhaseHypertrophy)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}

	excluded, err := svc.SetExcluded(ctx, outlier.ID, true)
	if err != nil {
		t.Fatalf("SetExcluded: %v", err)
	}
	if !excluded.Excluded {
		t.Error("Expected entry to be excluded")
	}

	after, err := svc.Recommend(ctx, "Bench Press", 30, recommend.PhaseHypertrophy)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if after.CalculatedEstimate >= before.CalculatedEstimate {
		t.Errorf("Expected excluding the outlier to lower the estimate, before %v after %v",
			before.CalculatedEstimate, after.CalculatedEstimate)
	}
	// 82.5 kg × 8 reps @ 2 RIR.
	if after.CalculatedEstimate != 110 {
		t.Errorf("Expected estimate 110 from the remaining entries, got %v", after.CalculatedEstimate)
	}

	entries, err := svc.ListEntries(ctx, "Bench Press")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(entries) != 3 {
		t.Errorf("Expected excluded entries to remain listed, got %d entries", len(entries))
	}

	restored, err := svc.SetExcluded(ctx, outlier.ID, false)
	if err != nil {
		t.Fatalf("SetExcluded: %v", err)
	}
	if restored.Excluded {
		t.Error("Expected entry to be restored")
	}
}

func TestService_Recommend(t *testing.T) {
	ctx := t.Context()
	svc, observer := newTestService(t)

	rec, err := svc.Recommend(ctx, "Overhead Press", 30, recommend.PhaseStrength)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !rec.BenchmarkMode || rec.TrainingStatus != recommend.StatusBenchmarkMode {
		t.Errorf("Expected benchmark mode without history, got %+v", rec)
	}

	logEntry(t, svc, "Overhead Press", 2, 50, 6)
	rec, err = svc.Recommend(ctx, "overhead press", 30, recommend.PhaseStrength)
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if !rec.HasFlag(recommend.FlagPostBenchmarkFirstPrescription) {
		t.Errorf("Expected first prescription after one session, got flags %v", rec.Flags)
	}
	if rec.Exercise != "Overhead Press" {
		t.Errorf("Expected the stored exercise name, got %q", rec.Exercise)
	}
	if diff := cmp.Diff([]recommend.Status{recommend.StatusBenchmarkMode, recommend.StatusProgressive},
		observer.recommended); diff != "" {
		t.Errorf("Observed statuses mismatch (-want +got):\n%s", diff)
	}

	if _, err = svc.Recommend(ctx, "Overhead Press", -1, recommend.PhaseStrength); !errors.Is(
		err, training.ErrInvalidEntry) {
		t.Errorf("Expected ErrInvalidEntry for negative age, got %v", err)
	}
	if _, err = svc.Recommend(ctx, " ", 30, recommend.PhaseStrength); !errors.Is(err, training.ErrInvalidEntry) {
		t.Errorf("Expected ErrInvalidEntry for blank exercise, got %v", err)
	}
}

func TestService_RecommendAll(t *testing.T) {
	ctx := t.Context()
	svc, _ := newTestService(t)
	for _, name := range []string{"Squat", "Bench Press", "Deadlift", "Barbell Row", "Overhead Press"} {
		logEntry(t, svc, name, 40, 60, 8)
		logEntry(t, svc, name, 9, 62.5, 8)
		logEntry(t, svc, name, 2, 65, 8)
	}

	recs, err := svc.RecommendAll(ctx, 30, recommend.PhaseHypertrophy)
	if err != nil {
		t.Fatalf("RecommendAll: %v", err)
	}
	var got []string
	for _, rec := range recs {
		got = append(got, rec.Exercise)
		if rec.TrainingStatus != recommend.StatusProgressing {
			t.Errorf("%s: expected progressing, got %s", rec.Exercise, rec.TrainingStatus)
		}
	}
	want := []string{"Barbell Row", "Bench Press", "Deadlift", "Overhead Press", "Squat"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Recommendation order mismatch (-want +got):\n%s", diff)
	}
}

const alphaExport = `"Push · Day 1";"2026-10-13 5:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps<br>WU2 · 47,5 kg · 8 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;102,5;6;1
"2. Dips · Bodyweight · 10 reps"
#;KG;REPS;RIR
1;+0;10;1
2;+10;8;1

"Legs · Day 2";"2026-10-15 18:10 h";"58:00 min"
"1. Squat · Barbell · 5 reps"
#;KG;REPS;RIR
1;140;5;2
`

func TestService_ImportAlpha(t *testing.T) {
	ctx := t.Context()
	svc, observer := newTestService(t)
	manual, err := svc.LogEntry(ctx, training.EntryInput{
		ExerciseName:  "Bench Press",
		Date:          time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		WeightKg:      100,
		Reps:          5,
		SetsLogged:    nil,
		RepsInReserve: nil,
	})
	if err != nil {
		t.Fatalf("LogEntry: %v", err)
	}

	result, err := svc.ImportAlpha(ctx, strings.NewReader(alphaExport))
	if err != nil {
		t.Fatalf("ImportAlpha: %v", err)
	}
	if diff := cmp.Diff(training.ImportResult{Sessions: 2, Entries: 4, Skipped: 1}, result); diff != "" {
		t.Errorf("Import result mismatch (-want +got):\n%s", diff)
	}

	// Importing again replaces instead of duplicating.
	if _, err = svc.ImportAlpha(ctx, strings.NewReader(alphaExport)); err != nil {
		t.Fatalf("ImportAlpha again: %v", err)
	}
	bench, err := svc.ListEntries(ctx, "Bench Press")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(bench) != 3 {
		t.Fatalf("Expected the manual entry plus 2 imported sets, got %d", len(bench))
	}
	if bench[0].ID != manual.ID {
		t.Errorf("Expected the manual entry to survive re-import")
	}
	if imported := bench[1]; imported.WeightKg != 102.5 || imported.Reps != 6 ||
		imported.RepsInReserve == nil || *imported.RepsInReserve != 0 {
		t.Errorf("Unexpected imported set %+v", imported)
	}

	dips, err := svc.ListEntries(ctx, "Dips")
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}
	if len(dips) != 1 || dips[0].WeightKg != 10 {
		t.Errorf("Expected only the weighted dip set, got %+v", dips)
	}
	if observer.logged != 1+4+4 {
		t.Errorf("Expected 9 logged entries in total, got %d", observer.logged)
	}

	if _, err = svc.ImportAlpha(ctx, strings.NewReader("1;100;5;1\n")); !errors.Is(err, training.ErrInvalidImport) {
		t.Errorf("Expected ErrInvalidImport, got %v", err)
	}
}
