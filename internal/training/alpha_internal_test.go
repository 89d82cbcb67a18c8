package training

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const alphaExport = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-10-15 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;117,5;10;0,5
"2. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+0;10;0
2;+10;9;1
"3. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-10-13 17:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps";"WU1 · 22,5 kg · 10 reps"
#;KG;REPS;RIR
1;102,5;6;0
`

func TestParseAlpha(t *testing.T) {
	sessions, err := parseAlpha(strings.NewReader(alphaExport))
	if err != nil {
		t.Fatalf("parseAlpha: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}

	legs := sessions[0]
	if want := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC); !legs.date.Equal(want) {
		t.Errorf("Expected session date %v, got %v", want, legs.date)
	}
	var names []string
	for _, ex := range legs.exercises {
		names = append(names, ex.name)
	}
	wantNames := []string{"Hack Squats", "Hyperextensions on Roman Chair", "Hanging Leg Raises"}
	if diff := cmp.Diff(wantNames, names); diff != "" {
		t.Errorf("Exercise names mismatch (-want +got):\n%s", diff)
	}
	if got := legs.exercises[0].equipment; got != "Machine" {
		t.Errorf("Expected equipment Machine, got %q", got)
	}

	hack := legs.exercises[0].sets
	if len(hack) != 2 {
		t.Fatalf("Expected the two working sets of hack squats, got %d", len(hack))
	}
	if hack[1].weightKg != 117.5 {
		t.Errorf("Expected decimal comma weight 117.5, got %v", hack[1].weightKg)
	}
	if rir := hack[1].repsInReserve(); rir == nil || *rir != 1 {
		t.Errorf("Expected RIR 0,5 to round to 1, got %v", rir)
	}

	hyper := legs.exercises[1].sets
	if !hyper[0].bodyweightPlus || hyper[0].usable() {
		t.Errorf("Expected +0 to be an unusable bodyweight set, got %+v", hyper[0])
	}
	if !hyper[1].usable() || hyper[1].weightKg != 10 {
		t.Errorf("Expected +10 to be usable with 10 kg added load, got %+v", hyper[1])
	}

	raises := legs.exercises[2].sets
	if rir := raises[0].repsInReserve(); rir != nil {
		t.Errorf("Expected empty RIR column to give nil, got %d", *rir)
	}
}

func TestParseAlpha_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "set without exercise",
			input: "\"Push\";\"2026-10-13 5:04 h\";\"1:12 hr\"\n1;100;5;1\n",
		},
		{
			name:  "exercise without session",
			input: "\"1. Bench Press · Barbell · 6 reps\"\n",
		},
		{
			name: "malformed weight",
			input: "\"Push\";\"2026-10-13 5:04 h\";\"1:12 hr\"\n\"1. Bench Press · Barbell · 6 reps\"\n" +
				"1;1O0;5;1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseAlpha(strings.NewReader(tt.input)); err == nil {
				t.Error("Expected an error, got none")
			}
		})
	}
}
