package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/myrjola/nextlift/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: " WARN ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "loud", want: slog.LevelInfo, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logging.ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger(&buf, slog.LevelInfo)

	ctx := logging.WithAttrs(t.Context(), slog.String("exercise", "Squat"))
	ctx = logging.WithAttrs(ctx, slog.Int("age", 35))
	logger.LogAttrs(ctx, slog.LevelInfo, "recommended")
	logger.LogAttrs(ctx, slog.LevelDebug, "hidden")

	out := buf.String()
	for _, want := range []string{"msg=recommended", "exercise=Squat", "age=35"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in %q", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record should be filtered: %q", out)
	}
}
