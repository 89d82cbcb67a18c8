package flightrecorder_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myrjola/nextlift/internal/flightrecorder"
	"github.com/myrjola/nextlift/internal/testhelpers"
)

func newRecorder(t *testing.T, dir string) *flightrecorder.Recorder {
	t.Helper()
	recorder, err := flightrecorder.New(flightrecorder.Config{
		MinAge:    0,
		MaxBytes:  0,
		Cooldown:  0,
		Directory: dir,
	}, testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err = recorder.Start(t.Context()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		recorder.Stop(t.Context())
	})
	return recorder
}

func TestRecorder_Capture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "traces")
	recorder := newRecorder(t, dir)

	recorder.Capture(t.Context(), "timeout")
	// The second capture falls within the cooldown.
	recorder.Capture(t.Context(), "timeout")

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read trace directory: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected exactly one trace file, got %d", len(entries))
	}
	name := entries[0].Name()
	if !strings.HasPrefix(name, "timeout-") || !strings.HasSuffix(name, ".trace") {
		t.Errorf("Unexpected trace file name %s", name)
	}
}

func TestNew_Errors(t *testing.T) {
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	if _, err := flightrecorder.New(flightrecorder.Config{}, logger); err == nil { //nolint:exhaustruct // test
		t.Errorf("Expected an error without a directory")
	}

	file := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(file, nil, 0o600); err != nil {
		t.Fatalf("Failed to create file: %v", err)
	}
	if _, err := flightrecorder.New(flightrecorder.Config{Directory: file}, logger); err == nil { //nolint:exhaustruct // test
		t.Errorf("Expected an error when the directory is a file")
	}
}
