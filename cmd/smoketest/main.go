package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/myrjola/nextlift/internal/e2etest"
	"github.com/myrjola/nextlift/internal/logging"
	"github.com/myrjola/nextlift/internal/testhelpers"
)

// checkReadPaths fetches the read-only endpoints so the smoke test never modifies the training history.
func checkReadPaths(ctx context.Context, client *e2etest.Client) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second) //nolint:mnd // 10 seconds
	defer cancel()

	var exercises []map[string]any
	status, err := client.JSON(ctx, http.MethodGet, "/api/exercises", nil, &exercises)
	if err != nil {
		return fmt.Errorf("list exercises: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("list exercises: unexpected status %d", status)
	}

	var recs []map[string]any
	if status, err = client.JSON(ctx, http.MethodGet, "/api/recommendations", nil, &recs); err != nil {
		return fmt.Errorf("recommend all: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("recommend all: unexpected status %d", status)
	}
	if len(recs) != len(exercises) {
		return fmt.Errorf("expected %d recommendations, got %d", len(exercises), len(recs))
	}

	if _, err = client.GetDoc(ctx, "/"); err != nil {
		return fmt.Errorf("home page: %w", err)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	client := e2etest.NewClient(url)
	if err := client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err := checkReadPaths(ctx, client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error checking read paths", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful", slog.Duration("duration", time.Since(start)))
}
