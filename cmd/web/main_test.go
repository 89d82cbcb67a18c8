package main

import (
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/myrjola/nextlift/internal/e2etest"
	"github.com/myrjola/nextlift/internal/ptr"
	"github.com/myrjola/nextlift/internal/testhelpers"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "NEXTLIFT_SQLITE_URL":
		return ":memory:", true
	case "NEXTLIFT_ADDR":
		return "localhost:0", true
	default:
		return "", false
	}
}

func startTestServer(t *testing.T) *e2etest.Server {
	t.Helper()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	return server
}

func daysAgo(n int) string {
	return time.Now().AddDate(0, 0, -n).Format(time.DateOnly)
}

// postEntry logs a set through the JSON API with two reps in reserve.
func postEntry(t *testing.T, server *e2etest.Server, exercise string, days int, weight float64, reps int,
) entryResponse {
	t.Helper()
	var created entryResponse
	status, err := server.Client().JSON(t.Context(), http.MethodPost, "/api/exercises/"+url.PathEscape(exercise)+"/entries", entryRequest{
		Date:          daysAgo(days),
		WeightKg:      weight,
		Reps:          reps,
		SetsLogged:    nil,
		RepsInReserve: ptr.Ref(2),
	}, &created)
	if err != nil {
		t.Fatalf("Failed to log entry: %v", err)
	}
	if status != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", status)
	}
	return created
}
