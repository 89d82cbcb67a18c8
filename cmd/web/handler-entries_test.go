package main

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/myrjola/nextlift/internal/ptr"
)

func Test_application_entries(t *testing.T) {
	var (
		ctx    = t.Context()
		server = startTestServer(t)
		client = server.Client()
	)

	first := postEntry(t, server, "Back Squat", 9, 100, 8)
	second := postEntry(t, server, "back squat", 2, 102.5, 8)
	postEntry(t, server, "Bench Press", 2, 80, 6)

	t.Run("List entries of an exercise case-insensitively", func(t *testing.T) {
		var entries []entryResponse
		status, err := client.JSON(ctx, http.MethodGet, "/api/exercises/BACK%20SQUAT/entries", nil, &entries)
		if err != nil {
			t.Fatalf("Failed to list entries: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		var ids []string
		for _, e := range entries {
			ids = append(ids, e.ID)
		}
		if diff := cmp.Diff([]string{first.ID, second.ID}, ids); diff != "" {
			t.Errorf("Entries mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("List exercises", func(t *testing.T) {
		var exercises []exerciseResponse
		if _, err := client.JSON(ctx, http.MethodGet, "/api/exercises", nil, &exercises); err != nil {
			t.Fatalf("Failed to list exercises: %v", err)
		}
		if len(exercises) != 2 {
			t.Fatalf("Expected 2 exercises, got %+v", exercises)
		}
		if exercises[0].Name != "Back Squat" || exercises[0].EntryCount != 2 {
			t.Errorf("Unexpected first exercise %+v", exercises[0])
		}
		if exercises[0].LastDate != daysAgo(2) {
			t.Errorf("Expected last date %s, got %s", daysAgo(2), exercises[0].LastDate)
		}
	})

	t.Run("Update entry", func(t *testing.T) {
		var updated entryResponse
		status, err := client.JSON(ctx, http.MethodPut, "/api/entries/"+first.ID,
			entryUpdateRequest{Date: nil, WeightKg: ptr.Ref(97.5), Reps: nil}, &updated)
		if err != nil {
			t.Fatalf("Failed to update entry: %v", err)
		}
		if status != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", status)
		}
		if updated.WeightKg != 97.5 || updated.Reps != 8 {
			t.Errorf("Unexpected updated entry %+v", updated)
		}
	})

	t.Run("Exclude and restore entry", func(t *testing.T) {
		var entry entryResponse
		if _, err := client.JSON(ctx, http.MethodPost, "/api/entries/"+second.ID+"/exclude", nil, &entry); err != nil {
			t.Fatalf("Failed to exclude entry: %v", err)
		}
		if !entry.Excluded {
			t.Errorf("Expected entry to be excluded")
		}
		if _, err := client.JSON(ctx, http.MethodPost, "/api/entries/"+second.ID+"/restore", nil, &entry); err != nil {
			t.Fatalf("Failed to restore entry: %v", err)
		}
		if entry.Excluded {
			t.Errorf("Expected entry to be restored")
		}
	})

	t.Run("Delete entry", func(t *testing.T) {
		status, err := client.JSON(ctx, http.MethodDelete, "/api/entries/"+first.ID, nil, nil)
		if err != nil {
			t.Fatalf("Failed to delete entry: %v", err)
		}
		if status != http.StatusNoContent {
			t.Errorf("Expected status 204, got %d", status)
		}
		var resp errorResponse
		status, err = client.JSON(ctx, http.MethodDelete, "/api/entries/"+first.ID, nil, &resp)
		if err != nil {
			t.Fatalf("Failed to delete entry again: %v", err)
		}
		if status != http.StatusNotFound {
			t.Errorf("Expected status 404 for a deleted entry, got %d", status)
		}

		var count int
		if err = server.DB().QueryRowContext(ctx, "SELECT count(*) FROM workout_entries").Scan(&count); err != nil {
			t.Fatalf("Failed to count entries: %v", err)
		}
		if count != 2 {
			t.Errorf("Expected 2 stored entries, got %d", count)
		}
	})

	t.Run("Invalid entries are rejected", func(t *testing.T) {
		tests := []struct {
			name string
			body any
		}{
			{
				name: "bad date",
				body: entryRequest{Date: "17.10.2026", WeightKg: 100, Reps: 5, SetsLogged: nil, RepsInReserve: nil},
			},
			{
				name: "zero weight",
				body: entryRequest{Date: daysAgo(0), WeightKg: 0, Reps: 5, SetsLogged: nil, RepsInReserve: nil},
			},
			{
				name: "too many reps in reserve",
				body: entryRequest{Date: daysAgo(0), WeightKg: 100, Reps: 5, SetsLogged: nil, RepsInReserve: ptr.Ref(11)},
			},
			{
				name: "unknown field",
				body: map[string]any{"date": daysAgo(0), "weightKg": 100, "reps": 5, "rpe": 8},
			},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				var resp errorResponse
				status, err := client.JSON(ctx, http.MethodPost, "/api/exercises/Deadlift/entries", tt.body, &resp)
				if err != nil {
					t.Fatalf("Failed to post entry: %v", err)
				}
				if status != http.StatusBadRequest {
					t.Errorf("Expected status 400, got %d", status)
				}
				if resp.Error == "" {
					t.Errorf("Expected an error message")
				}
			})
		}
	})
}
