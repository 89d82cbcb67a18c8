package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/myrjola/nextlift/internal/recommend"
	"github.com/myrjola/nextlift/internal/training"
)

// entryRequest is the JSON body for logging a set. Dates are calendar days in YYYY-MM-DD form.
type entryRequest struct {
	Date          string  `json:"date"`
	WeightKg      float64 `json:"weightKg"`
	Reps          int     `json:"reps"`
	SetsLogged    *int    `json:"setsLogged,omitempty"`
	RepsInReserve *int    `json:"repsInReserve,omitempty"`
}

type entryUpdateRequest struct {
	Date     *string  `json:"date,omitempty"`
	WeightKg *float64 `json:"weightKg,omitempty"`
	Reps     *int     `json:"reps,omitempty"`
}

type entryResponse struct {
	ID            string  `json:"id"`
	ExerciseName  string  `json:"exerciseName"`
	Date          string  `json:"date"`
	WeightKg      float64 `json:"weightKg"`
	Reps          int     `json:"reps"`
	SetsLogged    *int    `json:"setsLogged,omitempty"`
	RepsInReserve *int    `json:"repsInReserve,omitempty"`
	Excluded      bool    `json:"excluded"`
}

type exerciseResponse struct {
	Name          string `json:"name"`
	EntryCount    int    `json:"entryCount"`
	ExcludedCount int    `json:"excludedCount"`
	LastDate      string `json:"lastDate"`
}

func toEntryResponse(e recommend.WorkoutEntry) entryResponse {
	return entryResponse{
		ID:            e.ID,
		ExerciseName:  e.ExerciseName,
		Date:          e.Date.Format(time.DateOnly),
		WeightKg:      e.WeightKg,
		Reps:          e.Reps,
		SetsLogged:    e.SetsLogged,
		RepsInReserve: e.RepsInReserve,
		Excluded:      e.Excluded,
	}
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", errBadParameter, s)
	}
	return d, nil
}

func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.trainingService.ListExercises(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	resp := make([]exerciseResponse, 0, len(exercises))
	for _, ex := range exercises {
		resp = append(resp, exerciseResponse{
			Name:          ex.Name,
			EntryCount:    ex.EntryCount,
			ExcludedCount: ex.ExcludedCount,
			LastDate:      ex.LastDate.Format(time.DateOnly),
		})
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

func (app *application) entriesGET(w http.ResponseWriter, r *http.Request) {
	entries, err := app.trainingService.ListEntries(r.Context(), r.PathValue("name"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	resp := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, toEntryResponse(e))
	}
	app.writeJSON(w, r, http.StatusOK, resp)
}

func (app *application) entriesPOST(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := app.readJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	entry, err := app.trainingService.LogEntry(r.Context(), training.EntryInput{
		ExerciseName:  r.PathValue("name"),
		Date:          date,
		WeightKg:      req.WeightKg,
		Reps:          req.Reps,
		SetsLogged:    req.SetsLogged,
		RepsInReserve: req.RepsInReserve,
	})
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, toEntryResponse(entry))
}

func (app *application) entryPUT(w http.ResponseWriter, r *http.Request) {
	var req entryUpdateRequest
	if err := app.readJSON(w, r, &req); err != nil {
		app.handleError(w, r, err)
		return
	}
	upd := training.EntryUpdate{Date: nil, WeightKg: req.WeightKg, Reps: req.Reps}
	if req.Date != nil {
		date, err := parseDate(*req.Date)
		if err != nil {
			app.handleError(w, r, err)
			return
		}
		upd.Date = &date
	}
	entry, err := app.trainingService.UpdateEntry(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, toEntryResponse(entry))
}

func (app *application) setExcluded(w http.ResponseWriter, r *http.Request, excluded bool) {
	entry, err := app.trainingService.SetExcluded(r.Context(), r.PathValue("id"), excluded)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, toEntryResponse(entry))
}

func (app *application) entryExcludePOST(w http.ResponseWriter, r *http.Request) {
	app.setExcluded(w, r, true)
}

func (app *application) entryRestorePOST(w http.ResponseWriter, r *http.Request) {
	app.setExcluded(w, r, false)
}

func (app *application) entryDELETE(w http.ResponseWriter, r *http.Request) {
	if err := app.trainingService.DeleteEntry(r.Context(), r.PathValue("id")); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
