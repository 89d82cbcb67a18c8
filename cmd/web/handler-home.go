package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/nextlift/internal/training"
)

type homeTemplateData struct {
	BaseTemplateData
	Exercises []training.ExerciseSummary
	Today     string
}

func (app *application) home(w http.ResponseWriter, r *http.Request) {
	exercises, err := app.trainingService.ListExercises(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data := homeTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Exercises:        exercises,
		Today:            time.Now().Format(time.DateOnly),
	}
	app.render(w, r, http.StatusOK, "home", data)
}

// parseEntryForm reads the log-a-set form. An empty RIR field means the effort was not recorded.
func parseEntryForm(r *http.Request) (training.EntryInput, error) {
	var in training.EntryInput
	if err := r.ParseForm(); err != nil {
		return in, fmt.Errorf("%w: parse form: %w", errBadParameter, err)
	}
	date, err := parseDate(r.PostForm.Get("date"))
	if err != nil {
		return in, err
	}
	weight, err := strconv.ParseFloat(strings.Replace(r.PostForm.Get("weight"), ",", ".", 1), 64)
	if err != nil {
		return in, fmt.Errorf("%w: weight is not a number", errBadParameter)
	}
	reps, err := strconv.Atoi(r.PostForm.Get("reps"))
	if err != nil {
		return in, fmt.Errorf("%w: reps is not a number", errBadParameter)
	}
	in = training.EntryInput{
		ExerciseName:  r.PostForm.Get("exercise"),
		Date:          date,
		WeightKg:      weight,
		Reps:          reps,
		SetsLogged:    nil,
		RepsInReserve: nil,
	}
	if s := r.PostForm.Get("rir"); s != "" {
		rir, rirErr := strconv.Atoi(s)
		if rirErr != nil {
			return in, fmt.Errorf("%w: RIR is not a number", errBadParameter)
		}
		in.RepsInReserve = &rir
	}
	return in, nil
}

// entryFormPOST logs a set from the home page form and redirects to the exercise report.
func (app *application) entryFormPOST(w http.ResponseWriter, r *http.Request) {
	in, err := parseEntryForm(r)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	entry, err := app.trainingService.LogEntry(r.Context(), in)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	http.Redirect(w, r, "/exercises/"+url.PathEscape(entry.ExerciseName)+"/report", http.StatusSeeOther)
}
