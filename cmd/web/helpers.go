package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/myrjola/nextlift/internal/contexthelpers"
	"github.com/myrjola/nextlift/internal/errors"
	"github.com/myrjola/nextlift/internal/recommend"
	"github.com/myrjola/nextlift/internal/training"
)

// maxBodyBytes bounds JSON and CSV request bodies.
const maxBodyBytes = 4 << 20

var errBadParameter = errors.NewSentinel("bad parameter")

type errorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"traceId,omitempty"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		app.serverError(w, r, errors.Wrap(err, "marshal response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func (app *application) readJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: decode body: %w", errBadParameter, err)
	}
	return nil
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	if isAPI(r) {
		app.writeJSON(w, r, http.StatusInternalServerError, errorResponse{
			Error:   http.StatusText(http.StatusInternalServerError),
			TraceID: contexthelpers.TraceID(r.Context()),
		})
		return
	}
	app.render(w, r, http.StatusInternalServerError, "error", newBaseTemplateData(r))
}

func (app *application) notFound(w http.ResponseWriter, r *http.Request) {
	if isAPI(r) {
		app.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "not found", TraceID: ""})
		return
	}
	app.render(w, r, http.StatusNotFound, "not-found", newBaseTemplateData(r))
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "client error",
		slog.Int("status", status), slog.String("error", err.Error()))
	app.writeJSON(w, r, status, errorResponse{Error: err.Error(), TraceID: ""})
}

// handleError maps domain errors to HTTP responses. Unknown errors are server errors.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, training.ErrNotFound):
		app.notFound(w, r)
	case errors.Is(err, training.ErrInvalidEntry),
		errors.Is(err, training.ErrInvalidImport),
		errors.Is(err, errBadParameter):
		app.clientError(w, r, http.StatusBadRequest, err)
	default:
		app.serverError(w, r, err)
	}
}

// recommendParams reads the optional age and phase query parameters, falling back to the configured defaults.
func (app *application) recommendParams(r *http.Request) (int, recommend.Phase, error) {
	q := r.URL.Query()
	age := app.defaults.age
	if s := q.Get("age"); s != "" {
		var err error
		if age, err = strconv.Atoi(s); err != nil {
			return 0, "", fmt.Errorf("%w: age %q is not a number", errBadParameter, s)
		}
	}
	phase := app.defaults.phase
	if s := q.Get("phase"); s != "" {
		phase = recommend.ParsePhase(s)
	}
	return age, phase, nil
}
