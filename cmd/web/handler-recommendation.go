package main

import (
	"net/http"

	"github.com/myrjola/nextlift/internal/recommend"
)

// recommendationGET returns the next-session recommendation for one exercise. The query parameter format=legacy
// selects the flat shape older clients understand.
func (app *application) recommendationGET(w http.ResponseWriter, r *http.Request) {
	age, phase, err := app.recommendParams(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	rec, err := app.trainingService.Recommend(r.Context(), r.PathValue("name"), age, phase)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "legacy" {
		app.writeJSON(w, r, http.StatusOK, recommend.ToLegacy(&rec))
		return
	}
	app.writeJSON(w, r, http.StatusOK, rec)
}

func (app *application) recommendationsGET(w http.ResponseWriter, r *http.Request) {
	age, phase, err := app.recommendParams(r)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	recs, err := app.trainingService.RecommendAll(r.Context(), age, phase)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if r.URL.Query().Get("format") == "legacy" {
		legacy := make([]*recommend.LegacyRecommendation, 0, len(recs))
		for i := range recs {
			legacy = append(legacy, recommend.ToLegacy(&recs[i]))
		}
		app.writeJSON(w, r, http.StatusOK, legacy)
		return
	}
	app.writeJSON(w, r, http.StatusOK, recs)
}
