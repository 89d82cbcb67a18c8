package main

import (
	"net/http"

	"github.com/myrjola/nextlift/internal/recommend"
	"github.com/myrjola/nextlift/internal/report"
)

type reportTemplateData struct {
	BaseTemplateData
	Recommendation recommend.Recommendation
	Markdown       string
}

// reportGET renders the recommendation of one exercise as an HTML page. Query parameters age and phase override
// the configured defaults.
func (app *application) reportGET(w http.ResponseWriter, r *http.Request) {
	age, phase, err := app.recommendParams(r)
	if err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	rec, err := app.trainingService.Recommend(r.Context(), r.PathValue("name"), age, phase)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	data := reportTemplateData{
		BaseTemplateData: newBaseTemplateData(r),
		Recommendation:   rec,
		Markdown:         report.Markdown(rec),
	}
	app.render(w, r, http.StatusOK, "report", data)
}
