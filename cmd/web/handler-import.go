package main

import (
	"net/http"
)

// importAlphaPOST imports an Alpha Progression CSV export sent as the raw request body.
func (app *application) importAlphaPOST(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	result, err := app.trainingService.ImportAlpha(r.Context(), body)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, result)
}
