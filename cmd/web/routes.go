package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		shared = func(next http.Handler) http.Handler {
			return app.logAndTraceRequest(app.requestMetrics(app.recoverPanic(secureHeaders(
				app.crossOriginProtection(commonContext(app.timeout(next)))))))
		}
		api = func(next http.HandlerFunc) http.Handler {
			return shared(noCache(next))
		}
		page = func(next http.HandlerFunc) http.Handler {
			return shared(next)
		}
	)

	mux.Handle("GET /api/healthy", api(app.healthy))

	mux.Handle("GET /api/exercises", api(app.exercisesGET))
	mux.Handle("GET /api/exercises/{name}/entries", api(app.entriesGET))
	mux.Handle("POST /api/exercises/{name}/entries", api(app.entriesPOST))
	mux.Handle("PUT /api/entries/{id}", api(app.entryPUT))
	mux.Handle("POST /api/entries/{id}/exclude", api(app.entryExcludePOST))
	mux.Handle("POST /api/entries/{id}/restore", api(app.entryRestorePOST))
	mux.Handle("DELETE /api/entries/{id}", api(app.entryDELETE))

	mux.Handle("GET /api/exercises/{name}/recommendation", api(app.recommendationGET))
	mux.Handle("GET /api/recommendations", api(app.recommendationsGET))
	mux.Handle("POST /api/import/alpha", api(app.importAlphaPOST))

	mux.Handle("GET /{$}", page(app.home))
	mux.Handle("POST /entries", page(app.entryFormPOST))
	mux.Handle("GET /exercises/{name}/report", page(app.reportGET))

	mux.Handle("GET /metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))

	mux.Handle("/", page(app.notFound))

	return mux
}
