package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

//go:embed static
var staticFS embed.FS

// NewRouter registers every route on a chi router.
func NewRouter(app *App) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(app.instrument)
	r.Use(middleware.Recoverer)

	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	r.Get("/", app.landing)
	r.Post("/leads", app.postLandingLead)

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", app.catalogPage)
		r.Post("/retry", app.retryCatalog)
		r.Post("/lead", app.postCatalogLead)
	})

	r.Get("/quiz", app.quizPage)
	r.Post("/quiz", app.postQuiz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/catalog", app.apiCatalog)
		r.Options("/catalog", app.apiPreflight)
		r.Post("/leads", app.apiLeads)
		r.Options("/leads", app.apiPreflight)
	})

	r.Get("/healthz", app.health)

	if app.cfg.MetricsAddr == "" && app.metrics != nil {
		r.Handle("/metrics", promhttp.HandlerFor(app.metrics.Registry, promhttp.HandlerOpts{}))
	}

	return r
}
