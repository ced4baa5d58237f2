// backend/api/router.go
package api

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gewnthar/presupuesto/backend/handlers"
	"github.com/gewnthar/presupuesto/backend/services"
)

// Deps are the collaborators the routes need. DB and Versions are nil when
// no database is configured.
type Deps struct {
	Service  *services.BcnService
	DB       handlers.Pinger
	Versions handlers.SourceVersionLister
}

func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.Health(deps.DB))

		r.Route("/bcn", func(r chi.Router) {
			r.Get("/years", handlers.GetYears(deps.Service))
			r.Get("/availability", handlers.GetAvailability(deps.Service))
			r.Get("/{year}", handlers.GetBudget(deps.Service))
			r.Get("/{year}/standard", handlers.GetStandardBudget(deps.Service))
			r.Get("/{year}/ministries", handlers.ListMinistries(deps.Service))
			r.Get("/{year}/ministries/{code}", handlers.GetMinistry(deps.Service))
			r.Get("/{year}/lines.csv", handlers.ExportLinesCSV(deps.Service))
			r.Get("/{year}/ministries.xlsx", handlers.ExportMinistriesXLSX(deps.Service))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/bcn/{year}/refresh", handlers.RefreshYear(deps.Service))
			r.Post("/bcn/{year}/import", handlers.ImportLines(deps.Service))
			r.Post("/cache/flush", handlers.FlushCache(deps.Service))
			r.Get("/bcn/source-versions", handlers.ListSourceVersions(deps.Versions))
		})
	})

	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("Handler: %s %s (%s)\n", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
