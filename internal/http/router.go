package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/finstat/internal/http/api"
	"github.com/MrJamesThe3rd/finstat/internal/http/page"
)

// New builds the router. graphDir is served under /graphs so the chart
// paths in a report resolve against the same server.
func New(
	pages *page.Handler,
	reportsV1 *api.Handler,
	graphDir string,
	allowedOrigins []string,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Handle("/graphs/*", http.StripPrefix("/graphs/", noCache(http.FileServer(http.Dir(graphDir)))))

	router.Group(pages.Routes)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   allowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))

		r.Route("/reports", reportsV1.Routes)
	})

	return router
}

// noCache stops browsers from showing a previous upload's chart, since every
// upload overwrites the same files.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
