// Package api serves scans, stored runs and exports over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/lead-scout/internal/auth"
	"github.com/sells-group/lead-scout/internal/metrics"
	"github.com/sells-group/lead-scout/internal/scout"
	"github.com/sells-group/lead-scout/internal/store"
)

// Deps are the collaborators the API needs.
type Deps struct {
	Service *scout.Service
	Store   store.Store
	Auth    *auth.AuthContext
	Metrics *metrics.Recorder
	// AllowedOrigins configures CORS; empty allows any origin.
	AllowedOrigins []string
}

type server struct {
	Deps
}

// NewRouter builds the HTTP handler. Everything except /health, /login and
// /metrics requires a session token.
func NewRouter(d Deps) http.Handler {
	s := &server{Deps: d}

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Post("/login", s.login)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.Middleware)
		r.Post("/scans", s.createScan)
		r.Get("/runs", s.listRuns)
		r.Route("/runs/{id}", func(r chi.Router) {
			r.Get("/", s.getRun)
			r.Get("/export.csv", s.exportCSV)
			r.Get("/export.xlsx", s.exportXLSX)
		})
	})

	return r
}

// requestLogger logs one line per request through the global zap logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			zap.L().Info("api: request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
