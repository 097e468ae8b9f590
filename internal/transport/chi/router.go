package chi

import (
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/kailas-cloud/questsearch/internal/metrics"
)

// RouterConfig holds the cross-cutting options of the HTTP listener.
type RouterConfig struct {
	APIKeys     []string
	CORSOrigins []string
}

// NewRouter mounts the API routes behind the middleware chain.
func NewRouter(s *Server, cfg RouterConfig) http.Handler {
	r := gochi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(RequestID)
	r.Use(WideEvent(s.logger))
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}
	r.Use(BearerAuthMiddleware(cfg.APIKeys))
	r.Use(metrics.Middleware("http"))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Route("/api", func(r gochi.Router) {
		r.Post("/search", s.Search)
		r.Get("/health", s.Health)
		r.Get("/ready", s.Ready)
	})
	r.Get("/metrics", s.Metrics)

	return r
}
