/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Logger:     Request logging through logrus
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for the editor frontend

ROUTE GROUPS:
  /api/catalog     Templates
  /api/drafts/*    Draft editing, transport, close
  /api/budgets/*   Closed budgets, legacy import
  /api/scenarios/* Demo drafts

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/partyquote/serve.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	log "github.com/sirupsen/logrus"
)

// RouterOptions tunes the router.
type RouterOptions struct {
	AllowedOrigins []string
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:8080"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.Get("/catalog", h.ListCatalog)

		// Draft routes
		r.Route("/drafts", func(r chi.Router) {
			r.Get("/", h.ListDrafts)
			r.Post("/", h.CreateDraft)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetDraft)
				r.Patch("/", h.UpdateField)
				r.Get("/validation", h.GetValidation)
				r.Post("/close", h.CloseDraft)

				r.Post("/items/{category}", h.AddItem)
				r.Put("/items/{category}/{itemId}", h.UpdateItem)
				r.Delete("/items/{category}/{itemId}", h.RemoveItem)

				r.Post("/assignments", h.AddAssignment)
				r.Put("/assignments/{assignmentId}", h.UpdateAssignment)
				r.Delete("/assignments/{assignmentId}", h.RemoveAssignment)
				r.Post("/assignments/{assignmentId}/link", h.LinkAssignment)
				r.Delete("/assignments/{assignmentId}/link", h.UnlinkAssignment)
			})
		})

		// Budget routes
		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", h.ListBudgets)
			r.Post("/import", h.ImportBudget)
			r.Get("/{id}", h.GetBudget)
		})

		// Scenario routes
		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Party Quote Engine</title></head>
<body style="font-family: system-ui; max-width: 800px; margin: 50px auto; padding: 20px;">
<h1>Party Quote Engine API</h1>
<ul>
<li><a href="/api/catalog">/api/catalog</a> - Templates</li>
<li><a href="/api/drafts">/api/drafts</a> - Open drafts</li>
<li><a href="/api/budgets">/api/budgets</a> - Closed budgets</li>
<li><a href="/api/scenarios">/api/scenarios</a> - Demo scenarios</li>
</ul>
</body>
</html>`))
	})

	return r
}

// requestLogger logs one line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			log.WithFields(log.Fields{
				"request_id": middleware.GetReqID(r.Context()),
				"method":     r.Method,
				"path":       r.URL.Path,
				"status":     ww.Status(),
				"bytes":      ww.BytesWritten(),
				"duration":   time.Since(start).String(),
			}).Debug("request")
		}()
		next.ServeHTTP(ww, r)
	})
}
