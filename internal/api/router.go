package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Deps are the collaborators the HTTP surface needs.
type Deps struct {
	SigningSecret string
	StoreBackend  string
	Keywords      KeywordReader
	Queue         Submitter
	QueueDepth    func() int
	WebSocket     http.HandlerFunc
	WSClients     func() int
	Metrics       http.Handler
	Logger        *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	slackHandler := NewSlackEventsHandler(d.SigningSecret, d.Queue, d.Logger)
	keywordHandler := NewKeywordHandler(d.Keywords)
	dashHandler := NewDashboardHandler(d.StoreBackend, d.QueueDepth, d.WSClients)

	r.Post("/slack/events", slackHandler.Handle)

	if d.WebSocket != nil {
		r.Get("/ws", d.WebSocket)
	}
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(corsMiddleware)
		r.Get("/health", HealthHandler())
		r.Get("/stats", dashHandler.Stats)
		r.Get("/keywords/{keyword}", keywordHandler.Get)
	})

	return r
}

// corsMiddleware adds CORS headers for the read-only dashboard API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
