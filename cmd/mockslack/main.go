// Command mockslack is a local stand-in for the Slack Web API methods the
// server calls. Point SLACK_API_URL at http://localhost:9090/api/.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	port := "9090"
	if p := os.Getenv("PORT"); p != "" {
		port = p
	}

	var failing []string
	if v := os.Getenv("MOCK_FAIL_USERS"); v != "" {
		failing = strings.Split(v, ",")
	}

	api := newMockAPI(logger, "https://mock.slack.com", failing)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	api.mount(r)

	logger.Info("mock slack api starting", "port", port)
	logger.Info("  POST /api/chat.postMessage  -> ok, or user_not_found for MOCK_FAIL_USERS")
	logger.Info("  POST /api/chat.getPermalink -> permalink built from channel and ts")
	logger.Info("  GET  /stats                 -> message counts")

	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
