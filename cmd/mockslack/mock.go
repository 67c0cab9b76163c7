package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
)

// mockAPI records every message it is asked to post.
type mockAPI struct {
	logger   *slog.Logger
	linkBase string
	failing  map[string]bool

	mu     sync.Mutex
	posted map[string][]string
}

func newMockAPI(logger *slog.Logger, linkBase string, failingUsers []string) *mockAPI {
	failing := make(map[string]bool, len(failingUsers))
	for _, u := range failingUsers {
		if u = strings.TrimSpace(u); u != "" {
			failing[u] = true
		}
	}
	return &mockAPI{
		logger:   logger,
		linkBase: linkBase,
		failing:  failing,
		posted:   make(map[string][]string),
	}
}

func (m *mockAPI) mount(r chi.Router) {
	r.Post("/api/chat.postMessage", m.postMessage)
	r.Post("/api/chat.getPermalink", m.getPermalink)
	r.Get("/stats", m.stats)
}

func (m *mockAPI) postMessage(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	channel := r.Form.Get("channel")
	text := r.Form.Get("text")

	if m.failing[channel] {
		m.logger.Info("postMessage rejected", "channel", channel)
		reply(w, map[string]any{"ok": false, "error": "user_not_found"})
		return
	}
	if text == "" {
		reply(w, map[string]any{"ok": false, "error": "no_text"})
		return
	}

	m.mu.Lock()
	m.posted[channel] = append(m.posted[channel], text)
	m.mu.Unlock()

	m.logger.Info("postMessage", "channel", channel, "text", text)
	reply(w, map[string]any{"ok": true, "channel": channel, "ts": "1700000000.000100"})
}

func (m *mockAPI) getPermalink(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	channel := r.Form.Get("channel")
	ts := r.Form.Get("message_ts")

	if channel == "" || ts == "" {
		reply(w, map[string]any{"ok": false, "error": "message_not_found"})
		return
	}

	reply(w, map[string]any{
		"ok":        true,
		"channel":   channel,
		"permalink": m.linkBase + "/archives/" + channel + "/p" + strings.ReplaceAll(ts, ".", ""),
	})
}

func (m *mockAPI) stats(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	counts := make(map[string]int, len(m.posted))
	total := 0
	for ch, msgs := range m.posted {
		counts[ch] = len(msgs)
		total += len(msgs)
	}
	m.mu.Unlock()

	reply(w, map[string]any{"total_messages": total, "by_channel": counts})
}

func (m *mockAPI) messages(channel string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.posted[channel]...)
}

func reply(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}
