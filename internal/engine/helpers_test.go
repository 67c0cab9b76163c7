package engine

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/Priya8975/keyword-pager/internal/domain"
	"github.com/Priya8975/keyword-pager/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type sentMessage struct {
	to   string
	text string
}

// fakeGateway records every message and can be told to fail.
type fakeGateway struct {
	mu        sync.Mutex
	sent      []sentMessage
	postErr   error
	permalink string
	linkErr   error
}

func (g *fakeGateway) PostMessage(_ context.Context, subscriberID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, sentMessage{to: subscriberID, text: text})
	return g.postErr
}

func (g *fakeGateway) ResolvePermalink(_ context.Context, channelID, timestamp string) (string, error) {
	if g.linkErr != nil {
		return "", g.linkErr
	}
	if g.permalink != "" {
		return g.permalink, nil
	}
	return "https://example.slack.com/archives/" + channelID + "/p" + timestamp, nil
}

func (g *fakeGateway) messages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]sentMessage, len(g.sent))
	copy(out, g.sent)
	return out
}

func (g *fakeGateway) countTo(subscriberID string) int {
	n := 0
	for _, m := range g.messages() {
		if m.to == subscriberID {
			n++
		}
	}
	return n
}

var errStoreDown = errors.New("store unavailable")

// faultyStore fails every operation on the listed keywords.
type faultyStore struct {
	Store
	failing map[string]bool
}

func (s *faultyStore) Get(ctx context.Context, keyword string) ([]string, bool, error) {
	if s.failing[keyword] {
		return nil, false, errStoreDown
	}
	return s.Store.Get(ctx, keyword)
}

func (s *faultyStore) UnionSubscriber(ctx context.Context, keyword, subscriberID string) error {
	if s.failing[keyword] {
		return errStoreDown
	}
	return s.Store.UnionSubscriber(ctx, keyword, subscriberID)
}

func (s *faultyStore) RemoveSubscriber(ctx context.Context, keyword, subscriberID string) error {
	if s.failing[keyword] {
		return errStoreDown
	}
	return s.Store.RemoveSubscriber(ctx, keyword, subscriberID)
}

// recordingSink collects activity.
type recordingSink struct {
	mu     sync.Mutex
	events []domain.Activity
}

func (s *recordingSink) Publish(a domain.Activity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, a)
}

func (s *recordingSink) count(activityType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, a := range s.events {
		if a.Type == activityType {
			n++
		}
	}
	return n
}

func subscribersOf(t *testing.T, s Store, keyword string) []string {
	t.Helper()
	subs, _, err := s.Get(context.Background(), keyword)
	if err != nil {
		t.Fatalf("Get(%q): %v", keyword, err)
	}
	return subs
}

func newMemoryStore() *store.MemoryStore {
	return store.NewMemory()
}
