package gateway

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

// fakeSlackAPI answers chat.postMessage with the given sequence of outcomes
// and then succeeds. An outcome is "" for success, "ratelimited:N" for a 429
// with Retry-After N, "drop" to close the connection after reading the
// request, or a Slack error code.
func fakeSlackAPI(t *testing.T, outcomes []string, posts *atomic.Int32, lastText *atomic.Value) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/chat.postMessage"):
			n := int(posts.Add(1))
			r.ParseForm()
			if lastText != nil {
				lastText.Store(r.Form.Get("channel") + "|" + r.Form.Get("text"))
			}

			outcome := ""
			if n <= len(outcomes) {
				outcome = outcomes[n-1]
			}
			switch {
			case outcome == "":
				json.NewEncoder(w).Encode(map[string]any{"ok": true, "channel": "D123", "ts": "1700000000.000100"})
			case outcome == "drop":
				conn, _, err := w.(http.Hijacker).Hijack()
				if err != nil {
					t.Errorf("hijack: %v", err)
					return
				}
				conn.Close()
			case strings.HasPrefix(outcome, "ratelimited:"):
				w.Header().Set("Retry-After", strings.TrimPrefix(outcome, "ratelimited:"))
				w.WriteHeader(http.StatusTooManyRequests)
			default:
				json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": outcome})
			}

		case strings.HasSuffix(r.URL.Path, "/chat.getPermalink"):
			r.ParseForm()
			if r.Form.Get("channel") == "" || r.Form.Get("message_ts") == "" {
				json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "message_not_found"})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"ok":        true,
				"channel":   r.Form.Get("channel"),
				"permalink": "https://team.slack.com/archives/" + r.Form.Get("channel") + "/p" + strings.ReplaceAll(r.Form.Get("message_ts"), ".", ""),
			})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestGateway(url string, attempts int) *Slack {
	return NewSlack(Options{
		Token:       "xoxb-test",
		APIURL:      url + "/",
		MaxAttempts: attempts,
		BaseBackoff: time.Millisecond,
	}, testLogger())
}

func TestPostMessage_Success(t *testing.T) {
	var posts atomic.Int32
	var last atomic.Value
	server := fakeSlackAPI(t, nil, &posts, &last)

	gw := newTestGateway(server.URL, 3)
	if err := gw.PostMessage(context.Background(), "U1", "hello there"); err != nil {
		t.Fatalf("PostMessage: %v", err)
	}

	if posts.Load() != 1 {
		t.Errorf("expected 1 post, got %d", posts.Load())
	}
	if got := last.Load(); got != "U1|hello there" {
		t.Errorf("posted %v, want %q", got, "U1|hello there")
	}
}

func TestPostMessage_DroppedConnectionNotRetried(t *testing.T) {
	var posts atomic.Int32
	server := fakeSlackAPI(t, []string{"drop", "drop", "drop"}, &posts, nil)

	gw := newTestGateway(server.URL, 3)
	if err := gw.PostMessage(context.Background(), "U1", "hi"); err == nil {
		t.Fatal("expected an error for a dropped connection")
	}

	// Slack may have posted before the connection died; a second request
	// could deliver a duplicate.
	if posts.Load() != 1 {
		t.Errorf("expected exactly 1 post, got %d", posts.Load())
	}
}

func TestPostMessage_SlackErrorsNotRetried(t *testing.T) {
	for _, code := range []string{"internal_error", "fatal_error", "user_not_found"} {
		t.Run(code, func(t *testing.T) {
			var posts atomic.Int32
			server := fakeSlackAPI(t, []string{code, code, code}, &posts, nil)

			gw := newTestGateway(server.URL, 5)
			err := gw.PostMessage(context.Background(), "U1", "hi")
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), code) {
				t.Errorf("error %q should carry the slack error code", err)
			}
			if posts.Load() != 1 {
				t.Errorf("expected 1 attempt, got %d", posts.Load())
			}
		})
	}
}

func TestPostMessage_WaitsOutRateLimit(t *testing.T) {
	var posts atomic.Int32
	server := fakeSlackAPI(t, []string{"ratelimited:1"}, &posts, nil)

	gw := newTestGateway(server.URL, 3)
	start := time.Now()
	if err := gw.PostMessage(context.Background(), "U1", "hi"); err != nil {
		t.Fatalf("PostMessage should succeed after the rate limit: %v", err)
	}

	if posts.Load() != 2 {
		t.Errorf("expected 2 attempts, got %d", posts.Load())
	}
	if elapsed := time.Since(start); elapsed < time.Second {
		t.Errorf("retried after %v, before Retry-After elapsed", elapsed)
	}
}

func TestPostMessage_RateLimitBoundedByMaxAttempts(t *testing.T) {
	var posts atomic.Int32
	server := fakeSlackAPI(t, []string{"ratelimited:0", "ratelimited:0", "ratelimited:0", "ratelimited:0"}, &posts, nil)

	gw := newTestGateway(server.URL, 2)
	if err := gw.PostMessage(context.Background(), "U1", "hi"); err == nil {
		t.Fatal("expected an error after exhausting attempts")
	}

	if posts.Load() != 2 {
		t.Errorf("expected exactly 2 attempts, got %d", posts.Load())
	}
}

func TestPostMessage_RetriesRefusedConnection(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	gw := newTestGateway(url, 3)
	err := gw.PostMessage(context.Background(), "U1", "hi")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "after 3 attempt(s)") {
		t.Errorf("a connection that was never made should be retried, got %q", err)
	}
}

func TestPostMessage_CancelledContextStopsRetries(t *testing.T) {
	var posts atomic.Int32
	server := fakeSlackAPI(t, []string{"ratelimited:60", "ratelimited:60"}, &posts, nil)

	gw := newTestGateway(server.URL, 3)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	if err := gw.PostMessage(ctx, "U1", "hi"); err == nil {
		t.Fatal("expected an error")
	}
	if posts.Load() != 1 {
		t.Errorf("expected the first attempt only, got %d", posts.Load())
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("rate-limit wait ignored cancellation, took %v", elapsed)
	}
}

func TestResolvePermalink(t *testing.T) {
	var posts atomic.Int32
	server := fakeSlackAPI(t, nil, &posts, nil)

	gw := newTestGateway(server.URL, 1)
	link, err := gw.ResolvePermalink(context.Background(), "C1", "1700000000.000100")
	if err != nil {
		t.Fatalf("ResolvePermalink: %v", err)
	}

	if want := "https://team.slack.com/archives/C1/p1700000000000100"; link != want {
		t.Errorf("permalink = %q, want %q", link, want)
	}
}

func TestNewSlack_Defaults(t *testing.T) {
	gw := NewSlack(Options{Token: "xoxb"}, testLogger())

	if gw.maxAttempts != 1 {
		t.Errorf("maxAttempts = %d, want 1", gw.maxAttempts)
	}
	if gw.baseBackoff <= 0 {
		t.Errorf("baseBackoff should default to a positive duration, got %v", gw.baseBackoff)
	}
}
