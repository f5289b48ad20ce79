package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourusername/gatechain/metrics"
	"github.com/yourusername/gatechain/pkg/gatechain"
)

// nullSink drops request log lines in tests.
type nullSink struct{}

func (nullSink) WriteLine(string) error { return nil }
func (nullSink) Close() error           { return nil }

func newTestStack(t *testing.T) (http.Handler, *metrics.Metrics) {
	t.Helper()

	tracker := metrics.NewMetrics()
	chain, err := gatechain.New(
		gatechain.WithSink(nullSink{}),
		gatechain.WithMetrics(tracker),
		gatechain.WithClock(func() time.Time {
			return time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC)
		}),
	)
	if err != nil {
		t.Fatalf("gatechain.New() failed: %v", err)
	}
	t.Cleanup(func() { chain.Close() })

	mux := http.NewServeMux()
	handler := NewHandler()
	mux.HandleFunc("/api/messages", handler.Messages)
	mux.HandleFunc("/api/conversations/", handler.Messages)

	auth := NewAuthenticator()
	return auth.Middleware(chain.Middleware(mux)), tracker
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.RemoteAddr = "192.168.1.1:12345"
	return req
}

func asAdmin(req *http.Request) *http.Request {
	req.Header.Set("X-User-Id", "1")
	req.Header.Set("X-User-Name", "alice")
	req.Header.Set("X-User-Role", "admin")
	return req
}

func TestStack_CreateMessage(t *testing.T) {
	stack, _ := newTestStack(t)

	req := asAdmin(postJSON("/api/messages", `{"body":"hello"}`))
	rr := httptest.NewRecorder()
	stack.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	var msg Message
	if err := json.NewDecoder(rr.Body).Decode(&msg); err != nil {
		t.Fatalf("response not JSON: %v", err)
	}
	if msg.Sender != "alice" {
		t.Errorf("Sender = %q, want alice", msg.Sender)
	}
	if msg.Body != "hello" {
		t.Errorf("Body = %q, want hello", msg.Body)
	}
}

func TestStack_NestedConversationMessage(t *testing.T) {
	stack, _ := newTestStack(t)

	req := asAdmin(postJSON("/api/conversations/7/messages", `{"body":"hi"}`))
	rr := httptest.NewRecorder()
	stack.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusCreated)
	}

	var msg Message
	json.NewDecoder(rr.Body).Decode(&msg)
	if msg.ConversationID != "7" {
		t.Errorf("ConversationID = %q, want 7", msg.ConversationID)
	}
}

func TestStack_AnonymousWriteRejected(t *testing.T) {
	stack, _ := newTestStack(t)

	req := postJSON("/api/messages", `{"body":"hello"}`)
	rr := httptest.NewRecorder()
	stack.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestStack_GuestWriteRejected(t *testing.T) {
	stack, _ := newTestStack(t)

	req := postJSON("/api/messages", `{"body":"hello"}`)
	req.Header.Set("X-User-Id", "9")
	req.Header.Set("X-User-Name", "bob")
	req.Header.Set("X-User-Role", "guest")
	rr := httptest.NewRecorder()
	stack.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
}

func TestStack_AnonymousReadAllowed(t *testing.T) {
	stack, _ := newTestStack(t)

	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rr := httptest.NewRecorder()
	stack.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}

func TestStack_RateLimitKicksInAfterFiveMessages(t *testing.T) {
	stack, tracker := newTestStack(t)

	for i := 0; i < 5; i++ {
		req := asAdmin(postJSON("/api/messages", `{"body":"spam"}`))
		rr := httptest.NewRecorder()
		stack.ServeHTTP(rr, req)
		if rr.Code != http.StatusCreated {
			t.Fatalf("message %d: status = %d, want 201", i+1, rr.Code)
		}
	}

	req := asAdmin(postJSON("/api/messages", `{"body":"spam"}`))
	rr := httptest.NewRecorder()
	stack.ServeHTTP(rr, req)

	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rr.Code)
	}

	var payload struct {
		Error      string `json:"error"`
		RetryAfter int    `json:"retry_after"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("429 body not JSON: %v", err)
	}
	if payload.RetryAfter != 60 {
		t.Errorf("retry_after = %d, want 60", payload.RetryAfter)
	}

	// The role gate never saw the sixth request.
	snapshot := tracker.GetSnapshot()
	for _, g := range snapshot.Gates {
		if g.Gate == "role_access" && g.Checked != 5 {
			t.Errorf("role_access checked %d requests, want 5", g.Checked)
		}
		if g.Gate == "rate_limit" && g.Rejected != 1 {
			t.Errorf("rate_limit rejected %d requests, want 1", g.Rejected)
		}
	}
}

func TestMetricsHandler(t *testing.T) {
	tracker := metrics.NewMetrics()
	tracker.RecordDecision("time_window", true)
	tracker.RecordDecision("time_window", false)

	h := NewMetricsHandler(tracker)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var snap metrics.Snapshot
	if err := json.NewDecoder(rr.Body).Decode(&snap); err != nil {
		t.Fatalf("metrics body not JSON: %v", err)
	}
	if snap.TotalDecisions != 2 || snap.Rejected != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestMetricsHandler_MethodNotAllowed(t *testing.T) {
	h := NewMetricsHandler(metrics.NewMetrics())

	req := httptest.NewRequest(http.MethodPost, "/metrics", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}
