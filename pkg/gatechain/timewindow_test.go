package gatechain

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func fixedClock(hour, min, sec int) func() time.Time {
	return func() time.Time {
		return time.Date(2024, 3, 14, hour, min, sec, 0, time.UTC)
	}
}

func TestTimeWindowGate_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		clock   func() time.Time
		allowed bool
	}{
		{"exactly at window start", fixedClock(9, 0, 0), true},
		{"one second before start", fixedClock(8, 59, 59), false},
		{"exactly at window end", fixedClock(18, 0, 0), true},
		{"one second after end", fixedClock(18, 0, 1), false},
		{"middle of the window", fixedClock(12, 30, 0), true},
		{"middle of the night", fixedClock(3, 0, 0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gate, err := NewTimeWindowGate("09:00", "18:00")
			if err != nil {
				t.Fatalf("NewTimeWindowGate() failed: %v", err)
			}
			gate.now = tt.clock

			r := httptest.NewRequest("GET", "/api/messages", nil)
			decision := gate.Check(r)

			if decision.Allowed != tt.allowed {
				t.Errorf("Allowed = %v, want %v", decision.Allowed, tt.allowed)
			}
			if !tt.allowed {
				if decision.Status != http.StatusForbidden {
					t.Errorf("Status = %d, want %d", decision.Status, http.StatusForbidden)
				}
				if string(decision.Body) != "Access denied" {
					t.Errorf("Body = %q, want %q", decision.Body, "Access denied")
				}
			}
		})
	}
}

func TestTimeWindowGate_IgnoresIdentity(t *testing.T) {
	gate, err := NewTimeWindowGate("09:00", "18:00")
	if err != nil {
		t.Fatalf("NewTimeWindowGate() failed: %v", err)
	}
	gate.now = fixedClock(7, 0, 0)

	r := httptest.NewRequest("GET", "/api/messages", nil)
	r = r.WithContext(WithPrincipal(r.Context(), Principal{ID: "1", Username: "root", Role: "admin"}))

	if decision := gate.Check(r); decision.Allowed {
		t.Error("time window must reject outside the window regardless of identity")
	}
}

func TestNewTimeWindowGate_InvalidConfig(t *testing.T) {
	cases := []struct {
		name       string
		start, end string
	}{
		{"garbage start", "morning", "18:00"},
		{"hour out of range", "25:00", "18:00"},
		{"minute out of range", "09:75", "18:00"},
		{"end before start", "18:00", "09:00"},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTimeWindowGate(tt.start, tt.end); err == nil {
				t.Errorf("NewTimeWindowGate(%q, %q) should fail", tt.start, tt.end)
			}
		})
	}
}
