package gatechain

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// RateLimitGate bounds the rate of write traffic to messaging endpoints per
// client, using a strict sliding window rather than fixed buckets. Fixed
// buckets admit a burst of up to 2x the limit across a bucket boundary; a
// sliding window does not.
//
// Only POST requests whose path contains one of the configured markers
// consume quota. Everything else passes through untouched.
type RateLimitGate struct {
	store   WindowStore
	limit   int
	window  time.Duration
	markers []string
	logger  *zap.Logger
	now     func() time.Time
}

// NewRateLimitGate creates a gate allowing limit qualifying requests per
// window per client. markers are path substrings identifying messaging
// endpoints (e.g. "/messages", which covers both the top-level collection
// and conversation-nested ones).
func NewRateLimitGate(store WindowStore, limit int, window time.Duration, markers []string, logger *zap.Logger) (*RateLimitGate, error) {
	if store == nil {
		return nil, fmt.Errorf("%w: window store cannot be nil", ErrInvalidConfig)
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: rate limit must be positive", ErrInvalidConfig)
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: rate limit window must be positive", ErrInvalidConfig)
	}
	if len(markers) == 0 {
		return nil, fmt.Errorf("%w: at least one messaging path marker is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimitGate{
		store:   store,
		limit:   limit,
		window:  window,
		markers: markers,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Name implements Gate.
func (g *RateLimitGate) Name() string { return "rate_limit" }

// Check implements Gate.
func (g *RateLimitGate) Check(r *http.Request) Decision {
	if !g.qualifies(r) {
		return Allow()
	}

	key := ClientKey(r)
	allowed, count, err := g.store.Take(r.Context(), key, g.now(), g.window, g.limit)
	if err != nil {
		// A broken limiter backend must not take the API down with it.
		g.logger.Warn("window store failed, allowing request",
			zap.Error(err),
			zap.String("client", key))
		return Allow()
	}

	if !allowed {
		g.logger.Info("rate limit exceeded",
			zap.String("client", key),
			zap.Int("count", count),
			zap.String("path", r.URL.Path))

		d := RejectJSON(http.StatusTooManyRequests, map[string]interface{}{
			"error": fmt.Sprintf("Rate limit exceeded. You can only send %d messages per %s.",
				g.limit, windowPhrase(g.window)),
			"retry_after": int(g.window.Seconds()),
		})
		d.RetryAfter = g.window
		return d
	}
	return Allow()
}

// qualifies reports whether the request consumes rate limit quota.
func (g *RateLimitGate) qualifies(r *http.Request) bool {
	if r.Method != http.MethodPost {
		return false
	}
	for _, m := range g.markers {
		if strings.Contains(r.URL.Path, m) {
			return true
		}
	}
	return false
}

// windowPhrase renders a window duration for the rejection message.
func windowPhrase(w time.Duration) string {
	switch w {
	case time.Second:
		return "second"
	case time.Minute:
		return "minute"
	case time.Hour:
		return "hour"
	}
	return w.String()
}
