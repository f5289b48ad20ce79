package gatechain

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Gate is one stage of the request pipeline. It inspects a request and
// either lets it proceed or produces a terminal response. Gates must not
// modify the request.
type Gate interface {
	// Name identifies the gate in metrics and diagnostics.
	Name() string

	// Check returns exactly one Decision for the request.
	Check(r *http.Request) Decision
}

// MetricsRecorder receives one record per gate decision.
type MetricsRecorder interface {
	RecordDecision(gate string, allowed bool)
}

// Chain is the ordered gate pipeline in front of the messaging API.
// The order is fixed: request log, time window, rate limit, role access.
// The first gate that rejects short-circuits the chain; its response is
// returned without invoking later gates or the downstream handler.
type Chain struct {
	gates   []Gate
	config  *Config
	store   WindowStore
	sink    LogSink
	ownSink bool
	logger  *zap.Logger
	metrics MetricsRecorder
	now     func() time.Time

	cleanupAge      time.Duration
	cleanupInterval time.Duration
}

// New creates a Chain from the given options. With no options the default
// configuration applies: window 09:00-18:00, five messages per minute,
// admin/moderator write access, request log in requests.log.
//
// Example:
//
//	chain, err := gatechain.New(
//	    gatechain.WithConfigFile("gatechain.yaml"),
//	    gatechain.WithLogger(logger),
//	)
func New(opts ...Option) (*Chain, error) {
	c := &Chain{
		config:          NewConfig(),
		logger:          zap.NewNop(),
		now:             time.Now,
		cleanupAge:      1 * time.Hour,
		cleanupInterval: 10 * time.Minute,
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if err := c.config.Validate(); err != nil {
		return nil, err
	}

	// Open the log sink unless one was injected. The sink lives as long as
	// the chain; Close releases it.
	if c.sink == nil {
		if c.config.LogFile != "" {
			sink, err := NewFileSink(c.config.LogFile)
			if err != nil {
				return nil, err
			}
			c.sink = sink
			c.ownSink = true
		} else {
			c.sink = discardSink{}
		}
	}

	if c.store == nil {
		c.store = NewMemoryWindowStore(c.cleanupAge)
	}

	window, err := c.config.RateLimit.WindowDuration()
	if err != nil {
		return nil, err
	}

	logGate := NewRequestLogGate(c.sink, c.logger)
	logGate.now = c.now

	timeGate, err := NewTimeWindowGate(c.config.TimeWindow.Start, c.config.TimeWindow.End)
	if err != nil {
		return nil, err
	}
	timeGate.now = c.now

	rateGate, err := NewRateLimitGate(c.store, c.config.RateLimit.Limit, window, c.config.RateLimit.Markers, c.logger)
	if err != nil {
		return nil, err
	}
	rateGate.now = c.now

	roleGate := NewRoleAccessGate(c.config.Access.ToAccessPolicy())

	c.gates = []Gate{logGate, timeGate, rateGate, roleGate}
	return c, nil
}

// Middleware wraps next with the gate chain.
//
// Gates run strictly in order. An unexpected panic anywhere in the chain or
// the downstream handler is caught here and converted to a 500 rather than
// killing the process.
func (c *Chain) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				c.logger.Error("request pipeline panic",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))
				RejectJSON(http.StatusInternalServerError, map[string]interface{}{
					"error": "Internal server error.",
				}).write(w)
			}
		}()

		for _, g := range c.gates {
			decision := g.Check(r)
			if c.metrics != nil {
				c.metrics.RecordDecision(g.Name(), decision.Allowed)
			}
			if !decision.Allowed {
				decision.write(w)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// StartBackgroundCleanup starts periodic removal of stale rate limit
// windows, if the store supports it. Call the returned function to stop.
func (c *Chain) StartBackgroundCleanup() func() {
	if memStore, ok := c.store.(*MemoryWindowStore); ok {
		return memStore.StartBackgroundCleanup(c.cleanupInterval)
	}
	return func() {}
}

// Close releases the log sink if the chain opened it.
func (c *Chain) Close() error {
	if c.ownSink {
		return c.sink.Close()
	}
	return nil
}

// discardSink drops all lines. Used when no log file is configured.
type discardSink struct{}

func (discardSink) WriteLine(string) error { return nil }
func (discardSink) Close() error           { return nil }
