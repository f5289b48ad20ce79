package gatechain

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Option is a functional option for configuring a Chain.
type Option func(*Chain) error

// WithConfig sets the pipeline configuration.
func WithConfig(config *Config) Option {
	return func(c *Chain) error {
		if config == nil {
			return fmt.Errorf("%w: config cannot be nil", ErrInvalidConfig)
		}
		if err := config.Validate(); err != nil {
			return err
		}
		c.config = config
		return nil
	}
}

// WithConfigFile loads pipeline configuration from a YAML file.
func WithConfigFile(path string) Option {
	return func(c *Chain) error {
		config, err := LoadConfigFromFile(path)
		if err != nil {
			return err
		}
		c.config = config
		return nil
	}
}

// WithStore sets a custom window store for the rate limiter.
// If not provided, an in-memory store is used.
func WithStore(store WindowStore) Option {
	return func(c *Chain) error {
		if store == nil {
			return fmt.Errorf("%w: store cannot be nil", ErrInvalidConfig)
		}
		c.store = store
		return nil
	}
}

// WithSink sets a custom request log sink. The chain does not close an
// injected sink; the caller owns its lifecycle.
func WithSink(sink LogSink) Option {
	return func(c *Chain) error {
		if sink == nil {
			return fmt.Errorf("%w: sink cannot be nil", ErrInvalidConfig)
		}
		c.sink = sink
		return nil
	}
}

// WithLogger sets the diagnostic logger. This logger only carries
// operational events (sink failures, store failures, panics); the request
// log itself goes through the sink.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Chain) error {
		if logger == nil {
			return fmt.Errorf("%w: logger cannot be nil", ErrInvalidConfig)
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics sets the decision metrics recorder.
func WithMetrics(m MetricsRecorder) Option {
	return func(c *Chain) error {
		if m == nil {
			return fmt.Errorf("%w: metrics recorder cannot be nil", ErrInvalidConfig)
		}
		c.metrics = m
		return nil
	}
}

// WithClock overrides the wall clock used by the time-of-day and rate limit
// gates. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Chain) error {
		if now == nil {
			return fmt.Errorf("%w: clock cannot be nil", ErrInvalidConfig)
		}
		c.now = now
		return nil
	}
}

// WithCleanupAge sets the age after which idle client windows are removed.
// Only applies to the default in-memory store.
func WithCleanupAge(age time.Duration) Option {
	return func(c *Chain) error {
		c.cleanupAge = age
		return nil
	}
}

// WithCleanupInterval sets how often the cleanup goroutine runs.
// Only used when StartBackgroundCleanup is called. Default: 10 minutes.
func WithCleanupInterval(interval time.Duration) Option {
	return func(c *Chain) error {
		if interval < 0 {
			return fmt.Errorf("%w: cleanup interval cannot be negative", ErrInvalidConfig)
		}
		c.cleanupInterval = interval
		return nil
	}
}
