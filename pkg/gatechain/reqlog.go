package gatechain

import (
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// logTimeLayout gives second resolution, which is what the request log
// format guarantees.
const logTimeLayout = "2006-01-02 15:04:05"

// LogSink is the durable append-only destination for request log lines.
// Implementations must be safe for concurrent use.
type LogSink interface {
	// WriteLine appends a single line to the sink.
	WriteLine(line string) error

	// Close flushes and releases the sink.
	Close() error
}

// FileSink appends lines to a file. It is opened once at startup and closed
// at shutdown, rather than reopened per request.
type FileSink struct {
	mu     sync.Mutex
	file   *os.File
	closed bool
}

// NewFileSink opens (or creates) the file at path for appending.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log sink: %w", err)
	}
	return &FileSink{file: f}, nil
}

// WriteLine appends one line, adding the trailing newline.
func (s *FileSink) WriteLine(line string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSinkClosed
	}
	_, err := s.file.WriteString(line + "\n")
	return err
}

// Close syncs and closes the underlying file. Safe to call more than once.
func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.file.Sync(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

// RequestLogGate records one line per request before it is dispatched
// downstream. It observes only: it never rejects, and a failing sink must
// not abort the request (fail open, report through the diagnostic logger).
type RequestLogGate struct {
	sink   LogSink
	logger *zap.Logger
	now    func() time.Time
}

// NewRequestLogGate creates a request log gate writing to sink.
// logger receives diagnostics about sink failures; pass zap.NewNop() to
// silence them.
func NewRequestLogGate(sink LogSink, logger *zap.Logger) *RequestLogGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RequestLogGate{sink: sink, logger: logger, now: time.Now}
}

// Name implements Gate.
func (g *RequestLogGate) Name() string { return "request_log" }

// Check writes the log line and always allows the request.
// The line reflects request entry time; nothing is logged after the response.
func (g *RequestLogGate) Check(r *http.Request) Decision {
	user := "Anonymous"
	if p, ok := PrincipalFrom(r.Context()); ok {
		user = p.DisplayName()
	}

	line := fmt.Sprintf("%s - User: %s - Path: %s",
		g.now().Format(logTimeLayout), user, r.URL.Path)

	if err := g.sink.WriteLine(line); err != nil {
		g.logger.Warn("request log write failed",
			zap.Error(err),
			zap.String("path", r.URL.Path))
	}
	return Allow()
}
