package gatechain

import (
	"context"
	"sync"
	"time"
)

// WindowStore records qualifying request timestamps per client key and
// enforces a strict sliding window: at most limit requests within any
// interval of length window ending at now.
//
// This allows different backends (in-memory, Redis, etc.).
type WindowStore interface {
	// Take prunes timestamps at or before now-window for key, then either
	// records now and allows (count < limit) or denies without recording.
	// Prune, check and append are a single atomic unit per key.
	// The returned count is the number of recorded timestamps after the call.
	Take(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (allowed bool, count int, err error)
}

// MemoryWindowStore implements WindowStore with an in-memory map.
// It is safe for concurrent use and suitable for single-instance deployments.
//
// Locking is per key: requests from different clients never contend on the
// same window, and prune+check+append for one client is serialized, so two
// concurrent requests can never both observe count < limit and both pass.
type MemoryWindowStore struct {
	mu         sync.RWMutex
	windows    map[string]*clientWindow
	cleanupAge time.Duration
}

// clientWindow is the per-client mutable state: an ordered sequence of
// timestamps of recent qualifying requests, oldest first.
type clientWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

// NewMemoryWindowStore creates a store. Windows whose newest timestamp is
// older than cleanupAge are removed by Cleanup (0 disables cleanup).
func NewMemoryWindowStore(cleanupAge time.Duration) *MemoryWindowStore {
	return &MemoryWindowStore{
		windows:    make(map[string]*clientWindow),
		cleanupAge: cleanupAge,
	}
}

// Take implements WindowStore.
func (s *MemoryWindowStore) Take(_ context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int, error) {
	w := s.getWindow(key)

	w.mu.Lock()
	defer w.mu.Unlock()

	// Drop everything at or before the cutoff. Timestamps are appended in
	// non-decreasing order, so the survivors are a suffix.
	cutoff := now.Add(-window)
	keep := 0
	for keep < len(w.stamps) && !w.stamps[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[keep:]...)
	}

	if len(w.stamps) >= limit {
		// Denied attempts are not recorded; the client stays over the limit
		// until the oldest accepted timestamp ages out.
		return false, len(w.stamps), nil
	}

	w.stamps = append(w.stamps, now)
	return true, len(w.stamps), nil
}

// getWindow retrieves or lazily creates the window for key.
func (s *MemoryWindowStore) getWindow(key string) *clientWindow {
	// Fast path: window exists.
	s.mu.RLock()
	w, ok := s.windows[key]
	s.mu.RUnlock()
	if ok {
		return w
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check: another goroutine might have created it.
	if w, ok := s.windows[key]; ok {
		return w
	}
	w = &clientWindow{}
	s.windows[key] = w
	return w
}

// Count returns the number of tracked client windows.
func (s *MemoryWindowStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.windows)
}

// Cleanup removes windows with no recent traffic so the map does not grow
// unboundedly with the client address space. Returns the number removed.
func (s *MemoryWindowStore) Cleanup() int {
	if s.cleanupAge == 0 {
		return 0
	}

	cutoff := time.Now().Add(-s.cleanupAge)
	removed := 0

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, w := range s.windows {
		w.mu.Lock()
		stale := len(w.stamps) == 0 || w.stamps[len(w.stamps)-1].Before(cutoff)
		w.mu.Unlock()

		if stale {
			delete(s.windows, key)
			removed++
		}
	}
	return removed
}

// StartBackgroundCleanup starts a goroutine that periodically removes stale
// windows. Call the returned function to stop it.
func (s *MemoryWindowStore) StartBackgroundCleanup(interval time.Duration) func() {
	if s.cleanupAge == 0 || interval == 0 {
		return func() {}
	}

	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				s.Cleanup()
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() {
		close(done)
	}
}
