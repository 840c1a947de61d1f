package security

import (
	"context"
	"strings"
	"sync"
	"time"
)

const (
	DuplicateWindow  = 24 * time.Hour
	submissionMaxAge = 7 * 24 * time.Hour
	purgeThreshold   = 1000
)

// SubmissionStore keeps the time of the last submission per key.
type SubmissionStore interface {
	// Swap records at for key and returns the previous time, if any.
	Swap(ctx context.Context, key string, at time.Time) (time.Time, bool, error)
	Len(ctx context.Context) (int, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type DuplicateChecker struct {
	store SubmissionStore
	now   func() time.Time
}

func NewDuplicateChecker(store SubmissionStore) *DuplicateChecker {
	return &DuplicateChecker{store: store, now: time.Now}
}

// SubmissionKey is the lower-cased email joined to the phone's digits.
func SubmissionKey(email, phone string) string {
	return strings.ToLower(strings.TrimSpace(email)) + "_" + nonDigits.ReplaceAllString(phone, "")
}

// IsDuplicate reports whether the same email and phone were submitted less
// than DuplicateWindow ago. The submission is recorded either way.
func (c *DuplicateChecker) IsDuplicate(ctx context.Context, email, phone string) (bool, error) {
	now := c.now()

	prev, found, err := c.store.Swap(ctx, SubmissionKey(email, phone), now)
	if err != nil {
		return false, err
	}

	if n, err := c.store.Len(ctx); err == nil && n > purgeThreshold {
		if _, err := c.store.PurgeBefore(ctx, now.Add(-submissionMaxAge)); err != nil {
			return false, err
		}
	}

	return found && now.Sub(prev) < DuplicateWindow, nil
}

// MemorySubmissionStore is the process-local store used when no database is
// configured. Entries are lost on restart.
type MemorySubmissionStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
}

func NewMemorySubmissionStore() *MemorySubmissionStore {
	return &MemorySubmissionStore{entries: make(map[string]time.Time)}
}

func (s *MemorySubmissionStore) Swap(_ context.Context, key string, at time.Time) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, found := s.entries[key]
	s.entries[key] = at
	return prev, found, nil
}

func (s *MemorySubmissionStore) Len(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries), nil
}

func (s *MemorySubmissionStore) PurgeBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, at := range s.entries {
		if at.Before(cutoff) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Purge drops keys older than the retention period regardless of store size.
func (c *DuplicateChecker) Purge(ctx context.Context) (int, error) {
	return c.store.PurgeBefore(ctx, c.now().Add(-submissionMaxAge))
}
