package memory

import (
	"context"
	"sync"

	"github.com/aretw0/vigil/pkg/domain"
)

// Journal implements ports.Journal in memory.
// Safe for concurrent use.
type Journal struct {
	entries []domain.Change
	mu      sync.RWMutex
}

// NewJournal creates a new in-memory journal.
func NewJournal() *Journal {
	return &Journal{}
}

// Append records the change.
func (j *Journal) Append(ctx context.Context, change domain.Change) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, change)
	return nil
}

// Entries returns a copy so callers can't mutate the journal through the slice.
func (j *Journal) Entries(ctx context.Context) ([]domain.Change, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	ret := make([]domain.Change, len(j.entries))
	copy(ret, j.entries)
	return ret, nil
}

// Reset drops every entry.
func (j *Journal) Reset(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = nil
	return nil
}

// Len returns the number of recorded changes.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries)
}
