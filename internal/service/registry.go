package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// PendingActions holds the file IDs of completed multi-file batches that are
// awaiting a user decision. Entries are one-shot: the first build or discard
// consumes the token, any later decision on it reports not-found. Entries
// that outlive the TTL are removed by the sweeper.
type PendingActions struct {
	mu      sync.Mutex
	entries map[string]pendingEntry
	ttl     time.Duration
}

type pendingEntry struct {
	fileIDs   []string
	createdAt time.Time
}

func NewPendingActions(ttl time.Duration) *PendingActions {
	return &PendingActions{
		entries: make(map[string]pendingEntry),
		ttl:     ttl,
	}
}

// Add stores the uploaded file IDs under a fresh random batch token and
// returns the token.
func (p *PendingActions) Add(fileIDs []string) string {
	ids := make([]string, len(fileIDs))
	copy(ids, fileIDs)

	batchID := uuid.NewString()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[batchID] = pendingEntry{fileIDs: ids, createdAt: time.Now()}
	return batchID
}

// Take consumes and returns the entry for batchID. The second call for the
// same token reports false.
func (p *PendingActions) Take(batchID string) ([]string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	entry, ok := p.entries[batchID]
	if !ok {
		return nil, false
	}
	delete(p.entries, batchID)
	return entry.fileIDs, true
}

// Discard removes the entry for batchID if present. Discarding an absent
// token is not an error.
func (p *PendingActions) Discard(batchID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, ok := p.entries[batchID]
	delete(p.entries, batchID)
	return ok
}

// SweepExpired removes entries older than the TTL and returns how many were
// removed. A TTL of zero disables expiry.
func (p *PendingActions) SweepExpired() int {
	if p.ttl <= 0 {
		return 0
	}

	cutoff := time.Now().Add(-p.ttl)

	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for id, entry := range p.entries {
		if entry.createdAt.Before(cutoff) {
			delete(p.entries, id)
			removed++
		}
	}
	return removed
}

// Len reports the number of entries currently awaiting a decision.
func (p *PendingActions) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}
