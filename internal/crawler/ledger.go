// Package crawler implements the crawl frontier walker: breadth-first
// expansion from seed accounts through the social graph, with a
// deduplication ledger to avoid wasted API calls and a durable checkpoint
// so interrupted runs resume where they stopped.
package crawler

import "sync"

// Ledger tracks which handles have already been fetched or scored.
//
// Two strata feed it: handles seen during the current run (marked as the
// walker processes them) and handles already present in the persistent
// store (preloaded once at startup). A handle present in either stratum is
// skippable. Entries are never removed within a run.
//
// The ledger exists to avoid wasted network calls, not for correctness of
// the final dataset: store writes are keyed by handle and last-write-wins,
// so scoring a duplicate would not corrupt anything.
type Ledger struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		seen: make(map[string]struct{}),
	}
}

// Preload seeds the store stratum with handles already persisted. Called
// once at startup with the store's full handle list.
func (l *Ledger) Preload(handles []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, h := range handles {
		l.seen[h] = struct{}{}
	}
}

// MarkSeen records a handle as processed. Idempotent.
func (l *Ledger) MarkSeen(handle string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen[handle] = struct{}{}
}

// ShouldSkip reports whether a handle has already been processed. It must
// be consulted before any network call is issued for the handle.
func (l *Ledger) ShouldSkip(handle string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[handle]
	return ok
}

// Len returns the number of tracked handles.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen)
}
