// Package undo holds the single-slot, time-bounded undo record described
// in spec.md 4.F: at most one correction is ever undoable, and only within
// its grace window and only in the target it was made in.
package undo

import (
	"sync"
	"time"
)

// Record is the most recent correction, kept just long enough for the
// user to reverse it.
type Record struct {
	Original    string
	Replacement string
	CommittedAt time.Time
	TargetID    string
}

// Buffer is a single-slot holder guarded by one mutex; no nested locking.
type Buffer struct {
	mu      sync.Mutex
	record  *Record
	timeout time.Duration
}

// NewBuffer returns an empty Buffer with the given grace window.
func NewBuffer(timeout time.Duration) *Buffer {
	return &Buffer{timeout: timeout}
}

// Set replaces whatever record was live with a new one.
func (b *Buffer) Set(r Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record = &r
}

// TryConsume returns the live record and clears the slot iff hotkeyHit is
// true, the record's age is within the grace window, and focus matches the
// record's target. Otherwise it returns (Record{}, false); if the record
// had merely expired, the slot is cleared anyway.
func (b *Buffer) TryConsume(now time.Time, hotkeyHit bool, focus string) (Record, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.record == nil {
		return Record{}, false
	}

	expired := now.Sub(b.record.CommittedAt) > b.timeout
	if expired {
		b.record = nil
		return Record{}, false
	}

	if !hotkeyHit || b.record.TargetID != focus {
		return Record{}, false
	}

	r := *b.record
	b.record = nil
	return r, true
}

// Invalidate discards whatever record is live, regardless of reason. The
// reason is accepted for call-site documentation only; this package does
// not log.
func (b *Buffer) Invalidate(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record = nil
}

// Live reports whether a record is currently held, without consuming it.
// Used by diagnostics; not part of the undo decision path.
func (b *Buffer) Live() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.record != nil
}
