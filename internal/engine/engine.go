// Package engine wires the tracker, the SymSpell index, the undo buffer,
// and the replay policy into the decision procedure of spec.md 4.D: given
// a committed word, decide whether to correct it, and if so, perform the
// correction without ever blocking the keyboard hook thread.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/quietkey/autocorrectd/internal/ports"
	"github.com/quietkey/autocorrectd/internal/replay"
	"github.com/quietkey/autocorrectd/internal/symspell"
	"github.com/quietkey/autocorrectd/internal/tracker"
	"github.com/quietkey/autocorrectd/internal/undo"
)

// queueDepth bounds the commit queue between the hook thread (producer)
// and the correction worker (consumer). A full queue drops the oldest
// pending commit rather than applying backpressure to the hook thread.
const queueDepth = 64

// eventHistoryDepth bounds the in-memory ring of recent CorrectionEvents
// the control plane's /api/stats endpoint reports.
const eventHistoryDepth = 200

// Engine is the single-seat correction decision procedure. One Engine
// serves the whole daemon; its queue/worker boundary is the only place
// concurrency is hidden from callers.
type Engine struct {
	idx         atomic.Pointer[symspell.Index]
	maxDistance int

	enabled atomic.Bool

	focus    ports.FocusProvider
	primary  ports.SyntheticInputPort
	fallback ports.SyntheticInputPort
	notify   ports.Notifier

	undo *undo.Buffer

	queue chan tracker.Commit

	mu      sync.Mutex
	history []ports.CorrectionEvent
}

// New builds an Engine. notify may be nil: events are still kept in the
// in-process history ring even with no external subscriber.
func New(idx *symspell.Index, maxDistance int, focus ports.FocusProvider, primary, fallback ports.SyntheticInputPort, notify ports.Notifier, undoTimeout time.Duration) *Engine {
	e := &Engine{
		maxDistance: maxDistance,
		focus:       focus,
		primary:     primary,
		fallback:    fallback,
		notify:      notify,
		undo:        undo.NewBuffer(undoTimeout),
		queue:       make(chan tracker.Commit, queueDepth),
	}
	e.idx.Store(idx)
	e.enabled.Store(true)
	return e
}

// SetIndex atomically swaps in a freshly built index, e.g. once a
// background dictionary reload completes. Until the first index is set,
// the engine passes every keystroke through uncorrected.
func (e *Engine) SetIndex(idx *symspell.Index) { e.idx.Store(idx) }

// SetEnabled flips the daemon's active/paused state. Safe to call from any
// goroutine, including the hook thread and the control-plane handler.
// Disabling also discards any pending undo record.
func (e *Engine) SetEnabled(v bool) {
	e.enabled.Store(v)
	if !v {
		e.undo.Invalidate("disabled")
	}
}

// Enabled reports the current active/paused state.
func (e *Engine) Enabled() bool { return e.enabled.Load() }

// Submit hands a tracker commit to the correction worker. It never blocks:
// a full queue means the worker is behind, and the oldest queued commit is
// dropped (recorded as skipped) to make room, so the hook thread's
// keystroke delivery is never delayed by correction work.
func (e *Engine) Submit(commit tracker.Commit) {
	select {
	case e.queue <- commit:
		return
	default:
	}
	select {
	case dropped := <-e.queue:
		e.recordSkip(dropped.Word, "queue full")
	default:
	}
	select {
	case e.queue <- commit:
	default:
		e.recordSkip(commit.Word, "queue full")
	}
}

// Run drains the commit queue until ctx is cancelled. It is intended to
// run on a single dedicated goroutine, started once at daemon startup. On
// cancellation it finishes the commit in progress, discards any commits
// still queued and the pending undo record, then returns.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.undo.Invalidate("shutdown")
			for {
				select {
				case <-e.queue:
				default:
					return
				}
			}
		case commit := <-e.queue:
			e.correct(commit)
		}
	}
}

// correct implements the 4.D decision procedure for one committed word.
func (e *Engine) correct(commit tracker.Commit) {
	if !e.enabled.Load() {
		return
	}

	idx := e.idx.Load()
	if idx == nil {
		return // dictionary still (re)building: pass everything through
	}

	snapshot := e.focus.Snapshot()
	if snapshot.Secret == ports.Yes {
		e.recordSkip(commit.Word, "secret field")
		return
	}

	lower := strings.ToLower(commit.Word)
	if idx.Contains(lower) {
		return // already correctly spelled; no event recorded
	}

	suggestions := idx.Lookup(lower, symspell.Top, e.maxDistance)
	if len(suggestions) == 0 {
		e.recordSkip(commit.Word, "no suggestion within edit distance")
		return
	}

	best := suggestions[0]
	replacement := applyCase(commit.Word, best.Word)
	if replacement == commit.Word {
		return
	}

	class := replay.Classify(snapshot)
	plan, err := replay.PlanReplace(commit.Word, replacement, commit.Terminator, class, snapshot.TargetID)
	if err != nil {
		slog.Warn("engine: could not build replay plan", "word", commit.Word, "err", err)
		e.recordSkip(commit.Word, "plan too long")
		return
	}

	if err := replay.Send(plan, e.primary, e.fallback); err != nil {
		slog.Warn("engine: replay failed", "word", commit.Word, "err", err)
		e.recordSkip(commit.Word, "replay failed")
		return
	}

	e.undo.Set(undo.Record{
		Original:    commit.Word,
		Replacement: replacement,
		CommittedAt: now(),
		TargetID:    snapshot.TargetID,
	})
	e.recordEvent(ports.CorrectionEvent{
		Kind:        ports.EventCorrected,
		Original:    commit.Word,
		Replacement: replacement,
		At:          now(),
	})
}

// Undo reverses the most recent correction if the undo hotkey was hit
// within the grace window and in the same target it was made in. It
// returns false when there is nothing to undo, and also while the engine is
// disabled or the focused field is tagged secret.
func (e *Engine) Undo() bool {
	snapshot := e.focus.Snapshot()
	if !e.enabled.Load() || snapshot.Secret == ports.Yes {
		return false
	}
	rec, ok := e.undo.TryConsume(now(), true, snapshot.TargetID)
	if !ok {
		return false
	}

	class := replay.Classify(snapshot)
	plan, err := replay.PlanReplace(rec.Replacement, rec.Original, ' ', class, snapshot.TargetID)
	if err != nil {
		slog.Warn("engine: could not build undo plan", "word", rec.Replacement, "err", err)
		return false
	}
	if err := replay.Send(plan, e.primary, e.fallback); err != nil {
		slog.Warn("engine: undo replay failed", "word", rec.Replacement, "err", err)
		return false
	}

	e.recordEvent(ports.CorrectionEvent{
		Kind:        ports.EventUndone,
		Original:    rec.Replacement,
		Replacement: rec.Original,
		At:          now(),
	})
	return true
}

func (e *Engine) recordSkip(word, reason string) {
	slog.Debug("engine: skipped correction", "word", word, "reason", reason)
	e.recordEvent(ports.CorrectionEvent{Kind: ports.EventSkipped, Original: word, At: now()})
}

func (e *Engine) recordEvent(ev ports.CorrectionEvent) {
	e.mu.Lock()
	e.history = append(e.history, ev)
	if len(e.history) > eventHistoryDepth {
		e.history = e.history[len(e.history)-eventHistoryDepth:]
	}
	e.mu.Unlock()

	if e.notify != nil {
		e.notify.Publish(ev)
	}
}

// RecentEvents returns a copy of the most recent correction events, oldest
// first, for the control plane's status/stats endpoints.
func (e *Engine) RecentEvents() []ports.CorrectionEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ports.CorrectionEvent, len(e.history))
	copy(out, e.history)
	return out
}

// now is a seam for tests that need deterministic timestamps; production
// code always calls time.Now.
var now = time.Now
