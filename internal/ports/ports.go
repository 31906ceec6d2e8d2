// Package ports declares the interfaces that separate the correction core
// from its external collaborators: the OS-level keystroke hook, the
// synthetic-input sink, the focus probe, and the tray UI. Nothing under
// internal/ports may import an OS-specific package; adapters that do live
// outside this module's scope and satisfy these interfaces.
package ports

import (
	"context"
	"time"
)

// Modifier is a bitmask of held modifier keys, reported alongside a
// keystroke event.
type Modifier uint8

const (
	ModShift Modifier = 1 << iota
	ModControl
	ModAlt
	ModMeta
)

func (m Modifier) Has(o Modifier) bool { return m&o != 0 }

// KeystrokeEvent mirrors the payload the keystroke hook delivers per
// keydown, per spec.md section 6.
type KeystrokeEvent struct {
	VirtualKey   int
	Scancode     int
	Char         rune // char_produced_by_layout; 0 if absent
	HasChar      bool
	IsInjected   bool
	Modifiers    Modifier
	Timestamp    time.Time
	IsBackspace  bool
	IsNavigation bool // arrow/home/end/pgup/pgdn
	IsControl    bool // any other control/function/modifier-only/paste event
	FocusChanged bool
}

// HookDecision is the synchronous response the engine must return from a
// keystroke callback.
type HookDecision int

const (
	Passthrough HookDecision = iota
	Suppress
)

// Tristate models a fact the hook layer may not yet know how to report.
type Tristate int

const (
	Unknown Tristate = iota
	Yes
	No
)

// FocusSnapshot is a short-lived capture of the focused window, used to
// derive a TargetClass and to gate corrections in secret-entry contexts
// such as password fields.
type FocusSnapshot struct {
	WindowClass string
	ProcessName string
	TargetID    string
	Secret      Tristate
}

// FocusProvider is implemented by the external focus probe.
type FocusProvider interface {
	Snapshot() FocusSnapshot
}

// ReplayOp is one primitive operation of a ReplayPlan.
type ReplayOp struct {
	Kind  ReplayOpKind
	Char  rune          // valid when Kind == OpType
	Sleep time.Duration // valid when Kind == OpSleep
}

type ReplayOpKind int

const (
	OpBackspace ReplayOpKind = iota
	OpType
	OpSleep
)

// ReplayPlan is an ordered sequence of primitive operations addressed to
// the synthetic-input port.
type ReplayPlan struct {
	Ops      []ReplayOp
	Budget   time.Duration
	TargetID string
}

// SyntheticInputPort is implemented by the external synthetic-input sink.
type SyntheticInputPort interface {
	// Send delivers a plan's operations in order. It reports ok=false with
	// a non-nil err on failure so the caller can retry with a fallback
	// method; a second failure is surfaced to the engine as ReplayFailed.
	Send(plan ReplayPlan) (ok bool, err error)
}

// CorrectionEventKind classifies an entry in the correction event feed.
type CorrectionEventKind int

const (
	EventCorrected CorrectionEventKind = iota
	EventUndone
	EventSkipped
)

// CorrectionEvent is a diagnostic record published for the control plane's
// live feed. It is observational only and never read back by the engine.
type CorrectionEvent struct {
	Kind        CorrectionEventKind
	Original    string
	Replacement string
	At          time.Time
}

// Notifier receives correction events. The control plane implements this
// internally; an in-process tray would register here too.
type Notifier interface {
	Publish(CorrectionEvent)
}

// HookSource is implemented by the external OS-level keystroke hook. A
// real platform hook (Win32 SetWindowsHookEx, CGEventTap, the X11 record
// extension) calls into its hook procedure synchronously and blocks on
// its return value to decide whether the keystroke reaches the focused
// application, so Listen mirrors that shape directly rather than a pull
// model: handler runs on the hook's own calling goroutine, once per
// event, and must return quickly. Its return value is the one
// synchronous action spec.md describes the hook thread performing —
// Suppress swallows the keystroke (used for the undo hotkey) before it
// reaches the focused application; Passthrough lets it through
// unchanged. Listen blocks until ctx is cancelled or the source is
// exhausted.
type HookSource interface {
	Listen(ctx context.Context, handler func(KeystrokeEvent) HookDecision) error
}
