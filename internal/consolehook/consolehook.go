// Package consolehook provides a stdin-driven stand-in for the OS-level
// keystroke hook, used by the daemon's --console mode to exercise the
// correction pipeline without a real platform binding. It is not a
// production input source: the real hook is a per-OS adapter outside this
// module's scope, as internal/ports documents.
package consolehook

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/quietkey/autocorrectd/internal/ports"
)

// ctrlZ is the byte a terminal in raw mode delivers for Ctrl+Z (ASCII SUB,
// 0x1A). Listen treats it as the undo hotkey rather than a literal
// character, since there is no other way to carry a modifier key over a
// plain byte stream.
const ctrlZ = 0x1A

// Source reads runes from an io.Reader (typically os.Stdin) and turns
// them into KeystrokeEvents, one per call to the Listen handler.
type Source struct {
	r io.Reader
}

// New wraps r; nothing is read until Listen is called.
func New(r io.Reader) *Source {
	return &Source{r: r}
}

// Listen implements ports.HookSource. It blocks reading runes from the
// underlying reader until ctx is cancelled or the reader returns an
// error (including io.EOF, which is treated as a clean end of input).
func (s *Source) Listen(ctx context.Context, handler func(ports.KeystrokeEvent) ports.HookDecision) error {
	br := bufio.NewReader(s.r)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		ch, _, err := br.ReadRune()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}

		ev := ports.KeystrokeEvent{Char: ch, HasChar: true, Timestamp: time.Now()}
		if ch == ctrlZ {
			ev = ports.KeystrokeEvent{Char: 'z', HasChar: true, Modifiers: ports.ModControl, Timestamp: time.Now()}
		}

		if decision := handler(ev); decision == ports.Suppress {
			// A real OS hook would swallow the keystroke here; stdin has
			// already delivered the byte to this process, so there is
			// nothing left to suppress beyond noting it happened.
			slog.Debug("consolehook: suppressed keystroke", "char", string(ev.Char))
		}
	}
}

// NoopFocus is a FocusProvider that reports a single synthetic console
// target with an unknown secret-field status, for --console mode where
// there is no real window manager to query.
type NoopFocus struct{}

func (NoopFocus) Snapshot() ports.FocusSnapshot {
	return ports.FocusSnapshot{WindowClass: "console", ProcessName: "autocorrectd", TargetID: "console", Secret: ports.Unknown}
}

// StdoutSink is a SyntheticInputPort that prints the replay plan's typed
// characters to stdout instead of injecting real input, for --console mode.
type StdoutSink struct {
	w io.Writer
}

// NewStdoutSink wraps w (typically os.Stdout).
func NewStdoutSink(w io.Writer) *StdoutSink { return &StdoutSink{w: w} }

func (s *StdoutSink) Send(plan ports.ReplayPlan) (bool, error) {
	for _, op := range plan.Ops {
		if op.Kind == ports.OpType {
			if _, err := io.WriteString(s.w, string(op.Char)); err != nil {
				return false, err
			}
		}
	}
	return true, nil
}
