// Package replay implements the application-aware input-replay policy of
// spec.md 4.E: classifying the focused target and building the
// backspace/retype plan that corrects a word in place.
package replay

import (
	"errors"
	"time"

	"github.com/quietkey/autocorrectd/internal/ports"
)

// TargetClass is the focused application's replay category.
type TargetClass int

const (
	Standard TargetClass = iota
	WebView
	Browser
	Unknown
)

const (
	standardKeyDelay = 5 * time.Millisecond
	webKeyDelay      = 10 * time.Millisecond

	// planBudget bounds total plan time; plans that would exceed it abort
	// rather than risk torn output on a slow target.
	planBudget = 250 * time.Millisecond
)

// webViewShellClasses and browserClasses are checked in order, first
// match wins, per spec.md 4.E.
var webViewShellClasses = map[string]bool{
	"Chrome_WidgetWin_1":     true, // Electron/CEF shells on Windows
	"ApplicationFrameWindow": true, // UWP WebView host
	"MozillaWindowClass":     true, // embedded Gecko webviews
}

var browserClasses = map[string]bool{
	"Chrome_WidgetWin_1_Browser": true,
	"MozillaFirefoxClass":        true,
	"OperaWindowClass":           true,
}

// Classify derives a TargetClass from a focus snapshot. Checked in order:
// known web-view shell, known browser family, else Standard; an empty
// class is Unknown, which the engine treats like Standard.
func Classify(snapshot ports.FocusSnapshot) TargetClass {
	if webViewShellClasses[snapshot.WindowClass] {
		return WebView
	}
	if browserClasses[snapshot.WindowClass] {
		return Browser
	}
	if snapshot.WindowClass == "" {
		return Unknown
	}
	return Standard
}

// KeyDelay returns the per-key pacing for a class: slower for
// WebView/Browser targets to survive virtual-DOM reconciliation.
func KeyDelay(class TargetClass) time.Duration {
	switch class {
	case WebView, Browser:
		return webKeyDelay
	default:
		return standardKeyDelay
	}
}

// ErrPlanTooLong is returned when a plan would exceed its time budget; the
// caller must abort the replacement rather than send a partial plan.
var ErrPlanTooLong = errors.New("replay: plan exceeds time budget")

// PlanReplace builds the ReplayPlan that deletes wordTyped+terminator and
// retypes replacement+terminator, per spec.md 4.E's arithmetic:
// backspaces = len(wordTyped) + len(terminator).
func PlanReplace(wordTyped, replacement string, terminator rune, class TargetClass, targetID string) (ports.ReplayPlan, error) {
	delay := KeyDelay(class)
	backspaces := len([]rune(wordTyped)) + 1 // +1 for the terminator rune

	ops := make([]ports.ReplayOp, 0, backspaces+len([]rune(replacement))+2)
	for i := 0; i < backspaces; i++ {
		ops = append(ops, ports.ReplayOp{Kind: ports.OpBackspace})
		ops = append(ops, ports.ReplayOp{Kind: ports.OpSleep, Sleep: delay})
	}
	for _, r := range replacement {
		ops = append(ops, ports.ReplayOp{Kind: ports.OpType, Char: r})
		ops = append(ops, ports.ReplayOp{Kind: ports.OpSleep, Sleep: delay})
	}
	ops = append(ops, ports.ReplayOp{Kind: ports.OpType, Char: terminator})

	plan := ports.ReplayPlan{Ops: ops, Budget: planBudget, TargetID: targetID}

	total := time.Duration(0)
	for _, op := range ops {
		if op.Kind == ports.OpSleep {
			total += op.Sleep
		}
	}
	if total > planBudget {
		return ports.ReplayPlan{}, ErrPlanTooLong
	}
	return plan, nil
}

// ErrReplayFailed is returned when both the primary and fallback synthetic
// input methods fail; the engine must not prime the undo buffer.
var ErrReplayFailed = errors.New("replay: primary and fallback methods both failed")

// Send delivers plan via primary, retrying once via fallback on failure,
// matching spec.md 4.E's method-selection rule. Standard targets use the
// OS synthesised-input primitive; WebView/Browser targets use
// message-posting — that distinction lives in which ports.SyntheticInputPort
// the caller passes as primary/fallback, not in this function.
func Send(plan ports.ReplayPlan, primary, fallback ports.SyntheticInputPort) error {
	if ok, _ := primary.Send(plan); ok {
		return nil
	}
	if fallback != nil {
		if ok, _ := fallback.Send(plan); ok {
			return nil
		}
	}
	return ErrReplayFailed
}
