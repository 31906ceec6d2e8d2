// Package tracker maintains the word currently being typed from a stream
// of normalised keystroke events, recognising commit events per
// spec.md 4.C.
package tracker

import (
	"strings"

	"github.com/quietkey/autocorrectd/internal/ports"
)

// minCommitLength is the floor below which a committed word is dropped.
const minCommitLength = 2

// terminators is the set of runes that end a word and trigger a commit.
const terminators = " \t\n.,;:!?\"'()[]{}<>/\\|-"

// Commit is emitted when a terminator closes a non-empty, valid word.
type Commit struct {
	Word       string
	Terminator rune
	TargetID   string
}

// Tracker holds the in-progress word buffer. It is not safe for concurrent
// use; the hook thread owns it exclusively.
type Tracker struct {
	buffer strings.Builder
	active bool
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{}
}

// Buffer returns the text typed since the last reset.
func (t *Tracker) Buffer() string { return t.buffer.String() }

// Active reports whether the buffer currently holds anything.
func (t *Tracker) Active() bool { return t.active }

// Observe consumes one keystroke event and returns a Commit when the event
// closes a word worth correcting.
func (t *Tracker) Observe(ev ports.KeystrokeEvent) (Commit, bool) {
	if ev.IsInjected {
		return Commit{}, false
	}

	if ev.FocusChanged {
		t.reset()
		return Commit{}, false
	}

	if ev.IsBackspace {
		t.backspace()
		return Commit{}, false
	}

	if ev.IsNavigation || ev.IsControl {
		t.reset()
		return Commit{}, false
	}

	if !ev.HasChar {
		return Commit{}, false
	}

	if isTerminator(ev.Char) {
		word := t.buffer.String()
		t.reset()
		if !validCommit(word) {
			return Commit{}, false
		}
		return Commit{Word: word, Terminator: ev.Char}, true
	}

	if isASCIILetter(ev.Char) {
		t.buffer.WriteRune(ev.Char)
		t.active = true
	}

	return Commit{}, false
}

func (t *Tracker) backspace() {
	s := t.buffer.String()
	if s == "" {
		return
	}
	runes := []rune(s)
	runes = runes[:len(runes)-1]
	t.buffer.Reset()
	t.buffer.WriteString(string(runes))
	t.active = len(runes) > 0
}

func (t *Tracker) reset() {
	t.buffer.Reset()
	t.active = false
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isTerminator(r rune) bool {
	return strings.ContainsRune(terminators, r)
}

func validCommit(word string) bool {
	if len([]rune(word)) < minCommitLength {
		return false
	}
	for _, r := range word {
		if !isASCIILetter(r) {
			return false
		}
	}
	return true
}
