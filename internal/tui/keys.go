package tui

import (
	"time"
	"unicode"

	"void-arena/internal/game"
)

// Terminals report presses and auto-repeat but never releases, so a key
// counts as held until holdWindow passes without a repeat.
const holdWindow = 180 * time.Millisecond

// flightKeys are the runes that map onto game.KeyboardState
const flightKeys = "wsadqeb "

// keyHold tracks when each flight key was last seen
type keyHold struct {
	until map[rune]time.Time
}

func newKeyHold() *keyHold {
	return &keyHold{until: make(map[rune]time.Time, len(flightKeys))}
}

// press records r at now. Returns false for runes that are not flight keys.
func (k *keyHold) press(r rune, now time.Time) bool {
	r = unicode.ToLower(r)
	for _, f := range flightKeys {
		if f == r {
			k.until[r] = now.Add(holdWindow)
			return true
		}
	}
	return false
}

// release drops every held key
func (k *keyHold) release() {
	clear(k.until)
}

// state returns the keys still held at now
func (k *keyHold) state(now time.Time) game.KeyboardState {
	held := func(r rune) bool { return now.Before(k.until[r]) }
	return game.KeyboardState{
		Forward: held('w'),
		Back:    held('s'),
		Left:    held('a'),
		Right:   held('d'),
		NoseUp:  held('q'),
		NoseDn:  held('e'),
		Boost:   held('b'),
		Fire:    held(' '),
	}
}
