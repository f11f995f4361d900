package contracts

import (
	"fmt"
	"time"
)

// KeyEvent is one recorded key press or release.
type KeyEvent struct {
	Port     string        // Port the event arrived on.
	Time     time.Duration // Accumulated transport time since the listener started.
	Channel  uint8
	Note     uint8
	Velocity uint8 // 0 is a release.
}

// Pressed reports whether the event is a key press.
func (e KeyEvent) Pressed() bool { return e.Velocity > 0 }

func (e KeyEvent) String() string {
	return fmt.Sprintf("[%s] @%0.6f [%d %d %d]", e.Port, e.Time.Seconds(), e.Channel, e.Note, e.Velocity)
}

// ListenOptions bounds a KeyEventListener.Listen call. A zero Duration or
// NumNotes leaves that bound open; if both are zero the call only ends with
// its context.
type ListenOptions struct {
	Duration       time.Duration
	NumNotes       int
	WaitForRelease bool
}
