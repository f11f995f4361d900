package contracts

import (
	"context"
	"fmt"
	"strings"

	"github.com/leandrodaf/earlisten/sdk/note"
)

// ListenerKind names a listener variant in configuration.
type ListenerKind string

const (
	NoListenerKind   ListenerKind = "none"
	MicrophoneKind   ListenerKind = "microphone"
	MIDIListenerKind ListenerKind = "midi"
)

// Listener captures a response to a question: one note per expected note.
type Listener interface {
	// ListenNotes blocks until len(expected) notes were heard or ctx ends.
	ListenNotes(ctx context.Context, expected []note.Note) ([]note.Note, error)
	// Close releases the underlying device.
	Close() error
}

// ParseListenerKind maps a configuration value to a ListenerKind. An empty
// value means no listener.
func ParseListenerKind(s string) (ListenerKind, error) {
	switch k := ListenerKind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return NoListenerKind, nil
	case NoListenerKind, MicrophoneKind, MIDIListenerKind:
		return k, nil
	default:
		return "", fmt.Errorf("%w: unknown listener %q", ErrListenerMisconfigured, s)
	}
}
