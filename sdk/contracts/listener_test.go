package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListenerKind(t *testing.T) {
	cases := map[string]ListenerKind{
		"":           NoListenerKind,
		"none":       NoListenerKind,
		"microphone": MicrophoneKind,
		" MIDI ":     MIDIListenerKind,
		"Microphone": MicrophoneKind,
	}
	for in, want := range cases {
		got, err := ParseListenerKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseListenerKind("guitar")
	assert.ErrorIs(t, err, ErrListenerMisconfigured)
}

func TestMessageNormalized(t *testing.T) {
	off := Message{Status: byte(NoteOff) | 3, Note: 60, Velocity: 64}
	n := off.Normalized()
	assert.Equal(t, NoteOn, n.Command())
	assert.Equal(t, uint8(3), n.Channel())
	assert.Equal(t, uint8(0), n.Velocity)

	on := Message{Status: byte(NoteOn), Note: 60, Velocity: 1}
	assert.Equal(t, on, on.Normalized())
	assert.True(t, on.IsNote())
	assert.False(t, Message{Status: 0xB0}.IsNote())
}

func TestMIDIEventFilterAllows(t *testing.T) {
	var nilFilter *MIDIEventFilter
	assert.True(t, nilFilter.Allows(NoteOn))

	f := &MIDIEventFilter{Commands: []MIDICommand{NoteOn}}
	assert.True(t, f.Allows(NoteOn))
	assert.False(t, f.Allows(NoteOff))
}

func TestKeyEventString(t *testing.T) {
	e := KeyEvent{Port: "Keys", Time: 1500000000, Channel: 1, Note: 60, Velocity: 90}
	assert.Equal(t, "[Keys] @1.500000 [1 60 90]", e.String())
	assert.True(t, e.Pressed())
}
