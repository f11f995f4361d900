package contracts

import "time"

// Message is a raw three-byte channel voice message.
type Message struct {
	Status   byte // Command in the high nibble, channel in the low nibble.
	Note     byte // MIDI note number (0-127).
	Velocity byte // 0 for a release, >0 for a press.
}

// Command returns the status byte without the channel.
func (m Message) Command() MIDICommand { return MIDICommand(m.Status & 0xF0) }

// Channel returns the zero-based MIDI channel.
func (m Message) Channel() uint8 { return m.Status & 0x0F }

// IsNote reports whether the message is a note-on or note-off.
func (m Message) IsNote() bool {
	c := m.Command()
	return c == NoteOn || c == NoteOff
}

// Normalized returns the message with note-off commands expressed as
// velocity-zero note-ons, so that velocity alone tells press from release.
func (m Message) Normalized() Message {
	if m.Command() == NoteOff {
		return Message{Status: byte(NoteOn) | m.Channel(), Note: m.Note, Velocity: 0}
	}
	return m
}

// MessageHandler receives every message from an input port together with
// the time elapsed since the previous message on that port.
type MessageHandler func(msg Message, delta time.Duration)

// ClientMIDI defines the operations of a MIDI input transport.
type ClientMIDI interface {
	Stop() error                               // Stops capture and releases the port.
	ListDevices() ([]DeviceInfo, error)        // Lists all available MIDI input devices.
	SelectDevice(deviceID int) error           // Opens a MIDI input device by its index.
	StartCapture(handler MessageHandler) error // Starts delivering messages to handler.
	PortName() string                          // Name of the selected port, empty before SelectDevice.
}
