package contracts

import (
	"time"

	"github.com/leandrodaf/earlisten/sdk/note"
)

// MIDICommand represents the types of MIDI commands for event filtering.
type MIDICommand byte

const (
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
)

// MIDIEventFilter allows users to specify which MIDI commands to capture.
type MIDIEventFilter struct {
	Commands []MIDICommand // List of MIDI commands to filter.
}

// Allows reports whether command passes the filter. A nil filter allows everything.
func (f *MIDIEventFilter) Allows(command MIDICommand) bool {
	if f == nil {
		return true
	}
	for _, c := range f.Commands {
		if c == command {
			return true
		}
	}
	return false
}

// CoreMIDIConfig holds configuration for CoreMIDI.
type CoreMIDIConfig struct {
	ClientName string // Name of the MIDI client.
}

// ClientOptions defines the configuration of the MIDI transports and listeners.
type ClientOptions struct {
	Logger          Logger           // Logger for logging events and errors.
	LogLevel        LogLevel         // Level of logging to use.
	LogFilePath     string           // File path for logging if file logging is enabled.
	MIDIEventFilter *MIDIEventFilter // Optional filter for MIDI events to capture.
	CoreMIDIConfig  *CoreMIDIConfig  // Configuration specific to CoreMIDI.

	MIDIClient     ClientMIDI    // Preconfigured transport; skips the per-OS factory.
	MIDIPort       int           // Index of the MIDI input to open.
	RecordOnDemand bool          // Record only while a Listen call or StartRecording is active.
	PollInterval   time.Duration // Sleep between history checks while listening.
	WaitForRelease bool          // Count a note only once its key is released.

	AudioInput AudioInput  // Preopened audio source; skips the PortAudio device.
	Audio      AudioConfig // Capture and analysis parameters.
	Range      note.Range  // Register the pitch listener searches.
}

// Option is a function that modifies ClientOptions.
type Option func(*ClientOptions)

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(opts *ClientOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level.
func WithLogLevel(level LogLevel) Option {
	return func(opts *ClientOptions) {
		opts.LogLevel = level
	}
}

// WithLogFile sends log output to the given file.
func WithLogFile(path string) Option {
	return func(opts *ClientOptions) {
		opts.LogFilePath = path
	}
}

// WithMIDIEventFilter sets the MIDI event filter for the MIDI client.
func WithMIDIEventFilter(filter MIDIEventFilter) Option {
	return func(opts *ClientOptions) {
		opts.MIDIEventFilter = &filter
	}
}

// WithCoreMIDIConfig sets the CoreMIDI configuration for the MIDI client.
func WithCoreMIDIConfig(config CoreMIDIConfig) Option {
	return func(opts *ClientOptions) {
		opts.CoreMIDIConfig = &config
	}
}

// WithMIDIClient makes listeners use client instead of opening a system port.
func WithMIDIClient(client ClientMIDI) Option {
	return func(opts *ClientOptions) {
		opts.MIDIClient = client
	}
}

// WithMIDIPort selects the MIDI input by index.
func WithMIDIPort(port int) Option {
	return func(opts *ClientOptions) {
		opts.MIDIPort = port
	}
}

// WithRecordOnDemand turns off always-on recording.
func WithRecordOnDemand() Option {
	return func(opts *ClientOptions) {
		opts.RecordOnDemand = true
	}
}

// WithPollInterval sets how long the MIDI listener sleeps between checks.
func WithPollInterval(d time.Duration) Option {
	return func(opts *ClientOptions) {
		opts.PollInterval = d
	}
}

// WithWaitForRelease makes ListenNotes wait for each key to be released.
func WithWaitForRelease(wait bool) Option {
	return func(opts *ClientOptions) {
		opts.WaitForRelease = wait
	}
}

// WithAudioInput makes the pitch listener read from in instead of a device.
func WithAudioInput(in AudioInput) Option {
	return func(opts *ClientOptions) {
		opts.AudioInput = in
	}
}

// WithAudioConfig overrides the capture and analysis parameters.
func WithAudioConfig(cfg AudioConfig) Option {
	return func(opts *ClientOptions) {
		opts.Audio = cfg
	}
}

// WithAudioDevice selects the audio input device by index.
func WithAudioDevice(index int) Option {
	return func(opts *ClientOptions) {
		opts.Audio.DeviceIndex = index
	}
}

// WithRange sets the register searched by the pitch listener.
func WithRange(r note.Range) Option {
	return func(opts *ClientOptions) {
		opts.Range = r
	}
}
