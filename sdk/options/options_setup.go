// Package options resolves the functional options shared by transports and listeners.
package options

import (
	"time"

	"github.com/leandrodaf/earlisten/internal/logger"
	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/note"
)

// DefaultPollInterval is how long the key listener sleeps between history checks.
const DefaultPollInterval = time.Millisecond

// ResolveOptions applies opts over the defaults shared by transports and listeners.
//
// opts ...contracts.Option: A variadic list of option functions that can modify ClientOptions.
//
// Returns:
//   - contracts.ClientOptions: The finalized options with defaults applied.
//   - error: An error if the log destination could not be opened.
func ResolveOptions(opts ...contracts.Option) (contracts.ClientOptions, error) {
	options := &contracts.ClientOptions{
		Audio: contracts.DefaultAudioConfig(),
		Range: note.DefaultRange,
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.CoreMIDIConfig == nil {
		options.CoreMIDIConfig = &contracts.CoreMIDIConfig{ClientName: "earlisten"}
	}
	if options.PollInterval <= 0 {
		options.PollInterval = DefaultPollInterval
	}
	if options.MIDIEventFilter == nil {
		options.MIDIEventFilter = &contracts.MIDIEventFilter{
			Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff},
		}
	}

	defaults := contracts.DefaultAudioConfig()
	if options.Audio.SampleRate <= 0 {
		options.Audio.SampleRate = defaults.SampleRate
	}
	if options.Audio.FrameSize <= 0 {
		options.Audio.FrameSize = defaults.FrameSize
	}
	if options.Audio.FramesPerFFT <= 0 {
		options.Audio.FramesPerFFT = defaults.FramesPerFFT
	}
	if options.Audio.RMSThreshold <= 0 {
		options.Audio.RMSThreshold = defaults.RMSThreshold
	}
	if !options.Range.Valid() {
		options.Range = note.DefaultRange
	}

	options.Logger.SetLevel(options.LogLevel)
	if options.LogFilePath != "" {
		if err := options.Logger.SetDestination(contracts.FileLog, options.LogFilePath); err != nil {
			return *options, err
		}
	}
	return *options, nil
}
