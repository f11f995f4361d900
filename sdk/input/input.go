// Package input opens listeners on real hardware: MIDI ports through the
// platform transport and microphones through PortAudio.
package input

import (
	"fmt"

	"github.com/leandrodaf/earlisten/internal/audio/mic"
	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/listener"
	"github.com/leandrodaf/earlisten/sdk/midi"
	"github.com/leandrodaf/earlisten/sdk/options"
	"go.uber.org/multierr"
)

// OpenKeyEventListener opens the MIDI port selected with
// contracts.WithMIDIPort and returns a listener capturing from it.
func OpenKeyEventListener(opts ...contracts.Option) (*listener.KeyEventListener, error) {
	resolved, err := options.ResolveOptions(opts...)
	if err != nil {
		return nil, err
	}
	client, err := midi.NewClient(&resolved)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", contracts.ErrInputUnavailable, err)
	}
	return listener.NewKeyEventListener(append(opts,
		contracts.WithLogger(resolved.Logger),
		contracts.WithMIDIClient(client))...)
}

// OpenPitchListener opens the audio device selected with
// contracts.WithAudioDevice and returns a listener detecting pitches on it.
func OpenPitchListener(opts ...contracts.Option) (*listener.PitchListener, error) {
	resolved, err := options.ResolveOptions(opts...)
	if err != nil {
		return nil, err
	}
	in, err := mic.Open(resolved.Audio, resolved.Logger)
	if err != nil {
		return nil, err
	}
	p, err := listener.NewPitchListener(append(opts,
		contracts.WithLogger(resolved.Logger),
		contracts.WithAudioInput(in))...)
	if err != nil {
		return nil, multierr.Append(err, in.Close())
	}
	return p, nil
}

// Load returns the listener configured by kind. An empty kind and
// contracts.NoListenerKind give a listener.NoListener.
func Load(kind string, opts ...contracts.Option) (contracts.Listener, error) {
	k, err := contracts.ParseListenerKind(kind)
	if err != nil {
		return nil, err
	}
	switch k {
	case contracts.MicrophoneKind:
		p, err := OpenPitchListener(opts...)
		if err != nil {
			return nil, err
		}
		return p, nil
	case contracts.MIDIListenerKind:
		l, err := OpenKeyEventListener(opts...)
		if err != nil {
			return nil, err
		}
		return l, nil
	default:
		return listener.NoListener{}, nil
	}
}

// MIDIDevices lists the MIDI input ports of the platform transport.
func MIDIDevices(opts ...contracts.Option) ([]contracts.DeviceInfo, error) {
	client, err := midi.NewMIDIClient(opts...)
	if err != nil {
		return nil, err
	}
	devices, err := client.ListDevices()
	return devices, multierr.Append(err, client.Stop())
}

// AudioDevices lists the audio devices that can record.
func AudioDevices() ([]contracts.DeviceInfo, error) {
	return mic.Devices()
}
