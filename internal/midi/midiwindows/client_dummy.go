//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/earlisten/sdk/contracts"
)

// NewMIDIClient reports that winmm is not available on this platform.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Warn("winmm MIDI requested on a non-Windows system")
	return nil, fmt.Errorf("%w: winmm is only available on Windows", contracts.ErrInputUnavailable)
}
