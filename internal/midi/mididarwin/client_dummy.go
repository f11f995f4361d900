//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"

	"github.com/leandrodaf/earlisten/sdk/contracts"
)

// NewMIDIClient reports that CoreMIDI is not available on this platform.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	options.Logger.Warn("CoreMIDI requested on a non-macOS system")
	return nil, fmt.Errorf("%w: CoreMIDI is only available on macOS", contracts.ErrInputUnavailable)
}
