package midi

import (
	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/options"
)

// NewMIDIClient creates a MIDI transport for the current platform.
// It applies default options and initializes the client.
//
// opts ...contracts.Option: A variadic list of option functions to customize the client configuration.
//
// Returns:
//   - contracts.ClientMIDI: An instance of the MIDI client.
//   - error: An error, if any occurred during the creation of the client.
func NewMIDIClient(opts ...contracts.Option) (contracts.ClientMIDI, error) {
	resolved, err := options.ResolveOptions(opts...)
	if err != nil {
		return nil, err
	}

	client, err := NewClient(&resolved)
	if err != nil {
		return nil, err
	}

	return client, nil
}
