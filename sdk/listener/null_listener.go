package listener

import (
	"context"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/note"
)

// NoListener is the listener used when answers are not evaluated.
type NoListener struct{}

// ListenNotes always returns contracts.ErrNoEvaluation.
func (NoListener) ListenNotes(context.Context, []note.Note) ([]note.Note, error) {
	return nil, contracts.ErrNoEvaluation
}

// Close does nothing.
func (NoListener) Close() error { return nil }

var (
	_ contracts.Listener = NoListener{}
	_ contracts.Listener = (*KeyEventListener)(nil)
	_ contracts.Listener = (*PitchListener)(nil)
)
