package listener

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/leandrodaf/earlisten/internal/pitch"
	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/note"
	"github.com/leandrodaf/earlisten/sdk/options"
)

// PitchListener detects sung or played notes from an audio input.
// Listen runs on the caller's goroutine; a PitchListener serves one call at a time.
type PitchListener struct {
	logger contracts.Logger
	input  contracts.AudioInput
	cfg    contracts.AudioConfig
	rng    note.Range

	mu        sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewPitchListener wraps the audio input given with contracts.WithAudioInput.
// The listener owns the input from then on.
func NewPitchListener(opts ...contracts.Option) (*PitchListener, error) {
	resolved, err := options.ResolveOptions(opts...)
	if err != nil {
		return nil, err
	}
	if resolved.AudioInput == nil {
		return nil, fmt.Errorf("%w: no audio input configured", contracts.ErrInputUnavailable)
	}

	cfg := resolved.Audio
	if rate := resolved.AudioInput.SampleRate(); rate > 0 {
		cfg.SampleRate = rate
	}
	return &PitchListener{
		logger: resolved.Logger,
		input:  resolved.AudioInput,
		cfg:    cfg,
		rng:    resolved.Range,
	}, nil
}

// Range returns the register searched by ListenNotes.
func (p *PitchListener) Range() note.Range { return p.rng }

// Listen reads frames until target distinct notes were detected or ctx ends.
// A target of zero listens until ctx ends. The detected notes are returned
// in the order heard; on cancellation they come with ctx.Err().
func (p *PitchListener) Listen(ctx context.Context, target int, rng note.Range) ([]note.Note, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	det, err := pitch.NewDetector(p.cfg, rng)
	if err != nil {
		return nil, err
	}

	session := uuid.NewString()
	p.logger.Debug("Listening for pitches",
		p.logger.Field().String("session", session),
		p.logger.Field().Int("target", target),
		p.logger.Field().String("low", rng.Low.Name()),
		p.logger.Field().String("high", rng.High.Name()))

	frame := make([]int16, det.FrameSize())
	var heard []note.Note
	for target <= 0 || len(heard) < target {
		if err := ctx.Err(); err != nil {
			return heard, err
		}
		if err := p.input.Read(frame); err != nil {
			return heard, fmt.Errorf("read audio frame: %w", err)
		}
		est, ok := det.Process(frame)
		if !ok {
			continue
		}
		heard = append(heard, est.Note)
		p.logger.Debug("Pitch detected",
			p.logger.Field().String("session", session),
			p.logger.Field().String("note", est.Note.Name()),
			p.logger.Field().Float64("frequency", est.Frequency),
			p.logger.Field().Float64("cents", 100*(est.Number-float64(est.Note))),
			p.logger.Field().Float64("rms", est.RMS))
	}
	return heard, nil
}

// ListenNotes listens for as many notes as expected within the configured range.
func (p *PitchListener) ListenNotes(ctx context.Context, expected []note.Note) ([]note.Note, error) {
	if len(expected) == 0 {
		return nil, nil
	}
	return p.Listen(ctx, len(expected), p.rng)
}

// Close releases the audio input.
func (p *PitchListener) Close() error {
	p.closeOnce.Do(func() {
		p.closeErr = p.input.Close()
	})
	return p.closeErr
}
