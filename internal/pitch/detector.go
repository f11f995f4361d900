// Package pitch estimates the dominant semitone of an audio signal frame by
// frame.
//
// Frames are shifted into a rolling window, Hann-windowed and gated on RMS
// loudness. Once the window has filled, the magnitude spectrum is sampled
// at the exact frequency of every semitone in the register and the loudest
// semitone wins. Consecutive identical winners count once.
package pitch

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/note"
	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
)

// Estimate is the analysis result of one loud, full window.
type Estimate struct {
	Frequency float64   // Frequency of the winning semitone in Hz.
	Number    float64   // Fractional MIDI number of Frequency.
	Note      note.Note // Number rounded to the nearest semitone.
	RMS       float64   // Loudness of the windowed frame.
}

// Detector turns a stream of fixed-size frames into note detections.
// It is not safe for concurrent use.
type Detector struct {
	cfg       contracts.AudioConfig
	window    []float64
	buf       []float64
	frame     []float64
	fftFreqs  []float64
	magnitude []float64
	noteFreqs []float64
	noteEnerg []float64
	numFrames int

	last    note.Note
	hasLast bool
}

// NewDetector prepares a detector for the notes in rng.
func NewDetector(cfg contracts.AudioConfig, rng note.Range) (*Detector, error) {
	if cfg.FrameSize <= 0 || cfg.FramesPerFFT <= 0 || cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("invalid audio config: %+v", cfg)
	}
	if !rng.Valid() {
		return nil, fmt.Errorf("invalid range %v-%v", rng.Low, rng.High)
	}

	size := cfg.WindowSize()
	bins := size/2 + 1
	step := float64(cfg.SampleRate) / float64(size)

	d := &Detector{
		cfg:       cfg,
		window:    window.Hann(size),
		buf:       make([]float64, size),
		frame:     make([]float64, size),
		fftFreqs:  make([]float64, bins),
		magnitude: make([]float64, bins),
	}
	for i := range d.fftFreqs {
		d.fftFreqs[i] = float64(i) * step
	}
	for _, n := range rng.Notes() {
		d.noteFreqs = append(d.noteFreqs, n.Frequency())
	}
	d.noteEnerg = make([]float64, len(d.noteFreqs))
	return d, nil
}

// FrameSize is the number of samples Process expects.
func (d *Detector) FrameSize() int { return d.cfg.FrameSize }

// Reset clears the window, the warm-up count and the debounce state.
func (d *Detector) Reset() {
	for i := range d.buf {
		d.buf[i] = 0
	}
	d.numFrames = 0
	d.hasLast = false
}

// Process shifts samples into the window and analyses it. It returns the
// estimate and true only when a new note was heard: the window is full, loud
// enough, and its note differs from the previous detection.
func (d *Detector) Process(samples []int16) (Estimate, bool) {
	est, ok := d.Analyse(samples)
	if !ok {
		return est, false
	}
	if d.hasLast && est.Note == d.last {
		return est, false
	}
	d.last, d.hasLast = est.Note, true
	return est, true
}

// Analyse is Process without the debounce.
func (d *Detector) Analyse(samples []int16) (Estimate, bool) {
	n := len(samples)
	if n > len(d.buf) {
		samples = samples[n-len(d.buf):]
		n = len(samples)
	}
	copy(d.buf, d.buf[n:])
	tail := d.buf[len(d.buf)-n:]
	for i, s := range samples {
		tail[i] = float64(s)
	}
	d.numFrames++

	for i, v := range d.buf {
		d.frame[i] = v * d.window[i]
	}
	rms := math.Sqrt(floats.Dot(d.frame, d.frame) / float64(len(d.frame)))
	if rms <= d.cfg.RMSThreshold || d.numFrames < d.cfg.FramesPerFFT {
		return Estimate{RMS: rms}, false
	}
	if len(d.noteFreqs) == 0 {
		return Estimate{RMS: rms}, false
	}

	spectrum := fft.FFTReal(d.frame)
	for i := range d.magnitude {
		d.magnitude[i] = cmplx.Abs(spectrum[i])
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(d.fftFreqs, d.magnitude); err != nil {
		return Estimate{RMS: rms}, false
	}
	for i, f := range d.noteFreqs {
		d.noteEnerg[i] = pl.Predict(f)
	}

	freq := d.noteFreqs[floats.MaxIdx(d.noteEnerg)]
	number := note.FreqToNumber(freq)
	return Estimate{
		Frequency: freq,
		Number:    number,
		Note:      note.Note(int(math.Round(number))),
		RMS:       rms,
	}, true
}
