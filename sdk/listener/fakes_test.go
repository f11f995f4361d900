package listener

import (
	"errors"
	"io"
	"math"
	"sync"
	"time"

	"github.com/leandrodaf/earlisten/internal/logger"
	"github.com/leandrodaf/earlisten/sdk/contracts"
)

// fakeMIDI is an in-memory ClientMIDI whose messages are injected by tests.
type fakeMIDI struct {
	mu        sync.Mutex
	handler   contracts.MessageHandler
	selectErr error
	startErr  error
	selected  int
	stopped   bool
}

func (f *fakeMIDI) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeMIDI) ListDevices() ([]contracts.DeviceInfo, error) {
	return []contracts.DeviceInfo{{Name: "fake"}}, nil
}

func (f *fakeMIDI) SelectDevice(id int) error {
	f.selected = id
	return f.selectErr
}

func (f *fakeMIDI) StartCapture(h contracts.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.handler = h
	return nil
}

func (f *fakeMIDI) PortName() string { return "fake" }

func (f *fakeMIDI) send(msg contracts.Message, delta time.Duration) {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	h(msg, delta)
}

func (f *fakeMIDI) press(key, vel uint8, delta time.Duration) {
	f.send(contracts.Message{Status: byte(contracts.NoteOn), Note: key, Velocity: vel}, delta)
}

func (f *fakeMIDI) release(key uint8, delta time.Duration) {
	f.send(contracts.Message{Status: byte(contracts.NoteOn), Note: key}, delta)
}

// sineInput is an AudioInput that plays a scripted list of tones.
type sineInput struct {
	rate   int
	amp    float64
	script []float64 // frequency per frame; 0 is silence
	pos    int
	frames int
	closed bool
}

func (s *sineInput) Read(buf []int16) error {
	if s.closed {
		return errors.New("closed")
	}
	if s.frames >= len(s.script) {
		return io.EOF
	}
	freq := s.script[s.frames]
	for i := range buf {
		v := 0.0
		if freq > 0 {
			v = s.amp * math.Sin(2*math.Pi*freq*float64(s.pos)/float64(s.rate))
		}
		buf[i] = int16(v)
		s.pos++
	}
	s.frames++
	return nil
}

func (s *sineInput) SampleRate() int { return s.rate }

func (s *sineInput) Close() error {
	s.closed = true
	return nil
}

func repeatFreq(freq float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = freq
	}
	return out
}

func quiet() contracts.Option { return contracts.WithLogger(logger.NewNopLogger()) }
