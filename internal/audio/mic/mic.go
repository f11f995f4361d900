// Package mic reads mono 16-bit samples from a PortAudio input device.
package mic

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/leandrodaf/earlisten/sdk/contracts"
	"go.uber.org/multierr"
)

var errClosed = errors.New("audio input closed")

// Input is a blocking PortAudio capture stream.
type Input struct {
	logger     contracts.Logger
	stream     *portaudio.Stream
	buffer     []int16
	sampleRate int

	mu     sync.Mutex
	closed bool
}

// Devices lists the audio devices that have input channels.
func Devices() ([]contracts.DeviceInfo, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInputUnavailable, err)
	}
	defer portaudio.Terminate()

	all, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	def, _ := portaudio.DefaultInputDevice()

	var out []contracts.DeviceInfo
	for i, d := range all {
		if d.MaxInputChannels <= 0 {
			continue
		}
		out = append(out, contracts.DeviceInfo{
			Index:      i,
			Name:       d.Name,
			EntityName: d.HostApi.Name,
			Channels:   d.MaxInputChannels,
			SampleRate: d.DefaultSampleRate,
			IsDefault:  def != nil && d.Name == def.Name,
		})
	}
	return out, nil
}

// Open starts a mono int16 stream on the configured device. A negative
// DeviceIndex selects the default input. Errors wrap contracts.ErrInputUnavailable.
func Open(cfg contracts.AudioConfig, log contracts.Logger) (*Input, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInputUnavailable, err)
	}

	dev, err := pickDevice(cfg.DeviceIndex)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", contracts.ErrInputUnavailable, err)
	}

	buf := make([]int16, cfg.FrameSize)
	p := portaudio.LowLatencyParameters(dev, nil)
	p.Input.Channels = 1
	p.SampleRate = float64(cfg.SampleRate)
	p.FramesPerBuffer = cfg.FrameSize

	stream, err := portaudio.OpenStream(p, buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: open %q: %v", contracts.ErrInputUnavailable, dev.Name, err)
	}
	if err := stream.Start(); err != nil {
		err = multierr.Append(err, stream.Close())
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: start %q: %v", contracts.ErrInputUnavailable, dev.Name, err)
	}

	log.Info("Audio input opened",
		log.Field().String("device", dev.Name),
		log.Field().Int("sampleRate", cfg.SampleRate),
		log.Field().Int("frameSize", cfg.FrameSize))

	return &Input{
		logger:     log,
		stream:     stream,
		buffer:     buf,
		sampleRate: cfg.SampleRate,
	}, nil
}

func pickDevice(index int) (*portaudio.DeviceInfo, error) {
	if index < 0 {
		return portaudio.DefaultInputDevice()
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}
	if index >= len(devices) {
		return nil, fmt.Errorf("device %d not found", index)
	}
	d := devices[index]
	if d.MaxInputChannels <= 0 {
		return nil, fmt.Errorf("device %q has no input channels", d.Name)
	}
	return d, nil
}

// Read blocks until one frame is captured and copies it into buf.
// len(buf) must equal the configured frame size.
func (in *Input) Read(buf []int16) error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return errClosed
	}
	if len(buf) != len(in.buffer) {
		return fmt.Errorf("read of %d samples from a stream with frame size %d", len(buf), len(in.buffer))
	}
	if err := in.stream.Read(); err != nil {
		// Overflow only means samples were lost while we were analysing.
		if !errors.Is(err, portaudio.InputOverflowed) {
			return err
		}
		in.logger.Debug("Audio input overflowed")
	}
	copy(buf, in.buffer)
	return nil
}

// SampleRate returns the stream's sampling frequency.
func (in *Input) SampleRate() int { return in.sampleRate }

// Close stops and closes the stream and releases PortAudio.
func (in *Input) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return nil
	}
	in.closed = true

	err := multierr.Combine(in.stream.Stop(), in.stream.Close(), portaudio.Terminate())
	in.logger.Info("Audio input closed")
	return err
}
