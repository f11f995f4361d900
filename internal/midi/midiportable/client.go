// Package midiportable is the MIDI transport for platforms without a native
// backend in this module. It uses rtmidi through gomidi.
package midiportable

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
)

// excludedPorts are system loopback ports that never carry a player's input.
var excludedPorts = []string{"Midi Through", "Through Port"}

// inputDriver is the subset of an rtmidi driver the client needs.
type inputDriver interface {
	Ins() ([]drivers.In, error)
	Close() error
}

// ClientMid listens to one rtmidi input port.
type ClientMid struct {
	logger          contracts.Logger
	drv             inputDriver
	midiEventFilter *contracts.MIDIEventFilter

	mu       sync.Mutex
	in       drivers.In
	portName string
	stopFn   func()
}

// NewMIDIClient initialises the rtmidi driver.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("%w: rtmididrv: %v", contracts.ErrInputUnavailable, err)
	}
	options.Logger.Info("MIDI client successfully created",
		options.Logger.Field().String("backend", "rtmidi"))
	return newClient(drv, options), nil
}

func newClient(drv inputDriver, options *contracts.ClientOptions) *ClientMid {
	return &ClientMid{
		logger:          options.Logger,
		drv:             drv,
		midiEventFilter: options.MIDIEventFilter,
	}
}

func (m *ClientMid) inputs() ([]drivers.In, error) {
	ins, err := m.drv.Ins()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI inputs: %w", err)
	}
	var out []drivers.In
	for _, in := range ins {
		if isExcluded(in.String()) {
			m.logger.Debug("MIDI input excluded", m.logger.Field().String("device", in.String()))
			continue
		}
		out = append(out, in)
	}
	return out, nil
}

// ListDevices lists the usable MIDI inputs.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	ins, err := m.inputs()
	if err != nil {
		return nil, err
	}
	if len(ins) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}
	devices := make([]contracts.DeviceInfo, len(ins))
	for i, in := range ins {
		devices[i] = contracts.DeviceInfo{Index: i, Name: in.String(), EntityName: in.String()}
	}
	return devices, nil
}

// SelectDevice opens the input at deviceID, closing any previous one.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ins, err := m.inputs()
	if err != nil {
		return err
	}
	if len(ins) == 0 {
		return ErrNoMIDIDevices
	}
	if deviceID < 0 || deviceID >= len(ins) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	m.closeConn()
	in := ins[deviceID]
	if err := in.Open(); err != nil {
		return fmt.Errorf("open %q: %w", in.String(), err)
	}
	m.in = in
	m.portName = in.String()
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", m.portName))
	return nil
}

// PortName returns the name of the opened input.
func (m *ClientMid) PortName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.portName
}

// StartCapture registers handler with the open port. gomidi reports
// milliseconds since the listener started, which become per-message deltas.
func (m *ClientMid) StartCapture(handler contracts.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if handler == nil {
		m.logger.Error("StartCapture called with nil handler")
		return contracts.ErrNilHandler
	}
	if m.in == nil {
		m.logger.Error("Cannot start capture: No MIDI device selected")
		return contracts.ErrNoDeviceSelected
	}
	if m.stopFn != nil {
		m.logger.Warn("Capture already started; replacing handler")
		m.stopFn()
		m.stopFn = nil
	}

	name := m.portName
	var last int32
	stop, err := midi.ListenTo(m.in, func(msg midi.Message, timestampms int32) {
		converted, ok := convert(msg)
		if !ok || !m.midiEventFilter.Allows(converted.Command()) {
			return
		}
		delta := time.Duration(timestampms-last) * time.Millisecond
		last = timestampms
		handler(converted.Normalized(), delta)
	}, midi.HandleError(func(listenErr error) {
		m.logger.Warn("MIDI listener error",
			m.logger.Field().String("device", name),
			m.logger.Field().Error("error", listenErr))
	}))
	if err != nil {
		m.logger.Error("Failed to start MIDI capture", m.logger.Field().Error("error", err))
		return fmt.Errorf("listen to %q: %w", name, err)
	}
	m.stopFn = stop
	m.logger.Info("Starting MIDI event capture", m.logger.Field().String("device", name))
	return nil
}

// convert extracts a note message. Note-offs come back with velocity 0.
func convert(msg midi.Message) (contracts.Message, bool) {
	var ch, key, vel uint8
	switch {
	case msg.GetNoteStart(&ch, &key, &vel):
		return contracts.Message{Status: byte(contracts.NoteOn) | ch, Note: key, Velocity: vel}, true
	case msg.GetNoteEnd(&ch, &key):
		return contracts.Message{Status: byte(contracts.NoteOff) | ch, Note: key}, true
	}
	return contracts.Message{}, false
}

// Stop ends capture, closes the port and the driver.
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeConn()
	m.logger.Info("MIDI capture stopped")
	return m.drv.Close()
}

func (m *ClientMid) closeConn() {
	if m.stopFn != nil {
		m.stopFn()
		m.stopFn = nil
	}
	if m.in != nil {
		_ = m.in.Close()
		m.in = nil
	}
	m.portName = ""
}

func isExcluded(name string) bool {
	lower := strings.ToLower(name)
	for _, pat := range excludedPorts {
		if strings.Contains(lower, strings.ToLower(pat)) {
			return true
		}
	}
	return false
}
