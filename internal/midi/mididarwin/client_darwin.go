//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/youpy/go-coremidi"
)

// Error definitions for MIDI connection and handling issues.
var (
	ErrNoMIDIDevices        = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice    = errors.New("invalid MIDI device")
	ErrMIDIConnectionError  = errors.New("error connecting to MIDI device")
	ErrCreateInputPort      = errors.New("error creating input port")
	ErrIncompleteMIDIPacket = errors.New("incomplete MIDI packet")
)

// internalPortConnection is an interface for handling disconnection from a MIDI port.
type internalPortConnection interface {
	Disconnect()
}

// ClientMid delivers CoreMIDI note messages to a handler together with the
// time elapsed since the previous message.
type ClientMid struct {
	logger          contracts.Logger
	handler         atomic.Value               // contracts.MessageHandler
	client          coremidi.Client            // CoreMIDI client instance for MIDI operations.
	inputPort       coremidi.InputPort         // Input port for receiving MIDI events.
	portConn        internalPortConnection     // Connection to the MIDI port.
	portName        string                     // Name of the connected source.
	midiEventFilter *contracts.MIDIEventFilter // Filter for specific MIDI events.
	mu              sync.Mutex                 // Guards port state.
	capturing       bool                       // Indicates if event capturing is currently active.
	wg              sync.WaitGroup             // Tracks callbacks in flight.
	stopOnce        sync.Once                  // Ensures Stop() is executed only once.

	clockMu sync.Mutex
	last    time.Time // Arrival time of the previous message.
}

// NewMIDIClient initializes a CoreMIDI client.
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	client, err := coremidi.NewClient(options.CoreMIDIConfig.ClientName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInputUnavailable, err)
	}
	options.Logger.Info("MIDI client successfully created",
		options.Logger.Field().String("backend", "coremidi"))

	return &ClientMid{
		logger:          options.Logger,
		client:          client,
		midiEventFilter: options.MIDIEventFilter,
	}, nil
}

// ListDevices retrieves and returns available MIDI sources.
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	sources, err := coremidi.AllSources()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, len(sources))
	for i, source := range sources {
		sourceEntity := source.Entity()
		devices[i] = contracts.DeviceInfo{
			Index:        i,
			Name:         source.Name(),
			EntityName:   sourceEntity.Name(),
			Manufacturer: sourceEntity.Manufacturer(),
		}
	}
	return devices, nil
}

// SelectDevice connects to the source at deviceID, replacing any previous connection.
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sources, err := coremidi.AllSources()
	if err != nil {
		return fmt.Errorf("error retrieving MIDI sources: %w", err)
	}
	if len(sources) == 0 {
		return ErrNoMIDIDevices
	}
	if deviceID < 0 || deviceID >= len(sources) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	if m.portConn != nil {
		m.portConn.Disconnect()
		m.portConn = nil
	}

	source := sources[deviceID]
	m.logger.Info("MIDI device selected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", source.Name()))

	m.inputPort, err = coremidi.NewInputPort(m.client, "earlisten input", m.handleMIDIMessage)
	if err != nil {
		m.logger.Error(ErrCreateInputPort.Error())
		return fmt.Errorf("%w: %v", ErrCreateInputPort, err)
	}

	m.portConn, err = m.inputPort.Connect(source)
	if err != nil {
		m.logger.Error(ErrMIDIConnectionError.Error())
		return fmt.Errorf("%w: %v", ErrMIDIConnectionError, err)
	}
	m.portName = source.Name()

	m.logger.Info("MIDI device successfully connected")
	return nil
}

// PortName returns the name of the connected source.
func (m *ClientMid) PortName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.portName
}

// handleMIDIMessage runs on the CoreMIDI thread for every packet.
func (m *ClientMid) handleMIDIMessage(source coremidi.Source, packet coremidi.Packet) {
	m.wg.Add(1)
	defer m.wg.Done()

	handler, _ := m.handler.Load().(contracts.MessageHandler)
	if handler == nil {
		return
	}

	if len(packet.Data) < 3 {
		m.logger.Warn(ErrIncompleteMIDIPacket.Error())
		return
	}

	msg := contracts.Message{Status: packet.Data[0], Note: packet.Data[1], Velocity: packet.Data[2]}
	if !msg.IsNote() || !m.midiEventFilter.Allows(msg.Command()) {
		return
	}
	handler(msg.Normalized(), m.tick())
}

// tick returns the time since the previous message. The first message has zero delta.
func (m *ClientMid) tick() time.Duration {
	m.clockMu.Lock()
	defer m.clockMu.Unlock()
	now := time.Now()
	var delta time.Duration
	if !m.last.IsZero() {
		delta = now.Sub(m.last)
	}
	m.last = now
	return delta
}

// StartCapture begins delivering messages to handler.
func (m *ClientMid) StartCapture(handler contracts.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if handler == nil {
		m.logger.Error("StartCapture called with nil handler")
		return contracts.ErrNilHandler
	}
	if m.portConn == nil {
		m.logger.Error("Cannot start capture: No MIDI device selected")
		return contracts.ErrNoDeviceSelected
	}
	if m.capturing {
		m.logger.Warn("Capture already started; replacing handler")
	}

	m.logger.Info("Starting MIDI event capture")
	m.handler.Store(handler)
	m.capturing = true
	return nil
}

// Stop disconnects from the device and waits for callbacks in flight.
func (m *ClientMid) Stop() error {
	m.stopOnce.Do(func() {
		m.logger.Info("Stopping MIDI capture")
		m.mu.Lock()
		defer m.mu.Unlock()

		if m.portConn != nil {
			m.portConn.Disconnect()
			m.portConn = nil
		}
		if m.capturing {
			m.capturing = false
			m.handler.Store(contracts.MessageHandler(func(contracts.Message, time.Duration) {}))
			m.wg.Wait()
			m.logger.Info("MIDI capture stopped")
		}
	})
	return nil
}
