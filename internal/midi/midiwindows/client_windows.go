//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"golang.org/x/sys/windows"
)

// Type definitions for MIDI handles
type HMIDIIN windows.Handle

// Constants for callback flags
const (
	CALLBACK_FUNCTION = 0x00030000 // Indicates that the callback is a function
	MIDI_IO_STATUS    = 0x00000020 // MIDI input/output status
)

// Constants for MIDI message types
const (
	MIM_OPEN      = 0x3C1 // MIDI device opened
	MIM_CLOSE     = 0x3C2 // MIDI device closed
	MIM_DATA      = 0x3C3 // MIDI data received
	MIM_ERROR     = 0x3C5 // MIDI error
	MIM_LONGERROR = 0x3C6 // Long MIDI error
	MIM_MOREDATA  = 0x3CC // More MIDI data available
)

var (
	ErrNoMIDIDevices     = errors.New("no MIDI devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI device")
)

// Struct representing MIDI device capabilities
type midiInCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	dwSupport      uint32
}

// ClientMid delivers winmm note messages to a handler.
type ClientMid struct {
	logger          contracts.Logger
	handler         atomic.Value // contracts.MessageHandler
	handle          HMIDIIN
	portConn        bool
	portName        string
	mu              sync.Mutex
	callback        uintptr
	midiEventFilter *contracts.MIDIEventFilter

	// lastStamp is the winmm timestamp (ms since midiInStart) of the previous message.
	lastStamp atomic.Int64
}

// Load the winmm.dll library and required functions
var (
	winmm                = windows.NewLazySystemDLL("winmm.dll")
	procMidiInGetNumDevs = winmm.NewProc("midiInGetNumDevs")
	procMidiInGetDevCaps = winmm.NewProc("midiInGetDevCapsW")
	procMidiInOpen       = winmm.NewProc("midiInOpen")
	procMidiInStart      = winmm.NewProc("midiInStart")
	procMidiInStop       = winmm.NewProc("midiInStop")
	procMidiInClose      = winmm.NewProc("midiInClose")
)

// NewMIDIClient creates a MIDI client for Windows
func NewMIDIClient(options *contracts.ClientOptions) (contracts.ClientMIDI, error) {
	if err := winmm.Load(); err != nil {
		return nil, fmt.Errorf("%w: %v", contracts.ErrInputUnavailable, err)
	}
	options.Logger.Info("MIDI client successfully created",
		options.Logger.Field().String("backend", "winmm"))

	return &ClientMid{
		logger:          options.Logger,
		midiEventFilter: options.MIDIEventFilter,
	}, nil
}

// ListDevices lists the available MIDI devices
func (m *ClientMid) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiInGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		m.logger.Warn(ErrNoMIDIDevices.Error())
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, 0, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		caps, err := deviceCaps(i)
		if err != nil {
			m.logger.Warn("Failed to get MIDI device information",
				m.logger.Field().Int("deviceID", int(i)))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices = append(devices, contracts.DeviceInfo{
			Index:        int(i),
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		})
	}
	return devices, nil
}

func deviceCaps(id uint32) (midiInCaps, error) {
	var caps midiInCaps
	r1, _, _ := procMidiInGetDevCaps.Call(
		uintptr(id),
		uintptr(unsafe.Pointer(&caps)),
		unsafe.Sizeof(caps),
	)
	if r1 != 0 {
		return caps, fmt.Errorf("midiInGetDevCaps(%d) = %d", id, r1)
	}
	return caps, nil
}

// SelectDevice opens a MIDI input device
func (m *ClientMid) SelectDevice(deviceID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r0, _, _ := procMidiInGetNumDevs.Call()
	if r0 == 0 {
		return ErrNoMIDIDevices
	}
	if deviceID < 0 || deviceID >= int(r0) {
		m.logger.Error(ErrInvalidMIDIDevice.Error(), m.logger.Field().Int("deviceID", deviceID))
		return ErrInvalidMIDIDevice
	}

	if m.portConn {
		if err := m.stopCapture(); err != nil {
			return fmt.Errorf("failed to stop previous MIDI capture: %w", err)
		}
	}

	m.callback = windows.NewCallback(midiInCallback)
	fdwOpen := CALLBACK_FUNCTION | MIDI_IO_STATUS

	r1, _, err := procMidiInOpen.Call(
		uintptr(unsafe.Pointer(&m.handle)),
		uintptr(deviceID),
		m.callback,
		uintptr(unsafe.Pointer(m)),
		uintptr(fdwOpen),
	)
	if r1 != 0 {
		m.logger.Error("Failed to open MIDI device",
			m.logger.Field().Int("deviceID", deviceID),
			m.logger.Field().Error("error", err))
		return fmt.Errorf("failed to open MIDI device %d: %v", deviceID, err)
	}

	if caps, err := deviceCaps(uint32(deviceID)); err == nil {
		m.portName = windows.UTF16ToString(caps.szPname[:])
	}
	m.portConn = true
	m.logger.Info("MIDI device connected",
		m.logger.Field().Int("deviceID", deviceID),
		m.logger.Field().String("deviceName", m.portName))
	return nil
}

// PortName returns the name of the opened device.
func (m *ClientMid) PortName() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.portName
}

// StartCapture starts the device and delivers messages to handler.
func (m *ClientMid) StartCapture(handler contracts.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if handler == nil {
		m.logger.Error("StartCapture called with nil handler")
		return contracts.ErrNilHandler
	}
	if !m.portConn || m.handle == 0 {
		m.logger.Error("Cannot start capture: No MIDI device selected")
		return contracts.ErrNoDeviceSelected
	}

	m.handler.Store(handler)
	m.lastStamp.Store(-1)

	r1, _, err := procMidiInStart.Call(uintptr(m.handle))
	if r1 != 0 {
		m.logger.Error("Failed to start MIDI capture", m.logger.Field().Error("error", err))
		return fmt.Errorf("midiInStart failed with code %d: %w", r1, err)
	}

	m.logger.Info("MIDI capture started")
	return nil
}

// midiInCallback runs on the winmm thread.
func midiInCallback(hMidiIn uintptr, wMsg uint32, dwInstance uintptr, dwParam1 uintptr, dwParam2 uintptr) uintptr {
	m := (*ClientMid)(unsafe.Pointer(dwInstance))

	switch wMsg {
	case MIM_OPEN:
		m.logger.Debug("MIDI device opened")
	case MIM_CLOSE:
		m.logger.Debug("MIDI device closed")
	case MIM_DATA:
		msg := contracts.Message{
			Status:   byte(dwParam1 & 0xFF),
			Note:     byte((dwParam1 >> 8) & 0xFF),
			Velocity: byte((dwParam1 >> 16) & 0xFF),
		}
		if !msg.IsNote() || !m.midiEventFilter.Allows(msg.Command()) {
			m.logger.Debug("MIDI message filtered out", m.logger.Field().Uint8("status", msg.Status))
			return 0
		}

		stamp := int64(dwParam2)
		prev := m.lastStamp.Swap(stamp)
		var delta time.Duration
		if prev >= 0 && stamp >= prev {
			delta = time.Duration(stamp-prev) * time.Millisecond
		}

		if handler, ok := m.handler.Load().(contracts.MessageHandler); ok && handler != nil {
			handler(msg.Normalized(), delta)
		}
	case MIM_ERROR, MIM_LONGERROR:
		m.logger.Error("MIDI error", m.logger.Field().Uint64("msg", uint64(wMsg)))
	case MIM_MOREDATA:
		m.logger.Debug("Received MIM_MOREDATA message; ignored")
	default:
		m.logger.Warn("Unknown MIDI message", m.logger.Field().Uint64("msg", uint64(wMsg)))
	}

	return 0
}

// Stop terminates MIDI event capture and closes the device
func (m *ClientMid) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.portConn {
		return nil
	}

	if err := m.stopCapture(); err != nil {
		return fmt.Errorf("failed to stop MIDI capture: %w", err)
	}
	m.logger.Info("MIDI capture stopped and device closed")
	return nil
}

// stopCapture stops the capture and releases resources
func (m *ClientMid) stopCapture() error {
	if m.handle == 0 {
		return fmt.Errorf("invalid MIDI device handle")
	}

	r1, _, err := procMidiInStop.Call(uintptr(m.handle))
	if r1 != 0 {
		m.logger.Error("Failed to stop MIDI capture", m.logger.Field().Error("error", err))
		return err
	}

	r1, _, err = procMidiInClose.Call(uintptr(m.handle))
	if r1 != 0 {
		m.logger.Error("Failed to close MIDI device", m.logger.Field().Error("error", err))
		return err
	}

	m.portConn = false
	m.handle = 0
	m.handler.Store(contracts.MessageHandler(func(contracts.Message, time.Duration) {}))
	return nil
}
