package midiportable

import (
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/earlisten/internal/logger"
	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// fakeIn is an input port whose messages are pushed by the test.
type fakeIn struct {
	name      string
	open      bool
	listenErr error
	onMsg     func([]byte, int32)
	stopped   bool
}

func (f *fakeIn) Open() error {
	f.open = true
	return nil
}

func (f *fakeIn) Close() error {
	f.open = false
	return nil
}

func (f *fakeIn) IsOpen() bool { return f.open }
func (f *fakeIn) Number() int { return 0 }
func (f *fakeIn) String() string { return f.name }
func (f *fakeIn) Underlying() interface{} { return nil }

func (f *fakeIn) Listen(onMsg func([]byte, int32), _ drivers.ListenConfig) (func(), error) {
	if f.listenErr != nil {
		return nil, f.listenErr
	}
	f.onMsg = onMsg
	return func() { f.stopped = true }, nil
}

type fakeDriver struct {
	ins    []drivers.In
	closed bool
}

func (d *fakeDriver) Ins() ([]drivers.In, error) { return d.ins, nil }
func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}

type received struct {
	msg   contracts.Message
	delta time.Duration
}

func newTestClient(ins ...*fakeIn) (*ClientMid, *fakeDriver) {
	drv := &fakeDriver{}
	for _, in := range ins {
		drv.ins = append(drv.ins, in)
	}
	opts := &contracts.ClientOptions{
		Logger:          logger.NewNopLogger(),
		MIDIEventFilter: &contracts.MIDIEventFilter{Commands: []contracts.MIDICommand{contracts.NoteOn, contracts.NoteOff}},
	}
	return newClient(drv, opts), drv
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		msg  midi.Message
		want contracts.Message
		ok   bool
	}{
		{"note on", midi.NoteOn(2, 60, 80), contracts.Message{Status: 0x92, Note: 60, Velocity: 80}, true},
		{"note off", midi.NoteOff(0, 61), contracts.Message{Status: 0x80, Note: 61}, true},
		{"note on zero velocity", midi.NoteOn(1, 62, 0), contracts.Message{Status: 0x81, Note: 62}, true},
		{"control change", midi.ControlChange(0, 64, 127), contracts.Message{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := convert(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertNormalizesRelease(t *testing.T) {
	got, ok := convert(midi.NoteOff(3, 64))
	assert.True(t, ok)
	n := got.Normalized()
	assert.Equal(t, contracts.NoteOn, n.Command())
	assert.Equal(t, uint8(3), n.Channel())
	assert.Equal(t, uint8(0), n.Velocity)
}

func TestIsExcluded(t *testing.T) {
	assert.True(t, isExcluded("Midi Through:Midi Through Port-0 14:0"))
	assert.False(t, isExcluded("Launchkey Mini:Launchkey Mini MIDI 1 20:0"))
}

func TestListDevicesSkipsLoopback(t *testing.T) {
	c, _ := newTestClient(&fakeIn{name: "Midi Through:Midi Through Port-0 14:0"}, &fakeIn{name: "Keystation 49"})

	devices, err := c.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "Keystation 49", devices[0].Name)
	assert.Equal(t, 0, devices[0].Index)

	empty, _ := newTestClient(&fakeIn{name: "Midi Through Port-0"})
	_, err = empty.ListDevices()
	assert.ErrorIs(t, err, ErrNoMIDIDevices)
}

func TestSelectDevice(t *testing.T) {
	through := &fakeIn{name: "Midi Through Port-0"}
	keys := &fakeIn{name: "Keystation 49"}
	c, _ := newTestClient(through, keys)

	assert.ErrorIs(t, c.SelectDevice(1), ErrInvalidMIDIDevice)
	require.NoError(t, c.SelectDevice(0))
	assert.True(t, keys.open)
	assert.False(t, through.open)
	assert.Equal(t, "Keystation 49", c.PortName())
}

func TestStartCaptureDeliversNotes(t *testing.T) {
	keys := &fakeIn{name: "Keystation 49"}
	c, drv := newTestClient(keys)
	require.NoError(t, c.SelectDevice(0))

	var got []received
	require.NoError(t, c.StartCapture(func(msg contracts.Message, delta time.Duration) {
		got = append(got, received{msg, delta})
	}))
	require.NotNil(t, keys.onMsg)

	keys.onMsg([]byte{0x90, 60, 100}, 1000)
	keys.onMsg([]byte{0xB0, 64, 127}, 1100)
	keys.onMsg([]byte{0x80, 60, 40}, 1500)

	require.Len(t, got, 2)
	assert.Equal(t, contracts.Message{Status: 0x90, Note: 60, Velocity: 100}, got[0].msg)
	assert.Equal(t, contracts.Message{Status: 0x90, Note: 60}, got[1].msg)
	assert.Equal(t, 500*time.Millisecond, got[1].delta)

	require.NoError(t, c.Stop())
	assert.True(t, keys.stopped)
	assert.False(t, keys.open)
	assert.True(t, drv.closed)
	assert.Empty(t, c.PortName())
}

func TestStartCaptureErrors(t *testing.T) {
	keys := &fakeIn{name: "Keystation 49", listenErr: errors.New("port busy")}
	c, _ := newTestClient(keys)

	assert.ErrorIs(t, c.StartCapture(func(contracts.Message, time.Duration) {}), contracts.ErrNoDeviceSelected)

	require.NoError(t, c.SelectDevice(0))
	assert.ErrorIs(t, c.StartCapture(nil), contracts.ErrNilHandler)
	assert.ErrorContains(t, c.StartCapture(func(contracts.Message, time.Duration) {}), "port busy")
}
