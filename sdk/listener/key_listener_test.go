package listener

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/note"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyListener(t *testing.T, opts ...contracts.Option) (*KeyEventListener, *fakeMIDI) {
	t.Helper()
	client := &fakeMIDI{}
	opts = append([]contracts.Option{quiet(), contracts.WithMIDIClient(client)}, opts...)
	l, err := NewKeyEventListener(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l, client
}

// listenAsync runs Listen in the background and waits until recording is on,
// so every event sent afterwards belongs to that call.
func listenAsync(t *testing.T, l *KeyEventListener, ctx context.Context, opts contracts.ListenOptions) <-chan []contracts.KeyEvent {
	t.Helper()
	out := make(chan []contracts.KeyEvent, 1)
	go func() {
		events, _ := l.Listen(ctx, opts)
		out <- events
	}()
	require.Eventually(t, l.Recording, time.Second, time.Millisecond)
	return out
}

func TestNewKeyEventListenerRequiresClient(t *testing.T) {
	_, err := NewKeyEventListener(quiet())
	assert.ErrorIs(t, err, contracts.ErrInputUnavailable)
}

func TestNewKeyEventListenerStopsClientOnSelectFailure(t *testing.T) {
	client := &fakeMIDI{selectErr: errors.New("no such port")}
	_, err := NewKeyEventListener(quiet(), contracts.WithMIDIClient(client), contracts.WithMIDIPort(3))

	assert.ErrorIs(t, err, contracts.ErrInputUnavailable)
	assert.ErrorContains(t, err, "no such port")
	assert.Equal(t, 3, client.selected)
	assert.True(t, client.stopped)
}

func TestNewKeyEventListenerStopsClientOnCaptureFailure(t *testing.T) {
	client := &fakeMIDI{startErr: errors.New("midiInStart failed")}
	l, err := NewKeyEventListener(quiet(), contracts.WithMIDIClient(client))

	assert.Nil(t, l)
	assert.ErrorIs(t, err, contracts.ErrInputUnavailable)
	assert.ErrorContains(t, err, "midiInStart failed")
	assert.True(t, client.stopped)
}

func TestHandleRecordsAlwaysByDefault(t *testing.T) {
	l, client := newKeyListener(t)

	client.press(60, 100, 0)
	client.release(60, 250*time.Millisecond)
	client.send(contracts.Message{Status: byte(contracts.NoteOff) | 2, Note: 64, Velocity: 40}, 250*time.Millisecond)

	events := l.History().Snapshot()
	require.Len(t, events, 3)
	assert.Equal(t, contracts.KeyEvent{Port: "fake", Time: 0, Note: 60, Velocity: 100}, events[0])
	assert.Equal(t, 250*time.Millisecond, events[1].Time)
	assert.False(t, events[1].Pressed())
	assert.Equal(t, uint8(2), events[2].Channel)
	assert.False(t, events[2].Pressed(), "note-off with velocity is a release")
	assert.Equal(t, 500*time.Millisecond, events[2].Time)
}

func TestListenWaitForReleaseReturnsPressAndRelease(t *testing.T) {
	l, client := newKeyListener(t, contracts.WithRecordOnDemand())

	done := listenAsync(t, l, context.Background(), contracts.ListenOptions{
		Duration: 5 * time.Second, NumNotes: 1, WaitForRelease: true,
	})
	client.press(60, 100, 0)
	client.release(60, 500*time.Millisecond)

	select {
	case events := <-done:
		require.Len(t, events, 2)
		assert.Equal(t, uint8(100), events[0].Velocity)
		assert.Equal(t, time.Duration(0), events[0].Time)
		assert.Equal(t, uint8(0), events[1].Velocity)
		assert.Equal(t, 500*time.Millisecond, events[1].Time)
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return after the release")
	}
	assert.False(t, l.Recording())
}

func TestListenWaitForReleaseIgnoresHeldKeys(t *testing.T) {
	l, client := newKeyListener(t, contracts.WithRecordOnDemand())

	done := listenAsync(t, l, context.Background(), contracts.ListenOptions{
		Duration: 150 * time.Millisecond, NumNotes: 1, WaitForRelease: true,
	})
	client.press(60, 100, 0)

	events := <-done
	require.Len(t, events, 1, "a held key does not end the call early")
	assert.True(t, events[0].Pressed())
}

func TestListenReturnsOnceEnoughPresses(t *testing.T) {
	l, client := newKeyListener(t, contracts.WithRecordOnDemand())

	start := time.Now()
	done := listenAsync(t, l, context.Background(), contracts.ListenOptions{
		Duration: 5 * time.Second, NumNotes: 2,
	})
	client.press(60, 80, 0)
	client.press(64, 80, 10*time.Millisecond)
	client.press(67, 80, 10*time.Millisecond)

	select {
	case events := <-done:
		assert.Less(t, time.Since(start), time.Second)
		require.GreaterOrEqual(t, len(events), 2)
		assert.Equal(t, []note.Note{60, 64}, PressedNotes(events)[:2])
	case <-time.After(2 * time.Second):
		t.Fatal("Listen did not return once two notes were played")
	}
}

func TestListenStopsAtDuration(t *testing.T) {
	l, _ := newKeyListener(t)

	start := time.Now()
	events, err := l.Listen(context.Background(), contracts.ListenOptions{Duration: 50 * time.Millisecond, NumNotes: 3})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestListenIgnoresEarlierHistory(t *testing.T) {
	l, client := newKeyListener(t)
	client.press(60, 90, 0)
	client.release(60, 0)

	events, err := l.Listen(context.Background(), contracts.ListenOptions{Duration: 20 * time.Millisecond, NumNotes: 1})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 2, l.History().Len())
}

func TestListenHonoursContext(t *testing.T) {
	l, client := newKeyListener(t, contracts.WithRecordOnDemand())
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	out := make(chan []contracts.KeyEvent, 1)
	go func() {
		events, err := l.Listen(ctx, contracts.ListenOptions{NumNotes: 5})
		out <- events
		errc <- err
	}()
	require.Eventually(t, l.Recording, time.Second, time.Millisecond)
	client.press(67, 90, 0)
	require.Eventually(t, func() bool { return l.History().Len() == 1 }, time.Second, time.Millisecond)
	cancel()

	events := <-out
	assert.ErrorIs(t, <-errc, context.Canceled)
	assert.Len(t, events, 1)
}

func TestRecordOnDemandDropsEventsOutsideListen(t *testing.T) {
	l, client := newKeyListener(t, contracts.WithRecordOnDemand())
	assert.False(t, l.Recording())

	client.press(60, 90, 100*time.Millisecond)
	assert.Equal(t, 0, l.History().Len())

	l.StartRecording(time.Time{})
	client.press(62, 90, 100*time.Millisecond)
	l.StopRecording(time.Time{})
	client.press(64, 90, 100*time.Millisecond)

	events := l.History().Snapshot()
	require.Len(t, events, 1)
	assert.Equal(t, uint8(62), events[0].Note)
	assert.Equal(t, 200*time.Millisecond, events[0].Time, "the clock runs while not recording")
}

func TestScheduledStop(t *testing.T) {
	l, client := newKeyListener(t, contracts.WithRecordOnDemand())
	now := time.Unix(1000, 0)
	l.now = func() time.Time { return now }

	l.StartRecording(time.Time{})
	l.StopRecording(now.Add(time.Second))
	assert.True(t, l.Recording())
	client.press(60, 90, 0)

	now = now.Add(2 * time.Second)
	assert.False(t, l.Recording())
	client.press(62, 90, 0)

	require.Equal(t, 1, l.History().Len())
	assert.Equal(t, uint8(60), l.History().At(0).Note)
}

func TestListenNotes(t *testing.T) {
	l, client := newKeyListener(t, contracts.WithRecordOnDemand())

	notes, err := l.ListenNotes(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, notes)

	out := make(chan []note.Note, 1)
	go func() {
		notes, _ := l.ListenNotes(context.Background(), []note.Note{60, 67})
		out <- notes
	}()
	require.Eventually(t, l.Recording, time.Second, time.Millisecond)
	client.press(72, 90, 0)
	client.press(67, 90, 10*time.Millisecond)

	assert.Equal(t, []note.Note{72, 67}, <-out)
}

func TestCloseStopsClientOnce(t *testing.T) {
	l, client := newKeyListener(t)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.True(t, client.stopped)
	assert.False(t, l.Recording())
}

func TestPressedNotesOrdersByTime(t *testing.T) {
	events := []contracts.KeyEvent{
		{Time: 30, Note: 64, Velocity: 80},
		{Time: 10, Note: 60, Velocity: 80},
		{Time: 20, Note: 60},
		{Time: 10, Note: 62, Velocity: 80},
	}
	assert.Equal(t, []note.Note{60, 62, 64}, PressedNotes(events))
	assert.Empty(t, PressedNotes(nil))
}

func TestTallyWithoutRelease(t *testing.T) {
	h := NewHistory()
	tl := newTally(h, 0, false)
	h.Append(contracts.KeyEvent{Note: 60, Velocity: 1})
	h.Append(contracts.KeyEvent{Note: 60})
	assert.Equal(t, 1, tl.update())
	h.Append(contracts.KeyEvent{Note: 62, Velocity: 1})
	assert.Equal(t, 2, tl.update())
	assert.Equal(t, 2, tl.update())
}

func TestTallyReleaseAcrossBatches(t *testing.T) {
	h := NewHistory()
	tl := newTally(h, 0, true)

	h.Append(contracts.KeyEvent{Note: 60, Velocity: 1})
	h.Append(contracts.KeyEvent{Note: 64, Velocity: 1})
	assert.Equal(t, 0, tl.update())

	h.Append(contracts.KeyEvent{Note: 64})
	assert.Equal(t, 1, tl.update())
	assert.Equal(t, []int{0}, tl.unreleased)

	h.Append(contracts.KeyEvent{Note: 60})
	assert.Equal(t, 2, tl.update())
	assert.Empty(t, tl.unreleased)
}

func TestTallyReleaseInSameBatch(t *testing.T) {
	h := NewHistory()
	tl := newTally(h, 0, true)
	h.Append(contracts.KeyEvent{Note: 60, Velocity: 1})
	h.Append(contracts.KeyEvent{Note: 60})
	h.Append(contracts.KeyEvent{Note: 62, Velocity: 1})
	assert.Equal(t, 1, tl.update())
	assert.Equal(t, []int{2}, tl.unreleased)
}

func TestTallyReleasesOldestPressFirst(t *testing.T) {
	h := NewHistory()
	tl := newTally(h, 0, true)
	h.Append(contracts.KeyEvent{Note: 60, Velocity: 1, Channel: 0})
	h.Append(contracts.KeyEvent{Note: 60, Velocity: 1, Channel: 1})
	assert.Equal(t, 0, tl.update())

	// Release matching looks at the note number only.
	h.Append(contracts.KeyEvent{Note: 60, Channel: 1})
	assert.Equal(t, 1, tl.update())
	assert.Equal(t, []int{0}, tl.released)
	assert.Equal(t, []int{1}, tl.unreleased)
}

func TestTallySkipsHistoryBeforeStart(t *testing.T) {
	h := NewHistory()
	h.Append(contracts.KeyEvent{Note: 60, Velocity: 1})
	tl := newTally(h, h.Len(), true)
	h.Append(contracts.KeyEvent{Note: 60})
	assert.Equal(t, 0, tl.update())
}
