package listener

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/leandrodaf/earlisten/sdk/note"
	"github.com/leandrodaf/earlisten/sdk/options"
	"go.uber.org/multierr"
)

// KeyEventListener records key presses and releases from a MIDI input port.
//
// The transport callback timestamps every message and appends it to the
// listener's history while recording is on. By default recording is always
// on; with contracts.WithRecordOnDemand it is on only during Listen or
// between StartRecording and StopRecording.
type KeyEventListener struct {
	logger          contracts.Logger
	client          contracts.ClientMIDI
	port            string
	history         *History
	alwaysRecording bool
	waitForRelease  bool
	pollInterval    time.Duration
	now             func() time.Time

	recording atomic.Bool
	stopAt    atomic.Int64 // UnixNano of a scheduled stop, 0 for none.

	clockMu sync.Mutex
	clock   time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewKeyEventListener selects the configured port on the MIDI client given
// with contracts.WithMIDIClient and starts capturing. The listener owns the
// client from then on. Errors wrap contracts.ErrInputUnavailable so callers
// can fall back to running without evaluation.
func NewKeyEventListener(opts ...contracts.Option) (*KeyEventListener, error) {
	resolved, err := options.ResolveOptions(opts...)
	if err != nil {
		return nil, err
	}
	log := resolved.Logger

	client := resolved.MIDIClient
	if client == nil {
		return nil, fmt.Errorf("%w: no MIDI client configured", contracts.ErrInputUnavailable)
	}
	if err := client.SelectDevice(resolved.MIDIPort); err != nil {
		err = multierr.Append(err, client.Stop())
		log.Error("Failed to open MIDI port",
			log.Field().Int("port", resolved.MIDIPort),
			log.Field().Error("error", err))
		return nil, fmt.Errorf("%w: %w", contracts.ErrInputUnavailable, err)
	}

	l := &KeyEventListener{
		logger:          log,
		client:          client,
		port:            client.PortName(),
		history:         NewHistory(),
		alwaysRecording: !resolved.RecordOnDemand,
		waitForRelease:  resolved.WaitForRelease,
		pollInterval:    resolved.PollInterval,
		now:             time.Now,
	}
	l.recording.Store(l.alwaysRecording)
	if err := client.StartCapture(l.handle); err != nil {
		err = multierr.Append(err, client.Stop())
		log.Error("Failed to start MIDI capture",
			log.Field().String("port", l.port),
			log.Field().Error("error", err))
		return nil, fmt.Errorf("%w: %w", contracts.ErrInputUnavailable, err)
	}

	log.Info("Key event listener ready",
		log.Field().String("port", l.port),
		log.Field().Bool("alwaysRecording", l.alwaysRecording))
	return l, nil
}

// handle runs on the transport's thread for every note message.
func (l *KeyEventListener) handle(msg contracts.Message, delta time.Duration) {
	msg = msg.Normalized()
	if at := l.stopAt.Load(); at != 0 && l.now().UnixNano() >= at {
		l.recording.Store(false)
	}

	l.clockMu.Lock()
	l.clock += delta
	stamp := l.clock
	l.clockMu.Unlock()

	if !l.recording.Load() {
		return
	}
	e := contracts.KeyEvent{
		Port:     l.port,
		Time:     stamp,
		Channel:  msg.Channel(),
		Note:     msg.Note,
		Velocity: msg.Velocity,
	}
	l.history.Append(e)
	l.logger.Debug("Key event", l.logger.Field().String("event", e.String()))
}

// History returns the listener's event log.
func (l *KeyEventListener) History() *History { return l.history }

// Recording reports whether incoming events are currently kept.
func (l *KeyEventListener) Recording() bool {
	if at := l.stopAt.Load(); at != 0 && l.now().UnixNano() >= at {
		return false
	}
	return l.recording.Load()
}

// StartRecording turns recording on. A non-zero stopAt schedules it to turn
// off again at that time.
func (l *KeyEventListener) StartRecording(stopAt time.Time) {
	l.stopAt.Store(unixNano(stopAt))
	l.recording.Store(true)
}

// StopRecording turns recording off now, or at stopAt when it is non-zero.
func (l *KeyEventListener) StopRecording(stopAt time.Time) {
	if stopAt.IsZero() {
		l.stopAt.Store(0)
		l.recording.Store(false)
		return
	}
	l.stopAt.Store(stopAt.UnixNano())
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// Listen returns every event recorded from the moment it is called until
// opts.NumNotes notes were played or opts.Duration elapsed, whichever comes
// first. With WaitForRelease a note counts only once its key is released.
// Events are returned in arrival order, including those beyond the count.
// If ctx ends first, the events seen so far are returned with ctx.Err().
func (l *KeyEventListener) Listen(ctx context.Context, opts contracts.ListenOptions) ([]contracts.KeyEvent, error) {
	session := uuid.NewString()
	start := l.history.Len()
	if !l.alwaysRecording {
		l.StartRecording(time.Time{})
		defer l.StopRecording(time.Time{})
	}

	l.logger.Debug("Listening for key events",
		l.logger.Field().String("session", session),
		l.logger.Field().Duration("duration", opts.Duration),
		l.logger.Field().Int("numNotes", opts.NumNotes),
		l.logger.Field().Bool("waitForRelease", opts.WaitForRelease))

	var deadline <-chan time.Time
	if opts.Duration > 0 {
		timer := time.NewTimer(opts.Duration)
		defer timer.Stop()
		deadline = timer.C
	}
	ticker := time.NewTicker(l.pollInterval)
	defer ticker.Stop()

	t := newTally(l.history, start, opts.WaitForRelease)
poll:
	for {
		if count := t.update(); opts.NumNotes > 0 && count >= opts.NumNotes {
			break
		}
		select {
		case <-ctx.Done():
			events := l.history.Since(start)
			l.logger.Debug("Listen cancelled",
				l.logger.Field().String("session", session),
				l.logger.Field().Int("events", len(events)))
			return events, ctx.Err()
		case <-deadline:
			break poll
		case <-ticker.C:
		}
	}

	events := l.history.Since(start)
	l.logger.Debug("Listen finished",
		l.logger.Field().String("session", session),
		l.logger.Field().Int("events", len(events)))
	return events, nil
}

// ListenNotes waits for one press per expected note and returns the pressed
// notes ordered by time.
func (l *KeyEventListener) ListenNotes(ctx context.Context, expected []note.Note) ([]note.Note, error) {
	if len(expected) == 0 {
		return nil, nil
	}
	events, err := l.Listen(ctx, contracts.ListenOptions{
		NumNotes:       len(expected),
		WaitForRelease: l.waitForRelease,
	})
	return PressedNotes(events), err
}

// Close stops the transport and releases the port.
func (l *KeyEventListener) Close() error {
	l.closeOnce.Do(func() {
		l.recording.Store(false)
		l.closeErr = l.client.Stop()
		l.logger.Info("Key event listener closed", l.logger.Field().String("port", l.port))
	})
	return l.closeErr
}

// PressedNotes sorts events by time and returns the notes of the presses.
func PressedNotes(events []contracts.KeyEvent) []note.Note {
	sorted := make([]contracts.KeyEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	var notes []note.Note
	for _, e := range sorted {
		if e.Pressed() {
			notes = append(notes, note.Note(e.Note))
		}
	}
	return notes
}

// tally counts satisfied notes in the history from a start index on.
type tally struct {
	history    *History
	cursor     int
	wait       bool
	presses    int
	released   []int
	unreleased []int
}

func newTally(h *History, start int, wait bool) *tally {
	return &tally{history: h, cursor: start, wait: wait}
}

// update consumes events appended since the last call and returns the count.
func (t *tally) update() int {
	events := t.history.Snapshot()
	if len(events) <= t.cursor {
		return t.count()
	}

	var presses, releases []int
	for ix := t.cursor; ix < len(events); ix++ {
		if events[ix].Pressed() {
			presses = append(presses, ix)
		} else {
			releases = append(releases, ix)
		}
	}
	t.cursor = len(events)

	if !t.wait {
		t.presses += len(presses)
		return t.count()
	}

	// Releases close the oldest open press of the same note.
	for _, ix := range releases {
		for j, jx := range t.unreleased {
			if events[ix].Note == events[jx].Note {
				t.released = append(t.released, jx)
				t.unreleased = append(t.unreleased[:j], t.unreleased[j+1:]...)
				break
			}
		}
	}

	// A press may already be released within the same batch.
	for _, ix := range presses {
		if releasedAfter(events, ix) {
			t.released = append(t.released, ix)
		} else {
			t.unreleased = append(t.unreleased, ix)
		}
	}
	return t.count()
}

func (t *tally) count() int {
	if t.wait {
		return len(t.released)
	}
	return t.presses
}

func releasedAfter(events []contracts.KeyEvent, ix int) bool {
	for _, e := range events[ix+1:] {
		if !e.Pressed() && e.Note == events[ix].Note {
			return true
		}
	}
	return false
}
