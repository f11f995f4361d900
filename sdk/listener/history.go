package listener

import (
	"sync"
	"sync/atomic"

	"github.com/leandrodaf/earlisten/sdk/contracts"
)

// History is an append-only log of key events with one writer and any number
// of readers. Appends publish a new slice header atomically; readers load the
// header without locking and only ever see complete events and a length that
// never decreases.
type History struct {
	mu     sync.Mutex
	events atomic.Pointer[[]contracts.KeyEvent]
}

// NewHistory returns an empty history.
func NewHistory() *History {
	h := &History{}
	empty := make([]contracts.KeyEvent, 0, 64)
	h.events.Store(&empty)
	return h
}

// Append adds e to the end of the log.
func (h *History) Append(e contracts.KeyEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	// Writing past the published length never touches memory a reader can see.
	next := append(*h.events.Load(), e)
	h.events.Store(&next)
}

// Len returns the number of events recorded so far.
func (h *History) Len() int { return len(*h.events.Load()) }

// At returns the i-th event.
func (h *History) At(i int) contracts.KeyEvent { return (*h.events.Load())[i] }

// Snapshot returns the events currently published. The returned slice must
// not be modified; its capacity is clipped so appends to it copy.
func (h *History) Snapshot() []contracts.KeyEvent {
	s := *h.events.Load()
	return s[:len(s):len(s)]
}

// Since returns a copy of the events from index i to the end.
func (h *History) Since(i int) []contracts.KeyEvent {
	s := *h.events.Load()
	if i < 0 {
		i = 0
	}
	if i >= len(s) {
		return []contracts.KeyEvent{}
	}
	out := make([]contracts.KeyEvent, len(s)-i)
	copy(out, s[i:])
	return out
}
