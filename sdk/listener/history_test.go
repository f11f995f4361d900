package listener

import (
	"sync"
	"testing"

	"github.com/leandrodaf/earlisten/sdk/contracts"
	"github.com/stretchr/testify/assert"
)

func TestHistoryAppendAndSince(t *testing.T) {
	h := NewHistory()
	assert.Equal(t, 0, h.Len())
	assert.Empty(t, h.Since(0))

	h.Append(contracts.KeyEvent{Note: 60, Velocity: 90})
	h.Append(contracts.KeyEvent{Note: 60})
	h.Append(contracts.KeyEvent{Note: 62, Velocity: 70})

	assert.Equal(t, 3, h.Len())
	assert.Equal(t, uint8(62), h.At(2).Note)
	assert.Equal(t, []contracts.KeyEvent{{Note: 60}, {Note: 62, Velocity: 70}}, h.Since(1))
	assert.Empty(t, h.Since(5))
	assert.Len(t, h.Since(-1), 3)
}

func TestHistorySnapshotIsStable(t *testing.T) {
	h := NewHistory()
	h.Append(contracts.KeyEvent{Note: 1})
	snap := h.Snapshot()
	h.Append(contracts.KeyEvent{Note: 2})

	assert.Len(t, snap, 1)
	snap = append(snap, contracts.KeyEvent{Note: 99})
	assert.Equal(t, uint8(2), h.At(1).Note)
}

func TestHistoryConcurrentReaders(t *testing.T) {
	h := NewHistory()
	const n = 2000

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			h.Append(contracts.KeyEvent{Note: uint8(i % 128), Velocity: uint8(i%127 + 1)})
		}
	}()

	last := 0
	for last < n {
		snap := h.Snapshot()
		assert.GreaterOrEqual(t, len(snap), last)
		for i := last; i < len(snap); i++ {
			if snap[i].Velocity != uint8(i%127+1) {
				t.Fatalf("event %d torn: %+v", i, snap[i])
			}
		}
		last = len(snap)
	}
	wg.Wait()
}
