package plugin

import (
	"sync"
	"time"

	Rt "github.com/maroda/rlcscope/types"
)

const DefaultMemoryCapacity = 1000

// MemoryOutput keeps the most recent snapshots in a ring
type MemoryOutput struct {
	MU       sync.RWMutex
	Capacity int
	ring     []*Rt.Snapshot
	next     int
	full     bool
}

func NewMemoryOutput(capacity int) *MemoryOutput {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &MemoryOutput{
		Capacity: capacity,
		ring:     make([]*Rt.Snapshot, capacity),
	}
}

func (mo *MemoryOutput) WriteSnapshot(snap *Rt.Snapshot) error {
	mo.MU.Lock()
	defer mo.MU.Unlock()
	mo.putLocked(snap)
	return nil
}

func (mo *MemoryOutput) WriteBatch(snaps []*Rt.Snapshot) error {
	mo.MU.Lock()
	defer mo.MU.Unlock()
	for _, s := range snaps {
		mo.putLocked(s)
	}
	return nil
}

func (mo *MemoryOutput) putLocked(snap *Rt.Snapshot) {
	cp := *snap
	mo.ring[mo.next] = &cp
	mo.next = (mo.next + 1) % mo.Capacity
	if mo.next == 0 {
		mo.full = true
	}
}

// Len is the number of retained snapshots
func (mo *MemoryOutput) Len() int {
	mo.MU.RLock()
	defer mo.MU.RUnlock()
	if mo.full {
		return mo.Capacity
	}
	return mo.next
}

// QueryRange walks the ring oldest first
func (mo *MemoryOutput) QueryRange(start, end time.Time) ([]*Rt.Snapshot, error) {
	mo.MU.RLock()
	defer mo.MU.RUnlock()

	first, count := 0, mo.next
	if mo.full {
		first, count = mo.next, mo.Capacity
	}

	var snaps []*Rt.Snapshot
	for i := 0; i < count; i++ {
		s := mo.ring[(first+i)%mo.Capacity]
		if s.Timestamp.Before(start) || s.Timestamp.After(end) {
			continue
		}
		cp := *s
		snaps = append(snaps, &cp)
	}
	return snaps, nil
}

func (mo *MemoryOutput) Flush() error { return nil }
func (mo *MemoryOutput) Close() error { return nil }
func (mo *MemoryOutput) Type() string { return "Memory" }
