package engine

import "sync/atomic"

// SharedHistory is a cross-worker butterfly history table used to let Lazy
// SMP helper threads contribute to move ordering decisions made by other
// threads, the way Ethereal/Ceres-style SMP workers share a bounded piece of
// statistical state. Every slot is an atomic.Int32 so concurrent Get/Update
// calls never need a lock; a relaxed read racing an update simply observes a
// slightly stale value, which is tolerable for a heuristic score (same
// "best-effort, tearing tolerated" spirit as the transposition table).
type SharedHistory struct {
	table [64 * 64]atomic.Int32
}

// NewSharedHistory creates an empty cross-worker history table.
func NewSharedHistory() *SharedHistory {
	return &SharedHistory{}
}

// Get returns the current shared history score for the from/to pair.
func (sh *SharedHistory) Get(from, to int) int {
	return int(sh.table[from*64+to].Load())
}

// Update applies a bonus to the shared slot with gravity toward the bonus,
// mirroring the per-worker history gravity formula so both tables decay the
// same way.
func (sh *SharedHistory) Update(from, to, bonus int) {
	slot := &sh.table[from*64+to]
	for {
		old := slot.Load()
		v := int(old)
		v += bonus - v*absInt(bonus)/HistoryDivisor
		if v > 16384 {
			v = 16384
		} else if v < -16384 {
			v = -16384
		}
		if slot.CompareAndSwap(old, int32(v)) {
			return
		}
	}
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
