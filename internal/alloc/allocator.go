package alloc

import "sync"

// Allocator hands out append-only file addresses.
type Allocator struct {
	mu    sync.Mutex
	eof   uint64
	stats Stats
}

// Stats summarises the allocations made so far.
type Stats struct {
	Allocations uint64
	Bytes       uint64
	Largest     uint64
}

// New returns an allocator whose first block starts at base.
func New(base uint64) *Allocator {
	return &Allocator{eof: base}
}

// Alloc reserves size bytes at the current end of file.
// A zero size returns the end of file without reserving anything.
func (a *Allocator) Alloc(size uint64) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.reserve(size)
}

func (a *Allocator) reserve(size uint64) uint64 {
	addr := a.eof
	if size == 0 {
		return addr
	}
	a.eof += size
	a.stats.Allocations++
	a.stats.Bytes += size
	a.stats.Largest = max(a.stats.Largest, size)
	return addr
}

// EOFAddr returns the current end-of-file address.
func (a *Allocator) EOFAddr() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eof
}

// Stats returns a snapshot of the allocation counters.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}
