// Package arena provides a fixed-capacity allocator over a single byte region
// that is reserved once and never grown or returned to the OS until Close.
//
// An Arena is owned by one goroutine. It performs no locking.
package arena

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"unsafe"
)

const (
	// DefaultCapacity matches the heap reserved by the embedded target.
	DefaultCapacity = 256 * 1024

	// Align is the granularity of every allocation.
	Align = 16

	float32Size = 4
)

type span struct {
	off, size int
}

// Arena hands out sub-slices of its region using a first-fit free list.
// Freed blocks are coalesced with their neighbours.
type Arena struct {
	buf     []byte
	base    uintptr
	free    []span
	live    map[int]int
	inUse   int
	peak    int
	allocs  uint64
	frees   uint64
	mapped  bool
	release func([]byte) error
	closed  bool
}

// Stats is a point-in-time view of arena usage.
type Stats struct {
	Capacity    int    `json:"capacity"`
	InUse       int    `json:"in_use"`
	Peak        int    `json:"peak"`
	Free        int    `json:"free"`
	LargestFree int    `json:"largest_free"`
	Live        int    `json:"live"`
	Allocs      uint64 `json:"allocs"`
	Frees       uint64 `json:"frees"`
	Mapped      bool   `json:"mapped"`
}

// New reserves capacity bytes. The region is zeroed.
func New(capacity int) (*Arena, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("arena: capacity must be > 0 (got %d)", capacity)
	}
	buf, release, err := reserve(capacity)
	if err != nil {
		return nil, fmt.Errorf("arena: reserve %d bytes: %w", capacity, err)
	}
	return &Arena{
		buf:     buf,
		base:    uintptr(unsafe.Pointer(unsafe.SliceData(buf))),
		free:    []span{{off: 0, size: capacity}},
		live:    make(map[int]int),
		mapped:  release != nil,
		release: release,
	}, nil
}

// Capacity returns the size of the reserved region in bytes.
func (a *Arena) Capacity() int {
	return len(a.buf)
}

// Available returns the total number of free bytes. Fragmentation may keep a
// request of this size from succeeding; see Stats.LargestFree.
func (a *Arena) Available() int {
	return len(a.buf) - a.inUse
}

// Alloc returns a zeroed slice of n bytes from the region.
func (a *Arena) Alloc(n int) ([]byte, error) {
	if a.closed {
		return nil, ErrClosed
	}
	if n < 0 {
		return nil, fmt.Errorf("arena: negative allocation size %d", n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	if n > len(a.buf) {
		return nil, a.oom(n)
	}
	size := RoundUp(n)
	for i, s := range a.free {
		if s.size < size {
			continue
		}
		off := s.off
		if s.size == size {
			a.free = slices.Delete(a.free, i, i+1)
		} else {
			a.free[i] = span{off: off + size, size: s.size - size}
		}
		a.live[off] = size
		a.inUse += size
		a.peak = max(a.peak, a.inUse)
		a.allocs++

		b := a.buf[off : off+n : off+n]
		clear(b)
		return b, nil
	}
	return nil, a.oom(n)
}

// Free returns a slice obtained from Alloc to the arena. Freeing an empty
// slice is a no-op.
func (a *Arena) Free(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if a.closed {
		return ErrClosed
	}
	off, ok := a.offset(unsafe.Pointer(unsafe.SliceData(b)))
	if !ok {
		return fmt.Errorf("%w: pointer outside arena region", ErrInvalidFree)
	}
	size, ok := a.live[off]
	if !ok {
		return fmt.Errorf("%w: offset %d is not a live allocation", ErrInvalidFree, off)
	}
	delete(a.live, off)
	a.inUse -= size
	a.frees++
	a.insertFree(span{off: off, size: size})
	return nil
}

// AllocFloat32 returns a zeroed []float32 of length n backed by the arena.
func (a *Arena) AllocFloat32(n int) ([]float32, error) {
	if n < 0 {
		return nil, fmt.Errorf("arena: negative element count %d", n)
	}
	if n > math.MaxInt/float32Size {
		return nil, a.oom(math.MaxInt)
	}
	b, err := a.Alloc(n * float32Size)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []float32{}, nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(unsafe.SliceData(b))), n), nil
}

// FreeFloat32 releases a slice obtained from AllocFloat32.
func (a *Arena) FreeFloat32(x []float32) error {
	if len(x) == 0 {
		return nil
	}
	return a.Free(unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(x))), len(x)*float32Size))
}

// Stats reports current usage.
func (a *Arena) Stats() Stats {
	largest := 0
	for _, s := range a.free {
		largest = max(largest, s.size)
	}
	return Stats{
		Capacity:    len(a.buf),
		InUse:       a.inUse,
		Peak:        a.peak,
		Free:        len(a.buf) - a.inUse,
		LargestFree: largest,
		Live:        len(a.live),
		Allocs:      a.allocs,
		Frees:       a.frees,
		Mapped:      a.mapped,
	}
}

// Close releases the region. Every slice handed out becomes invalid.
func (a *Arena) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	buf := a.buf
	a.buf, a.free, a.live = nil, nil, nil
	if a.release != nil {
		return a.release(buf)
	}
	return nil
}

// RoundUp returns n rounded up to the allocation granularity.
func RoundUp(n int) int {
	return (n + Align - 1) &^ (Align - 1)
}

func (a *Arena) offset(p unsafe.Pointer) (int, bool) {
	addr := uintptr(p)
	if addr < a.base || addr >= a.base+uintptr(len(a.buf)) {
		return 0, false
	}
	return int(addr - a.base), true
}

func (a *Arena) insertFree(s span) {
	i, _ := slices.BinarySearchFunc(a.free, s.off, func(e span, off int) int {
		return cmp.Compare(e.off, off)
	})
	a.free = slices.Insert(a.free, i, s)
	if i+1 < len(a.free) && a.free[i].off+a.free[i].size == a.free[i+1].off {
		a.free[i].size += a.free[i+1].size
		a.free = slices.Delete(a.free, i+1, i+2)
	}
	if i > 0 && a.free[i-1].off+a.free[i-1].size == a.free[i].off {
		a.free[i-1].size += a.free[i].size
		a.free = slices.Delete(a.free, i, i+1)
	}
}

func (a *Arena) oom(requested int) error {
	largest := 0
	for _, s := range a.free {
		largest = max(largest, s.size)
	}
	return &OutOfMemoryError{
		Requested: requested,
		Available: largest,
		Capacity:  len(a.buf),
	}
}
