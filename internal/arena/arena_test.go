package arena

import (
	"errors"
	"testing"
)

func newTestArena(t *testing.T, capacity int) *Arena {
	t.Helper()
	a, err := New(capacity)
	if err != nil {
		t.Fatalf("New(%d): %v", capacity, err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestNewRejectsNonPositiveCapacity(t *testing.T) {
	t.Parallel()
	for _, c := range []int{0, -1} {
		if _, err := New(c); err == nil {
			t.Fatalf("New(%d): expected error", c)
		}
	}
}

func TestAllocFreeAccounting(t *testing.T) {
	t.Parallel()
	a := newTestArena(t, 1024)

	b, err := a.Alloc(10)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if len(b) != 10 || cap(b) != 10 {
		t.Fatalf("len/cap = %d/%d, want 10/10", len(b), cap(b))
	}
	st := a.Stats()
	if st.InUse != Align || st.Live != 1 || st.Allocs != 1 {
		t.Fatalf("unexpected stats after alloc: %+v", st)
	}

	if err := a.Free(b); err != nil {
		t.Fatalf("Free: %v", err)
	}
	st = a.Stats()
	if st.InUse != 0 || st.Live != 0 || st.Frees != 1 || st.LargestFree != 1024 {
		t.Fatalf("unexpected stats after free: %+v", st)
	}
	if st.Peak != Align {
		t.Fatalf("peak = %d, want %d", st.Peak, Align)
	}
}

func TestAllocZeroesReusedMemory(t *testing.T) {
	t.Parallel()
	a := newTestArena(t, 64)

	b, err := a.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	for i := range b {
		b[i] = 0xff
	}
	if err := a.Free(b); err != nil {
		t.Fatalf("Free: %v", err)
	}
	b, err = a.Alloc(32)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d = %#x, want 0", i, v)
		}
	}
}

func TestOutOfMemory(t *testing.T) {
	t.Parallel()
	a := newTestArena(t, 1024)

	if _, err := a.Alloc(1000); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	_, err := a.Alloc(64)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("expected ErrOutOfMemory, got %v", err)
	}
	var oom *OutOfMemoryError
	if !errors.As(err, &oom) {
		t.Fatalf("expected *OutOfMemoryError, got %T", err)
	}
	if oom.Requested != 64 || oom.Capacity != 1024 || oom.Available != 1024-RoundUp(1000) {
		t.Fatalf("unexpected error fields: %+v", oom)
	}

	if _, err := a.Alloc(4096); !errors.Is(err, ErrOutOfMemory) {
		t.Fatalf("oversized request: expected ErrOutOfMemory, got %v", err)
	}
}

func TestFreeCoalescesNeighbours(t *testing.T) {
	t.Parallel()
	a := newTestArena(t, 3*64)

	x, _ := a.Alloc(64)
	y, _ := a.Alloc(64)
	z, _ := a.Alloc(64)
	if a.Available() != 0 {
		t.Fatalf("available = %d, want 0", a.Available())
	}

	// Free out of order: outer blocks first, middle last.
	for _, b := range [][]byte{x, z, y} {
		if err := a.Free(b); err != nil {
			t.Fatalf("Free: %v", err)
		}
	}
	if got := a.Stats().LargestFree; got != 3*64 {
		t.Fatalf("largest free = %d, want %d", got, 3*64)
	}
	if _, err := a.Alloc(3 * 64); err != nil {
		t.Fatalf("Alloc after coalesce: %v", err)
	}
}

func TestInvalidFree(t *testing.T) {
	t.Parallel()
	a := newTestArena(t, 256)

	b, _ := a.Alloc(32)
	if err := a.Free(b[4:]); !errors.Is(err, ErrInvalidFree) {
		t.Fatalf("interior pointer: expected ErrInvalidFree, got %v", err)
	}
	if err := a.Free(make([]byte, 8)); !errors.Is(err, ErrInvalidFree) {
		t.Fatalf("foreign slice: expected ErrInvalidFree, got %v", err)
	}
	if err := a.Free(b); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if err := a.Free(b); !errors.Is(err, ErrInvalidFree) {
		t.Fatalf("double free: expected ErrInvalidFree, got %v", err)
	}
}

func TestFloat32RoundTrip(t *testing.T) {
	t.Parallel()
	a := newTestArena(t, 1024)

	x, err := a.AllocFloat32(10)
	if err != nil {
		t.Fatalf("AllocFloat32: %v", err)
	}
	if len(x) != 10 {
		t.Fatalf("len = %d, want 10", len(x))
	}
	for i := range x {
		x[i] = float32(i)
	}
	if got := a.Stats().InUse; got != RoundUp(40) {
		t.Fatalf("in use = %d, want %d", got, RoundUp(40))
	}
	if err := a.FreeFloat32(x); err != nil {
		t.Fatalf("FreeFloat32: %v", err)
	}
	if got := a.Stats().InUse; got != 0 {
		t.Fatalf("in use after free = %d, want 0", got)
	}

	empty, err := a.AllocFloat32(0)
	if err != nil || len(empty) != 0 {
		t.Fatalf("AllocFloat32(0) = %v, %v", empty, err)
	}
	if err := a.FreeFloat32(empty); err != nil {
		t.Fatalf("FreeFloat32(empty): %v", err)
	}
}

func TestClosedArena(t *testing.T) {
	t.Parallel()
	a, err := New(128)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := a.Alloc(8); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestRoundUp(t *testing.T) {
	t.Parallel()
	tests := []struct{ in, want int }{
		{0, 0},
		{1, Align},
		{Align, Align},
		{Align + 1, 2 * Align},
		{40, 48},
	}
	for _, tc := range tests {
		if got := RoundUp(tc.in); got != tc.want {
			t.Errorf("RoundUp(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
