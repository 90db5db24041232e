package alloc

import (
	"sync"
	"testing"
)

func TestAllocSequential(t *testing.T) {
	a := New(1024)

	if got := a.Alloc(100); got != 1024 {
		t.Errorf("first: got %d, want 1024", got)
	}
	if got := a.Alloc(200); got != 1124 {
		t.Errorf("second: got %d, want 1124", got)
	}
	if got := a.EOFAddr(); got != 1324 {
		t.Errorf("eof: got %d, want 1324", got)
	}
}

func TestAllocZeroSize(t *testing.T) {
	a := New(100)
	if got := a.Alloc(0); got != 100 {
		t.Errorf("got %d, want 100", got)
	}
	if got := a.EOFAddr(); got != 100 {
		t.Errorf("eof moved to %d", got)
	}
	if a.Stats().Allocations != 0 {
		t.Error("zero-size allocation counted")
	}
}

func TestStats(t *testing.T) {
	a := New(0)
	a.Alloc(10)
	a.Alloc(300)
	a.Alloc(20)

	want := Stats{Allocations: 3, Bytes: 330, Largest: 300}
	if got := a.Stats(); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestConcurrentAlloc(t *testing.T) {
	a := New(0)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a.Alloc(8)
		}()
	}
	wg.Wait()

	if got := a.EOFAddr(); got != 400 {
		t.Errorf("eof: got %d, want 400", got)
	}
}
