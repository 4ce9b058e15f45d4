package hosttest

import (
	"fmt"
	"sync"
	"unsafe"

	clrhost "github.com/wippyai/clr-host"
	"github.com/wippyai/clr-host/marshal"
)

var _ clrhost.Allocator = (*CountingAllocator)(nil)

// CountingAllocator wraps a marshal.HeapAllocator and counts every
// allocation and free. A free of a pointer that is not live is recorded as
// a double free instead of being forwarded.
type CountingAllocator struct {
	inner       *marshal.HeapAllocator
	live        map[unsafe.Pointer]int
	allocs      int
	frees       int
	doubleFrees int
	mu          sync.Mutex

	// FailAt makes the FailAt-th allocation (1-based) fail. Zero disables it.
	FailAt int
}

// NewCountingAllocator creates a counting allocator.
func NewCountingAllocator() *CountingAllocator {
	return &CountingAllocator{
		inner: marshal.NewHeapAllocator(),
		live:  make(map[unsafe.Pointer]int),
	}
}

// Alloc implements clrhost.Allocator.
func (c *CountingAllocator) Alloc(size int) (unsafe.Pointer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.FailAt > 0 && c.allocs+1 == c.FailAt {
		c.FailAt = 0
		return nil, fmt.Errorf("hosttest: injected allocation failure (%d bytes)", size)
	}
	p, err := c.inner.Alloc(size)
	if err != nil {
		return nil, err
	}
	c.allocs++
	c.live[p] = size
	return p, nil
}

// Free implements clrhost.Allocator.
func (c *CountingAllocator) Free(p unsafe.Pointer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.live[p]; !ok {
		c.doubleFrees++
		return
	}
	delete(c.live, p)
	c.frees++
	c.inner.Free(p)
}

// Allocs returns the number of successful allocations.
func (c *CountingAllocator) Allocs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocs
}

// Frees returns the number of successful frees.
func (c *CountingAllocator) Frees() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frees
}

// DoubleFrees returns the number of frees of pointers that were not live.
func (c *CountingAllocator) DoubleFrees() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doubleFrees
}

// Live returns the number of blocks not yet freed.
func (c *CountingAllocator) Live() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.live)
}

// Balanced reports whether every allocation was freed exactly once.
func (c *CountingAllocator) Balanced() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allocs == c.frees && c.doubleFrees == 0 && len(c.live) == 0
}
