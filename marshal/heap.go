package marshal

import (
	"runtime"
	"sync"
	"unsafe"

	clrhost "github.com/wippyai/clr-host"
	"github.com/wippyai/clr-host/errors"
)

var _ clrhost.Allocator = (*HeapAllocator)(nil)

// HeapAllocator serves blocks from the Go heap and pins them until freed,
// so native code may hold their addresses for the duration of a call.
type HeapAllocator struct {
	live map[unsafe.Pointer]*heapBlock
	mu   sync.Mutex
}

type heapBlock struct {
	buf []byte
	pin runtime.Pinner
}

// NewHeapAllocator creates an empty allocator.
func NewHeapAllocator() *HeapAllocator {
	return &HeapAllocator{live: make(map[unsafe.Pointer]*heapBlock)}
}

// Alloc returns a zeroed, pinned block of size bytes.
func (h *HeapAllocator) Alloc(size int) (unsafe.Pointer, error) {
	if size <= 0 {
		return nil, errors.AllocationFailed(errors.PhaseMarshal, size,
			errors.InvalidInput(errors.PhaseMarshal, "size must be positive"))
	}

	b := &heapBlock{buf: make([]byte, size)}
	p := unsafe.Pointer(&b.buf[0])
	b.pin.Pin(p)

	h.mu.Lock()
	h.live[p] = b
	h.mu.Unlock()
	return p, nil
}

// Free unpins a block returned by Alloc.
// Freeing an unknown or already freed pointer panics.
func (h *HeapAllocator) Free(p unsafe.Pointer) {
	h.mu.Lock()
	b, ok := h.live[p]
	delete(h.live, p)
	h.mu.Unlock()

	if !ok {
		panic("marshal: free of pointer not owned by allocator")
	}
	b.pin.Unpin()
}

// Live returns the number of blocks not yet freed.
func (h *HeapAllocator) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.live)
}

// DefaultAllocator is shared by hosts that are not given an allocator.
var DefaultAllocator = NewHeapAllocator()
