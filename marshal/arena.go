package marshal

import (
	"unsafe"

	clrhost "github.com/wippyai/clr-host"
	"github.com/wippyai/clr-host/errors"
)

const ptrSize = int(unsafe.Sizeof(uintptr(0)))

// Arena owns every native-visible block produced for one foreign call.
// It is not safe for concurrent use.
type Arena struct {
	alloc    clrhost.Allocator
	blocks   []unsafe.Pointer
	released bool
}

// NewArena creates an arena drawing from alloc.
// A nil alloc selects DefaultAllocator.
func NewArena(alloc clrhost.Allocator) *Arena {
	if alloc == nil {
		alloc = DefaultAllocator
	}
	return &Arena{alloc: alloc}
}

func (a *Arena) take(size int) (unsafe.Pointer, error) {
	if a.released {
		return nil, errors.Closed(errors.PhaseMarshal, "arena")
	}
	p, err := a.alloc.Alloc(size)
	if err != nil {
		return nil, errors.AllocationFailed(errors.PhaseMarshal, size, err)
	}
	if p == nil {
		return nil, errors.AllocationFailed(errors.PhaseMarshal, size, nil)
	}
	a.blocks = append(a.blocks, p)
	return p, nil
}

// CString copies s into the arena as a NUL-terminated string and returns
// its address.
func (a *Arena) CString(s string) (uintptr, error) {
	return a.cstring(s, nil)
}

func (a *Arena) cstring(s string, path []string) (uintptr, error) {
	if err := checkText(s, path); err != nil {
		return 0, err
	}
	p, err := a.take(len(s) + 1)
	if err != nil {
		return 0, err
	}
	dst := unsafe.Slice((*byte)(p), len(s)+1)
	copy(dst, s)
	dst[len(s)] = 0
	return uintptr(p), nil
}

// Properties lays props out as two parallel arrays of string pointers.
// keys[i] and values[i] always belong to the same property. An empty list
// yields two null pointers.
func (a *Arena) Properties(props Properties) (keys, values uintptr, err error) {
	if err := props.Validate(); err != nil {
		return 0, 0, err
	}
	if len(props) == 0 {
		return 0, 0, nil
	}

	kp, err := a.take(len(props) * ptrSize)
	if err != nil {
		return 0, 0, err
	}
	vp, err := a.take(len(props) * ptrSize)
	if err != nil {
		return 0, 0, err
	}
	karr := unsafe.Slice((*uintptr)(kp), len(props))
	varr := unsafe.Slice((*uintptr)(vp), len(props))

	for i, prop := range props {
		if karr[i], err = a.cstring(prop.Key, []string{"properties", "key"}); err != nil {
			return 0, 0, err
		}
		if varr[i], err = a.cstring(prop.Value, []string{"properties", prop.Key}); err != nil {
			return 0, 0, err
		}
	}
	return uintptr(kp), uintptr(vp), nil
}

// Slot reserves a zeroed word for a native out-parameter.
func (a *Arena) Slot() (unsafe.Pointer, error) {
	p, err := a.take(ptrSize)
	if err != nil {
		return nil, err
	}
	*(*uintptr)(p) = 0
	return p, nil
}

// Len returns the number of blocks currently held.
func (a *Arena) Len() int {
	return len(a.blocks)
}

// Release frees every block in reverse allocation order. Calling it again
// is a no-op, so it is safe to both defer and call explicitly.
func (a *Arena) Release() {
	if a.released {
		return
	}
	a.released = true
	for i := len(a.blocks) - 1; i >= 0; i-- {
		a.alloc.Free(a.blocks[i])
	}
	a.blocks = nil
}
