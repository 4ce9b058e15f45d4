package hosttest

import (
	"sync"
	"unsafe"

	clrhost "github.com/wippyai/clr-host"
	"github.com/wippyai/clr-host/errors"
)

// Func is a native function implemented in Go. Arguments and result are
// machine words, as in clrhost.Library.Call.
type Func func(args ...uintptr) uintptr

const firstAddress uintptr = 0x7f0000001000

var _ clrhost.Library = (*Library)(nil)

// Library is a fake shared library.
type Library struct {
	funcs   map[uintptr]Func
	exports map[string]uintptr
	lookups map[string]int
	path    string
	next    uintptr
	mu      sync.Mutex
	closed  bool
}

// NewLibrary creates an empty fake library reporting path as its location.
func NewLibrary(path string) *Library {
	return &Library{
		funcs:   make(map[uintptr]Func),
		exports: make(map[string]uintptr),
		lookups: make(map[string]int),
		path:    path,
		next:    firstAddress,
	}
}

// Export registers fn under name and returns its address.
func (l *Library) Export(name string, fn Func) uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	addr := l.allocAddr()
	l.funcs[addr] = fn
	l.exports[name] = addr
	return addr
}

// Define registers an unnamed function and returns its address.
func (l *Library) Define(fn Func) uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	addr := l.allocAddr()
	l.funcs[addr] = fn
	return addr
}

// DefineAt registers fn at a caller-chosen address.
func (l *Library) DefineAt(addr uintptr, fn Func) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.funcs[addr] = fn
}

// Unexport removes name from the export table. Its address stays callable.
func (l *Library) Unexport(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.exports, name)
}

func (l *Library) allocAddr() uintptr {
	addr := l.next
	l.next += 0x10
	return addr
}

// Path implements clrhost.Library.
func (l *Library) Path() string {
	return l.path
}

// Lookup implements clrhost.Library.
func (l *Library) Lookup(name string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return 0, errors.Closed(errors.PhaseResolve, "library "+l.path)
	}
	l.lookups[name]++
	addr, ok := l.exports[name]
	if !ok {
		return 0, errors.Symbol(l.path, name, nil)
	}
	return addr, nil
}

// Call implements clrhost.Library. Calling an address that was never
// registered panics, the way a stray native call would crash.
func (l *Library) Call(addr uintptr, args ...uintptr) uintptr {
	l.mu.Lock()
	fn, ok := l.funcs[addr]
	l.mu.Unlock()
	if !ok {
		panic("hosttest: call to unknown address")
	}
	return fn(args...)
}

// Close implements clrhost.Library.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	return nil
}

// Closed reports whether Close was called.
func (l *Library) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Lookups returns how many times name was resolved.
func (l *Library) Lookups(name string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lookups[name]
}

// Status encodes a C int return value the way it arrives in the result register.
func Status(code int32) uintptr {
	return uintptr(uint32(code))
}

// GoString reads the NUL-terminated string at p.
// Not instrumented by checkptr: p is an address a native caller would receive; it has no Go base pointer.
//
//go:nocheckptr
func GoString(p uintptr) string {
	if p == 0 {
		return ""
	}
	base := unsafe.Pointer(p)
	n := 0
	for *(*byte)(unsafe.Add(base, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(base), n))
}

// GoStrings reads n string pointers from the array at p.
// Not instrumented by checkptr: p and the pointers it holds arrive as bare words.
//
//go:nocheckptr
func GoStrings(p uintptr, n int) []string {
	if p == 0 || n <= 0 {
		return nil
	}
	ptrs := unsafe.Slice((*uintptr)(unsafe.Pointer(p)), n)
	out := make([]string, n)
	for i, s := range ptrs {
		out[i] = GoString(s)
	}
	return out
}

// WriteUintptr stores v at the out-parameter p.
// Not instrumented by checkptr: out-parameters arrive as bare words.
//
//go:nocheckptr
func WriteUintptr(p uintptr, v uintptr) {
	*(*uintptr)(unsafe.Pointer(p)) = v
}

// WriteUint32 stores v at the out-parameter p.
// Not instrumented by checkptr: out-parameters arrive as bare words.
//
//go:nocheckptr
func WriteUint32(p uintptr, v uint32) {
	*(*uint32)(unsafe.Pointer(p)) = v
}
