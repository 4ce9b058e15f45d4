package host

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/ebitengine/purego"
	"go.uber.org/zap"

	clrhost "github.com/wippyai/clr-host"
	"github.com/wippyai/clr-host/errors"
	"github.com/wippyai/clr-host/marshal"
	"github.com/wippyai/clr-host/resource"
)

// delegateEntry is the host-side record of one issued delegate. It is
// dropped from the host's table when the runtime shuts down.
type delegateEntry struct {
	name  string
	addr  uintptr
	valid atomic.Bool
}

func (e *delegateEntry) Drop() {
	e.valid.Store(false)
}

type delegateLog struct {
	log *zap.Logger
}

func (l *delegateLog) OnResourceEvent(ev resource.Event) {
	e, _ := ev.Value.(*delegateEntry)
	if e == nil {
		return
	}
	l.log.Debug("delegate "+ev.Type.String(),
		zap.Uint32("id", uint32(ev.Handle)),
		zap.String("method", e.name),
		zap.Uintptr("addr", e.addr))
}

// Delegate is a managed method exposed as a native function address.
//
// T is the native signature the caller claims the method has, for example
// func(int32) int32. Nothing checks that claim: the runtime only returns an
// address, and calling it with the wrong signature has undefined results.
// A Delegate stops working once the runtime that produced it shuts down.
type Delegate[T any] struct {
	entry *delegateEntry
	lib   clrhost.Library
}

// CreateDelegate asks the runtime for the native entry point of
// assembly!typeName.methodName via coreclr_create_delegate.
// A negative status is returned as a KindNativeStatus error.
func CreateDelegate[T any](h *Host, handle Handle, assembly, typeName, method string) (*Delegate[T], error) {
	entry, err := h.createDelegate(handle, assembly, typeName, method)
	if err != nil {
		return nil, err
	}
	return &Delegate[T]{entry: entry, lib: h.lib}, nil
}

func (h *Host) createDelegate(handle Handle, assembly, typeName, method string) (*delegateEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.hasLive || handle != h.live {
		return nil, errors.NotInitialized(errors.PhaseDelegate, "runtime handle "+handle.String())
	}

	arena := marshal.NewArena(h.alloc)
	defer arena.Release()

	asm, err := cstring(arena, "assembly", assembly)
	if err != nil {
		return nil, err
	}
	typ, err := cstring(arena, "type", typeName)
	if err != nil {
		return nil, err
	}
	meth, err := cstring(arena, "method", method)
	if err != nil {
		return nil, err
	}
	out, err := arena.Slot()
	if err != nil {
		return nil, err
	}

	addr, err := h.resolve(SymbolCreateDelegate)
	if err != nil {
		return nil, err
	}

	name := assembly + "!" + typeName + "." + method
	rc := int32(h.lib.Call(addr,
		handle.HostPointer,
		uintptr(handle.DomainID),
		asm,
		typ,
		meth,
		uintptr(out),
	))
	if rc < 0 {
		err := errors.Native(errors.PhaseDelegate, SymbolCreateDelegate, rc)
		err.Path = []string{name}
		h.log.Warn("create delegate failed", zap.String("method", name), zap.Error(err))
		return nil, err
	}

	fn := *(*uintptr)(out)
	if fn == 0 {
		return nil, errors.New(errors.PhaseDelegate, errors.KindSymbolMissing).
			Symbol(name).
			Detail("runtime returned a null address").
			Build()
	}

	entry := &delegateEntry{name: name, addr: fn}
	entry.valid.Store(true)
	h.delegates.Insert(entry)
	return entry, nil
}

// Addr returns the native address of the managed method.
func (d *Delegate[T]) Addr() uintptr {
	return d.entry.addr
}

// Name returns assembly!type.method.
func (d *Delegate[T]) Name() string {
	return d.entry.name
}

// Valid reports whether the runtime that produced d is still initialized.
func (d *Delegate[T]) Valid() bool {
	return d.entry.valid.Load()
}

// Call invokes the method with word-sized arguments and returns the raw
// result register.
func (d *Delegate[T]) Call(args ...uintptr) (uintptr, error) {
	if !d.Valid() {
		return 0, errors.NotInitialized(errors.PhaseInvoke, "runtime for "+d.entry.name)
	}
	return d.lib.Call(d.entry.addr, args...), nil
}

// Func binds the address to a Go function of type T. T must be a func type
// built from the types purego can pass to C. The binding is only as correct
// as the caller's claim about the signature.
func (d *Delegate[T]) Func() (T, error) {
	var fn T
	if t := reflect.TypeOf(&fn).Elem(); t.Kind() != reflect.Func {
		return fn, errors.InvalidInput(errors.PhaseInvoke,
			fmt.Sprintf("delegate type %s is not a function type", t))
	}
	if !d.Valid() {
		return fn, errors.NotInitialized(errors.PhaseInvoke, "runtime for "+d.entry.name)
	}
	purego.RegisterFunc(&fn, d.entry.addr)
	return fn, nil
}
