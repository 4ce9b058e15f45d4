package host

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	clrhost "github.com/wippyai/clr-host"
	"github.com/wippyai/clr-host/errors"
	"github.com/wippyai/clr-host/loader"
	"github.com/wippyai/clr-host/marshal"
	"github.com/wippyai/clr-host/resource"
)

// Hosting entry points exported by the runtime library.
const (
	SymbolInitialize     = "coreclr_initialize"
	SymbolCreateDelegate = "coreclr_create_delegate"
	SymbolShutdown       = "coreclr_shutdown"
)

// Host drives the runtime exported by one loaded library.
type Host struct {
	lib       clrhost.Library
	alloc     clrhost.Allocator
	log       *zap.Logger
	fatal     func(error)
	symbols   map[string]uintptr
	delegates *resource.Table[*delegateEntry]
	failure   error
	live      Handle
	mu        sync.Mutex
	state     atomic.Int32
	hasLive   bool
}

// Open loads the library at path and returns a Host for it.
func Open(path string, opts ...Option) (*Host, error) {
	lib, err := loader.Open(path)
	if err != nil {
		return nil, err
	}
	return New(lib, opts...), nil
}

// New returns a Host for an already loaded library.
func New(lib clrhost.Library, opts ...Option) *Host {
	h := &Host{
		lib:       lib,
		alloc:     marshal.DefaultAllocator,
		log:       clrhost.Logger(),
		symbols:   make(map[string]uintptr, 3),
		delegates: resource.NewTable[*delegateEntry](),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.fatal == nil {
		log := h.log
		h.fatal = func(err error) {
			log.Fatal("runtime shutdown failed", zap.Error(err))
		}
	}
	h.log = h.log.With(zap.String("library", lib.Path()))
	h.delegates.Subscribe(&delegateLog{log: h.log})
	h.state.Store(int32(StateLoaded))
	return h
}

// Library returns the underlying library.
func (h *Host) Library() clrhost.Library {
	return h.lib
}

// State returns the current lifecycle state.
func (h *Host) State() State {
	return State(h.state.Load())
}

func (h *Host) setState(s State) {
	prev := State(h.state.Swap(int32(s)))
	h.log.Debug("host state", zap.Stringer("from", prev), zap.Stringer("to", s))
}

// resolve returns the address of an entry point, looking it up on first use.
// Caller must hold h.mu.
func (h *Host) resolve(name string) (uintptr, error) {
	if addr, ok := h.symbols[name]; ok {
		return addr, nil
	}
	addr, err := h.lib.Lookup(name)
	if err != nil {
		if errors.IsKind(err, errors.KindSymbolMissing) || errors.IsKind(err, errors.KindClosed) {
			return 0, err
		}
		return 0, errors.Symbol(h.lib.Path(), name, err)
	}
	h.symbols[name] = addr
	return addr, nil
}

// Initialize calls coreclr_initialize and returns the new runtime handle.
//
// exePath and appDomain are passed as NUL-terminated strings and props as
// two parallel arrays. Everything marshaled for the call is released before
// Initialize returns, whether the call succeeded or not. A negative status
// is returned as a KindNativeStatus error and no handle is produced.
//
// Only one handle may be live per Host; a second Initialize before Shutdown
// fails with KindAlreadyInitialized.
func (h *Host) Initialize(exePath, appDomain string, props marshal.Properties) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch {
	case h.failure != nil:
		return Handle{}, errors.Fatal(errors.PhaseInitialize, h.failure)
	case h.State() == StateUnloaded:
		return Handle{}, errors.Closed(errors.PhaseInitialize, "library "+h.lib.Path())
	case h.hasLive:
		return Handle{}, errors.AlreadyInitialized(errors.PhaseInitialize, "runtime")
	}

	arena := marshal.NewArena(h.alloc)
	defer arena.Release()

	exe, err := cstring(arena, "exe_path", exePath)
	if err != nil {
		return Handle{}, err
	}
	domain, err := cstring(arena, "app_domain", appDomain)
	if err != nil {
		return Handle{}, err
	}
	keys, values, err := arena.Properties(props)
	if err != nil {
		return Handle{}, err
	}
	hostOut, err := arena.Slot()
	if err != nil {
		return Handle{}, err
	}
	domainOut, err := arena.Slot()
	if err != nil {
		return Handle{}, err
	}

	addr, err := h.resolve(SymbolInitialize)
	if err != nil {
		return Handle{}, err
	}

	h.log.Debug("initializing runtime",
		zap.String("exe_path", exePath),
		zap.String("app_domain", appDomain),
		zap.Strings("properties", props.Keys()))

	rc := int32(h.lib.Call(addr,
		exe,
		domain,
		uintptr(len(props)),
		keys,
		values,
		uintptr(hostOut),
		uintptr(domainOut),
	))
	if rc < 0 {
		err := errors.Native(errors.PhaseInitialize, SymbolInitialize, rc)
		h.log.Warn("runtime initialization failed", zap.Error(err))
		return Handle{}, err
	}

	handle := Handle{
		HostPointer: *(*uintptr)(hostOut),
		DomainID:    *(*uint32)(domainOut),
	}
	h.live = handle
	h.hasLive = true
	h.setState(StateInitialized)
	h.log.Info("runtime initialized", zap.Stringer("handle", handle))
	return handle, nil
}

// Shutdown calls coreclr_shutdown for handle. It must be called exactly once
// per successful Initialize.
//
// A handle that is not the live one is rejected with KindNotInitialized
// without calling into the library. A negative status cannot be recovered
// from: the fatal handler runs and, if it returns, a KindFatal error is
// returned and the Host refuses to initialize again.
//
// Delegates created under handle are invalidated in every case.
func (h *Host) Shutdown(handle Handle) error {
	fatal, err := h.shutdown(handle)
	if fatal {
		h.fatal(err)
	}
	return err
}

func (h *Host) shutdown(handle Handle) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.hasLive || handle != h.live {
		return false, errors.NotInitialized(errors.PhaseShutdown, "runtime handle "+handle.String())
	}

	h.setState(StateShuttingDown)
	h.delegates.Clear()

	addr, err := h.resolve(SymbolShutdown)
	if err == nil {
		rc := int32(h.lib.Call(addr, handle.HostPointer, uintptr(handle.DomainID)))
		if rc < 0 {
			err = errors.Native(errors.PhaseShutdown, SymbolShutdown, rc)
		}
	}

	h.live = Handle{}
	h.hasLive = false
	h.setState(StateShutdown)

	if err != nil {
		ferr := errors.Fatal(errors.PhaseShutdown, err)
		h.failure = ferr
		return true, ferr
	}
	h.log.Info("runtime shut down", zap.Stringer("handle", handle))
	return false, nil
}

// Close unloads the library. It fails while a runtime handle is live.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.State() == StateUnloaded {
		return nil
	}
	if h.hasLive {
		return errors.New(errors.PhaseLoad, errors.KindAlreadyInitialized).
			Library(h.lib.Path()).
			Detail("runtime %s still live; shut it down before closing the library", h.live).
			Build()
	}

	h.delegates.Close()
	h.symbols = make(map[string]uintptr)
	h.setState(StateUnloaded)
	return h.lib.Close()
}

func cstring(arena *marshal.Arena, field, s string) (uintptr, error) {
	p, err := arena.CString(s)
	if e, ok := err.(*errors.Error); ok && len(e.Path) == 0 {
		e.Path = []string{field}
	}
	return p, err
}
