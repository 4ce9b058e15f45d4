package loader

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	clrhost "github.com/wippyai/clr-host"
	"github.com/wippyai/clr-host/errors"
)

var _ clrhost.Library = (*Library)(nil)

// Library is a shared library opened with Open.
type Library struct {
	path   string
	handle uintptr
	mu     sync.RWMutex
	closed bool
}

// Open loads the shared library at path.
// path may be a bare file name, in which case the platform search order applies.
func Open(path string) (*Library, error) {
	if path == "" {
		return nil, errors.New(errors.PhaseLoad, errors.KindLibraryLoad).
			Detail("empty library path").
			Build()
	}
	if i := strings.IndexByte(path, 0); i >= 0 {
		return nil, errors.Load(path, errors.Encoding([]string{"path"}, i))
	}

	handle, err := open(path)
	if err != nil {
		clrhost.Logger().Debug("library load failed", zap.String("path", path), zap.Error(err))
		return nil, errors.Load(path, err)
	}

	clrhost.Logger().Debug("library loaded", zap.String("path", path))
	return &Library{path: path, handle: handle}, nil
}

// Path returns the path passed to Open.
func (l *Library) Path() string {
	return l.path
}

// Lookup resolves an exported symbol.
func (l *Library) Lookup(name string) (uintptr, error) {
	if name == "" {
		return 0, errors.Symbol(l.path, name, errors.InvalidInput(errors.PhaseResolve, "empty symbol name"))
	}
	if i := strings.IndexByte(name, 0); i >= 0 {
		return 0, errors.Symbol(l.path, name, errors.Encoding([]string{"symbol"}, i))
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return 0, errors.Closed(errors.PhaseResolve, "library "+l.path)
	}

	addr, err := symbol(l.handle, name)
	if err != nil {
		return 0, errors.Symbol(l.path, name, err)
	}
	if addr == 0 {
		return 0, errors.Symbol(l.path, name, nil)
	}
	return addr, nil
}

// Call invokes the function at addr.
// Arguments and the result are passed as machine words; addr must come from
// this library and the argument list must match the native signature.
func (l *Library) Call(addr uintptr, args ...uintptr) uintptr {
	return call(addr, args...)
}

// Close unloads the library. Closing twice is a no-op.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true

	if err := closeLib(l.handle); err != nil {
		return errors.Wrap(errors.PhaseLoad, errors.KindLibraryLoad, err, "close "+l.path)
	}
	clrhost.Logger().Debug("library closed", zap.String("path", l.path))
	return nil
}
