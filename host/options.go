package host

import (
	"go.uber.org/zap"

	clrhost "github.com/wippyai/clr-host"
)

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger. The default is clrhost.Logger().
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.log = l
		}
	}
}

// WithAllocator sets the allocator used for marshaled arguments.
// The default is marshal.DefaultAllocator.
func WithAllocator(a clrhost.Allocator) Option {
	return func(h *Host) {
		if a != nil {
			h.alloc = a
		}
	}
}

// WithFatalHandler replaces the action taken when coreclr_shutdown fails.
// The default logs at fatal level, which exits the process. If fn returns,
// Shutdown returns the fatal error and the Host refuses further
// initialization.
func WithFatalHandler(fn func(error)) Option {
	return func(h *Host) {
		if fn != nil {
			h.fatal = fn
		}
	}
}
