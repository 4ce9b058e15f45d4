package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates where in the hosting lifecycle the error occurred
type Phase string

const (
	PhaseLoad       Phase = "load"       // opening the shared library
	PhaseResolve    Phase = "resolve"    // symbol lookup
	PhaseMarshal    Phase = "marshal"    // Go to native strings and arrays
	PhaseInitialize Phase = "initialize" // coreclr_initialize
	PhaseDelegate   Phase = "delegate"   // coreclr_create_delegate
	PhaseInvoke     Phase = "invoke"     // calling an obtained delegate
	PhaseShutdown   Phase = "shutdown"   // coreclr_shutdown
	PhaseConfig     Phase = "config"     // configuration loading
)

// Kind categorizes the error
type Kind string

const (
	KindLibraryLoad        Kind = "library_load"
	KindSymbolMissing      Kind = "symbol_missing"
	KindEmbeddedNul        Kind = "embedded_nul"
	KindNativeStatus       Kind = "native_status"
	KindFatal              Kind = "fatal"
	KindInvalidInput       Kind = "invalid_input"
	KindDuplicateKey       Kind = "duplicate_key"
	KindAllocation         Kind = "allocation"
	KindNotInitialized     Kind = "not_initialized"
	KindAlreadyInitialized Kind = "already_initialized"
	KindClosed             Kind = "closed"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value   any
	Cause   error
	Phase   Phase
	Kind    Kind
	Library string
	Symbol  string
	Detail  string
	Path    []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Library != "" || e.Symbol != "" {
		b.WriteString(": ")
		if e.Library != "" && e.Symbol != "" {
			b.WriteString("symbol ")
			b.WriteString(e.Symbol)
			b.WriteString(" in ")
			b.WriteString(e.Library)
		} else if e.Symbol != "" {
			b.WriteString("symbol ")
			b.WriteString(e.Symbol)
		} else {
			b.WriteString("library ")
			b.WriteString(e.Library)
		}
	}

	if e.Detail != "" {
		if e.Library != "" || e.Symbol != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Library sets the library path
func (b *Builder) Library(path string) *Builder {
	b.err.Library = path
	return b
}

// Symbol sets the symbol name
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Taxonomy constructors

// Load creates a library load error
func Load(path string, cause error) *Error {
	return &Error{
		Phase:   PhaseLoad,
		Kind:    KindLibraryLoad,
		Library: path,
		Cause:   cause,
	}
}

// Symbol creates a missing export error
func Symbol(library, name string, cause error) *Error {
	return &Error{
		Phase:   PhaseResolve,
		Kind:    KindSymbolMissing,
		Library: library,
		Symbol:  name,
		Cause:   cause,
	}
}

// Encoding creates an embedded NUL error. offset is the index of the first NUL byte.
func Encoding(path []string, offset int) *Error {
	return &Error{
		Phase:  PhaseMarshal,
		Kind:   KindEmbeddedNul,
		Path:   path,
		Detail: fmt.Sprintf("embedded NUL byte at offset %d", offset),
		Value:  offset,
	}
}

// Native creates an error for a negative status returned by a foreign call
func Native(phase Phase, symbol string, code int32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNativeStatus,
		Symbol: symbol,
		Detail: StatusText(code),
		Value:  code,
	}
}

// Fatal creates an unrecoverable error
func Fatal(phase Phase, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindFatal,
		Detail: "host must terminate",
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error
func NotInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", what),
	}
}

// AlreadyInitialized creates an error for a second live initialization
func AlreadyInitialized(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAlreadyInitialized,
		Detail: fmt.Sprintf("%s already initialized", what),
	}
}

// Closed creates an error for use of a closed resource
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// DuplicateKey creates a duplicate property key error
func DuplicateKey(phase Phase, key string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindDuplicateKey,
		Path:   []string{key},
		Detail: fmt.Sprintf("property %q given more than once", key),
	}
}

// AllocationFailed creates an allocation failure error
func AllocationFailed(phase Phase, size int, cause error) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindAllocation,
		Detail: fmt.Sprintf("failed to allocate %d bytes", size),
		Cause:  cause,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// IsKind reports whether any *Error in err's tree has the given kind.
// Joined errors are searched too.
func IsKind(err error, kind Kind) bool {
	return find(err, func(e *Error) bool { return e.Kind == kind }) != nil
}

// Code returns the native status carried by a KindNativeStatus error.
func Code(err error) (int32, bool) {
	e := find(err, func(e *Error) bool {
		_, ok := e.Value.(int32)
		return e.Kind == KindNativeStatus && ok
	})
	if e == nil {
		return 0, false
	}
	return e.Value.(int32), true
}

// find walks err depth first and returns the first *Error matching fn.
func find(err error, fn func(*Error) bool) *Error {
	switch x := err.(type) {
	case nil:
		return nil
	case *Error:
		if x == nil {
			return nil
		}
		if fn(x) {
			return x
		}
		return find(x.Cause, fn)
	case interface{ Unwrap() []error }:
		for _, inner := range x.Unwrap() {
			if e := find(inner, fn); e != nil {
				return e
			}
		}
		return nil
	default:
		return find(errors.Unwrap(err), fn)
	}
}
