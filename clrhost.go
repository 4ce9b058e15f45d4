package clrhost

import "unsafe"

// Library is a loaded shared library.
type Library interface {
	// Path returns the path the library was opened from.
	Path() string

	// Lookup resolves an exported symbol to its address.
	Lookup(name string) (uintptr, error)

	// Call invokes the native function at addr with integer/pointer
	// arguments and returns the raw integer result register.
	Call(addr uintptr, args ...uintptr) uintptr

	// Close unloads the library. Addresses obtained from it become invalid.
	Close() error
}

// Allocator hands out memory that stays put while native code reads it.
type Allocator interface {
	Alloc(size int) (unsafe.Pointer, error)
	Free(p unsafe.Pointer)
}
