// Package host drives the hosting entry points of a loaded runtime library.
//
// A Host wraps one clrhost.Library and moves through these states:
//
//	Unloaded -> Loaded -> Initialized -> ShuttingDown -> Shutdown
//
// Initialize marshals its arguments into a scoped arena, calls
// coreclr_initialize, and returns a Handle. CreateDelegate turns a managed
// static method into a native address. Shutdown calls coreclr_shutdown; a
// failure there leaves the process in an unknown state, so the fatal
// handler runs and the Host is poisoned.
//
// The entry points are resolved lazily and cached. All calls on a Host are
// serialized by an internal mutex.
//
// Delegate signatures are not checked. The caller states the native
// signature as a type parameter and is responsible for it matching the
// managed method.
package host
