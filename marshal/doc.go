// Package marshal converts Go strings and property lists into the
// NUL-terminated byte strings and pointer arrays the hosting entry points
// take.
//
// All native-visible memory comes from an Arena. An Arena records every
// block it hands out and frees each of them exactly once in Release, so the
// usual pattern is:
//
//	arena := marshal.NewArena(alloc)
//	defer arena.Release()
//
//	exe, err := arena.CString(exePath)
//	if err != nil {
//	    return err
//	}
//	keys, values, err := arena.Properties(props)
//	...
//	rc := lib.Call(addr, exe, ...)
//
// Text containing a NUL byte is rejected before any memory is allocated.
package marshal
