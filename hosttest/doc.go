// Package hosttest provides in-process doubles of a hosting library.
//
// Library is a clrhost.Library whose exports are Go functions. Addresses it
// hands out are fake; they are only meaningful to its own Call method, so a
// double must never be passed to code that calls addresses directly (for
// example through purego).
//
// CoreCLR preloads a Library with coreclr_initialize,
// coreclr_create_delegate and coreclr_shutdown, records every call and lets
// tests choose the status each entry point returns. CountingAllocator
// tracks every block so tests can assert nothing leaked or was freed twice.
//
// The memory helpers read and write through bare words, the way native code
// would, and are excluded from checkptr so the suite runs under -race:
//
//	go test -race ./...
package hosttest
