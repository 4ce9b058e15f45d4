// Package clrhost hosts a pre-built managed runtime (a CoreCLR-style hosting
// library) inside a Go process.
//
// The runtime ships as a native shared library exporting three entry points:
// coreclr_initialize, coreclr_create_delegate and coreclr_shutdown. This
// module loads that library at run time, marshals the inputs those entry
// points expect, drives the host handle through its lifecycle and hands back
// managed methods as raw function addresses.
//
// # Architecture Overview
//
//	clrhost/          Root package with the Library and Allocator contracts
//	├── loader/       dlopen/dlsym (LoadLibrary/GetProcAddress on Windows)
//	├── marshal/      NUL-terminated strings, property arrays, scoped arenas
//	├── host/         Runtime lifecycle state machine and delegate factory
//	├── resource/     Handle table used to track issued delegates
//	├── errors/       Structured error types
//	├── config/       YAML configuration for the command line tool
//	├── hosttest/     In-process test double of the hosting library
//	└── cmd/clrhost/  Command line tool
//
// # Quick Start
//
//	lib, err := loader.Open("/usr/share/dotnet/shared/Microsoft.NETCore.App/8.0.0/libcoreclr.so")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	h := host.New(lib)
//
//	session, err := h.Start("/srv/app", "app", marshal.Properties{
//	    {Key: marshal.AppPaths, Value: "/srv/app"},
//	    {Key: marshal.TrustedPlatformAssemblies, Value: tpa},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer session.Close()
//
//	entry, err := host.CreateDelegate[func() int32](h, session.Handle(), "App", "App.Program", "Main")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fn, _ := entry.Func()
//	fmt.Println(fn())
//
// # Unchecked Boundary
//
// A delegate is a bare address. The type parameter given to CreateDelegate is
// the caller's claim about the managed method's native signature and is never
// verified; a wrong claim corrupts the stack of the calling thread.
//
// # Thread Safety
//
// Lifecycle operations on a Host are serialized internally, but the hosting
// API itself expects a single owner to run initialize and shutdown. Whether a
// delegate may be invoked from several goroutines is decided by the managed
// runtime, not by this module.
package clrhost
