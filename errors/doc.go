// Package errors provides structured error types for the CLR host.
//
// Errors are categorized by Phase (which lifecycle step failed) and Kind
// (what went wrong). Kinds line up with the failure classes a host can see:
//
//	KindLibraryLoad    the shared library could not be opened
//	KindSymbolMissing  an expected export is absent
//	KindEmbeddedNul    text cannot be passed as a NUL-terminated string
//	KindNativeStatus   a foreign call returned a negative status
//	KindFatal          shutdown failed; the process must not continue
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseResolve, errors.KindSymbolMissing).
//		Library("/opt/dotnet/libcoreclr.so").
//		Symbol("coreclr_initialize").
//		Build()
//
// Or use the constructors:
//
//	err := errors.Native(errors.PhaseInitialize, "coreclr_initialize", rc)
//	code, ok := errors.Code(err)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
