//go:build linux || freebsd || netbsd

package loader

// DefaultLibraryName is the file name of the hosting library on this platform.
const DefaultLibraryName = "libcoreclr.so"
