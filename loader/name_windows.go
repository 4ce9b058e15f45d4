package loader

// DefaultLibraryName is the file name of the hosting library on this platform.
const DefaultLibraryName = "coreclr.dll"
