// Package loader opens shared libraries and resolves their exports.
//
// On Unix-like systems it uses dlopen/dlsym through purego, so no C
// toolchain is needed. On Windows it uses LoadLibrary/GetProcAddress.
//
//	lib, err := loader.Open(loader.DefaultLibraryName)
//	if err != nil {
//	    return err
//	}
//	addr, err := lib.Lookup("coreclr_initialize")
//
// A Library only resolves names on demand; Open never walks the export
// table.
package loader
