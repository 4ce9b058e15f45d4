//go:build darwin || freebsd || linux || netbsd

package loader

import "github.com/ebitengine/purego"

func open(path string) (uintptr, error) {
	return purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
}

func symbol(handle uintptr, name string) (uintptr, error) {
	return purego.Dlsym(handle, name)
}

func call(addr uintptr, args ...uintptr) uintptr {
	r1, _, _ := purego.SyscallN(addr, args...)
	return r1
}

func closeLib(handle uintptr) error {
	return purego.Dlclose(handle)
}
