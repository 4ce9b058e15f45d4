//go:build windows

package loader

import (
	"syscall"

	"golang.org/x/sys/windows"
)

func open(path string) (uintptr, error) {
	h, err := windows.LoadLibrary(path)
	if err != nil {
		return 0, err
	}
	return uintptr(h), nil
}

func symbol(handle uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(handle), name)
}

func call(addr uintptr, args ...uintptr) uintptr {
	r1, _, _ := syscall.SyscallN(addr, args...)
	return r1
}

func closeLib(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}
