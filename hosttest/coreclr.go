package hosttest

import (
	"sync"

	"github.com/wippyai/clr-host/marshal"
)

// Fixed values produced by CoreCLR.
const (
	HostPointer     uintptr = 0x7f00c0de0000
	DomainID        uint32  = 0
	DelegateAddress uintptr = 0x7f00de1e0000
	ManagedResult   uintptr = 42
	LibraryPath             = "/fake/libcoreclr.so"
)

// InitializeCall is one observed coreclr_initialize call.
type InitializeCall struct {
	ExePath    string
	AppDomain  string
	Properties marshal.Properties
	Count      int
}

// DelegateCall is one observed coreclr_create_delegate call.
type DelegateCall struct {
	Assembly    string
	Type        string
	Method      string
	HostPointer uintptr
	DomainID    uint32
}

// ShutdownCall is one observed coreclr_shutdown call.
type ShutdownCall struct {
	HostPointer uintptr
	DomainID    uint32
}

// CoreCLR is a fake hosting library exporting the three hosting entry points.
type CoreCLR struct {
	*Library

	initializations []InitializeCall
	delegates       []DelegateCall
	shutdowns       []ShutdownCall
	managedCalls    [][]uintptr
	mu              sync.Mutex

	// Status values returned by each entry point. Zero means success.
	InitializeStatus     int32
	CreateDelegateStatus int32
	ShutdownStatus       int32
}

// NewCoreCLR creates a fake hosting library. The managed method returned by
// coreclr_create_delegate lives at DelegateAddress and returns ManagedResult.
func NewCoreCLR() *CoreCLR {
	c := &CoreCLR{Library: NewLibrary(LibraryPath)}
	c.Export("coreclr_initialize", c.initialize)
	c.Export("coreclr_create_delegate", c.createDelegate)
	c.Export("coreclr_shutdown", c.shutdown)
	c.DefineAt(DelegateAddress, c.managed)
	return c
}

// coreclr_initialize(exePath, appDomain, count, keys, values, &host, &domain)
func (c *CoreCLR) initialize(args ...uintptr) uintptr {
	n := int(int32(args[2]))
	keys := GoStrings(args[3], n)
	values := GoStrings(args[4], n)
	call := InitializeCall{
		ExePath:   GoString(args[0]),
		AppDomain: GoString(args[1]),
		Count:     n,
	}
	for i := range keys {
		call.Properties = append(call.Properties, marshal.Property{Key: keys[i], Value: values[i]})
	}

	c.mu.Lock()
	c.initializations = append(c.initializations, call)
	status := c.InitializeStatus
	c.mu.Unlock()

	if status < 0 {
		return Status(status)
	}
	WriteUintptr(args[5], HostPointer)
	WriteUint32(args[6], DomainID)
	return Status(status)
}

// coreclr_create_delegate(host, domain, assembly, type, method, &fn)
func (c *CoreCLR) createDelegate(args ...uintptr) uintptr {
	call := DelegateCall{
		HostPointer: args[0],
		DomainID:    uint32(args[1]),
		Assembly:    GoString(args[2]),
		Type:        GoString(args[3]),
		Method:      GoString(args[4]),
	}

	c.mu.Lock()
	c.delegates = append(c.delegates, call)
	status := c.CreateDelegateStatus
	c.mu.Unlock()

	if status < 0 {
		return Status(status)
	}
	WriteUintptr(args[5], DelegateAddress)
	return Status(status)
}

// coreclr_shutdown(host, domain)
func (c *CoreCLR) shutdown(args ...uintptr) uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shutdowns = append(c.shutdowns, ShutdownCall{HostPointer: args[0], DomainID: uint32(args[1])})
	return Status(c.ShutdownStatus)
}

func (c *CoreCLR) managed(args ...uintptr) uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.managedCalls = append(c.managedCalls, append([]uintptr(nil), args...))
	return ManagedResult
}

// Initializations returns the recorded coreclr_initialize calls.
func (c *CoreCLR) Initializations() []InitializeCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]InitializeCall(nil), c.initializations...)
}

// Delegates returns the recorded coreclr_create_delegate calls.
func (c *CoreCLR) Delegates() []DelegateCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]DelegateCall(nil), c.delegates...)
}

// Shutdowns returns the recorded coreclr_shutdown calls.
func (c *CoreCLR) Shutdowns() []ShutdownCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ShutdownCall(nil), c.shutdowns...)
}

// ManagedCalls returns the argument lists the managed method was invoked with.
func (c *CoreCLR) ManagedCalls() [][]uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]uintptr(nil), c.managedCalls...)
}

// ForeignCalls returns the total number of entry point invocations.
func (c *CoreCLR) ForeignCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.initializations) + len(c.delegates) + len(c.shutdowns)
}
