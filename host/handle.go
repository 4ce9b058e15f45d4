package host

import "fmt"

// Handle identifies one initialized runtime: the host pointer and domain id
// written by coreclr_initialize. It is valid from a successful Initialize
// until the matching Shutdown.
type Handle struct {
	HostPointer uintptr
	DomainID    uint32
}

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool {
	return h == Handle{}
}

func (h Handle) String() string {
	return fmt.Sprintf("host=%#x domain=%d", h.HostPointer, h.DomainID)
}
