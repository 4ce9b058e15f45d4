package host

import (
	"runtime"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/clr-host/marshal"
)

// Session owns one runtime handle and shuts it down exactly once.
//
// Call Close explicitly. If a Session becomes unreachable without being
// closed, a cleanup shuts the runtime down from the garbage collector's
// cleanup goroutine; a failure there still reaches the fatal handler.
type Session struct {
	state   *sessionState
	cleanup runtime.Cleanup
}

type sessionState struct {
	host   *Host
	handle Handle
	id     uuid.UUID
	closed atomic.Bool
}

// Start initializes the runtime and wraps the handle in a Session.
func (h *Host) Start(exePath, appDomain string, props marshal.Properties) (*Session, error) {
	handle, err := h.Initialize(exePath, appDomain, props)
	if err != nil {
		return nil, err
	}

	st := &sessionState{host: h, handle: handle, id: uuid.New()}
	s := &Session{state: st}
	s.cleanup = runtime.AddCleanup(s, leakedSession, st)

	h.log.Debug("session started", zap.Stringer("session", st.id), zap.Stringer("handle", handle))
	return s, nil
}

func leakedSession(st *sessionState) {
	if !st.closed.CompareAndSwap(false, true) {
		return
	}
	st.host.log.Warn("session was not closed; shutting runtime down",
		zap.Stringer("session", st.id), zap.Stringer("handle", st.handle))
	_ = st.host.Shutdown(st.handle)
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID {
	return s.state.id
}

// Handle returns the runtime handle owned by the session.
func (s *Session) Handle() Handle {
	return s.state.handle
}

// Host returns the host the session was started on.
func (s *Session) Host() *Host {
	return s.state.host
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s.state.closed.Load()
}

// Close shuts the runtime down. Only the first call has any effect.
func (s *Session) Close() error {
	if !s.state.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.cleanup.Stop()
	s.state.host.log.Debug("session closing", zap.Stringer("session", s.state.id))
	return s.state.host.Shutdown(s.state.handle)
}

// SessionDelegate is CreateDelegate for the session's handle.
func SessionDelegate[T any](s *Session, assembly, typeName, method string) (*Delegate[T], error) {
	return CreateDelegate[T](s.state.host, s.state.handle, assembly, typeName, method)
}
