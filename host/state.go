package host

// State is the lifecycle position of a Host.
//
//	Unloaded -> Loaded -> Initialized -> ShuttingDown -> Shutdown
//	                          ^                              |
//	                          +------------------------------+
type State int32

const (
	StateUnloaded State = iota
	StateLoaded
	StateInitialized
	StateShuttingDown
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoaded:
		return "loaded"
	case StateInitialized:
		return "initialized"
	case StateShuttingDown:
		return "shutting_down"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
