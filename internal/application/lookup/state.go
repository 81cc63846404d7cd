package lookup

// State is the render state of a panel backed by a remote read.
type State int

const (
	// StateIdle means there is no key to look up; nothing is rendered.
	StateIdle State = iota
	// StateLoading means a read is in flight.
	StateLoading
	// StateLoaded means data arrived and is rendered.
	StateLoaded
	// StateEmpty means the read succeeded but carried no data; nothing is rendered.
	StateEmpty
	// StateFailed means the read failed; an error line is rendered.
	StateFailed
)

// String returns the lower-case state name used in markup and JSON.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateEmpty:
		return "empty"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
