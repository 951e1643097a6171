package session

// State is the phase of a quiz session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateActive
	StateSubmitting
	StateCompleted
	StateExpired
	StateFailed
)

var stateNames = map[State]string{
	StateIdle:       "idle",
	StateLoading:    "loading",
	StateActive:     "active",
	StateSubmitting: "submitting",
	StateCompleted:  "completed",
	StateExpired:    "expired",
	StateFailed:     "failed",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// Terminal reports whether no further transitions happen without a new Load.
func (s State) Terminal() bool {
	return s == StateCompleted
}
