package batch

// State is a step in the lifecycle of an import run.
type State int

const (
	StateIdle State = iota
	StateStaging
	StateListing
	StateEmpty
	StateLaunching
	StateDispatch
	StateWaiting
	StateAdvance
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStaging:
		return "staging"
	case StateListing:
		return "listing"
	case StateEmpty:
		return "empty"
	case StateLaunching:
		return "launching"
	case StateDispatch:
		return "dispatch"
	case StateWaiting:
		return "waiting"
	case StateAdvance:
		return "advance"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateEmpty || s == StateCompleted || s == StateFailed
}
