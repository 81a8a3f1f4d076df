package handle

// State is the lifecycle position of an Opener.
type State int

const (
	StateUnopened State = iota
	StateHeld           // open succeeded, handle still owned by the Opener
	StateFailed         // open failed, nothing to transfer
	StateTaken          // ownership transferred to a caller
	StateClosed         // released without being transferred
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateHeld:
		return "held"
	case StateFailed:
		return "failed"
	case StateTaken:
		return "taken"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
