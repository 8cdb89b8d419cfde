package driver

// State is the lifecycle position of the subscription driver.
type State int32

const (
	Disconnected State = iota
	Connecting
	Subscribed
	// Shutdown is terminal.
	Shutdown
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Subscribed:
		return "subscribed"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
