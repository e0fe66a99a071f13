package motor

// Direction is the commanded direction of the motor.
type Direction int

const (
	Stopped Direction = iota
	Forward
	Backward
)

func (d Direction) String() string {
	switch d {
	case Stopped:
		return "stopped"
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	default:
		return "unknown"
	}
}
