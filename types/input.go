package types

// ------------------------
// Digital input readings
// ------------------------

// Level is the result of three immediate samples of one input.
type Level uint8

const (
	LevelUnknown Level = iota // samples disagreed
	LevelHigh                 // all three read 1
	LevelLow                  // all three read 0
)

func (l Level) String() string {
	switch l {
	case LevelHigh:
		return "high"
	case LevelLow:
		return "low"
	default:
		return "unknown"
	}
}

// ButtonEvent is produced once per classifier invocation.
type ButtonEvent uint8

const (
	ButtonInitializing  ButtonEvent = iota // no confirmed release seen yet
	ButtonReleased                         // steady released
	ButtonPressedEdge                      // transition to pressed
	ButtonPressed                          // steady pressed
	ButtonReleasedEdge                     // plain release (hold outside both windows)
	ButtonShortRelease                     // release after a short hold
	ButtonLongRelease                      // release after a long hold
)

func (e ButtonEvent) String() string {
	switch e {
	case ButtonReleased:
		return "released"
	case ButtonPressedEdge:
		return "pressed_edge"
	case ButtonPressed:
		return "pressed"
	case ButtonReleasedEdge:
		return "released_edge"
	case ButtonShortRelease:
		return "short_release"
	case ButtonLongRelease:
		return "long_release"
	default:
		return "initializing"
	}
}

// IsRelease reports whether e ends a press (any of the three release tags).
func (e ButtonEvent) IsRelease() bool {
	return e == ButtonReleasedEdge || e == ButtonShortRelease || e == ButtonLongRelease
}
