package input

import (
	"escbridge-go/services/hal"
	"escbridge-go/types"
)

// Thresholds are hold times in control-loop ticks.
type Thresholds struct {
	ShortMin uint32 // a short press lasts longer than this
	ShortMax uint32 // ... and less than this
	LongMin  uint32 // a long press lasts longer than this
}

type buttonState uint8

const (
	stInit buttonState = iota
	stUp
	stDownEdge
	stDown
)

// Classifier is the button state machine. Call Step once per tick.
//
// The button is active low. Init waits for the first steady release, so a
// button already held at power-up produces no events until it is let go. Up
// and Down are steady states; DownEdge is the single tick after a press is
// confirmed. Release events carry the hold classification.
type Classifier struct {
	pin  hal.InputPin
	th   Thresholds
	st   buttonState
	held uint32
}

func NewClassifier(pin hal.InputPin, th Thresholds) *Classifier {
	return &Classifier{pin: pin, th: th}
}

// Step samples the pin and returns this tick's event.
func (c *Classifier) Step() types.ButtonEvent {
	lvl := TripleSample(c.pin)
	pressed := lvl == types.LevelLow
	released := lvl == types.LevelHigh

	switch c.st {
	case stInit:
		if released {
			c.st = stUp
			return types.ButtonReleased
		}
		return types.ButtonInitializing

	case stUp:
		if pressed {
			c.st = stDownEdge
			c.held = 0
			return types.ButtonPressedEdge
		}
		return types.ButtonReleased

	case stDownEdge, stDown:
		if released {
			c.st = stUp
			return c.classify()
		}
		c.st = stDown
		if c.held < ^uint32(0) {
			c.held++
		}
		return types.ButtonPressed
	}
	return types.ButtonInitializing
}

func (c *Classifier) classify() types.ButtonEvent {
	switch {
	case c.held > c.th.ShortMin && c.held < c.th.ShortMax:
		return types.ButtonShortRelease
	case c.held > c.th.LongMin:
		return types.ButtonLongRelease
	default:
		return types.ButtonReleasedEdge
	}
}
