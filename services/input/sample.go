// Package input turns raw GPIO reads into debounced levels and button events.
package input

import (
	"escbridge-go/services/hal"
	"escbridge-go/types"
)

// TripleSample reads p three times back to back. Only a unanimous result
// counts; anything else is LevelUnknown.
func TripleSample(p hal.InputPin) types.Level {
	a, b, c := p.Get(), p.Get(), p.Get()
	switch {
	case a && b && c:
		return types.LevelHigh
	case !a && !b && !c:
		return types.LevelLow
	default:
		return types.LevelUnknown
	}
}

// PowerSense tracks the active-high "device powered" input.
type PowerSense struct {
	pin hal.InputPin
	on  bool
}

func NewPowerSense(pin hal.InputPin) *PowerSense { return &PowerSense{pin: pin} }

// Sample updates and returns the stable state. A non-unanimous read keeps the
// previous value.
func (s *PowerSense) Sample() bool {
	switch TripleSample(s.pin) {
	case types.LevelHigh:
		s.on = true
	case types.LevelLow:
		s.on = false
	}
	return s.on
}
