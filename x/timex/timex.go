// Package timex converts wall-clock durations into control-loop ticks.
package timex

import (
	"time"

	"escbridge-go/x/mathx"
)

// Ticks converts d to a whole number of control-loop ticks of length tick,
// rounding up so a threshold is never shorter than requested. A positive d
// always yields at least one tick; tick <= 0 is coerced to 1ns. The result
// saturates at the uint32 maximum.
func Ticks(d, tick time.Duration) uint32 {
	if d <= 0 {
		return 0
	}
	if tick <= 0 {
		tick = 1
	}
	n := mathx.CeilDiv(uint64(d), uint64(tick))
	return uint32(mathx.Min(n, uint64(^uint32(0))))
}

// Duration is the inverse of Ticks.
func Duration(n uint32, tick time.Duration) time.Duration {
	return time.Duration(n) * tick
}
