// Package indicator drives the status LEDs: a tick-driven blinker for the
// mode choice and blocking patterns for boot, confirmation and reset.
package indicator

import (
	"time"

	"escbridge-go/services/hal"
)

// Blinker toggles one LED every Period ticks. Period 0 holds it off.
type Blinker struct {
	led    hal.OutputPin
	period uint32
	count  uint32
	on     bool
}

func NewBlinker(led hal.OutputPin) *Blinker { return &Blinker{led: led} }

// SetPeriod changes the half-period. A new period restarts the phase.
func (b *Blinker) SetPeriod(ticks uint32) {
	if ticks == b.period {
		return
	}
	b.period = ticks
	b.count = 0
}

func (b *Blinker) Period() uint32 { return b.period }

// Step advances one tick.
func (b *Blinker) Step() {
	if b.period == 0 {
		b.set(false)
		return
	}
	b.count++
	if b.count >= b.period {
		b.count = 0
		b.set(!b.on)
	}
}

// Hold stops blinking and sets the LED steadily.
func (b *Blinker) Hold(on bool) {
	b.period = 0
	b.count = 0
	b.set(on)
}

func (b *Blinker) set(on bool) {
	if on == b.on {
		return
	}
	b.on = on
	b.led.Set(on)
}

// Phase lights LEDs whose bit is set in Mask (bit i is LEDs[i]) for Dur.
type Phase struct {
	Mask uint8
	Dur  time.Duration
}

// Player runs blocking patterns. Feed is called at least every FeedEvery
// while a pattern plays; Sleep defaults to time.Sleep.
type Player struct {
	LEDs      []hal.OutputPin
	Sleep     func(time.Duration)
	Feed      func()
	FeedEvery time.Duration
}

const defaultFeedEvery = 50 * time.Millisecond

// Play runs phases repeat times and leaves every LED off.
func (p *Player) Play(phases []Phase, repeat int) {
	for r := 0; r < repeat; r++ {
		for _, ph := range phases {
			for i, led := range p.LEDs {
				led.Set(ph.Mask&(1<<i) != 0)
			}
			p.wait(ph.Dur)
		}
	}
	for _, led := range p.LEDs {
		led.Set(false)
	}
}

func (p *Player) wait(d time.Duration) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	step := p.FeedEvery
	if step <= 0 {
		step = defaultFeedEvery
	}
	for d > 0 {
		if p.Feed != nil {
			p.Feed()
		}
		s := min(d, step)
		sleep(s)
		d -= s
	}
}

// Blink is the common one-LED off/on pattern.
func Blink(off, on time.Duration) []Phase {
	return []Phase{{Mask: 0, Dur: off}, {Mask: 1, Dur: on}}
}

// Alternate lights LEDs[0] then LEDs[1], each for d.
func Alternate(d time.Duration) []Phase {
	return []Phase{{Mask: 1, Dur: d}, {Mask: 2, Dur: d}}
}
