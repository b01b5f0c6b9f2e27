// Package watchdog owns the hardware watchdog: the boot-time report of a
// watchdog reboot, arming, feeding and the deliberate reset path.
package watchdog

import (
	"time"

	"escbridge-go/errcode"
	"escbridge-go/services/hal"
	"escbridge-go/services/indicator"
)

const (
	bootBlinkOff    = 50 * time.Millisecond
	bootBlinkOn     = 450 * time.Millisecond
	bootBlinkRepeat = 3

	resetBlink  = 50 * time.Millisecond
	resetRepeat = 23
)

// Guardian wraps the watchdog with the indicator patterns that accompany it.
type Guardian struct {
	wd      hal.Watchdog
	timeout time.Duration
	onboard hal.OutputPin

	boot  indicator.Player // onboard LED, watchdog not yet armed
	reset indicator.Player // blue LED, fed while it plays

	// Halt is entered after the reset pattern. It must not feed the
	// watchdog. The default never returns.
	Halt func()
}

// New builds a guardian. sleep may be nil (time.Sleep).
func New(wd hal.Watchdog, timeout time.Duration, onboard, blue hal.OutputPin, sleep func(time.Duration)) *Guardian {
	g := &Guardian{wd: wd, timeout: timeout, onboard: onboard, Halt: spin}
	g.boot = indicator.Player{LEDs: []hal.OutputPin{onboard}, Sleep: sleep}
	g.reset = indicator.Player{LEDs: []hal.OutputPin{blue}, Sleep: sleep, Feed: wd.Update}
	return g
}

// BootCheck plays the watchdog-reboot pattern when the last reset came from
// the watchdog, and reports whether it did. Either way the onboard LED is
// left on as the power indicator.
func (g *Guardian) BootCheck() bool {
	rebooted := g.wd.CausedReboot()
	if rebooted {
		g.boot.Play(indicator.Blink(bootBlinkOff, bootBlinkOn), bootBlinkRepeat)
	}
	g.onboard.Set(true)
	return rebooted
}

// Arm configures and starts the watchdog. Call once.
func (g *Guardian) Arm() error {
	if err := g.wd.Configure(g.timeout); err != nil {
		return errcode.Wrap(errcode.HardwareFailed, "watchdog.arm", err)
	}
	if err := g.wd.Start(); err != nil {
		return errcode.Wrap(errcode.HardwareFailed, "watchdog.arm", err)
	}
	return nil
}

// Feed restarts the countdown.
func (g *Guardian) Feed() { g.wd.Update() }

// Reset plays the going-down pattern and then stops feeding so the watchdog
// reboots the device.
func (g *Guardian) Reset() {
	g.reset.Play(indicator.Blink(resetBlink, resetBlink), resetRepeat)
	if g.Halt != nil {
		g.Halt()
	}
}

func spin() {
	for {
		time.Sleep(time.Second)
	}
}
