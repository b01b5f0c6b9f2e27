// Package supervisor runs the selected mode after boot.
//
// The Runner does what every mode needs on every tick (watchdog, line coding,
// power sense, the long-press exit) and hands the rest to a Mode.
package supervisor

import (
	"time"

	"escbridge-go/services/bridge"
	"escbridge-go/services/config"
	"escbridge-go/services/hal"
	"escbridge-go/types"
)

// Mode is the per-mode behaviour. Enter is called once before the first Step.
type Mode interface {
	Name() string
	Enter(env *Env)
	Step(env *Env)
}

// Button is the subset of the classifier the runner needs.
type Button interface {
	Step() types.ButtonEvent
}

// PowerInput is the debounced power sense.
type PowerInput interface {
	Sample() bool
}

// Env is what a Mode may touch. Powered is refreshed before each Step.
type Env struct {
	Ticks   config.Ticks
	Powered bool

	Serial *bridge.SerialAdapter
	Debug  *bridge.Debug
	Pulse  hal.PulseInput
	Servo  hal.Servo
}

// Runner drives one Mode forever (until a long press).
type Runner struct {
	mode  Mode
	env   *Env
	btn   Button
	power PowerInput
	feed  func()
	reset func()

	entered bool
	down    bool
}

// NewRunner wires a runner. reset is the deliberate-reboot path; on the
// device it does not return.
func NewRunner(mode Mode, env *Env, btn Button, power PowerInput, feed, reset func()) *Runner {
	if feed == nil {
		feed = func() {}
	}
	return &Runner{mode: mode, env: env, btn: btn, power: power, feed: feed, reset: reset}
}

// Step runs one tick. It returns false once the reset path has been taken.
func (r *Runner) Step() bool {
	if r.down {
		return false
	}
	r.feed()
	if r.env.Serial != nil {
		r.env.Serial.Reconcile()
	}
	r.env.Powered = r.power.Sample()

	if !r.entered {
		r.mode.Enter(r.env)
		r.entered = true
	}
	r.mode.Step(r.env)

	if r.btn.Step() == types.ButtonLongRelease {
		r.env.Debug.Print("Going down " + r.mode.Name() + "\n")
		r.down = true
		if r.reset != nil {
			r.reset()
		}
		return false
	}
	return true
}

// Run steps with one tick of sleep between iterations until Step reports the
// reset path.
func (r *Runner) Run(sleep func(time.Duration)) {
	if sleep == nil {
		sleep = time.Sleep
	}
	for r.Step() {
		sleep(r.env.Ticks.Tick)
	}
}

// ForMode returns the Mode implementation for m.
func ForMode(m types.OpMode) Mode {
	switch m {
	case types.ModeReceiverTest:
		return &ReceiverTest{}
	case types.ModeServoTest:
		return &ServoTest{}
	default:
		return Passthrough{}
	}
}
