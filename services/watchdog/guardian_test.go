package watchdog

import (
	"testing"
	"time"

	"escbridge-go/errcode"
	"escbridge-go/services/hal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rig struct {
	g       *Guardian
	wd      *hal.SimWatchdog
	onboard *hal.SimPin
	blue    *hal.SimPin
	slept   time.Duration
	halted  bool
}

func newRig() *rig {
	r := &rig{wd: &hal.SimWatchdog{}, onboard: hal.NewSimPin(false), blue: hal.NewSimPin(false)}
	r.g = New(r.wd, 500*time.Millisecond, r.onboard, r.blue, func(d time.Duration) { r.slept += d })
	r.g.Halt = func() { r.halted = true }
	return r
}

func TestGuardian_BootCheck(t *testing.T) {
	r := newRig()
	assert.False(t, r.g.BootCheck())
	assert.Zero(t, r.slept)
	assert.True(t, r.onboard.Get(), "power indicator")
	assert.Equal(t, 1, r.onboard.Changes())
}

func TestGuardian_BootCheckAfterWatchdogReboot(t *testing.T) {
	r := newRig()
	r.wd.Rebooted = true
	assert.True(t, r.g.BootCheck())
	assert.Equal(t, 1500*time.Millisecond, r.slept)
	assert.Equal(t, 7, r.onboard.Changes(), "three on/off cycles, then steady on")
	assert.True(t, r.onboard.Get())
}

func TestGuardian_ArmAndFeed(t *testing.T) {
	r := newRig()
	require.NoError(t, r.g.Arm())
	assert.True(t, r.wd.Started)
	assert.Equal(t, 500*time.Millisecond, r.wd.Timeout)

	r.g.Feed()
	r.g.Feed()
	assert.Equal(t, 2, r.wd.Feeds())
}

func TestGuardian_ArmRejectsZeroTimeout(t *testing.T) {
	wd := &hal.SimWatchdog{}
	g := New(wd, 0, hal.NewSimPin(false), hal.NewSimPin(false), func(time.Duration) {})
	err := g.Arm()
	require.Error(t, err)
	assert.Equal(t, errcode.HardwareFailed, errcode.Of(err))
	assert.False(t, wd.Started)
}

func TestGuardian_ResetBlinksFedThenHalts(t *testing.T) {
	r := newRig()
	r.g.Reset()

	assert.Equal(t, 23*100*time.Millisecond, r.slept)
	assert.Equal(t, 46, r.wd.Feeds(), "fed once per phase while blinking")
	assert.Equal(t, 46, r.blue.Changes())
	assert.True(t, r.halted)
}
