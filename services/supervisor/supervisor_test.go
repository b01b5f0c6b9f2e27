package supervisor

import (
	"runtime"
	"strings"
	"testing"
	"time"

	"escbridge-go/services/bridge"
	"escbridge-go/services/config"
	"escbridge-go/services/hal"
	"escbridge-go/services/input"
	"escbridge-go/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type rig struct {
	sb     *hal.SimBoard
	buf    *bridge.Buffer
	usb    *bridge.USBPump
	env    *Env
	runner *Runner
	resets int
}

func newRig(t *testing.T, m Mode) *rig {
	t.Helper()
	cfg := config.Default()
	tk := cfg.Timing.Ticks()
	sb := hal.NewSimBoard()
	sb.USB.Attach(true)
	buf := bridge.NewBuffer(cfg.BufferSize, cfg.RXStageSize)

	r := &rig{sb: sb, buf: buf, usb: bridge.NewUSBPump(buf, sb.USB, nil)}
	r.env = &Env{
		Ticks:  tk,
		Serial: bridge.NewSerialAdapter(buf, sb.Serial),
		Debug:  bridge.NewDebug(buf),
		Pulse:  sb.Pulse,
		Servo:  sb.Servo,
	}
	btn := input.NewClassifier(sb.Button, input.Thresholds{ShortMin: tk.ShortMin, ShortMax: tk.ShortMax, LongMin: tk.LongMin})
	r.runner = NewRunner(m, r.env, btn, input.NewPowerSense(sb.Power), sb.Watchdog.Update, func() { r.resets++ })
	return r
}

func (r *rig) step(t *testing.T, n uint32) {
	t.Helper()
	for i := uint32(0); i < n; i++ {
		require.True(t, r.runner.Step())
	}
}

// out returns everything the host has received since the last call.
func (r *rig) out() string {
	r.usb.Step()
	return string(r.sb.USB.HostRead())
}

func (r *rig) keys(keys string) {
	r.sb.USB.HostWrite([]byte(keys))
	r.usb.Step()
}

func TestRunner_FeedsAndReconcilesEveryTick(t *testing.T) {
	r := newRig(t, Passthrough{})
	c := types.DefaultLineCoding()
	c.BitRate = 9600
	r.sb.USB.Request(c)
	r.usb.Step()

	r.step(t, 10)
	assert.Equal(t, 10, r.sb.Watchdog.Feeds())
	assert.Equal(t, 1, r.sb.Serial.BaudCalls)
	assert.Equal(t, uint32(9600), r.sb.Serial.Coding.BitRate)
}

func TestPassthrough_PumpsSerial(t *testing.T) {
	r := newRig(t, ForMode(types.ModeESCPassthrough))
	r.keys("\x30\x31")
	r.step(t, 1)
	assert.Equal(t, "\x30\x31", string(r.sb.Serial.Written()))

	r.sb.Serial.Inject([]byte{0xaa, 0x55})
	r.step(t, 1)
	assert.Equal(t, "\xaa\x55", r.out())
}

// TestPassthrough_ConcurrentWithUSBPump runs the USB pump on its own
// goroutine, as on the device, while the runner drives the serial side.
// Run with -race.
func TestPassthrough_ConcurrentWithUSBPump(t *testing.T) {
	r := newRig(t, ForMode(types.ModeESCPassthrough))
	const total = 20000
	up := make([]byte, total)
	down := make([]byte, total)
	for i := range up {
		up[i] = byte(i * 7)
		down[i] = byte(i*3 + i>>8)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				r.usb.Step()
				runtime.Gosched()
			}
		}
	}()
	defer func() {
		close(stop)
		<-done
	}()

	var toWire, toHost []byte
	sentUp, sentDown := 0, 0
	deadline := time.Now().Add(20 * time.Second)
	for len(toWire) < total || len(toHost) < total {
		require.True(t, time.Now().Before(deadline), "stalled: wire=%d host=%d", len(toWire), len(toHost))

		if sentUp < total {
			k := min(97, total-sentUp)
			r.sb.USB.HostWrite(up[sentUp : sentUp+k])
			sentUp += k
		}
		// Keep what is in flight below the staging ring so nothing is refused.
		if sentDown < total && sentDown-len(toHost) < 1024 {
			k := min(61, total-sentDown)
			r.sb.Serial.Inject(down[sentDown : sentDown+k])
			sentDown += k
		}

		require.True(t, r.runner.Step())
		toWire = append(toWire, r.sb.Serial.Written()...)
		toHost = append(toHost, r.sb.USB.HostRead()...)
		runtime.Gosched()
	}

	assert.Equal(t, up, toWire)
	assert.Equal(t, down, toHost)
}

func TestRunner_LongPressTakesResetPath(t *testing.T) {
	r := newRig(t, &ReceiverTest{})
	tk := r.env.Ticks

	// The classifier only counts presses after a steady release.
	r.step(t, 1)
	r.sb.Button.Set(false)
	r.step(t, tk.LongMin+2)
	r.out()
	r.sb.Button.Set(true)

	assert.False(t, r.runner.Step())
	assert.Equal(t, 1, r.resets)
	assert.Equal(t, "Going down receiver test\n", r.out())
	assert.False(t, r.runner.Step(), "stays down")
	assert.Equal(t, 1, r.resets)
}

func TestReceiver_PowerCycleAndReadings(t *testing.T) {
	m := &ReceiverTest{}
	r := newRig(t, m)
	tk := r.env.Ticks

	r.step(t, 1)
	assert.Equal(t, RecvWaitPowerOn, m.State())
	assert.Equal(t, 1, r.sb.Pulse.Inits)

	r.step(t, tk.ReportPeriod)
	assert.Equal(t, "Switch power on\n", r.out())

	r.sb.Power.Set(true)
	r.step(t, 1)
	assert.Equal(t, RecvPowerUpDelay, m.State())
	r.step(t, tk.PowerUpDelay-1)
	assert.Equal(t, RecvPowerUpDelay, m.State())
	r.step(t, 1)
	assert.Equal(t, RecvActiveReading, m.State())
	assert.Equal(t, "Start reading pulses\n", r.out())
	assert.Equal(t, 1, r.sb.Pulse.Resets)

	r.step(t, tk.LivenessWait)
	assert.Equal(t, "Channel 1 disconnected\n", r.out())

	r.sb.Pulse.Signal(1500)
	r.step(t, tk.ReportPeriod-tk.LivenessWait)
	assert.Equal(t, 2, r.sb.Pulse.Resets)
	r.step(t, tk.LivenessWait)
	assert.Equal(t, "Pulse ch1= 1500\n", r.out())

	r.sb.Power.Set(false)
	r.step(t, 1)
	assert.Equal(t, RecvPowerLost, m.State())
	assert.Equal(t, "Power is off\n", r.out())

	r.sb.Power.Set(true)
	r.step(t, 1)
	assert.Equal(t, RecvPowerUpDelay, m.State())
	assert.Equal(t, "Power is on again\n", r.out())
	assert.Equal(t, 1, r.sb.Pulse.Inits, "input stays armed")
}

func TestReceiver_PowerGlitchDoesNotDrop(t *testing.T) {
	m := &ReceiverTest{}
	r := newRig(t, m)
	r.sb.Power.Set(true)
	r.step(t, 2+r.env.Ticks.PowerUpDelay)
	require.Equal(t, RecvActiveReading, m.State())

	r.sb.Power.Glitch(false, true, true)
	r.step(t, 1)
	assert.Equal(t, RecvActiveReading, m.State())
}

func TestServo_AsksForPowerOffFirst(t *testing.T) {
	m := &ServoTest{}
	r := newRig(t, m)
	tk := r.env.Ticks
	r.sb.Power.Set(true)

	r.step(t, 1)
	assert.Equal(t, ServoWaitPowerOff, m.State())
	r.step(t, tk.ReportPeriod)
	assert.Contains(t, r.out(), "Switch power off first\n")
	assert.Zero(t, r.sb.Servo.Inits)

	r.sb.Power.Set(false)
	r.step(t, 1)
	assert.Equal(t, ServoWaitPowerUp, m.State())
}

func TestServo_KeysWhileUnpoweredOnlyMoveTarget(t *testing.T) {
	m := &ServoTest{}
	r := newRig(t, m)

	r.step(t, 2)
	r.keys("+x")
	r.step(t, 1)
	assert.Equal(t, "Set ch1 = 91 deg\n", r.out())
	assert.Equal(t, 91, m.Target())
	assert.Empty(t, r.sb.Servo.Starts)
	assert.Empty(t, r.sb.Servo.Writes)

	r.keys("o+")
	r.step(t, 1)
	assert.Equal(t, "Set ch1 = 180 deg\nSet ch1 = 180 deg\n", r.out())
	r.keys("m-")
	r.step(t, 1)
	assert.Equal(t, "Set ch1 = 0 deg\nSet ch1 = 0 deg\n", r.out())
	r.keys("k")
	r.step(t, 1)
	assert.Equal(t, 90, m.Target())
}

func TestServo_BurstWhileUnpoweredClampsWithoutWriting(t *testing.T) {
	m := &ServoTest{}
	r := newRig(t, m)
	r.step(t, 2)

	r.keys("o" + strings.Repeat("+", 10))
	r.step(t, 1)
	got := r.out()
	assert.Equal(t, 11, strings.Count(got, "Set ch1 = 180 deg\n"), got)
	assert.Equal(t, 180, m.Target())

	r.keys("k" + strings.Repeat("+", 10))
	r.step(t, 1)
	got = r.out()
	assert.Equal(t, 11, strings.Count(got, "Set ch1 = "))
	assert.True(t, strings.HasSuffix(got, "Set ch1 = 100 deg\n"), got)
	assert.Equal(t, 100, m.Target())

	assert.Empty(t, r.sb.Servo.Writes)
	assert.Empty(t, r.sb.Servo.Starts)
	assert.Zero(t, r.sb.Servo.Inits)
}

// driving runs the servo test up to ServoDriving at the centre angle.
func driving(t *testing.T, r *rig, m *ServoTest) {
	t.Helper()
	r.step(t, 2)
	r.sb.Power.Set(true)
	r.step(t, 1+r.env.Ticks.PowerUpDelay)
	require.Equal(t, ServoDriving, m.State())
	r.out()
}

func TestServo_NetZeroBurstDoesNotWrite(t *testing.T) {
	m := &ServoTest{}
	r := newRig(t, m)
	tk := r.env.Ticks
	driving(t, r, m)

	r.keys("+-")
	r.step(t, tk.ReportPeriod)
	assert.Equal(t, 90, m.Target())
	assert.Empty(t, r.sb.Servo.Writes, "target is back where the actuator already is")
	got := r.out()
	assert.Contains(t, got, "Set ch1 = 91 deg\nSet ch1 = 90 deg\n")
	assert.NotContains(t, got, "Write ch1")

	r.keys("+")
	r.step(t, tk.ReportPeriod)
	assert.Equal(t, []uint8{91}, r.sb.Servo.Writes)
}

func TestServo_DrivingWritesOncePerWindow(t *testing.T) {
	m := &ServoTest{}
	r := newRig(t, m)
	tk := r.env.Ticks

	r.step(t, 2)
	require.Equal(t, ServoWaitPowerUp, m.State())

	r.sb.Power.Set(true)
	r.step(t, 1)
	assert.Equal(t, "Init PWM\n", r.out())
	assert.Equal(t, 1, r.sb.Servo.Inits)
	r.step(t, tk.PowerUpDelay)
	require.Equal(t, ServoDriving, m.State())
	assert.Equal(t, []uint8{90}, r.sb.Servo.Starts)
	assert.Equal(t, "Start ch1 = 90 deg\n", r.out())

	r.keys("+++")
	r.step(t, 1)
	r.keys("+-")
	r.step(t, tk.ReportPeriod-1)
	assert.Equal(t, []uint8{93}, r.sb.Servo.Writes)
	got := r.out()
	assert.Equal(t, 5, strings.Count(got, "Set ch1 = "))
	assert.Contains(t, got, "Write ch1 = 93 deg\n")

	r.step(t, tk.ReportPeriod)
	assert.Equal(t, []uint8{93}, r.sb.Servo.Writes, "no change, no write")

	r.sb.Power.Set(false)
	r.step(t, 1)
	assert.Equal(t, 1, r.sb.Servo.Stops)
	assert.Equal(t, ServoWaitPowerUp, m.State())
	assert.Contains(t, r.out(), "Power is off\n")

	r.keys("k")
	r.step(t, 1)
	assert.Equal(t, []uint8{93}, r.sb.Servo.Writes)

	r.sb.Power.Set(true)
	r.step(t, 1)
	assert.Contains(t, r.out(), "Restart without init PWM\n")
	r.step(t, tk.PowerUpDelay)
	assert.Equal(t, 1, r.sb.Servo.Inits)
	assert.Equal(t, []uint8{90, 90}, r.sb.Servo.Starts)
}
