//go:build rp2040

package hal

import (
	"device/rp"
	"machine"
	"runtime/volatile"
	"sync/atomic"
	"time"
	"unsafe"

	"escbridge-go/errcode"
	"escbridge-go/services/config"
	"escbridge-go/types"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers/servo"
)

// Open claims and configures every resource named in cfg.
func Open(cfg config.Config) (*Board, error) {
	p := cfg.Pins

	button := rp2Input(p.Button, machine.PinInputPullup)
	power := rp2Input(p.ESCPower, machine.PinInputPulldown)

	ser, err := openSerial(cfg)
	if err != nil {
		return nil, err
	}

	return &Board{
		Button:     button,
		Power:      power,
		LEDBlue:    rp2Output(p.LEDBlue),
		LEDRed:     rp2Output(p.LEDRed),
		LEDOnboard: rp2Output(p.LEDOnboard),
		Serial:     ser,
		USB:        &rp2USB{},
		Watchdog:   rp2Watchdog{},
		Pulse:      &rp2Pulse{pin: machine.Pin(p.ReceiverCh1)},
		Servo:      &rp2Servo{pin: machine.Pin(p.ServoCh1)},
	}, nil
}

// -----------------------------------------------------------------------------
// GPIO
// -----------------------------------------------------------------------------

type rp2GPIO struct{ p machine.Pin }

func rp2Input(n int, mode machine.PinMode) *rp2GPIO {
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: mode})
	return &rp2GPIO{p: p}
}

func rp2Output(n int) *rp2GPIO {
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return &rp2GPIO{p: p}
}

func (g *rp2GPIO) Get() bool      { return g.p.Get() }
func (g *rp2GPIO) Set(level bool) { g.p.Set(level) }

// -----------------------------------------------------------------------------
// Hardware serial (uartx)
// -----------------------------------------------------------------------------

type rp2SerialPort struct{ u *uartx.UART }

func openSerial(cfg config.Config) (*rp2SerialPort, error) {
	var hw *uartx.UART
	switch cfg.Serial.Bus {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "hal.open_serial", Msg: cfg.Serial.Bus}
	}
	tx := machine.Pin(cfg.Pins.UARTTX)
	rx := machine.Pin(cfg.Pins.UARTRX)
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: types.DefaultBitRate,
		TX:       tx,
		RX:       rx,
		RTS:      machine.NoPin,
		CTS:      machine.NoPin,
	}); err != nil {
		return nil, errcode.Wrap(errcode.HardwareFailed, "hal.open_serial", err)
	}
	if cfg.Serial.Invert {
		invertPad(tx, rx)
	}
	if cfg.Serial.RXPullUp {
		pullUpPad(rx)
	}
	return &rp2SerialPort{u: hw}, nil
}

func (p *rp2SerialPort) TryRead(b []byte) int  { return p.u.TryRead(b) }
func (p *rp2SerialPort) TryWrite(b []byte) int { return p.u.TryWrite(b) }

func (p *rp2SerialPort) SetBaudRate(br uint32) error {
	if br == 0 {
		return errcode.InvalidCoding
	}
	p.u.SetBaudRate(br)
	return nil
}

func (p *rp2SerialPort) SetFormat(dataBits, stopBits uint8, parity types.Parity) error {
	if !ValidFormat(dataBits, stopBits, parity) {
		return errcode.InvalidCoding
	}
	var par uartx.UARTParity
	switch parity {
	case types.ParityEven:
		par = uartx.ParityEven
	case types.ParityOdd:
		par = uartx.ParityOdd
	default:
		par = uartx.ParityNone
	}
	return p.u.SetFormat(dataBits, stopBits, par)
}

// Pad overrides. The machine package does not expose INOVER/OUTOVER or a pull
// on a pin that is muxed to a peripheral, so the registers are set directly.
const (
	ioBank0Base   = 0x40014000
	padsBank0Base = 0x4001c000

	ctrlOutOverInvert = 1 << 8
	ctrlOutOverMask   = 3 << 8
	ctrlInOverInvert  = 1 << 16
	ctrlInOverMask    = 3 << 16

	padPUE = 1 << 3
	padPDE = 1 << 2
)

func gpioCtrl(p machine.Pin) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(ioBank0Base + 8*uint32(p) + 4)))
}

func gpioPad(p machine.Pin) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(uintptr(padsBank0Base + 4 + 4*uint32(p))))
}

func invertPad(tx, rx machine.Pin) {
	c := gpioCtrl(tx)
	c.Set(c.Get()&^ctrlOutOverMask | ctrlOutOverInvert)
	c = gpioCtrl(rx)
	c.Set(c.Get()&^ctrlInOverMask | ctrlInOverInvert)
}

func pullUpPad(p machine.Pin) {
	r := gpioPad(p)
	r.Set(r.Get()&^padPDE | padPUE)
}

// -----------------------------------------------------------------------------
// USB CDC
// -----------------------------------------------------------------------------

type dtrer interface{ DTR() bool }

type rp2USB struct{}

func (u *rp2USB) Connected() bool {
	if d, ok := machine.Serial.(dtrer); ok {
		return d.DTR()
	}
	return true
}

// TODO: report the host line coding once the TinyGo CDC stack exposes the
// SET_LINE_CODING payload; until then the serial side keeps its default.
func (u *rp2USB) LineCoding() (types.LineCoding, bool) { return types.LineCoding{}, false }

func (u *rp2USB) Buffered() int { return machine.Serial.Buffered() }

func (u *rp2USB) Read(p []byte) int {
	n := 0
	for n < len(p) && machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		p[n] = b
		n++
	}
	return n
}

func (u *rp2USB) Write(p []byte) int {
	n, _ := machine.Serial.Write(p)
	return n
}

func (u *rp2USB) Flush() {}

// -----------------------------------------------------------------------------
// Watchdog
// -----------------------------------------------------------------------------

type rp2Watchdog struct{}

func (rp2Watchdog) Configure(timeout time.Duration) error {
	return machine.Watchdog.Configure(machine.WatchdogConfig{
		TimeoutMillis: uint32(timeout / time.Millisecond),
	})
}

func (rp2Watchdog) Start() error { return machine.Watchdog.Start() }
func (rp2Watchdog) Update()      { machine.Watchdog.Update() }

func (rp2Watchdog) CausedReboot() bool {
	return rp.WATCHDOG.REASON.Get()&rp.WATCHDOG_REASON_TIMER != 0
}

// -----------------------------------------------------------------------------
// RC pulse capture (edge interrupts timed against the 1 MHz system timer)
// -----------------------------------------------------------------------------

type rp2Pulse struct {
	pin   machine.Pin
	rise  uint32
	width atomic.Uint32
}

func nowMicros() uint32 { return rp.TIMER.TIMERAWL.Get() }

func (r *rp2Pulse) Init() error {
	r.pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	err := r.pin.SetInterrupt(machine.PinRising|machine.PinFalling, func(p machine.Pin) {
		t := nowMicros()
		if p.Get() {
			r.rise = t
			return
		}
		r.width.Store(t - r.rise)
	})
	if err != nil {
		return errcode.Wrap(errcode.HardwareFailed, "hal.pulse_init", err)
	}
	return nil
}

func (r *rp2Pulse) Reset()             { r.width.Store(0) }
func (r *rp2Pulse) PulseWidth() uint32 { return r.width.Load() }

// -----------------------------------------------------------------------------
// Servo (tinygo drivers on a PWM slice)
// -----------------------------------------------------------------------------

type rp2Servo struct {
	pin machine.Pin
	s   servo.Servo
	ok  bool
}

func pwmGroupBySlice(slice uint8) servo.PWM {
	switch slice {
	case 0:
		return machine.PWM0
	case 1:
		return machine.PWM1
	case 2:
		return machine.PWM2
	case 3:
		return machine.PWM3
	case 4:
		return machine.PWM4
	case 5:
		return machine.PWM5
	case 6:
		return machine.PWM6
	default:
		return machine.PWM7
	}
}

func (r *rp2Servo) Init() error {
	slice, err := machine.PWMPeripheral(r.pin)
	if err != nil {
		return errcode.Wrap(errcode.Unsupported, "hal.servo_init", err)
	}
	s, err := servo.New(pwmGroupBySlice(slice), r.pin)
	if err != nil {
		return errcode.Wrap(errcode.HardwareFailed, "hal.servo_init", err)
	}
	s.SetMicroseconds(0)
	r.s, r.ok = s, true
	return nil
}

func (r *rp2Servo) Start(angle uint8) { r.SetAngle(angle) }

func (r *rp2Servo) SetAngle(angle uint8) {
	if !r.ok {
		return
	}
	_ = r.s.SetAngle(int(angle))
}

// Stop drops the pulse train; the line idles low.
func (r *rp2Servo) Stop() {
	if r.ok {
		r.s.SetMicroseconds(0)
	}
}
