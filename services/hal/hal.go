// Package hal is the hardware boundary of the firmware.
//
// Everything above this package talks to pins, the hardware serial port, the
// USB CDC endpoint, the watchdog and the RC pulse service through the small
// interfaces below. The rp2040 provider binds them to the MCU; the host build
// binds them to in-memory fakes used by tests.
package hal

import (
	"time"

	"escbridge-go/types"
)

// InputPin is a digital input sampled by the control loop.
type InputPin interface {
	Get() bool
}

// OutputPin is a digital output (indicator LEDs).
type OutputPin interface {
	Set(level bool)
	Get() bool
}

// SerialPort is the hardware serial peripheral. Reads and writes never block.
type SerialPort interface {
	TryRead(p []byte) int
	TryWrite(p []byte) int
	SetBaudRate(br uint32) error
	SetFormat(dataBits, stopBits uint8, parity types.Parity) error
}

// ReceiveNotifier is implemented by ports that push received bytes from
// interrupt context instead of being polled. fn must not block.
type ReceiveNotifier interface {
	SetReceiveHandler(fn func(p []byte))
}

// USBEndpoint is the USB CDC device side. Read and Write never block.
type USBEndpoint interface {
	Connected() bool
	// LineCoding reports the coding last requested by the host.
	// ok is false when the stack does not expose it.
	LineCoding() (c types.LineCoding, ok bool)
	Buffered() int
	Read(p []byte) int
	Write(p []byte) int
	Flush()
}

// Watchdog is the hardware reset timer.
type Watchdog interface {
	Configure(timeout time.Duration) error
	Start() error
	Update()
	// CausedReboot reports whether the last reset was a watchdog expiry.
	CausedReboot() bool
}

// PulseInput measures RC pulse widths on channel 1.
type PulseInput interface {
	Init() error
	// Reset clears the accumulated width so stale pulses are not reported.
	Reset()
	// PulseWidth returns the last measured high time in microseconds, 0 if
	// no complete pulse was seen since Reset.
	PulseWidth() uint32
}

// Servo drives the RC servo on channel 1. Angles are degrees 0..180.
type Servo interface {
	Init() error
	Start(angle uint8)
	SetAngle(angle uint8)
	Stop()
}

// Board is the full set of resources the firmware uses.
type Board struct {
	Button     InputPin // raw level, active low
	Power      InputPin // raw level, active high
	LEDBlue    OutputPin
	LEDRed     OutputPin
	LEDOnboard OutputPin

	Serial   SerialPort
	USB      USBEndpoint
	Watchdog Watchdog
	Pulse    PulseInput
	Servo    Servo
}

// ValidFormat reports whether a frame format can be programmed into the
// RP2040 UART. The host fake enforces the same limits.
func ValidFormat(dataBits, stopBits uint8, parity types.Parity) bool {
	if dataBits < 5 || dataBits > 8 {
		return false
	}
	if stopBits != 1 && stopBits != 2 {
		return false
	}
	switch parity {
	case types.ParityNone, types.ParityOdd, types.ParityEven:
		return true
	}
	return false
}
