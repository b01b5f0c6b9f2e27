// bridge/serial.go
package bridge

import (
	"escbridge-go/services/hal"
	"escbridge-go/types"
)

// SerialAdapter owns the hardware serial port on behalf of context A.
type SerialAdapter struct {
	buf  *Buffer
	port hal.SerialPort

	polled  bool // port has no receive interrupt hook
	scratch [64]byte
}

// NewSerialAdapter binds port to buf. Ports that can push received bytes are
// hooked straight into the staging ring; others are polled by Pump.
func NewSerialAdapter(buf *Buffer, port hal.SerialPort) *SerialAdapter {
	a := &SerialAdapter{buf: buf, port: port, polled: true}
	if rn, ok := port.(hal.ReceiveNotifier); ok {
		rn.SetReceiveHandler(buf.ReceiveISR)
		a.polled = false
	}
	return a
}

// Reconcile brings the hardware in line with the host request. The bit rate
// and the frame format are compared separately and each is reprogrammed only
// when it differs, so an unchanged request costs no hardware access.
// It reports whether anything was reprogrammed.
func (a *SerialAdapter) Reconcile() bool {
	b := a.buf
	b.cfgMu.Lock()
	defer b.cfgMu.Unlock()

	want := b.usb.Normalized()
	changed := false

	if want.BitRate != 0 && want.BitRate != b.serial.BitRate {
		// Recorded even when the port rejects it so a bad request is not
		// retried every tick.
		_ = a.port.SetBaudRate(want.BitRate)
		b.serial.BitRate = want.BitRate
		changed = true
	}
	if !want.SameFormat(b.serial) {
		_ = a.port.SetFormat(want.DataBits, want.StopBits, want.Parity)
		b.serial.DataBits, b.serial.Parity, b.serial.StopBits = want.DataBits, want.Parity, want.StopBits
		changed = true
	}
	return changed
}

// Applied returns the coding last programmed into the port.
func (a *SerialAdapter) Applied() types.LineCoding {
	_, s := a.buf.Codings()
	return s
}

// Pump moves one round of traffic in both directions without blocking:
// received bytes into the inbound queue, queued USB bytes out of the port.
func (a *SerialAdapter) Pump() {
	if a.polled {
		for {
			n := a.port.TryRead(a.scratch[:])
			if n == 0 {
				break
			}
			a.buf.ReceiveISR(a.scratch[:n])
			if n < len(a.scratch) {
				break
			}
		}
	}
	a.buf.StageInbound()
	a.buf.DrainOutboundTo(a.port.TryWrite)
}
