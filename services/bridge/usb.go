// bridge/usb.go
package bridge

import (
	"runtime"

	"escbridge-go/services/hal"
	"escbridge-go/types"
)

// USBPump is the body of context B: it moves bytes between the CDC endpoint
// and the Buffer and publishes the host's line coding.
type USBPump struct {
	buf *Buffer
	ep  hal.USBEndpoint
	led hal.OutputPin // lit while a host has the port open; may be nil

	last    types.LineCoding
	haveCod bool

	rx      [64]byte
	pending []byte // read from USB, not yet queued
}

func NewUSBPump(buf *Buffer, ep hal.USBEndpoint, led hal.OutputPin) *USBPump {
	return &USBPump{buf: buf, ep: ep, led: led}
}

// Run loops forever. Yielding each pass lets the control loop run when both
// contexts share one core.
func (u *USBPump) Run() {
	for {
		u.Step()
		runtime.Gosched()
	}
}

// Step performs one polling pass.
func (u *USBPump) Step() {
	if c, ok := u.ep.LineCoding(); ok && (!u.haveCod || c != u.last) {
		u.buf.SetUSBCoding(c)
		u.last, u.haveCod = c, true
	}

	connected := u.ep.Connected()
	if u.led != nil {
		u.led.Set(connected)
	}

	// Host -> device. Bytes already read are held until the queue has room
	// for them; the endpoint is not read again until they are all queued, so
	// a full queue backs up into USB instead of losing data.
	if len(u.pending) == 0 && u.ep.Buffered() > 0 {
		n := u.ep.Read(u.rx[:])
		u.pending = u.rx[:n]
	}
	if len(u.pending) > 0 {
		if n, ok := u.buf.EnqueueOutbound(u.pending); ok {
			u.pending = u.pending[n:]
		}
	}

	// Device -> host. Without a host the bytes wait in the queue.
	if connected {
		if n := u.buf.DrainInboundTo(u.ep.Write); n > 0 {
			u.ep.Flush()
		}
	}
}
