// bridge/debug.go
package bridge

import "escbridge-go/x/conv"

// Debug is the text channel the test modes use in place of a console: lines
// go to the host on the inbound queue and keystrokes come back on the
// outbound queue. Context A only.
type Debug struct {
	buf  *Buffer
	line [64]byte
}

func NewDebug(buf *Buffer) *Debug { return &Debug{buf: buf} }

// Print queues s for the host. It waits for the queue lock; the holder only
// ever runs a copy loop.
func (d *Debug) Print(s string) { d.buf.Inbound.PushString(s) }

// PrintUint queues prefix + decimal(v) + suffix.
func (d *Debug) PrintUint(prefix string, v uint64, suffix string) {
	d.buf.Inbound.Push(conv.Line(d.line[:0], prefix, v, suffix))
}

// ReadCommands takes pending host keystrokes without waiting.
func (d *Debug) ReadCommands(dst []byte) int {
	n, _ := d.buf.Outbound.TryPop(dst)
	return n
}
