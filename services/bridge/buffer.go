// bridge/buffer.go
package bridge

import (
	"sync"

	"escbridge-go/types"
	"escbridge-go/x/shmring"
)

// Buffer is the only state shared between the control loop (context A) and
// the USB loop (context B): one queue per direction, the receive staging ring
// and the pair of line codings.
//
//	Outbound: USB -> serial (context B produces, context A consumes)
//	Inbound:  serial -> USB (context A produces, context B consumes)
type Buffer struct {
	Outbound *ByteQueue
	Inbound  *ByteQueue

	// Filled from the receive interrupt, emptied by context A.
	stage *shmring.Ring

	cfgMu  sync.Mutex
	usb    types.LineCoding // last host request
	serial types.LineCoding // last applied to hardware
}

// NewBuffer allocates both queues with the same capacity. stageSize must be a
// power of two.
func NewBuffer(capacity, stageSize int) *Buffer {
	def := types.DefaultLineCoding()
	return &Buffer{
		Outbound: NewByteQueue(capacity),
		Inbound:  NewByteQueue(capacity),
		stage:    shmring.New(stageSize),
		usb:      def,
		serial:   def,
	}
}

// EnqueueOutbound queues bytes received from USB. Returns how many were
// accepted; 0 with ok=false means the lock was busy and nothing changed.
func (b *Buffer) EnqueueOutbound(p []byte) (int, bool) { return b.Outbound.TryPush(p) }

// DrainOutboundTo offers queued USB bytes to the serial writer w.
func (b *Buffer) DrainOutboundTo(w func([]byte) int) int {
	n, _ := b.Outbound.TryDrainTo(w)
	return n
}

// EnqueueInbound queues bytes bound for USB.
func (b *Buffer) EnqueueInbound(p []byte) (int, bool) { return b.Inbound.TryPush(p) }

// DrainInboundTo offers queued bytes to the USB writer w.
func (b *Buffer) DrainInboundTo(w func([]byte) int) int {
	n, _ := b.Inbound.TryDrainTo(w)
	return n
}

// ReceiveISR stages bytes from interrupt context. It takes no lock.
func (b *Buffer) ReceiveISR(p []byte) { b.stage.TryWriteFrom(p) }

// StageInbound moves staged receive bytes into the inbound queue. Bytes that
// do not fit stay staged for the next call; a busy lock moves nothing.
func (b *Buffer) StageInbound() int {
	p1, p2 := b.stage.Peek()
	if len(p1) == 0 {
		return 0
	}
	n, ok := b.Inbound.TryPush(p1)
	if ok && n == len(p1) && len(p2) > 0 {
		var k int
		k, _ = b.Inbound.TryPush(p2)
		n += k
	}
	b.stage.Discard(n)
	return n
}

// SetUSBCoding records the coding the host asked for (context B).
func (b *Buffer) SetUSBCoding(c types.LineCoding) {
	b.cfgMu.Lock()
	b.usb = c
	b.cfgMu.Unlock()
}

// Codings returns (usb, serial).
func (b *Buffer) Codings() (usb, serial types.LineCoding) {
	b.cfgMu.Lock()
	defer b.cfgMu.Unlock()
	return b.usb, b.serial
}
