// Package shmring is a lock-free single-producer, single-consumer byte ring.
//
// The producer may run in interrupt context: TryWriteFrom never blocks, never
// allocates and takes no lock. Indices are monotonic uint32 counters; the
// buffer size must be a power of two so wrap-around is a mask.
package shmring

import "sync/atomic"

// Ring is a single-producer, single-consumer byte ring.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index (monotonic)
	wr   atomic.Uint32 // producer index (monotonic)
}

// New allocates a ring. size must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || (size&(size-1)) != 0 {
		panic("shmring: size must be power of two >= 2")
	}
	return &Ring{
		buf:  make([]byte, size),
		mask: uint32(size - 1),
	}
}

func (r *Ring) size() uint32 { return uint32(len(r.buf)) }

// ---- Producer side ----

// TryWriteFrom copies as much of src as fits and returns the count.
// Bytes that do not fit are refused.
func (r *Ring) TryWriteFrom(src []byte) (n int) {
	if len(src) == 0 {
		return 0
	}
	rd := r.rd.Load() // acquire
	wr := r.wr.Load()
	space := int(r.size() - (wr - rd))
	if space <= 0 {
		return 0
	}
	n = len(src)
	if n > space {
		n = space
	}

	wrIdx := wr & r.mask
	first := int(r.size() - wrIdx)
	if first > n {
		first = n
	}
	copy(r.buf[wrIdx:wrIdx+uint32(first)], src[:first])
	if second := n - first; second > 0 {
		copy(r.buf[:second], src[first:n])
	}
	r.wr.Store(wr + uint32(n)) // release
	return n
}

// ---- Consumer side ----

// Peek returns the readable bytes as up to two spans without consuming them.
// Call Discard with the number of bytes actually used.
func (r *Ring) Peek() (p1, p2 []byte) {
	rd := r.rd.Load()
	wr := r.wr.Load()
	avail := wr - rd
	if avail == 0 {
		return nil, nil
	}
	rdIdx := rd & r.mask
	first := r.size() - rdIdx
	if first > avail {
		first = avail
	}
	p1 = r.buf[rdIdx : rdIdx+first]
	if rest := avail - first; rest > 0 {
		p2 = r.buf[:rest]
	}
	return p1, p2
}

// Discard releases n previously peeked bytes back to the producer.
func (r *Ring) Discard(n int) {
	if n <= 0 {
		return
	}
	rd := r.rd.Load()
	wr := r.wr.Load()
	if avail := int(wr - rd); n > avail {
		n = avail
	}
	r.rd.Store(rd + uint32(n))
}
