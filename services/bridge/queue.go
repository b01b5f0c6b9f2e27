// bridge/queue.go
package bridge

import "sync"

// ByteQueue is a bounded FIFO of bytes owned by one mutex.
//
// The Try* methods never wait: if the lock is held by the other context the
// call returns ok=false and the queue is left exactly as it was. Pushes are
// clipped to the free space; queued bytes are never overwritten or reordered.
type ByteQueue struct {
	mu  sync.Mutex
	buf []byte
	r   int // read index
	n   int // bytes queued
}

// NewByteQueue allocates a queue holding at most capacity bytes.
func NewByteQueue(capacity int) *ByteQueue {
	if capacity <= 0 {
		capacity = 1
	}
	return &ByteQueue{buf: make([]byte, capacity)}
}

func (q *ByteQueue) Cap() int { return len(q.buf) }

// Len reports the queued byte count (blocking).
func (q *ByteQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

// TryPush appends as much of p as fits.
func (q *ByteQueue) TryPush(p []byte) (n int, ok bool) {
	if !q.mu.TryLock() {
		return 0, false
	}
	n = push(q, p)
	q.mu.Unlock()
	return n, true
}

// Push is the blocking form of TryPush.
func (q *ByteQueue) Push(p []byte) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return push(q, p)
}

// PushString is Push without converting s to a slice.
func (q *ByteQueue) PushString(s string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return pushString(q, s)
}

// TryPop moves up to len(dst) bytes out of the queue.
func (q *ByteQueue) TryPop(dst []byte) (n int, ok bool) {
	if !q.mu.TryLock() {
		return 0, false
	}
	defer q.mu.Unlock()
	for n < len(dst) && q.n > 0 {
		c := q.contiguous()
		k := copy(dst[n:], q.buf[q.r:q.r+c])
		q.consume(k)
		n += k
	}
	return n, true
}

// TryDrainTo offers the queued bytes to w, in order, and removes what w
// accepts. It stops at the first short write.
func (q *ByteQueue) TryDrainTo(w func([]byte) int) (n int, ok bool) {
	if !q.mu.TryLock() {
		return 0, false
	}
	defer q.mu.Unlock()
	for q.n > 0 {
		c := q.contiguous()
		k := w(q.buf[q.r : q.r+c])
		if k <= 0 {
			break
		}
		if k > c {
			k = c
		}
		q.consume(k)
		n += k
		if k < c {
			break
		}
	}
	return n, true
}

// contiguous returns how many queued bytes sit before the wrap point.
func (q *ByteQueue) contiguous() int {
	c := len(q.buf) - q.r
	if c > q.n {
		c = q.n
	}
	return c
}

func (q *ByteQueue) consume(k int) {
	q.r += k
	if q.r == len(q.buf) {
		q.r = 0
	}
	q.n -= k
	if q.n == 0 {
		q.r = 0
	}
}

// free returns the writable space as up to two spans, in order.
// Caller holds q.mu.
func (q *ByteQueue) free() (a, b []byte) {
	w := q.r + q.n
	if w >= len(q.buf) {
		return q.buf[w-len(q.buf) : q.r], nil
	}
	return q.buf[w:], q.buf[:q.r]
}

func push(q *ByteQueue, p []byte) int {
	a, b := q.free()
	k := copy(a, p)
	k += copy(b, p[k:])
	q.n += k
	return k
}

func pushString(q *ByteQueue, s string) int {
	a, b := q.free()
	k := copy(a, s)
	k += copy(b, s[k:])
	q.n += k
	return k
}
