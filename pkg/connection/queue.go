package connection

import (
	"sync"

	"github.com/seam-protocol/seam-go/pkg/peer"
)

// inboundItem is one queued payload. The payload slice is owned by the
// queue until dequeued.
type inboundItem struct {
	sender  peer.Address
	channel uint8
	payload []byte
}

// inboundQueue bridges the substrate's push-delivery goroutine to the
// consumer's pull-based Receive. It is a FIFO guarded by a mutex with
// a channel-notify wakeup: safe for one producer (delivery goroutine)
// and one consumer (receive loop) without external locking.
//
// The queue is unbounded: a stalled consumer accumulates memory. This
// mirrors the substrate's fire-and-forget model, which has no
// backpressure path to the sender.
type inboundQueue struct {
	mu     sync.Mutex
	items  []inboundItem
	notify chan struct{}
}

func newInboundQueue() *inboundQueue {
	return &inboundQueue{notify: make(chan struct{}, 1)}
}

// enqueue appends an item and wakes a waiting consumer.
func (q *inboundQueue) enqueue(item inboundItem) {
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// tryDequeue pops the oldest item, if any.
func (q *inboundQueue) tryDequeue() (inboundItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return inboundItem{}, false
	}

	item := q.items[0]
	q.items[0] = inboundItem{} // release the payload reference
	q.items = q.items[1:]
	if len(q.items) == 0 {
		q.items = nil // let the backing array go
	}
	return item, true
}

// wake returns the notify channel. One token is queued per enqueue
// burst; consumers re-check the queue after each wakeup.
func (q *inboundQueue) wake() <-chan struct{} {
	return q.notify
}

// clear discards all queued items and returns how many were dropped.
func (q *inboundQueue) clear() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	dropped := len(q.items)
	q.items = nil
	return dropped
}

// len returns the current queue depth.
func (q *inboundQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
