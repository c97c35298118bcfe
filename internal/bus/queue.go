package bus

import (
	"context"
	"sync/atomic"

	"main/internal/model"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/pkg/sys"
)

var (
	ErrQueueFull   = errors.New("message queue full")
	ErrQueueClosed = errors.New("message queue closed")
)

// Queue is a bounded, non-blocking message queue. Publishing never blocks the
// producer: when the queue is full the message is dropped and ErrQueueFull is
// returned, so the network receive loop stays fresh under overload.
type Queue struct {
	ch     chan model.Msg
	closed uint32
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan model.Msg, capacity)}
}

// TryPublish enqueues a message without blocking.
func (q *Queue) TryPublish(m model.Msg) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return ErrQueueClosed
	}
	select {
	case q.ch <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops the queue from accepting new messages.
func (q *Queue) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}

// Run consumes messages until the context is done or the queue is closed.
func (q *Queue) Run(ctx context.Context, handler func(model.Msg)) {
	for {
		select {
		case <-sys.Shutdown():
			return
		case <-ctx.Done():
			return
		case m, ok := <-q.ch:
			if !ok {
				return
			}
			handler(m)
		}
	}
}
