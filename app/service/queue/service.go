package queue

import (
	"context"
	"errors"
	"sync"
)

const defaultBufferSize = 16

var ErrClosed = errors.New("queue is closed")

// Queue is an ordered inbox of user turns for a single connection. Turns are
// delivered in the order they were added.
type Queue struct {
	queue chan Message

	mu     sync.RWMutex
	closed bool
}

type Message struct {
	Seq  int
	Text string
}

func New(bufferSize int) *Queue {
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	return &Queue{
		queue: make(chan Message, bufferSize),
	}
}

// Add blocks while the queue is full.
func (q *Queue) Add(ctx context.Context, msg Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrClosed
	}

	select {
	case q.queue <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue) Channel() <-chan Message {
	return q.queue
}

// Close stops accepting messages. Messages already queued can still be read.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.closed = true
	close(q.queue)
}
