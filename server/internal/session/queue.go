package session

import (
	"errors"
	"sync"
)

// ErrChannelClosed is returned by sends on a session whose connection is gone.
var ErrChannelClosed = errors.New("session channel closed")

// DefaultQueueSize is the number of frames buffered between a session and
// its transport writer.
const DefaultQueueSize = 256

// Queue is the outbound frame queue shared by a session and the transport
// writer that drains it. Frames come out in the order Push accepted them.
type Queue struct {
	mu     sync.Mutex
	frames chan []byte
	done   chan struct{}
	once   sync.Once
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		frames: make(chan []byte, size),
		done:   make(chan struct{}),
	}
}

// Push hands one encoded frame to the writer. It blocks while the queue is
// full and fails with ErrChannelClosed once the queue is closed.
func (q *Queue) Push(frame []byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	select {
	case <-q.done:
		return ErrChannelClosed
	default:
	}
	select {
	case q.frames <- frame:
		return nil
	case <-q.done:
		return ErrChannelClosed
	}
}

// Frames is read by the transport writer.
func (q *Queue) Frames() <-chan []byte { return q.frames }

// Done is closed when the queue is closed.
func (q *Queue) Done() <-chan struct{} { return q.done }

// Drain returns the frames still buffered, without blocking. Writers call it
// after Done fires so the last frames pushed before close still go out.
func (q *Queue) Drain() [][]byte {
	var out [][]byte
	for {
		select {
		case f := <-q.frames:
			out = append(out, f)
		default:
			return out
		}
	}
}

// Close is idempotent. The frames channel itself is never closed so that a
// racing Push cannot panic.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.done) })
}

func (q *Queue) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}
