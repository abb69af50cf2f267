package chat

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned by Poll once a channel has no more input and
// never will, e.g. the console reached EOF.
var ErrClosed = errors.New("chat channel closed")

// Event is one inbound chat line.
type Event struct {
	Message    string    `json:"message"`
	Player     string    `json:"player,omitempty"`
	ReceivedAt time.Time `json:"-"`
}

// Channel is the game-world chat as seen by the dispatch loop.
type Channel interface {
	// Poll returns all events received since the previous call, in
	// arrival order. It does not block waiting for new events.
	Poll(ctx context.Context) ([]Event, error)

	// Post sends a message to everyone in the chat.
	Post(ctx context.Context, message string) error
}

// queue is the FIFO buffer shared by the channel implementations.
type queue struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// push appends an event. It reports false when the queue is full.
func (q *queue) push(e Event) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.limit > 0 && len(q.events) >= q.limit {
		return false
	}
	q.events = append(q.events, e)
	return true
}

// drain removes and returns all queued events.
func (q *queue) drain() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()

	events := q.events
	q.events = nil
	return events
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
