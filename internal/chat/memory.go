package chat

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process channel. Tests and embedders push lines with
// Send and read what the loop posted with Posted.
type Memory struct {
	inbox queue

	mu      sync.Mutex
	posted  []string
	pollErr error
}

var _ Channel = (*Memory)(nil)

// NewMemory returns an empty in-memory channel.
func NewMemory() *Memory {
	return &Memory{}
}

// Send queues chat lines as if players had typed them.
func (m *Memory) Send(messages ...string) {
	for _, msg := range messages {
		m.inbox.push(Event{Message: msg, ReceivedAt: time.Now()})
	}
}

// FailNextPoll makes the next Poll return err instead of events.
func (m *Memory) FailNextPoll(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pollErr = err
}

// Poll drains queued lines.
func (m *Memory) Poll(_ context.Context) ([]Event, error) {
	m.mu.Lock()
	err := m.pollErr
	m.pollErr = nil
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.inbox.drain(), nil
}

// Post records a message.
func (m *Memory) Post(_ context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posted = append(m.posted, message)
	return nil
}

// Posted returns a copy of every message posted so far.
func (m *Memory) Posted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.posted))
	copy(out, m.posted)
	return out
}

// Pending returns the number of lines not yet polled.
func (m *Memory) Pending() int {
	return m.inbox.len()
}
