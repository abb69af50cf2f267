package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Console reads chat lines from a reader (usually stdin) and posts to a
// writer (usually stdout). Handy for driving the loop without a game.
type Console struct {
	inbox queue
	done  atomic.Bool

	mu     sync.Mutex
	out    io.Writer
	prefix string
	err    error
}

var _ Channel = (*Console)(nil)

// NewConsole starts reading lines from in. Blank lines are skipped.
func NewConsole(in io.Reader, out io.Writer) *Console {
	c := &Console{out: out, prefix: "[mcp-k8s] "}
	go c.read(in)
	return c
}

func (c *Console) read(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		c.inbox.push(Event{Message: line, ReceivedAt: time.Now()})
	}

	c.mu.Lock()
	c.err = scanner.Err()
	c.mu.Unlock()
	c.done.Store(true)
}

// Poll drains lines read so far. Once the input is exhausted and every
// line has been returned, Poll reports ErrClosed.
func (c *Console) Poll(_ context.Context) ([]Event, error) {
	finished := c.done.Load()
	events := c.inbox.drain()
	if len(events) > 0 || !finished {
		return events, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrClosed, c.err)
	}
	return nil, ErrClosed
}

// Post writes one line.
func (c *Console) Post(_ context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := fmt.Fprintf(c.out, "%s%s\n", c.prefix, message); err != nil {
		return fmt.Errorf("failed to write chat message: %w", err)
	}
	return nil
}
