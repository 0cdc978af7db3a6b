package engine

import (
	"sync"
	"time"
)

// recvResult tells the worker why recv returned.
type recvResult int

const (
	recvCommand recvResult = iota // a command is ready
	recvIdle                      // the wait timed out
	recvClosed                    // the channel was closed
)

// actionChannel is an unbounded FIFO carrying commands from any number of
// callers to the single worker. Sends never block.
type actionChannel struct {
	mu     sync.Mutex
	items  []Command
	err    error         // set once closed; returned by every later send
	notify chan struct{} // capacity 1, poked on every send
	done   chan struct{}
}

func newActionChannel() *actionChannel {
	return &actionChannel{
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// send appends cmd. It fails only once the channel has been closed.
func (c *actionChannel) send(cmd Command) error {
	c.mu.Lock()
	if c.err != nil {
		err := c.err
		c.mu.Unlock()
		return err
	}
	c.items = append(c.items, cmd)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
	return nil
}

// recv waits up to timeout for the next command.
func (c *actionChannel) recv(timeout time.Duration) (Command, recvResult) {
	if cmd, res, ok := c.pop(); ok {
		return cmd, res
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.notify:
	case <-c.done:
	case <-timer.C:
		return nil, recvIdle
	}

	if cmd, res, ok := c.pop(); ok {
		return cmd, res
	}
	// Stale notification from a command already consumed.
	return nil, recvIdle
}

func (c *actionChannel) pop() (Command, recvResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return nil, recvClosed, true
	}
	if len(c.items) == 0 {
		return nil, recvIdle, false
	}
	cmd := c.items[0]
	c.items[0] = nil
	c.items = c.items[1:]
	return cmd, recvCommand, true
}

// close rejects further sends with err and wakes the receiver. Pending
// commands are dropped. Only the first call has an effect.
func (c *actionChannel) close(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return
	}
	c.err = err
	c.items = nil
	close(c.done)
}

// closed returns the close error, or nil while the channel is open.
func (c *actionChannel) closed() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
