// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"context"
	"time"
)

// startReconnect is invoked once, from onTransportDown, when the transport
// is lost from a previously-Connected state. It drives: wait next delay,
// transition to Reconnecting{attempt}, then retry Connect. A successful
// Connect resets the reconnector and returns; exhaustion transitions to
// Failed{MaxReconnectAttemptsExceeded}.
func (c *Conn) startReconnect() {
	ctx, cancel := context.WithCancel(context.Background())
	c.mu.Lock()
	c.reconnectCancel = cancel
	c.mu.Unlock()
	go c.reconnectLoop(ctx)
}

func (c *Conn) reconnectLoop(ctx context.Context) {
	for {
		delay, ok := c.reconnector.NextDelay()
		if !ok {
			c.setState(State{Phase: Failed, Err: ErrMaxReconnectAttemptsExceeded})
			return
		}
		c.setState(State{Phase: Reconnecting, Attempt: c.reconnector.Attempt()})

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		if err := c.Connect(ctx); err == nil {
			return
		} else {
			c.opts.Logger.Warn("roonkit: reconnect attempt failed", "attempt", c.reconnector.Attempt(), "err", err)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Conn) cancelReconnect() {
	c.mu.Lock()
	cancel := c.reconnectCancel
	c.reconnectCancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
