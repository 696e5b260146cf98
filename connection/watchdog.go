// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"context"
	"time"
)

// startWatchdog arms the keepalive watchdog. It checks, more often than the
// deadline itself, whether the elapsed time since the last inbound frame
// (per touchWatchdog, which stores time.Now().UnixNano(): a wall-clock value
// with the monotonic reading stripped, so the elapsed time keeps counting
// while the machine is suspended) has exceeded the deadline; if so it forces
// the transport closed,
// which the receive loop observes as an error and which triggers
// reconnection. It is cancelled on explicit Disconnect.
func (c *Conn) startWatchdog() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	c.mu.Lock()
	c.watchdogCancel = cancel
	c.watchdogDone = done
	deadline := c.opts.KeepaliveDeadline
	c.mu.Unlock()

	go c.runWatchdog(ctx, done, deadline)
}

func (c *Conn) runWatchdog(ctx context.Context, done chan struct{}, deadline time.Duration) {
	defer close(done)

	checkEvery := deadline / 3
	if checkEvery <= 0 {
		checkEvery = deadline
	}
	ticker := time.NewTicker(checkEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			last := time.Unix(0, c.lastFrameAt.Load())
			if time.Since(last) < deadline {
				continue
			}
			c.opts.Logger.Warn("roonkit: keepalive deadline exceeded, forcing reconnect")
			c.mu.Lock()
			tr := c.tr
			c.mu.Unlock()
			if tr != nil {
				tr.Close(1001, "keepalive timeout")
			}
			return
		}
	}
}

func (c *Conn) stopWatchdog() {
	c.mu.Lock()
	cancel := c.watchdogCancel
	c.watchdogCancel = nil
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
