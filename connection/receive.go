// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"context"
	"fmt"
	"time"

	"github.com/teancom/roonkit/codec"
	"github.com/teancom/roonkit/internal/roondebug"
	"github.com/teancom/roonkit/transport"
)

func (c *Conn) receiveLoop(ctx context.Context, tr transport.Transport) {
	defer close(c.recvDone)
	for {
		msg, err := tr.Receive(ctx)
		if err != nil {
			c.onTransportDown(&ClosedError{Code: 1006, Reason: err.Error()})
			return
		}

		c.touchWatchdog()
		if roondebug.Bool("frames") {
			c.opts.Logger.Debug("roonkit: inbound frame", "bytes", string(msg.Data))
		}

		frame, err := codec.Decode(msg.Data)
		if err != nil {
			// Codec errors per frame are dropped; a single garbled frame
			// does not close the connection unless the transport itself
			// also fails.
			c.opts.Logger.Warn("roonkit: dropping malformed frame", "err", err)
			continue
		}
		c.dispatch(frame)
	}
}

func (c *Conn) touchWatchdog() {
	c.lastFrameAt.Store(time.Now().UnixNano())
}

func (c *Conn) dispatch(frame *codec.Frame) {
	switch frame.Kind {
	case codec.FrameRequest:
		c.handleInbound(frame)
	case codec.FrameResponse:
		c.mu.Lock()
		pc, pendingOK := c.pending[frame.ID]
		if pendingOK {
			delete(c.pending, frame.ID)
		}
		var sub *subscription
		if !pendingOK {
			sub = c.subs[frame.ID]
		}
		c.mu.Unlock()

		switch {
		case pendingOK:
			pc.resultCh <- callResult{frame: frame}
		case sub != nil:
			sub.ch <- frame
			if frame.Verb == codec.VerbComplete {
				c.finishSub(frame.ID, nil)
			}
		default:
			// Response to an id we no longer track (e.g. a superseded or
			// already-finished subscription's trailing frame). Ignore.
		}
	}
}

// handleInbound serves the Core's requests to the client. The only
// required provided service is ping; anything else gets InvalidRequest.
func (c *Conn) handleInbound(frame *codec.Frame) {
	if frame.ServicePath() == servicePing+"/ping" {
		c.mu.Lock()
		counter := c.awaitingAuthCounter
		c.mu.Unlock()
		if counter != nil {
			counter.Add(1)
		}
		c.replyComplete(frame.ID, codec.NameSuccess, nil)
		return
	}
	c.replyComplete(frame.ID, "InvalidRequest", map[string]any{
		"error": fmt.Sprintf("unknown inbound request: %s", frame.ServicePath()),
	})
}

func (c *Conn) replyComplete(id int64, name string, body any) {
	data, err := codec.EncodeResponse(codec.VerbComplete, id, name, body)
	if err != nil {
		c.opts.Logger.Warn("roonkit: failed to encode inbound reply", "err", err)
		return
	}
	c.mu.Lock()
	tr := c.tr
	c.mu.Unlock()
	if tr == nil {
		return
	}
	go func() {
		if err := tr.Send(context.Background(), data); err != nil {
			c.opts.Logger.Warn("roonkit: failed to send inbound reply", "err", err)
		}
	}()
}

// onTransportDown runs once the receive loop observes the transport has
// failed or been closed. It fails all pending requests, finishes all
// subscription channels (the liveness rule: an unfinished subscription
// hangs its consumer forever), and — if the connection had reached
// Connected — kicks off the reconnect cycle.
func (c *Conn) onTransportDown(closeErr *ClosedError) {
	c.stopWatchdog()
	c.failAllPending(closeErr)
	c.finishAllSubs()

	c.mu.Lock()
	wasConnected := c.state.Phase == Connected
	c.tr = nil
	c.mu.Unlock()

	if wasConnected && !c.disconnecting.Load() {
		c.startReconnect()
	}
}
