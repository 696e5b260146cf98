// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// WebSocketDialer dials a Roon Core's MOO/1 endpoint at URL exactly as
// given; it fills in no default host, port or path. Cores serve the
// endpoint at ws://<host>:<port>/api, normally on port 9100.
type WebSocketDialer struct {
	// URL is the WebSocket server URL, e.g. "ws://192.168.1.50:9100/api".
	URL string

	// Dialer is the underlying WebSocket dialer. If nil, a default dialer
	// with a 10s handshake timeout is used.
	Dialer *websocket.Dialer

	// Header carries additional HTTP headers for the handshake.
	Header http.Header
}

// Dial establishes a WebSocket connection to the configured URL and returns
// it wrapped as a Transport.
func (d *WebSocketDialer) Dial(ctx context.Context) (Transport, error) {
	dialer := d.Dialer
	if dialer == nil {
		dialer = &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	}

	conn, resp, err := dialer.DialContext(ctx, d.URL, d.Header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("roonkit: websocket dial failed: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("roonkit: websocket dial failed: %w", err)
	}
	return &wsTransport{conn: conn}, nil
}

// wsTransport implements Transport over a *websocket.Conn. Writes are
// serialized by mu; gorilla/websocket requires at most one concurrent
// reader and one concurrent writer, which this satisfies (the engine's
// receive loop is the sole reader).
type wsTransport struct {
	conn *websocket.Conn

	mu        sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func (t *wsTransport) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		t.conn.SetWriteDeadline(deadline)
		defer t.conn.SetWriteDeadline(time.Time{})
	}
	if err := t.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("roonkit: websocket write error: %w", err)
	}
	return nil
}

func (t *wsTransport) Receive(ctx context.Context) (Message, error) {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			t.conn.Close()
		case <-done:
		}
	}()

	kind, data, err := t.conn.ReadMessage()
	if err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return Message{}, ErrClosed
		}
		return Message{}, fmt.Errorf("roonkit: websocket read error: %w", err)
	}

	switch kind {
	case websocket.BinaryMessage:
		return Message{Kind: Binary, Data: data}, nil
	case websocket.TextMessage:
		return Message{Kind: Text, Data: data}, nil
	default:
		return Message{}, fmt.Errorf("roonkit: unexpected websocket message type %d", kind)
	}
}

func (t *wsTransport) SendPing(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func (t *wsTransport) Close(code int, reason string) error {
	t.closeOnce.Do(func() {
		msg := websocket.FormatCloseMessage(code, reason)
		t.mu.Lock()
		t.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(2*time.Second))
		t.mu.Unlock()
		t.closeErr = t.conn.Close()
	})
	return t.closeErr
}

// ErrClosed is returned by Fake.Receive once the Fake has been closed, and
// by the WebSocket transport's Receive when the peer closes with a normal or
// going-away close code. A WebSocket transport closed locally makes an
// outstanding Receive fail with a wrapped read error instead.
var ErrClosed = errors.New("roonkit: transport closed")
