// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"sync"
)

// Fake is an in-memory Transport for deterministic tests. Sent frames are
// observable on Sent; frames queued with Push are delivered in order by
// Receive. Closing is idempotent and unblocks any outstanding Receive.
type Fake struct {
	mu     sync.Mutex
	inbox  chan Message
	closed chan struct{}
	once   sync.Once

	Sent     chan []byte
	SendHook func(data []byte) error // optional, called synchronously from Send
}

// NewFake returns a ready-to-use Fake transport.
func NewFake() *Fake {
	return &Fake{
		inbox:  make(chan Message, 64),
		closed: make(chan struct{}),
		Sent:   make(chan []byte, 64),
	}
}

// Push enqueues a message for a future Receive call.
func (f *Fake) Push(msg Message) {
	select {
	case f.inbox <- msg:
	case <-f.closed:
	}
}

// PushBinary is a convenience wrapper around Push for Binary messages.
func (f *Fake) PushBinary(data []byte) {
	f.Push(Message{Kind: Binary, Data: data})
}

func (f *Fake) Send(ctx context.Context, data []byte) error {
	f.mu.Lock()
	hook := f.SendHook
	f.mu.Unlock()
	if hook != nil {
		if err := hook(data); err != nil {
			return err
		}
	}
	select {
	case f.Sent <- data:
	default:
	}
	return nil
}

func (f *Fake) Receive(ctx context.Context) (Message, error) {
	select {
	case msg := <-f.inbox:
		return msg, nil
	case <-f.closed:
		return Message{}, ErrClosed
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}

func (f *Fake) SendPing(ctx context.Context) error { return nil }

func (f *Fake) Close(code int, reason string) error {
	f.once.Do(func() { close(f.closed) })
	return nil
}

var _ Transport = (*Fake)(nil)
