// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport abstracts the duplex binary connection the engine
// speaks MOO/1 frames over. The production implementation is a WebSocket;
// tests drive the engine against an in-memory fake.
package transport

import "context"

// MessageKind distinguishes the two wire-level message shapes a Transport
// can deliver. The Core sends Binary; Text is decoded as UTF-8 and treated
// identically by callers.
type MessageKind int

const (
	Binary MessageKind = iota
	Text
)

// Message is one inbound WebSocket message, not yet interpreted as a MOO/1
// frame.
type Message struct {
	Kind MessageKind
	Data []byte
}

// Transport is a duplex binary connection. A single sender and a single
// receiver may use a Transport concurrently; Close is always safe to call
// from either.
type Transport interface {
	// Send delivers one frame. Failure is surfaced to the caller.
	Send(ctx context.Context, data []byte) error

	// Receive blocks until one message is available, or returns an error
	// (including a cancellation-class error after Close).
	Receive(ctx context.Context) (Message, error)

	// SendPing requests a protocol-level ping. The Core drives its own
	// keepalive in practice, so implementations may treat this as a no-op.
	SendPing(ctx context.Context) error

	// Close is idempotent. Any outstanding Receive fails with a
	// cancellation-class error once Close returns.
	Close(code int, reason string) error
}
