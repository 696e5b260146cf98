// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"log/slog"
	"time"

	"github.com/teancom/roonkit/reconnect"
	"github.com/teancom/roonkit/roonlog"
	"github.com/teancom/roonkit/tokenstore"
)

// Options configures a Conn. Zero-value fields fall back to the documented
// defaults, matching the teacher's options-struct convention.
type Options struct {
	Registration Registration

	// TokenStore persists the per-Core registration token. Defaults to an
	// ephemeral in-memory store if nil.
	TokenStore tokenstore.TokenStore

	// RequestTimeout bounds an ordinary Send call. Default 30s.
	RequestTimeout time.Duration
	// RegistrationTimeout bounds the register request specifically, since
	// the Core may block on user approval. Default 5m.
	RegistrationTimeout time.Duration
	// KeepaliveDeadline is the maximum silence the watchdog tolerates
	// before forcing a reconnect. Default 15s.
	KeepaliveDeadline time.Duration

	// Reconnect configures backoff pacing. Defaults to reconnect.DefaultConfig().
	Reconnect reconnect.Config

	// Logger receives structured diagnostics. Defaults to roonlog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.TokenStore == nil {
		o.TokenStore = tokenstore.NewMemoryStore()
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.RegistrationTimeout <= 0 {
		o.RegistrationTimeout = 5 * time.Minute
	}
	if o.KeepaliveDeadline <= 0 {
		o.KeepaliveDeadline = 15 * time.Second
	}
	if o.Logger == nil {
		o.Logger = roonlog.Default()
	}
	o.Registration.RequiredServices = requiredServices(o.Registration.RequiredServices)
	o.Registration.ProvidedServices = providedServices(o.Registration.ProvidedServices)
	return o
}
