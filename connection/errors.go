// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import (
	"errors"
	"fmt"
)

// Sentinel errors for the connection-error taxonomy (spec §7). Test with
// errors.Is; wrapped variants below carry payload and support errors.As,
// and Unwrap to these sentinels so a caller that only cares about the
// category can match with errors.Is without knowing the concrete type.
var (
	ErrInvalidURL                   = errors.New("invalid core url")
	ErrConnectionFailed             = errors.New("connection failed")
	ErrConnectionClosed             = errors.New("connection closed")
	ErrTimeout                      = errors.New("timed out")
	ErrAwaitingAuthorization        = errors.New("awaiting authorization in roon")
	ErrMaxReconnectAttemptsExceeded = errors.New("max reconnect attempts exceeded")
	ErrAlreadyConnecting            = errors.New("connect already in progress")
	ErrNotConnected                 = errors.New("not connected")
	ErrRegistrationFailed           = errors.New("registration failed")
)

// ClosedError reports that the connection was torn down, carrying the close
// code and an optional human-readable reason. It unwraps to
// ErrConnectionClosed.
type ClosedError struct {
	Code   int
	Reason string
}

func (e *ClosedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("connection closed (code %d)", e.Code)
	}
	return fmt.Sprintf("connection closed (code %d): %s", e.Code, e.Reason)
}

func (e *ClosedError) Unwrap() error { return ErrConnectionClosed }

// RegistrationError reports that the registry:1/register handshake failed:
// the response name was anything other than Registered, or the body could
// not be parsed. It unwraps to ErrRegistrationFailed.
type RegistrationError struct {
	Message string
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("registration failed: %s", e.Message)
}

func (e *RegistrationError) Unwrap() error { return ErrRegistrationFailed }
