// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package connection

import "fmt"

// Phase tags the variant held by a State value.
type Phase int

const (
	Disconnected Phase = iota
	Connecting
	Registering
	AwaitingAuthorization
	Connected
	Reconnecting
	Failed
)

func (p Phase) String() string {
	switch p {
	case Disconnected:
		return "Disconnected"
	case Connecting:
		return "Connecting"
	case Registering:
		return "Registering"
	case AwaitingAuthorization:
		return "AwaitingAuthorization"
	case Connected:
		return "Connected"
	case Reconnecting:
		return "Reconnecting"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// State is the tagged ConnectionState variant from spec §3. Only the fields
// relevant to Phase are meaningful.
type State struct {
	Phase Phase

	// Connected
	CoreID   string
	CoreName string

	// Reconnecting
	Attempt int

	// Failed
	Err error
}

func (s State) String() string {
	switch s.Phase {
	case Connected:
		return fmt.Sprintf("Connected{coreId:%s, coreName:%s}", s.CoreID, s.CoreName)
	case Reconnecting:
		return fmt.Sprintf("Reconnecting{attempt:%d}", s.Attempt)
	case Failed:
		return fmt.Sprintf("Failed{%v}", s.Err)
	default:
		return s.Phase.String()
	}
}

// CanSend reports whether commands may be sent while in this state (spec
// §3 invariant: commands may only be sent in Connected).
func (s State) CanSend() bool {
	return s.Phase == Connected
}

// CanConnect reports whether connect() may be entered from this state (spec
// §3 invariant: only Disconnected, Failed, or Reconnecting may enter
// connect()).
func (s State) CanConnect() bool {
	switch s.Phase {
	case Disconnected, Failed, Reconnecting:
		return true
	default:
		return false
	}
}
