// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import "fmt"

// Kind classifies what went wrong encoding or decoding a frame, so a
// caller can distinguish "malformed frame" from "malformed body" without
// string-matching Error().
type Kind string

const (
	// KindFormat covers a malformed first line, an unknown verb, an
	// unsupported protocol version, or a missing/non-integer Request-Id.
	KindFormat Kind = "format"
	// KindJSON covers a body that failed to marshal or unmarshal as JSON.
	KindJSON Kind = "json"
)

// CodecError reports a frame that failed to encode or decode, tagged by
// Kind and wrapping the underlying cause. The receive loop logs-and-
// continues on these without tearing down the connection.
type CodecError struct {
	Kind Kind
	Err  error
}

func (e *CodecError) Error() string {
	return fmt.Sprintf("moo/1 %s error: %v", e.Kind, e.Err)
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// formatError builds a KindFormat CodecError from a plain description.
func formatError(reason string) error {
	return &CodecError{Kind: KindFormat, Err: fmt.Errorf("%s", reason)}
}

// jsonErr builds a KindJSON CodecError wrapping a JSON marshal/unmarshal
// failure.
func jsonErr(err error) error {
	return &CodecError{Kind: KindJSON, Err: err}
}
