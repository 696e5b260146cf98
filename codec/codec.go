// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package codec encodes and decodes MOO/1 frames: a text header followed by
// an optional JSON body, carried over a binary WebSocket message.
package codec

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	json "github.com/segmentio/encoding/json"
)

// Verb is the MOO/1 first-line verb.
type Verb string

const (
	VerbRequest  Verb = "REQUEST"
	VerbComplete Verb = "COMPLETE"
	VerbContinue Verb = "CONTINUE"
)

const (
	headerRequestID   = "Request-Id"
	headerContentType = "Content-Type"
	headerContentLen  = "Content-Length"
	contentTypeJSON   = "application/json"
	protocolToken     = "MOO/1"
)

// FrameKind distinguishes the two shapes a decoded frame can take.
type FrameKind int

const (
	FrameRequest FrameKind = iota
	FrameResponse
)

// Frame is the decoded form of a MOO/1 message. Exactly one of the Request-
// or Response-shaped field groups is meaningful, selected by Kind.
type Frame struct {
	Kind FrameKind

	// Request-shaped fields (Kind == FrameRequest).
	ID      int64
	Service string
	Method  string

	// Response-shaped fields (Kind == FrameResponse).
	Verb Verb
	Name string

	// Shared body fields.
	ContentType string
	Body        map[string]any // parsed, when ContentType == application/json
	RawBody     []byte         // raw bytes, when body present but not JSON
}

// Well-known response names. Anything else is an error name.
const (
	NameSuccess    = "Success"
	NameRegistered = "Registered"
	NameSubscribed = "Subscribed"
	NameChanged    = "Changed"
)

// IsSuccessName reports whether name is one of the well-known success names.
func IsSuccessName(name string) bool {
	switch name {
	case NameSuccess, NameRegistered, NameSubscribed, NameChanged:
		return true
	default:
		return false
	}
}

// EncodeRequest encodes a REQUEST frame addressed to service/method, with an
// optional JSON body.
func EncodeRequest(id int64, path string, body any) ([]byte, error) {
	return encode(fmt.Sprintf("%s %s %s", protocolToken, VerbRequest, path), id, body)
}

// EncodeResponse encodes a COMPLETE or CONTINUE frame. name is a well-known
// success name or an arbitrary error token.
func EncodeResponse(verb Verb, id int64, name string, body any) ([]byte, error) {
	return encode(fmt.Sprintf("%s %s %s", protocolToken, verb, name), id, body)
}

func encode(firstLine string, id int64, body any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(firstLine)
	buf.WriteByte('\n')
	fmt.Fprintf(&buf, "%s: %d\n", headerRequestID, id)

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, jsonErr(err)
		}
		fmt.Fprintf(&buf, "%s: %s\n", headerContentType, contentTypeJSON)
		fmt.Fprintf(&buf, "%s: %d\n", headerContentLen, len(data))
		buf.WriteByte('\n')
		buf.Write(data)
	} else {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// Decode parses a MOO/1 frame.
func Decode(data []byte) (*Frame, error) {
	if len(data) == 0 {
		return nil, formatError("empty input")
	}

	headerEnd, bodyStart := splitHeader(data)
	headerBlock := data[:headerEnd]
	lines := strings.Split(string(headerBlock), "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) == "" {
		return nil, formatError("missing MOO/1 first line")
	}

	frame, err := parseFirstLine(lines[0])
	if err != nil {
		return nil, err
	}

	var requestID *int64
	headers := map[string]string{}
	for _, line := range lines[1:] {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue // lines without a colon are silently skipped
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		headers[key] = value
		if strings.EqualFold(key, headerRequestID) {
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return nil, formatError("invalid Request-Id")
			}
			requestID = &n
		}
	}
	if requestID == nil {
		return nil, formatError("missing Request-Id")
	}
	frame.ID = *requestID

	contentType := headers[headerContentType]
	frame.ContentType = contentType

	var bodyLen int
	if v, ok := headers[headerContentLen]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, formatError("invalid Content-Length")
		}
		bodyLen = n
	}

	if bodyLen > 0 && bodyStart < len(data) {
		end := bodyStart + bodyLen
		if end > len(data) {
			end = len(data)
		}
		raw := data[bodyStart:end]
		if contentType == contentTypeJSON {
			var body map[string]any
			if err := json.Unmarshal(raw, &body); err != nil {
				return nil, jsonErr(err)
			}
			frame.Body = body
		} else {
			frame.RawBody = append([]byte(nil), raw...)
		}
	}

	return frame, nil
}

// splitHeader finds the blank-line boundary between the header block and the
// body, tolerating multiple blank lines before the body begins.
func splitHeader(data []byte) (headerEnd, bodyStart int) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return len(data), len(data)
	}
	headerEnd = idx
	bodyStart = idx + 2
	// Tolerate additional blank lines.
	for bodyStart < len(data) && data[bodyStart] == '\n' {
		bodyStart++
	}
	return headerEnd, bodyStart
}

func parseFirstLine(line string) (*Frame, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return nil, formatError("malformed first line")
	}
	proto, version, ok := strings.Cut(fields[0], "/")
	if !ok || proto != "MOO" {
		return nil, formatError("missing MOO/1 token")
	}
	if version != "1" {
		return nil, formatError("unsupported version")
	}

	switch Verb(fields[1]) {
	case VerbRequest:
		path := fields[2]
		service, method, ok := strings.Cut(path, "/")
		if !ok {
			return nil, formatError("malformed request path")
		}
		return &Frame{Kind: FrameRequest, Service: service, Method: method}, nil
	case VerbComplete, VerbContinue:
		return &Frame{Kind: FrameResponse, Verb: Verb(fields[1]), Name: fields[2]}, nil
	default:
		return nil, formatError("unknown verb")
	}
}

// ServicePath returns "<service>/<method>" for a REQUEST frame, matching the
// path originally passed to EncodeRequest.
func (f *Frame) ServicePath() string {
	return f.Service + "/" + f.Method
}
