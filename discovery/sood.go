// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package discovery

import (
	"encoding/binary"
	"errors"
)

const (
	soodMagic    = "SOOD"
	soodVersion  = 0x02
	soodQueryOp  = 'Q'
	soodReplyOp  = 'X'
	soodNullLen  = 0xFFFF
	soodHeaderSz = len(soodMagic) + 2
)

var errMalformedSOODFrame = errors.New("discovery: malformed SOOD frame")

// ErrNoCoresFound is returned by Discover when no Core answered before
// cfg.Timeout elapsed.
var ErrNoCoresFound = errors.New("discovery: no cores found")

// encodeQuery builds a "SOOD" 0x02 'Q' frame carrying props.
func encodeQuery(props map[string]string) []byte {
	buf := make([]byte, 0, soodHeaderSz+32)
	buf = append(buf, soodMagic...)
	buf = append(buf, soodVersion, soodQueryOp)
	return appendProperties(buf, props)
}

func appendProperties(buf []byte, props map[string]string) []byte {
	for name, value := range props {
		buf = append(buf, byte(len(name)))
		buf = append(buf, name...)
		var lenBuf [2]byte
		binary.BigEndian.PutUint16(lenBuf[:], uint16(len(value)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, value...)
	}
	return buf
}

// decodeReply parses a "SOOD" 0x02 'X' frame into its property map. A
// 0xFFFF value length marks a null value (the property is omitted from the
// result, per the wire format's documented null encoding); 0x0000 marks a
// present-but-empty string.
func decodeReply(data []byte) (map[string]string, error) {
	if len(data) < soodHeaderSz || string(data[:4]) != soodMagic ||
		data[4] != soodVersion || data[5] != soodReplyOp {
		return nil, errMalformedSOODFrame
	}

	props := map[string]string{}
	i := soodHeaderSz
	for i < len(data) {
		nameLen := int(data[i])
		i++
		if i+nameLen > len(data) {
			return nil, errMalformedSOODFrame
		}
		name := string(data[i : i+nameLen])
		i += nameLen

		if i+2 > len(data) {
			return nil, errMalformedSOODFrame
		}
		valLen := binary.BigEndian.Uint16(data[i : i+2])
		i += 2
		if valLen == soodNullLen {
			continue
		}
		if i+int(valLen) > len(data) {
			return nil, errMalformedSOODFrame
		}
		props[name] = string(data[i : i+int(valLen)])
		i += int(valLen)
	}
	return props, nil
}
