// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package discovery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestEncodeDecodeQueryReply_RoundTrips(t *testing.T) {
	props := map[string]string{
		"_tid":         "7",
		"_corid":       "core-1",
		"_displayname": "Studio",
		"http_port":    "9100",
	}

	// Build a reply frame by hand (encodeQuery only builds queries, but the
	// property section is identical for both frame kinds).
	reply := append([]byte(soodMagic), soodVersion, soodReplyOp)
	reply = appendProperties(reply, props)

	got, err := decodeReply(reply)
	if err != nil {
		t.Fatalf("decodeReply: %v", err)
	}
	if diff := cmp.Diff(props, got); diff != "" {
		t.Fatalf("decodeReply mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeReply_NullValueOmitted(t *testing.T) {
	buf := append([]byte(soodMagic), soodVersion, soodReplyOp)
	buf = append(buf, byte(len("_replyaddr")))
	buf = append(buf, "_replyaddr"...)
	buf = append(buf, 0xFF, 0xFF) // null length marker

	got, err := decodeReply(buf)
	if err != nil {
		t.Fatalf("decodeReply: %v", err)
	}
	if _, ok := got["_replyaddr"]; ok {
		t.Fatalf("got[_replyaddr] present, want omitted for null value")
	}
}

func TestDecodeReply_EmptyValueKept(t *testing.T) {
	buf := append([]byte(soodMagic), soodVersion, soodReplyOp)
	buf = append(buf, byte(len("note")))
	buf = append(buf, "note"...)
	buf = append(buf, 0x00, 0x00) // empty length

	got, err := decodeReply(buf)
	if err != nil {
		t.Fatalf("decodeReply: %v", err)
	}
	if v, ok := got["note"]; !ok || v != "" {
		t.Fatalf("got[note] = %q, %v, want \"\", true", v, ok)
	}
}

func TestDecodeReply_RejectsBadMagicOrOp(t *testing.T) {
	if _, err := decodeReply([]byte("XXXX\x02X")); err == nil {
		t.Fatal("want error for bad magic")
	}
	buf := append([]byte(soodMagic), soodVersion, soodQueryOp) // query, not reply
	if _, err := decodeReply(buf); err == nil {
		t.Fatal("want error for query-shaped frame passed to decodeReply")
	}
}

func TestDecodeReply_RejectsTruncatedFrame(t *testing.T) {
	buf := append([]byte(soodMagic), soodVersion, soodReplyOp)
	buf = append(buf, 5, 'a', 'b') // name length 5 but only 2 bytes follow
	if _, err := decodeReply(buf); err == nil {
		t.Fatal("want error for truncated property")
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	got := Config{}.withDefaults()
	if got.Timeout != 60*time.Second || got.QueryInterval != 2*time.Second {
		t.Fatalf("got = %+v", got)
	}

	custom := Config{Timeout: 5 * time.Second, QueryInterval: time.Second, StopOnFirst: true}
	if got := custom.withDefaults(); got != custom {
		t.Fatalf("withDefaults changed an already-set Config: %+v", got)
	}
}

func TestCore_Key(t *testing.T) {
	a := Core{Host: "10.0.0.5", Port: 9100}
	b := Core{Host: "10.0.0.5", Port: 9100, DisplayName: "different metadata"}
	if a.key() != b.key() {
		t.Fatalf("key() should only depend on host/port: %q vs %q", a.key(), b.key())
	}
	c := Core{Host: "10.0.0.6", Port: 9100}
	if a.key() == c.key() {
		t.Fatal("different hosts produced the same key")
	}
}

// TestDiscover_NoResponderReturnsErrNoCoresFoundWithinTimeout exercises the
// full Discover loop (socket setup, query pacing, context teardown) against
// an environment with no responding Core. It only asserts the call returns
// promptly with ErrNoCoresFound, since this sandbox may not permit
// multicast group membership or broadcast delivery.
func TestDiscover_NoResponderReturnsErrNoCoresFoundWithinTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	start := time.Now()
	cores, err := Discover(ctx, Config{Timeout: 300 * time.Millisecond, QueryInterval: 50 * time.Millisecond})
	if !errors.Is(err, ErrNoCoresFound) {
		t.Fatalf("Discover err = %v, want ErrNoCoresFound", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Discover took %v, want bounded by its own Timeout", elapsed)
	}
	if cores != nil {
		t.Fatalf("cores = %v, want nil alongside ErrNoCoresFound", cores)
	}
}
