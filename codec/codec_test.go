// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRoundTripRequest(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		path string
		body any
	}{
		{"no body", 1, "com.roonlabs.registry:1/info", nil},
		{"with body", 42, "com.roonlabs.transport:2/control", map[string]any{"zone_or_output_id": "z1", "control": "play"}},
		{"zero id", 0, "com.roonlabs.ping:1/ping", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeRequest(tt.id, tt.path, tt.body)
			if err != nil {
				t.Fatalf("EncodeRequest() error = %v", err)
			}
			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Kind != FrameRequest {
				t.Fatalf("Kind = %v, want FrameRequest", got.Kind)
			}
			if got.ID != tt.id {
				t.Errorf("ID = %d, want %d", got.ID, tt.id)
			}
			if got.ServicePath() != tt.path {
				t.Errorf("ServicePath() = %q, want %q", got.ServicePath(), tt.path)
			}
			if tt.body == nil {
				if got.Body != nil {
					t.Errorf("Body = %v, want nil", got.Body)
				}
				return
			}
			want, _ := tt.body.(map[string]any)
			if diff := cmp.Diff(want, got.Body); diff != "" {
				t.Errorf("Body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRoundTripResponse(t *testing.T) {
	tests := []struct {
		name string
		verb Verb
		id   int64
		rname string
		body any
	}{
		{"complete success", VerbComplete, 7, NameSuccess, nil},
		{"continue changed", VerbContinue, 7, NameChanged, map[string]any{"zones_removed": []any{"z1"}}},
		{"error", VerbComplete, 8, "InvalidRequest", map[string]any{"error": "no zone selected"}},
		{"negative id", VerbComplete, -1, NameSuccess, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := EncodeResponse(tt.verb, tt.id, tt.rname, tt.body)
			if err != nil {
				t.Fatalf("EncodeResponse() error = %v", err)
			}
			got, err := Decode(data)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got.Kind != FrameResponse {
				t.Fatalf("Kind = %v, want FrameResponse", got.Kind)
			}
			if got.Verb != tt.verb {
				t.Errorf("Verb = %v, want %v", got.Verb, tt.verb)
			}
			if got.ID != tt.id {
				t.Errorf("ID = %d, want %d", got.ID, tt.id)
			}
			if got.Name != tt.rname {
				t.Errorf("Name = %q, want %q", got.Name, tt.rname)
			}
			want, _ := tt.body.(map[string]any)
			if diff := cmp.Diff(want, got.Body); diff != "" {
				t.Errorf("Body mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeToleratesExtraWhitespaceAndBlankLines(t *testing.T) {
	raw := "MOO/1 COMPLETE Success\nRequest-Id:   12  \n\n\n\n"
	got, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.ID != 12 {
		t.Errorf("ID = %d, want 12", got.ID)
	}
}

func TestDecodeSkipsHeaderLinesWithoutColon(t *testing.T) {
	raw := "MOO/1 COMPLETE Success\nRequest-Id: 1\ngarbage line with no colon\n\n"
	got, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.ID != 1 {
		t.Errorf("ID = %d, want 1", got.ID)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"missing moo token", "GARBAGE COMPLETE Success\nRequest-Id: 1\n\n"},
		{"malformed first line", "MOO/1 COMPLETE\nRequest-Id: 1\n\n"},
		{"unknown verb", "MOO/1 BOGUS Success\nRequest-Id: 1\n\n"},
		{"unsupported version", "MOO/2 COMPLETE Success\nRequest-Id: 1\n\n"},
		{"non integer request id", "MOO/1 COMPLETE Success\nRequest-Id: abc\n\n"},
		{"missing request id", "MOO/1 COMPLETE Success\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.raw)); err == nil {
				t.Fatalf("Decode(%q) succeeded, want error", tt.raw)
			}
		})
	}
}

func TestIsSuccessName(t *testing.T) {
	for _, n := range []string{NameSuccess, NameRegistered, NameSubscribed, NameChanged} {
		if !IsSuccessName(n) {
			t.Errorf("IsSuccessName(%q) = false, want true", n)
		}
	}
	for _, n := range []string{"InvalidRequest", "BadRequest", ""} {
		if IsSuccessName(n) {
			t.Errorf("IsSuccessName(%q) = true, want false", n)
		}
	}
}

func TestNegativeAndZeroRequestIDsAllowed(t *testing.T) {
	for _, id := range []int64{0, -1, -42} {
		data, err := EncodeResponse(VerbComplete, id, NameSuccess, nil)
		if err != nil {
			t.Fatalf("EncodeResponse() error = %v", err)
		}
		got, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode() error = %v", err)
		}
		if got.ID != id {
			t.Errorf("ID = %d, want %d", got.ID, id)
		}
	}
}
