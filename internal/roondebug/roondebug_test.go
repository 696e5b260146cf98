// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package roondebug

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse_Success(t *testing.T) {
	tests := []struct {
		name   string
		envVal string
		want   map[string]string
	}{
		{
			name:   "Basic",
			envVal: "frames=1,verbose=1",
			want: map[string]string{
				"frames":  "1",
				"verbose": "1",
			},
		},
		{
			name:   "Empty",
			envVal: "",
			want:   nil,
		},
		{
			name:   "WithWhitespace",
			envVal: "  frames = 1  \t,  verbose  = 1  ",
			want: map[string]string{
				"frames":  "1",
				"verbose": "1",
			},
		},
		{
			name:   "WithEqualsSignInValue",
			envVal: "codec=keep=this",
			want: map[string]string{
				"codec": "keep=this",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse(tt.envVal)
			if err != nil {
				t.Fatalf("parse() failed: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Failure(t *testing.T) {
	tests := []struct {
		name   string
		envVal string
	}{
		{name: "NoEqualsSign", envVal: "invalidformat"},
		{name: "MixedValidAndInvalid", envVal: "frames=1,verbose"},
		{name: "EmptyPart", envVal: "frames=1,,verbose=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parse(tt.envVal)
			if err == nil {
				t.Error("parse() expected error, got nil")
			}
		})
	}
}

func TestBool(t *testing.T) {
	orig := params
	defer func() { params = orig }()

	params = map[string]string{
		"frames":   "1",
		"watchdog": "TRUE",
		"verbose":  "0",
		"empty":    "",
	}
	tests := []struct {
		key  string
		want bool
	}{
		{"frames", true},
		{"watchdog", true},
		{"verbose", false},
		{"empty", false},
		{"unset", false},
	}
	for _, tt := range tests {
		if got := Bool(tt.key); got != tt.want {
			t.Errorf("Bool(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestUnknownKeys(t *testing.T) {
	got := unknownKeys(map[string]string{
		"frames":  "1",
		"typo-ed": "1",
		"another": "1",
	})
	want := []string{"another", "typo-ed"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("unknownKeys() mismatch (-want +got):\n%s", diff)
	}

	if got := unknownKeys(map[string]string{"watchdog": "1", "reconnect": "1"}); len(got) != 0 {
		t.Errorf("unknownKeys() = %v, want empty for all-known keys", got)
	}
}
