// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package roondebug provides a mechanism to configure diagnostic knobs
// via the ROONKIT_DEBUG environment variable.
//
// The value of ROONKIT_DEBUG is a comma-separated list of key=value pairs.
// For example:
//
//	ROONKIT_DEBUG=frames=1,watchdog=1
package roondebug

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

const compatibilityEnvKey = "ROONKIT_DEBUG"

// knownKeys lists the recognized diagnostic knobs. roonkit itself reads
// frames (the connection receive loop) and verbose (roonlog); registration,
// watchdog and reconnect are accepted without a warning, but no roonkit
// package reads them. A key outside this set is still stored and
// retrievable via Value/Bool (so a future release can add one without
// breaking callers that already set it), but triggers a startup warning to
// catch typos.
var knownKeys = []string{"frames", "verbose", "registration", "watchdog", "reconnect"}

var params map[string]string

func init() {
	var err error
	params, err = parse(os.Getenv(compatibilityEnvKey))
	if err != nil {
		panic(err)
	}
	if uk := unknownKeys(params); len(uk) > 0 {
		fmt.Fprintf(os.Stderr, "roondebug: unrecognized %s key(s): %s (known: %s)\n",
			compatibilityEnvKey, strings.Join(uk, ", "), strings.Join(knownKeys, ", "))
	}
}

// Value returns the value of the debug parameter with the given key.
// It returns an empty string if the key is not set.
func Value(key string) string {
	return params[key]
}

// Bool reports whether the debug parameter with the given key is set to a
// recognized truthy value ("1", "true", "yes", or "on", case-insensitive).
// An unset or falsy key returns false.
func Bool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(params[key])) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func unknownKeys(params map[string]string) []string {
	known := make(map[string]bool, len(knownKeys))
	for _, k := range knownKeys {
		known[k] = true
	}
	var out []string
	for k := range params {
		if !known[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func parse(envValue string) (map[string]string, error) {
	if envValue == "" {
		return nil, nil
	}

	out := make(map[string]string)
	for part := range strings.SplitSeq(envValue, ",") {
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("%s: invalid format: %q", compatibilityEnvKey, part)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}
