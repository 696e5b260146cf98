// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package roonlog provides the process-wide structured logger used by the
// connection engine and its services. It wraps log/slog with a single
// runtime-adjustable level, so a host application can flip between a
// cheap-and-ephemeral level and a verbose-and-persisted one without
// reconstructing every logger handed out earlier.
package roonlog

import (
	"log/slog"
	"os"
	"sync"

	"github.com/teancom/roonkit/internal/roondebug"
)

var (
	levelVar = new(slog.LevelVar)

	mu      sync.Mutex
	handler slog.Handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: levelVar})
	logger  *slog.Logger = slog.New(handler)
)

func init() {
	if roondebug.Value("verbose") != "" {
		levelVar.Set(slog.LevelDebug)
	}
}

// Default returns the process-wide logger. Components accept a *slog.Logger
// in their options and fall back to Default when none is supplied.
func Default() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// SetVerbose toggles between the verbose-and-persisted level (slog.LevelDebug,
// every frame in/out, state transition, and reconnect attempt) and the
// cheap-and-ephemeral level (slog.LevelInfo, state transitions only). This is
// the single process-wide flag named in the library's external interface.
func SetVerbose(v bool) {
	if v {
		levelVar.Set(slog.LevelDebug)
	} else {
		levelVar.Set(slog.LevelInfo)
	}
}

// SetHandler replaces the handler backing Default, e.g. to redirect logs to
// a file or to a structured JSON sink. Callers wiring a custom handler should
// honor levelVar-equivalent gating themselves if SetVerbose is to keep working.
func SetHandler(h slog.Handler) {
	mu.Lock()
	defer mu.Unlock()
	handler = h
	logger = slog.New(handler)
}
