// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package image fetches artwork from a Core's HTTP image endpoint
// (com.roonlabs.image:1, served over plain HTTP rather than MOO/1). It is
// an independent collaborator: it never touches the WebSocket connection
// and can be used before registration completes, as long as the caller
// already knows the Core's host and HTTP port (from discovery or from the
// WebSocket URL used to reach it).
package image

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/yosida95/uritemplate/v3"
)

// Scale is the server-side resize strategy. Empty means "no resize"; Width
// and Height are then ignored.
type Scale string

const (
	ScaleFit     Scale = "fit"
	ScaleFill    Scale = "fill"
	ScaleStretch Scale = "stretch"
)

// Format requests a specific encoding instead of the server's default.
type Format string

const (
	FormatJPEG Format = "image/jpeg"
	FormatPNG  Format = "image/png"
)

// FetchOptions controls how an image is resized and encoded. A Scale other
// than "" requires both Width and Height to be set.
type FetchOptions struct {
	Scale  Scale
	Width  int
	Height int
	Format Format
}

var pathTemplate = uritemplate.MustNew("/api/image/{key}{?scale,width,height,format}")

// Service is an HTTP client bound to one Core's image endpoint.
type Service struct {
	baseURL string // "http://host:port", no trailing slash
	client  *http.Client
}

// New constructs a Service for the Core reachable at host:port. If client
// is nil, http.DefaultClient is used.
func New(host string, port int, client *http.Client) *Service {
	if client == nil {
		client = http.DefaultClient
	}
	return &Service{baseURL: fmt.Sprintf("http://%s:%d", host, port), client: client}
}

// Fetch retrieves imageKey, returning the raw bytes and the server's
// Content-Type. It returns ErrInvalidImageKey if imageKey is empty, and
// ErrMissingScaleDimensions if opts.Scale is set without both Width and
// Height.
func (s *Service) Fetch(ctx context.Context, imageKey string, opts FetchOptions) ([]byte, string, error) {
	if imageKey == "" {
		return nil, "", ErrInvalidImageKey
	}
	if opts.Scale != "" && (opts.Width <= 0 || opts.Height <= 0) {
		return nil, "", ErrMissingScaleDimensions
	}

	values := uritemplate.Values{}
	values.Set("key", uritemplate.String(imageKey))
	if opts.Scale != "" {
		values.Set("scale", uritemplate.String(string(opts.Scale)))
		values.Set("width", uritemplate.String(fmt.Sprintf("%d", opts.Width)))
		values.Set("height", uritemplate.String(fmt.Sprintf("%d", opts.Height)))
	}
	if opts.Format != "" {
		values.Set("format", uritemplate.String(string(opts.Format)))
	}

	path, err := pathTemplate.Expand(values)
	if err != nil {
		return nil, "", &InvalidResponseError{Reason: "expanding image path", Err: err}
	}
	full, err := url.Parse(s.baseURL + path)
	if err != nil {
		return nil, "", &InvalidResponseError{Reason: "parsing image url", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, full.String(), nil)
	if err != nil {
		return nil, "", &NetworkError{Err: err}
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var bodyErr error
		if body, readErr := io.ReadAll(resp.Body); readErr == nil {
			if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
				bodyErr = errors.New(trimmed)
			}
		}
		return nil, "", &HTTPStatusError{Status: resp.StatusCode, Err: bodyErr}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", &InvalidResponseError{Reason: "reading image body", Err: err}
	}
	return data, resp.Header.Get("Content-Type"), nil
}
