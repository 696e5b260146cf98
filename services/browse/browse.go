// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package browse is a thin, stateful wrapper over com.roonlabs.browse:1,
// implementing the browse/load session described in spec §4.5/§6: a single
// serialized session that caches the current hierarchy, level, and list
// metadata, with an optional multi-session UUID for hosts that need more
// than one concurrent browse session against the same Core.
package browse

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	json "github.com/segmentio/encoding/json"
	"golang.org/x/sync/singleflight"

	"github.com/teancom/roonkit/codec"
	"github.com/teancom/roonkit/connection"
	"github.com/teancom/roonkit/roon"
)

const servicePath = "com.roonlabs.browse:1"

// ErrBrowseFailed and ErrLoadFailed report that the Core rejected a browse or
// load request: the response name was anything other than a well-known
// success name.
var (
	ErrBrowseFailed = errors.New("browse failed")
	ErrLoadFailed   = errors.New("load failed")
)

// BrowseFailedError wraps ErrBrowseFailed with the server's message.
type BrowseFailedError struct{ ServerMessage string }

func (e *BrowseFailedError) Error() string { return fmt.Sprintf("browse failed: %s", e.ServerMessage) }
func (e *BrowseFailedError) Unwrap() error  { return ErrBrowseFailed }

// LoadFailedError wraps ErrLoadFailed with the server's message.
type LoadFailedError struct{ ServerMessage string }

func (e *LoadFailedError) Error() string { return fmt.Sprintf("load failed: %s", e.ServerMessage) }
func (e *LoadFailedError) Unwrap() error  { return ErrLoadFailed }

// Result is the decoded response of a browse call.
type Result struct {
	Action string          `json:"action"`
	List   *roon.BrowseList `json:"list,omitempty"`
	Item   *roon.BrowseItem `json:"item,omitempty"`
}

// LoadResult is the decoded response of a load call.
type LoadResult struct {
	Items  []roon.BrowseItem `json:"items"`
	Offset int               `json:"offset"`
}

// Options configures a Service.
type Options struct {
	// MultiSession includes a per-Service session UUID (multi_session_key)
	// in every request, letting a host run more than one browse session
	// against the same Core concurrently. Default false (single session).
	MultiSession bool
}

// Service is a single browse session. It is safe for concurrent use, but
// remains logically non-reentrant per spec §4.5: concurrent Browse/Load
// calls observe and mutate the same cached hierarchy/level/list state.
type Service struct {
	conn         *connection.Conn
	sessionKey   string
	mu           sync.Mutex
	hierarchy    string
	level        int
	list         *roon.BrowseList
	loadGroup    singleflight.Group
}

// New constructs a Service. If opts.MultiSession is set, a fresh session
// UUID is generated and sent as multi_session_key on every call.
func New(conn *connection.Conn, opts Options) *Service {
	s := &Service{conn: conn}
	if opts.MultiSession {
		s.sessionKey = uuid.NewString()
	}
	return s
}

func (s *Service) withSession(body map[string]any) map[string]any {
	if s.sessionKey != "" {
		body["multi_session_key"] = s.sessionKey
	}
	return body
}

func (s *Service) browse(ctx context.Context, body map[string]any) (*Result, error) {
	frame, err := s.conn.Send(ctx, servicePath+"/browse", s.withSession(body))
	if err != nil {
		return nil, err
	}
	if frame.Kind != codec.FrameResponse || !codec.IsSuccessName(frame.Name) {
		return nil, &BrowseFailedError{ServerMessage: errorMessage(frame)}
	}
	var res Result
	if err := remarshalBody(frame.Body, &res); err != nil {
		return nil, &BrowseFailedError{ServerMessage: err.Error()}
	}

	s.mu.Lock()
	if h, ok := body["hierarchy"].(string); ok && h != "" {
		s.hierarchy = h
	}
	if res.List != nil {
		s.list = res.List
		s.level = res.List.Level
	}
	s.mu.Unlock()

	return &res, nil
}

func errorMessage(frame *codec.Frame) string {
	if frame == nil {
		return "unknown error"
	}
	if msg, ok := frame.Body["error"].(string); ok && msg != "" {
		return msg
	}
	return frame.Name
}

// BrowseHierarchy enters or re-enters a named hierarchy (e.g. "browse",
// "search", "internet_radio") at its root.
func (s *Service) BrowseHierarchy(ctx context.Context, hierarchy, zoneOrOutputID string) (*Result, error) {
	body := map[string]any{"hierarchy": hierarchy}
	if zoneOrOutputID != "" {
		body["zone_or_output_id"] = zoneOrOutputID
	}
	return s.browse(ctx, body)
}

// BrowseItem descends into itemKey within the current hierarchy.
func (s *Service) BrowseItem(ctx context.Context, itemKey, zoneOrOutputID string) (*Result, error) {
	body := map[string]any{"hierarchy": s.currentHierarchy(), "item_key": itemKey}
	if zoneOrOutputID != "" {
		body["zone_or_output_id"] = zoneOrOutputID
	}
	return s.browse(ctx, body)
}

// Search submits input to a search-capable level of the current hierarchy.
func (s *Service) Search(ctx context.Context, input, zoneOrOutputID string) (*Result, error) {
	body := map[string]any{"hierarchy": s.currentHierarchy(), "input": input}
	if zoneOrOutputID != "" {
		body["zone_or_output_id"] = zoneOrOutputID
	}
	return s.browse(ctx, body)
}

// Refresh re-issues the current level's listing without changing position.
func (s *Service) Refresh(ctx context.Context, zoneOrOutputID string) (*Result, error) {
	body := map[string]any{"hierarchy": s.currentHierarchy(), "refresh_list": true}
	if zoneOrOutputID != "" {
		body["zone_or_output_id"] = zoneOrOutputID
	}
	return s.browse(ctx, body)
}

// Back pops one level of the browse stack.
func (s *Service) Back(ctx context.Context, zoneOrOutputID string) (*Result, error) {
	body := map[string]any{"hierarchy": s.currentHierarchy(), "pop_levels": 1}
	if zoneOrOutputID != "" {
		body["zone_or_output_id"] = zoneOrOutputID
	}
	return s.browse(ctx, body)
}

// BackToRoot pops the entire browse stack back to the hierarchy's root.
func (s *Service) BackToRoot(ctx context.Context, zoneOrOutputID string) (*Result, error) {
	body := map[string]any{"hierarchy": s.currentHierarchy(), "pop_all": true}
	if zoneOrOutputID != "" {
		body["zone_or_output_id"] = zoneOrOutputID
	}
	return s.browse(ctx, body)
}

// SetDisplayOffset sets the remembered scroll position for the current
// level, so a later Load starting near it renders without a visible jump.
func (s *Service) SetDisplayOffset(ctx context.Context, offset int, zoneOrOutputID string) (*Result, error) {
	body := map[string]any{"hierarchy": s.currentHierarchy(), "set_display_offset": offset}
	if zoneOrOutputID != "" {
		body["zone_or_output_id"] = zoneOrOutputID
	}
	return s.browse(ctx, body)
}

func (s *Service) currentHierarchy() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hierarchy
}

// CurrentList returns the cached metadata for the level the session is
// currently positioned at, or nil before the first Browse call.
func (s *Service) CurrentList() *roon.BrowseList {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.list
}

// CurrentLevel returns the cached level depth of the current position.
func (s *Service) CurrentLevel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.level
}

// Load fetches count items of the current level starting at offset.
// Concurrent Load calls for the same (hierarchy, level, offset, count) are
// collapsed into a single request via singleflight, since deep browsing
// (e.g. a consumer paging ahead while a UI also re-renders the same page)
// otherwise issues duplicate in-flight loads for identical pages.
func (s *Service) Load(ctx context.Context, offset, count int) (*LoadResult, error) {
	s.mu.Lock()
	hierarchy, level := s.hierarchy, s.level
	s.mu.Unlock()

	key := fmt.Sprintf("%s|%d|%d|%d", hierarchy, level, offset, count)
	v, err, _ := s.loadGroup.Do(key, func() (any, error) {
		body := s.withSession(map[string]any{
			"hierarchy": hierarchy,
			"level":     level,
			"offset":    offset,
			"count":     count,
		})
		frame, err := s.conn.Send(ctx, servicePath+"/load", body)
		if err != nil {
			return nil, err
		}
		if frame.Kind != codec.FrameResponse || !codec.IsSuccessName(frame.Name) {
			return nil, &LoadFailedError{ServerMessage: errorMessage(frame)}
		}
		items, err := roon.ParseBrowseItems(frame.Body)
		if err != nil {
			return nil, &LoadFailedError{ServerMessage: err.Error()}
		}
		res := &LoadResult{Items: items}
		if offset, ok := frame.Body["offset"].(float64); ok {
			res.Offset = int(offset)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*LoadResult), nil
}

// remarshalBody decodes a frame's generic JSON body into a typed struct via
// a marshal/unmarshal round trip, the same approach roon.remarshal uses for
// domain models.
func remarshalBody(body map[string]any, to any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, to)
}
