// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package browse

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/teancom/roonkit/codec"
	"github.com/teancom/roonkit/connection"
	"github.com/teancom/roonkit/transport"
)

type dialer struct{ tr *transport.Fake }

func (d *dialer) Dial(ctx context.Context) (transport.Transport, error) { return d.tr, nil }

func newConnected(t *testing.T) (*connection.Conn, *transport.Fake) {
	t.Helper()
	tr := transport.NewFake()
	c := connection.New(&dialer{tr: tr}, connection.Options{})

	go func() {
		for data := range tr.Sent {
			frame, err := codec.Decode(data)
			if err != nil || frame.Kind != codec.FrameRequest {
				continue
			}
			switch frame.ServicePath() {
			case "com.roonlabs.registry:1/info":
				resp, _ := codec.EncodeResponse(codec.VerbComplete, frame.ID, codec.NameSuccess,
					map[string]any{"core_id": "core-1"})
				tr.PushBinary(resp)
			case "com.roonlabs.registry:1/register":
				resp, _ := codec.EncodeResponse(codec.VerbComplete, frame.ID, codec.NameRegistered,
					map[string]any{"core_id": "core-1", "display_name": "Test Core"})
				tr.PushBinary(resp)
				return
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { c.Disconnect() })
	return c, tr
}

func serveOnce(t *testing.T, tr *transport.Fake, method string, name string, body map[string]any) {
	t.Helper()
	go func() {
		for data := range tr.Sent {
			frame, err := codec.Decode(data)
			if err != nil || frame.Kind != codec.FrameRequest {
				continue
			}
			if frame.Method == method {
				resp, _ := codec.EncodeResponse(codec.VerbComplete, frame.ID, name, body)
				tr.PushBinary(resp)
				return
			}
		}
	}()
}

func TestBrowseHierarchy_CachesPosition(t *testing.T) {
	c, tr := newConnected(t)
	svc := New(c, Options{})

	serveOnce(t, tr, "browse", codec.NameSuccess, map[string]any{
		"action": "list",
		"list":   map[string]any{"title": "Library", "level": 0},
	})

	res, err := svc.BrowseHierarchy(context.Background(), "browse", "")
	if err != nil {
		t.Fatalf("BrowseHierarchy: %v", err)
	}
	if res.List == nil || res.List.Title != "Library" {
		t.Fatalf("res = %+v", res)
	}
	if got := svc.CurrentLevel(); got != 0 {
		t.Fatalf("CurrentLevel = %d, want 0", got)
	}
}

func TestBrowseItem_UsesCachedHierarchy(t *testing.T) {
	c, tr := newConnected(t)
	svc := New(c, Options{})

	serveOnce(t, tr, "browse", codec.NameSuccess, map[string]any{
		"action": "list",
		"list":   map[string]any{"title": "Library", "level": 0},
	})
	if _, err := svc.BrowseHierarchy(context.Background(), "browse", ""); err != nil {
		t.Fatalf("BrowseHierarchy: %v", err)
	}

	methodCh := make(chan map[string]any, 1)
	go func() {
		for data := range tr.Sent {
			frame, err := codec.Decode(data)
			if err != nil || frame.Kind != codec.FrameRequest || frame.Method != "browse" {
				continue
			}
			if _, ok := frame.Body["item_key"]; ok {
				methodCh <- frame.Body
				resp, _ := codec.EncodeResponse(codec.VerbComplete, frame.ID, codec.NameSuccess, map[string]any{
					"action": "list",
					"list":   map[string]any{"title": "Artists", "level": 1},
				})
				tr.PushBinary(resp)
				return
			}
		}
	}()

	if _, err := svc.BrowseItem(context.Background(), "artists", ""); err != nil {
		t.Fatalf("BrowseItem: %v", err)
	}
	body := <-methodCh
	if body["hierarchy"] != "browse" {
		t.Fatalf("body[hierarchy] = %v, want browse (cached from prior call)", body["hierarchy"])
	}
	if got := svc.CurrentLevel(); got != 1 {
		t.Fatalf("CurrentLevel = %d, want 1", got)
	}
}

func TestBrowseFailed_OnNonSuccessResponse(t *testing.T) {
	c, tr := newConnected(t)
	svc := New(c, Options{})

	go func() {
		for data := range tr.Sent {
			frame, err := codec.Decode(data)
			if err != nil || frame.Kind != codec.FrameRequest || frame.Method != "browse" {
				continue
			}
			resp, _ := codec.EncodeResponse(codec.VerbComplete, frame.ID, "InvalidRequest",
				map[string]any{"error": "bad hierarchy"})
			tr.PushBinary(resp)
			return
		}
	}()

	_, err := svc.BrowseHierarchy(context.Background(), "nonsense", "")
	var bf *BrowseFailedError
	if !errors.As(err, &bf) || bf.ServerMessage != "bad hierarchy" {
		t.Fatalf("err = %v, want *BrowseFailedError{bad hierarchy}", err)
	}
}

func TestLoad_ParsesItems(t *testing.T) {
	c, tr := newConnected(t)
	svc := New(c, Options{})

	serveOnce(t, tr, "browse", codec.NameSuccess, map[string]any{
		"action": "list",
		"list":   map[string]any{"title": "Library", "level": 0},
	})
	if _, err := svc.BrowseHierarchy(context.Background(), "browse", ""); err != nil {
		t.Fatalf("BrowseHierarchy: %v", err)
	}

	serveOnce(t, tr, "load", codec.NameSuccess, map[string]any{
		"offset": 0,
		"items": []any{
			map[string]any{"title": "Artists", "item_key": "artists"},
			map[string]any{"title": "Albums", "item_key": "albums"},
		},
	})

	res, err := svc.Load(context.Background(), 0, 10)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(res.Items) != 2 || res.Items[0].Title != "Artists" {
		t.Fatalf("res.Items = %+v", res.Items)
	}
}

func TestLoad_CollapsesConcurrentIdenticalCalls(t *testing.T) {
	c, tr := newConnected(t)
	svc := New(c, Options{})

	serveOnce(t, tr, "browse", codec.NameSuccess, map[string]any{
		"action": "list",
		"list":   map[string]any{"title": "Library", "level": 0},
	})
	if _, err := svc.BrowseHierarchy(context.Background(), "browse", ""); err != nil {
		t.Fatalf("BrowseHierarchy: %v", err)
	}

	var mu sync.Mutex
	var loadRequests int
	go func() {
		for data := range tr.Sent {
			frame, err := codec.Decode(data)
			if err != nil || frame.Kind != codec.FrameRequest || frame.Method != "load" {
				continue
			}
			mu.Lock()
			loadRequests++
			mu.Unlock()
			// Delay the response so both concurrent Load calls are in flight
			// at once, forcing singleflight to actually collapse them.
			time.Sleep(20 * time.Millisecond)
			resp, _ := codec.EncodeResponse(codec.VerbComplete, frame.ID, codec.NameSuccess, map[string]any{
				"offset": 0,
				"items":  []any{map[string]any{"title": "Artists", "item_key": "artists"}},
			})
			tr.PushBinary(resp)
		}
	}()

	errCh := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.Load(context.Background(), 0, 10)
			errCh <- err
		}()
	}
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			t.Fatalf("Load: %v", err)
		}
	}

	mu.Lock()
	got := loadRequests
	mu.Unlock()
	if got != 1 {
		t.Fatalf("loadRequests = %d, want 1 (singleflight should collapse identical concurrent loads)", got)
	}
}

func TestBackToRoot_SendsPopAll(t *testing.T) {
	c, tr := newConnected(t)
	svc := New(c, Options{})

	serveOnce(t, tr, "browse", codec.NameSuccess, map[string]any{
		"action": "list",
		"list":   map[string]any{"title": "Library", "level": 0},
	})
	if _, err := svc.BrowseHierarchy(context.Background(), "browse", ""); err != nil {
		t.Fatalf("BrowseHierarchy: %v", err)
	}

	bodyCh := make(chan map[string]any, 1)
	go func() {
		for data := range tr.Sent {
			frame, err := codec.Decode(data)
			if err != nil || frame.Kind != codec.FrameRequest || frame.Method != "browse" {
				continue
			}
			if _, ok := frame.Body["pop_all"]; ok {
				bodyCh <- frame.Body
				resp, _ := codec.EncodeResponse(codec.VerbComplete, frame.ID, codec.NameSuccess, map[string]any{
					"action": "list",
					"list":   map[string]any{"title": "Library", "level": 0},
				})
				tr.PushBinary(resp)
				return
			}
		}
	}()

	if _, err := svc.BackToRoot(context.Background(), ""); err != nil {
		t.Fatalf("BackToRoot: %v", err)
	}
	body := <-bodyCh
	if popAll, _ := body["pop_all"].(bool); !popAll {
		t.Fatalf("body[pop_all] = %v, want true", body["pop_all"])
	}
}

func TestMultiSession_IncludesSessionKey(t *testing.T) {
	c, tr := newConnected(t)
	svc := New(c, Options{MultiSession: true})

	bodyCh := make(chan map[string]any, 1)
	go func() {
		for data := range tr.Sent {
			frame, err := codec.Decode(data)
			if err != nil || frame.Kind != codec.FrameRequest || frame.Method != "browse" {
				continue
			}
			bodyCh <- frame.Body
			resp, _ := codec.EncodeResponse(codec.VerbComplete, frame.ID, codec.NameSuccess, map[string]any{
				"action": "list",
				"list":   map[string]any{"title": "Library", "level": 0},
			})
			tr.PushBinary(resp)
			return
		}
	}()

	if _, err := svc.BrowseHierarchy(context.Background(), "browse", ""); err != nil {
		t.Fatalf("BrowseHierarchy: %v", err)
	}
	body := <-bodyCh
	key, _ := body["multi_session_key"].(string)
	if key == "" {
		t.Fatal("multi_session_key missing from request body")
	}
}
