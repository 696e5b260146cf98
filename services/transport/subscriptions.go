// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"time"

	"github.com/teancom/roonkit/codec"
	"github.com/teancom/roonkit/roon"
)

// slot tracks the single active subscription for one kind (zones, outputs,
// or one zone/output's queue). key is the "latest wins" token from spec
// §4.4.9: a sink's termination handler must only clear the slot if it still
// holds the key it was installed with, so a superseded sink's cleanup never
// clobbers the newer one's bookkeeping.
type slot struct {
	key    int64
	cancel context.CancelFunc
}

// startSub finishes whatever sink currently occupies cur (if any), installs
// a fresh one derived from ctx, and returns the new sink's context, its
// activeKey, and a finish func the caller's background goroutine must call
// exactly once when its upstream frame channel ends.
func (s *Service) startSub(ctx context.Context, cur *slot) (subCtx context.Context, key int64, finish func()) {
	s.mu.Lock()
	if cur.cancel != nil {
		cur.cancel()
	}
	s.nextKey++
	key = s.nextKey
	subCtx, cancel := context.WithCancel(ctx)
	cur.key = key
	cur.cancel = cancel
	s.mu.Unlock()

	finish = func() {
		s.mu.Lock()
		if cur.key == key {
			cur.key = 0
			cur.cancel = nil
		}
		s.mu.Unlock()
	}
	return subCtx, key, finish
}

func (s *Service) queueSlot(zoneOrOutputID string) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, ok := s.queueSlots[zoneOrOutputID]
	if !ok {
		sl = &slot{}
		s.queueSlots[zoneOrOutputID] = sl
	}
	return sl
}

// fireUnsubscribe sends method as a fire-and-forget request: its result is
// not observed, matching spec §4.4.9's "an unsubscribe request is issued as
// fire-and-forget" on sink termination.
func (s *Service) fireUnsubscribe(method string, body any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.conn.Send(ctx, servicePath+"/"+method, body)
	}()
}

// SubscribeZones subscribes to subscribe_zones. Subscribing again supersedes
// (finishes) any previously returned channel.
func (s *Service) SubscribeZones(ctx context.Context) (<-chan roon.ZoneEvent, error) {
	subCtx, _, finish := s.startSub(ctx, &s.zoneSlot)
	raw, err := s.conn.Subscribe(subCtx, servicePath+"/subscribe_zones", nil)
	if err != nil {
		finish()
		return nil, err
	}

	out := make(chan roon.ZoneEvent, 64)
	go func() {
		defer close(out)
		defer finish()
		defer s.fireUnsubscribe("unsubscribe_zones", nil)
		for frame := range raw {
			events, err := zoneEventsFromFrame(frame)
			if err != nil {
				continue
			}
			for _, e := range events {
				select {
				case out <- e:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func zoneEventsFromFrame(frame *codec.Frame) ([]roon.ZoneEvent, error) {
	switch frame.Name {
	case codec.NameSubscribed:
		zones, err := roon.ParseZones(frame.Body)
		if err != nil || len(zones) == 0 {
			return nil, err
		}
		return []roon.ZoneEvent{{Kind: roon.Added, AddedZones: zones}}, nil
	case codec.NameChanged:
		return roon.ParseZonesChanged(frame.Body)
	default:
		return nil, nil
	}
}

// SubscribeOutputs subscribes to subscribe_outputs. Subscribing again
// supersedes (finishes) any previously returned channel.
func (s *Service) SubscribeOutputs(ctx context.Context) (<-chan roon.OutputEvent, error) {
	subCtx, _, finish := s.startSub(ctx, &s.outputSlot)
	raw, err := s.conn.Subscribe(subCtx, servicePath+"/subscribe_outputs", nil)
	if err != nil {
		finish()
		return nil, err
	}

	out := make(chan roon.OutputEvent, 64)
	go func() {
		defer close(out)
		defer finish()
		defer s.fireUnsubscribe("unsubscribe_outputs", nil)
		for frame := range raw {
			events, err := outputEventsFromFrame(frame)
			if err != nil {
				continue
			}
			for _, e := range events {
				select {
				case out <- e:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func outputEventsFromFrame(frame *codec.Frame) ([]roon.OutputEvent, error) {
	switch frame.Name {
	case codec.NameSubscribed:
		outputs, err := roon.ParseOutputs(frame.Body)
		if err != nil || len(outputs) == 0 {
			return nil, err
		}
		return []roon.OutputEvent{{Kind: roon.Added, AddedOutputs: outputs}}, nil
	case codec.NameChanged:
		return roon.ParseOutputsChanged(frame.Body)
	default:
		return nil, nil
	}
}

// SubscribeQueue subscribes to a single zone or output's queue. Each
// zoneOrOutputID has its own active slot: subscribing again for the same id
// supersedes the previous sink for that id only.
func (s *Service) SubscribeQueue(ctx context.Context, zoneOrOutputID string, maxItemCount int) (<-chan roon.QueueEvent, error) {
	if zoneOrOutputID == "" {
		return nil, ErrNoZoneSelected
	}
	cur := s.queueSlot(zoneOrOutputID)
	subCtx, _, finish := s.startSub(ctx, cur)

	body := map[string]any{"zone_or_output_id": zoneOrOutputID}
	if maxItemCount > 0 {
		body["max_item_count"] = maxItemCount
	}
	raw, err := s.conn.Subscribe(subCtx, servicePath+"/subscribe_queue", body)
	if err != nil {
		finish()
		return nil, err
	}

	out := make(chan roon.QueueEvent, 64)
	go func() {
		defer close(out)
		defer finish()
		defer s.fireUnsubscribe("unsubscribe_queue", map[string]any{"zone_or_output_id": zoneOrOutputID})
		for frame := range raw {
			events, err := queueEventsFromFrame(frame)
			if err != nil {
				continue
			}
			for _, e := range events {
				select {
				case out <- e:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func queueEventsFromFrame(frame *codec.Frame) ([]roon.QueueEvent, error) {
	switch frame.Name {
	case codec.NameSubscribed:
		items, err := roon.ParseQueueItems(frame.Body)
		if err != nil || len(items) == 0 {
			return nil, err
		}
		return []roon.QueueEvent{{Kind: roon.Added, AddedItems: items}}, nil
	case codec.NameChanged:
		return roon.ParseQueueChanged(frame.Body)
	default:
		return nil, nil
	}
}
