// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package roon

// ChangeKind tags which of the four possible facets of a Changed frame an
// Event carries.
type ChangeKind int

const (
	Removed ChangeKind = iota
	Added
	Changed
	SeekChanged
)

// ZoneEvent is one event extracted from a zones Changed frame. Exactly one
// of the fields matching Kind is populated.
type ZoneEvent struct {
	Kind        ChangeKind
	RemovedIDs  []string
	AddedZones  []Zone
	ChangedZones []Zone
	SeekZones   []SeekUpdate
}

// SeekUpdate is one entry of a zones_seek_changed array: a lightweight
// position update that doesn't carry a full Zone.
type SeekUpdate struct {
	ZoneID       string `json:"zone_id"`
	SeekPosition int    `json:"seek_position"`
	QueueTimeRemaining int `json:"queue_time_remaining,omitempty"`
}

// OutputEvent is one event extracted from an outputs Changed frame.
type OutputEvent struct {
	Kind          ChangeKind
	RemovedIDs    []string
	AddedOutputs  []Output
	ChangedOutputs []Output
}

// ParseZonesChanged implements the multi-event parsing invariant: a zones
// Changed frame may carry multiple non-empty keys at once
// (zones_removed, zones_added, zones_changed, zones_seek_changed); this
// emits exactly one event per non-empty key, in that fixed order. A frame
// with zero non-empty keys yields zero events.
func ParseZonesChanged(body map[string]any) ([]ZoneEvent, error) {
	var events []ZoneEvent

	if raw, ok := nonEmpty(body["zones_removed"]); ok {
		var ids []string
		if err := remarshal(raw, &ids); err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			events = append(events, ZoneEvent{Kind: Removed, RemovedIDs: ids})
		}
	}
	if raw, ok := nonEmpty(body["zones_added"]); ok {
		var zones []Zone
		if err := remarshal(raw, &zones); err != nil {
			return nil, err
		}
		if len(zones) > 0 {
			events = append(events, ZoneEvent{Kind: Added, AddedZones: zones})
		}
	}
	if raw, ok := nonEmpty(body["zones_changed"]); ok {
		var zones []Zone
		if err := remarshal(raw, &zones); err != nil {
			return nil, err
		}
		if len(zones) > 0 {
			events = append(events, ZoneEvent{Kind: Changed, ChangedZones: zones})
		}
	}
	if raw, ok := nonEmpty(body["zones_seek_changed"]); ok {
		var seeks []SeekUpdate
		if err := remarshal(raw, &seeks); err != nil {
			return nil, err
		}
		if len(seeks) > 0 {
			events = append(events, ZoneEvent{Kind: SeekChanged, SeekZones: seeks})
		}
	}

	return events, nil
}

// ParseOutputsChanged is the outputs-stream analogue of ParseZonesChanged.
// Outputs have no seek_changed facet.
func ParseOutputsChanged(body map[string]any) ([]OutputEvent, error) {
	var events []OutputEvent

	if raw, ok := nonEmpty(body["outputs_removed"]); ok {
		var ids []string
		if err := remarshal(raw, &ids); err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			events = append(events, OutputEvent{Kind: Removed, RemovedIDs: ids})
		}
	}
	if raw, ok := nonEmpty(body["outputs_added"]); ok {
		var outputs []Output
		if err := remarshal(raw, &outputs); err != nil {
			return nil, err
		}
		if len(outputs) > 0 {
			events = append(events, OutputEvent{Kind: Added, AddedOutputs: outputs})
		}
	}
	if raw, ok := nonEmpty(body["outputs_changed"]); ok {
		var outputs []Output
		if err := remarshal(raw, &outputs); err != nil {
			return nil, err
		}
		if len(outputs) > 0 {
			events = append(events, OutputEvent{Kind: Changed, ChangedOutputs: outputs})
		}
	}

	return events, nil
}

// QueueEvent is one event extracted from a queue Changed frame. Roon's
// current server versions only ever send a full Subscribed snapshot for the
// queue stream (see ParseQueueItems); this handles the incremental variant
// defensively, in case a future server version emits one.
type QueueEvent struct {
	Kind          ChangeKind
	RemovedIDs    []int64
	AddedItems    []QueueItem
	ChangedItems  []QueueItem
}

// ParseQueueChanged is the queue-stream analogue of ParseZonesChanged. It
// has no seek_changed facet.
func ParseQueueChanged(body map[string]any) ([]QueueEvent, error) {
	var events []QueueEvent

	if raw, ok := nonEmpty(body["items_removed"]); ok {
		var ids []int64
		if err := remarshal(raw, &ids); err != nil {
			return nil, err
		}
		if len(ids) > 0 {
			events = append(events, QueueEvent{Kind: Removed, RemovedIDs: ids})
		}
	}
	if raw, ok := nonEmpty(body["items_added"]); ok {
		var items []QueueItem
		if err := remarshal(raw, &items); err != nil {
			return nil, err
		}
		if len(items) > 0 {
			events = append(events, QueueEvent{Kind: Added, AddedItems: items})
		}
	}
	if raw, ok := nonEmpty(body["items_changed"]); ok {
		var items []QueueItem
		if err := remarshal(raw, &items); err != nil {
			return nil, err
		}
		if len(items) > 0 {
			events = append(events, QueueEvent{Kind: Changed, ChangedItems: items})
		}
	}

	return events, nil
}

// nonEmpty reports whether body[key] is present and, for the JSON array
// shapes this decoder deals with, actually non-empty — an empty array under
// a present key must not itself emit an event.
func nonEmpty(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	arr, ok := v.([]any)
	if !ok {
		return v, true
	}
	return v, len(arr) > 0
}
