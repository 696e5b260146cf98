// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package roon

import (
	"testing"
)

// TestParseZonesChangedCombined mirrors scenario S5 from the library's
// testable-properties list: a grouping/ungrouping operation emits combined
// removed+added+changed facets in one frame, and the parser must emit all
// three events in order.
func TestParseZonesChangedCombined(t *testing.T) {
	body := map[string]any{
		"zones_removed": []any{"z1", "z2"},
		"zones_added": []any{
			map[string]any{"zone_id": "z3", "display_name": "Group"},
		},
		"zones_changed": []any{
			map[string]any{"zone_id": "z4", "display_name": "Other"},
		},
	}

	events, err := ParseZonesChanged(body)
	if err != nil {
		t.Fatalf("ParseZonesChanged() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("len(events) = %d, want 3", len(events))
	}

	if events[0].Kind != Removed || len(events[0].RemovedIDs) != 2 {
		t.Errorf("events[0] = %+v, want Removed with 2 ids", events[0])
	}
	if events[1].Kind != Added || len(events[1].AddedZones) != 1 || events[1].AddedZones[0].ID != "z3" {
		t.Errorf("events[1] = %+v, want Added z3", events[1])
	}
	if events[2].Kind != Changed || len(events[2].ChangedZones) != 1 || events[2].ChangedZones[0].ID != "z4" {
		t.Errorf("events[2] = %+v, want Changed z4", events[2])
	}
}

func TestParseZonesChangedFixedOrder(t *testing.T) {
	// Populate all four keys out of their emission order in the map; the
	// output slice must still come back removed, added, changed, seek_changed.
	body := map[string]any{
		"zones_seek_changed": []any{map[string]any{"zone_id": "z1", "seek_position": 5}},
		"zones_changed":      []any{map[string]any{"zone_id": "z2"}},
		"zones_added":        []any{map[string]any{"zone_id": "z3"}},
		"zones_removed":      []any{"z4"},
	}

	events, err := ParseZonesChanged(body)
	if err != nil {
		t.Fatalf("ParseZonesChanged() error = %v", err)
	}
	want := []ChangeKind{Removed, Added, Changed, SeekChanged}
	if len(events) != len(want) {
		t.Fatalf("len(events) = %d, want %d", len(events), len(want))
	}
	for i, k := range want {
		if events[i].Kind != k {
			t.Errorf("events[%d].Kind = %v, want %v", i, events[i].Kind, k)
		}
	}
}

func TestParseZonesChangedEmptyKeyIgnored(t *testing.T) {
	body := map[string]any{
		"zones_removed": []any{},
		"zones_added":   []any{},
	}
	events, err := ParseZonesChanged(body)
	if err != nil {
		t.Fatalf("ParseZonesChanged() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("len(events) = %d, want 0 for a frame with only empty arrays", len(events))
	}
}

func TestParseZonesChangedNoKeys(t *testing.T) {
	events, err := ParseZonesChanged(map[string]any{})
	if err != nil {
		t.Fatalf("ParseZonesChanged() error = %v", err)
	}
	if events != nil {
		t.Errorf("events = %v, want nil", events)
	}
}

func TestParseOutputsChangedNoSeekFacet(t *testing.T) {
	body := map[string]any{
		"outputs_removed": []any{"o1"},
		"outputs_added":   []any{map[string]any{"output_id": "o2"}},
	}
	events, err := ParseOutputsChanged(body)
	if err != nil {
		t.Fatalf("ParseOutputsChanged() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Kind != Removed || events[1].Kind != Added {
		t.Errorf("events kinds = [%v, %v], want [Removed, Added]", events[0].Kind, events[1].Kind)
	}
}
