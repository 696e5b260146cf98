// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package roon

import json "github.com/segmentio/encoding/json"

// remarshal marshals from to JSON and unmarshals into to, which must be a
// pointer. It is the cheapest way to turn the generic map-of-string-to-any
// bodies the codec hands back into one of the typed structs in models.go, without
// writing a bespoke field-by-field parser for every shape.
func remarshal(from, to any) error {
	data, err := json.Marshal(from)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, to)
}

// ParseZones parses the "zones" array carried in get_zones responses and in
// a Subscribed snapshot.
func ParseZones(body map[string]any) ([]Zone, error) {
	raw, ok := body["zones"]
	if !ok {
		return nil, nil
	}
	var zones []Zone
	if err := remarshal(raw, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// ParseOutputs parses the "outputs" array carried in get_outputs responses
// and in a Subscribed snapshot.
func ParseOutputs(body map[string]any) ([]Output, error) {
	raw, ok := body["outputs"]
	if !ok {
		return nil, nil
	}
	var outputs []Output
	if err := remarshal(raw, &outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

// ParseQueueItems parses the "items" array carried in a queue Subscribed
// snapshot. Incremental queue Changed frames use the items_* keys and are
// parsed by ParseQueueChanged.
func ParseQueueItems(body map[string]any) ([]QueueItem, error) {
	raw, ok := body["items"]
	if !ok {
		return nil, nil
	}
	var items []QueueItem
	if err := remarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ParseBrowseItems parses the "items" array carried in a browse/load
// response.
func ParseBrowseItems(body map[string]any) ([]BrowseItem, error) {
	raw, ok := body["items"]
	if !ok {
		return nil, nil
	}
	var items []BrowseItem
	if err := remarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
