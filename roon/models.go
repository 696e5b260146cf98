// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package roon holds the domain value objects parsed from well-known JSON
// shapes in MOO/1 response and Changed-frame bodies: zones, outputs, queue
// items, and browse items. They have no lifecycle beyond the event that
// produced them and are re-parsed on every relevant frame.
package roon

// Output is a physical audio device addressable independently.
type Output struct {
	ID          string         `json:"output_id"`
	ZoneID      string         `json:"zone_id"`
	DisplayName string         `json:"display_name"`
	Volume      *Volume        `json:"volume,omitempty"`
	Source      map[string]any `json:"source,omitempty"`
}

// Volume describes an output's volume control.
type Volume struct {
	Type     string  `json:"type"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Value    float64 `json:"value"`
	Step     float64 `json:"step"`
	IsMuted  bool    `json:"is_muted"`
	HardLim  float64 `json:"hard_limit_min,omitempty"`
}

// Zone is a logical playback target: one or more Outputs playing the same
// content.
type Zone struct {
	ID           string         `json:"zone_id"`
	DisplayName  string         `json:"display_name"`
	State        string         `json:"state"`
	Outputs      []Output       `json:"outputs"`
	NowPlaying   map[string]any `json:"now_playing,omitempty"`
	SeekPosition *int           `json:"seek_position,omitempty"`
	IsPreviousAllowed bool      `json:"is_previous_allowed"`
	IsNextAllowed     bool      `json:"is_next_allowed"`
	IsPlayAllowed     bool      `json:"is_play_allowed"`
	IsPauseAllowed    bool      `json:"is_pause_allowed"`
	IsSeekAllowed     bool      `json:"is_seek_allowed"`
	Settings     map[string]any `json:"settings,omitempty"`
}

// QueueItem is one entry in a zone's playback queue.
type QueueItem struct {
	QueueItemID int64          `json:"queue_item_id"`
	Length      int            `json:"length,omitempty"`
	Image       map[string]any `json:"image_key,omitempty"`
	OneLine     map[string]any `json:"one_line,omitempty"`
	TwoLine     map[string]any `json:"two_line,omitempty"`
	ThreeLine   map[string]any `json:"three_line,omitempty"`
}

// BrowseItem is one entry of a browse hierarchy listing.
type BrowseItem struct {
	Title      string         `json:"title"`
	Subtitle   string         `json:"subtitle,omitempty"`
	ImageKey   string         `json:"image_key,omitempty"`
	ItemKey    string         `json:"item_key,omitempty"`
	Hint       string         `json:"hint,omitempty"`
	InputPrompt map[string]any `json:"input_prompt,omitempty"`
}

// BrowseList is the metadata describing the current level of a browse
// session, cached by the browse service alongside the current item list.
type BrowseList struct {
	Title           string `json:"title"`
	Level           int    `json:"level"`
	Offset          int    `json:"offset,omitempty"`
	Count           int    `json:"count,omitempty"`
	DisplayOffset   int    `json:"display_offset,omitempty"`
}
