// Copyright 2025 The Go MCP SDK Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport is a thin, typed command wrapper over
// com.roonlabs.transport:2 — the zone/output control surface described in
// spec §4.5/§6. It is not reentrant per subscription kind: subscribing
// again to the same kind supersedes (and finishes) the previous sink, per
// the "latest wins" contract in §4.4.9.
package transport

import (
	"context"
	"sync"

	"github.com/teancom/roonkit/codec"
	"github.com/teancom/roonkit/connection"
	"github.com/teancom/roonkit/roon"
)

const servicePath = "com.roonlabs.transport:2"

// Service issues transport:2 commands and translates its three subscription
// streams (zones, outputs, per-zone queue) into typed domain events.
type Service struct {
	conn *connection.Conn

	mu         sync.Mutex
	zoneSlot   slot
	outputSlot slot
	queueSlots map[string]*slot // keyed by zone_or_output_id
	nextKey    int64
}

// New wraps conn. conn must already be connected for commands to succeed;
// Service itself holds no connection lifecycle state.
func New(conn *connection.Conn) *Service {
	return &Service{conn: conn, queueSlots: make(map[string]*slot)}
}

func (s *Service) send(ctx context.Context, method string, body any) (*codec.Frame, error) {
	frame, err := s.conn.Send(ctx, servicePath+"/"+method, body)
	if err != nil {
		return nil, err
	}
	if frame.Kind != codec.FrameResponse || !codec.IsSuccessName(frame.Name) {
		return frame, &CommandError{ServerMessage: errorMessage(frame)}
	}
	return frame, nil
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

// GetZones fetches the current zone list via get_zones.
func (s *Service) GetZones(ctx context.Context) ([]roon.Zone, error) {
	frame, err := s.send(ctx, "get_zones", nil)
	if err != nil {
		return nil, err
	}
	return roon.ParseZones(frame.Body)
}

// GetOutputs fetches the current output list via get_outputs.
func (s *Service) GetOutputs(ctx context.Context) ([]roon.Output, error) {
	frame, err := s.send(ctx, "get_outputs", nil)
	if err != nil {
		return nil, err
	}
	return roon.ParseOutputs(frame.Body)
}

// Playback transport controls. Each requires a selected zone or output.

func (s *Service) Play(ctx context.Context, zoneOrOutputID string) error {
	return s.control(ctx, zoneOrOutputID, "play")
}

func (s *Service) Pause(ctx context.Context, zoneOrOutputID string) error {
	return s.control(ctx, zoneOrOutputID, "pause")
}

func (s *Service) PlayPause(ctx context.Context, zoneOrOutputID string) error {
	return s.control(ctx, zoneOrOutputID, "playpause")
}

func (s *Service) Stop(ctx context.Context, zoneOrOutputID string) error {
	return s.control(ctx, zoneOrOutputID, "stop")
}

func (s *Service) Next(ctx context.Context, zoneOrOutputID string) error {
	return s.control(ctx, zoneOrOutputID, "next")
}

func (s *Service) Previous(ctx context.Context, zoneOrOutputID string) error {
	return s.control(ctx, zoneOrOutputID, "previous")
}

func (s *Service) control(ctx context.Context, zoneOrOutputID, control string) error {
	if zoneOrOutputID == "" {
		return ErrNoZoneSelected
	}
	_, err := s.send(ctx, "control", map[string]any{
		"zone_or_output_id": zoneOrOutputID,
		"control":           control,
	})
	return err
}

// Volume controls, addressed by output id (not zone).

func (s *Service) SetVolume(ctx context.Context, outputID string, value float64) error {
	return s.changeVolume(ctx, outputID, "absolute", value)
}

func (s *Service) AdjustVolume(ctx context.Context, outputID string, delta float64) error {
	return s.changeVolume(ctx, outputID, "relative", delta)
}

func (s *Service) StepVolume(ctx context.Context, outputID string, steps float64) error {
	return s.changeVolume(ctx, outputID, "relative_step", steps)
}

func (s *Service) changeVolume(ctx context.Context, outputID, how string, value float64) error {
	if outputID == "" {
		return ErrNoZoneSelected
	}
	_, err := s.send(ctx, "change_volume", map[string]any{
		"output_id": outputID,
		"how":       how,
		"value":     value,
	})
	return err
}

func (s *Service) Mute(ctx context.Context, outputID string) error {
	return s.mute(ctx, outputID, "mute")
}

func (s *Service) Unmute(ctx context.Context, outputID string) error {
	return s.mute(ctx, outputID, "unmute")
}

func (s *Service) mute(ctx context.Context, outputID, how string) error {
	if outputID == "" {
		return ErrNoZoneSelected
	}
	_, err := s.send(ctx, "mute", map[string]any{"output_id": outputID, "how": how})
	return err
}

func (s *Service) MuteAll(ctx context.Context) error {
	_, err := s.send(ctx, "mute_all", map[string]any{"how": "mute"})
	return err
}

func (s *Service) UnmuteAll(ctx context.Context) error {
	_, err := s.send(ctx, "mute_all", map[string]any{"how": "unmute"})
	return err
}

func (s *Service) PauseAll(ctx context.Context) error {
	_, err := s.send(ctx, "pause_all", nil)
	return err
}

// Seek moves playback position. how is "absolute" or "relative"; seconds is
// the target position or delta respectively.
func (s *Service) Seek(ctx context.Context, zoneOrOutputID, how string, seconds int) error {
	if zoneOrOutputID == "" {
		return ErrNoZoneSelected
	}
	_, err := s.send(ctx, "seek", map[string]any{
		"zone_or_output_id": zoneOrOutputID,
		"how":               how,
		"seconds":           seconds,
	})
	return err
}

// Zone settings, via change_settings.

func (s *Service) SetShuffle(ctx context.Context, zoneOrOutputID string, shuffle bool) error {
	return s.changeSettings(ctx, zoneOrOutputID, map[string]any{"shuffle": shuffle})
}

func (s *Service) SetLoop(ctx context.Context, zoneOrOutputID, loop string) error {
	return s.changeSettings(ctx, zoneOrOutputID, map[string]any{"loop": loop})
}

// CycleLoop advances loop through disabled -> loop -> loop_one -> disabled.
func (s *Service) CycleLoop(ctx context.Context, zoneOrOutputID string) error {
	return s.changeSettings(ctx, zoneOrOutputID, map[string]any{"loop": "next"})
}

func (s *Service) SetAutoRadio(ctx context.Context, zoneOrOutputID string, autoRadio bool) error {
	return s.changeSettings(ctx, zoneOrOutputID, map[string]any{"auto_radio": autoRadio})
}

func (s *Service) changeSettings(ctx context.Context, zoneOrOutputID string, settings map[string]any) error {
	if zoneOrOutputID == "" {
		return ErrNoZoneSelected
	}
	body := map[string]any{"zone_or_output_id": zoneOrOutputID}
	for k, v := range settings {
		body[k] = v
	}
	_, err := s.send(ctx, "change_settings", body)
	return err
}

func (s *Service) Standby(ctx context.Context, outputID string) error {
	if outputID == "" {
		return ErrNoZoneSelected
	}
	_, err := s.send(ctx, "standby", map[string]any{"output_id": outputID})
	return err
}

func (s *Service) ToggleStandby(ctx context.Context, outputID string) error {
	if outputID == "" {
		return ErrNoZoneSelected
	}
	_, err := s.send(ctx, "toggle_standby", map[string]any{"output_id": outputID})
	return err
}

func (s *Service) ConvenienceSwitch(ctx context.Context, outputID string) error {
	if outputID == "" {
		return ErrNoZoneSelected
	}
	_, err := s.send(ctx, "convenience_switch", map[string]any{"output_id": outputID})
	return err
}

func (s *Service) TransferZone(ctx context.Context, fromZoneOrOutputID, toZoneOrOutputID string) error {
	if fromZoneOrOutputID == "" || toZoneOrOutputID == "" {
		return ErrNoZoneSelected
	}
	_, err := s.send(ctx, "transfer_zone", map[string]any{
		"from_zone_or_output_id": fromZoneOrOutputID,
		"to_zone_or_output_id":   toZoneOrOutputID,
	})
	return err
}

func (s *Service) GroupOutputs(ctx context.Context, outputIDs []string) error {
	_, err := s.send(ctx, "group_outputs", map[string]any{"output_ids": outputIDs})
	return err
}

func (s *Service) UngroupOutputs(ctx context.Context, outputIDs []string) error {
	_, err := s.send(ctx, "ungroup_outputs", map[string]any{"output_ids": outputIDs})
	return err
}

func (s *Service) PlayFromHere(ctx context.Context, zoneOrOutputID string, queueItemID int64) error {
	if zoneOrOutputID == "" {
		return ErrNoZoneSelected
	}
	_, err := s.send(ctx, "play_from_here", map[string]any{
		"zone_or_output_id": zoneOrOutputID,
		"queue_item_id":     queueItemID,
	})
	return err
}
