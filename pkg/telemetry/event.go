// Package telemetry defines the event envelope streamed over the dashboard
// websocket: periodic state snapshots plus discrete loop events.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies the kind of event.
type EventType string

const (
	// TypeState carries a per-tick loop snapshot.
	TypeState EventType = "state"
	// TypeAction reports a scheduled parameter change that fired.
	TypeAction EventType = "action"
	// TypeCollision reports a triggered collision heuristic.
	TypeCollision EventType = "collision"
	// TypeFault reports a fault observed on the robot.
	TypeFault EventType = "fault"
)

// Event is the wire envelope for all dashboard messages.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"ts"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(eventType EventType, data any) (*Event, error) {
	var raw json.RawMessage
	if data != nil {
		var err error
		raw, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("marshal %s event data: %w", eventType, err)
		}
	}
	return &Event{
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Data:      raw,
	}, nil
}

// ParseData unmarshals the event data into the provided struct.
func (e *Event) ParseData(v any) error {
	if e.Data == nil {
		return nil
	}
	return json.Unmarshal(e.Data, v)
}

// Bytes returns the JSON-encoded event.
func (e *Event) Bytes() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEvent parses a JSON event from bytes.
func ParseEvent(data []byte) (*Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("parse event: %w", err)
	}
	return &e, nil
}

// ActionData is the payload of a TypeAction event.
type ActionData struct {
	Name string `json:"name"`
}

// CollisionData is the payload of a TypeCollision event.
type CollisionData struct {
	ForceNorm float64 `json:"force_norm_n"`
}
