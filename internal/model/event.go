package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType classifies a monitoring event.
type EventType string

const (
	// EventRegionEntered is emitted when a tracked position crosses into a region.
	EventRegionEntered EventType = "region_entered"
	// EventRegionExited is emitted when a tracked position crosses out of a region.
	EventRegionExited EventType = "region_exited"
	// EventMonitoringFailed is emitted when arming a region for native
	// monitoring is rejected by the platform.
	EventMonitoringFailed EventType = "monitoring_failed"
)

// Event is a recorded monitoring event. Speed and Course are negative when
// unknown. Error is empty except for EventMonitoringFailed.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Region     Region    `json:"region"`
	Speed      float64   `json:"speed"`
	Course     float64   `json:"course"`
	Error      string    `json:"error,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent creates an event with a fresh ID and the current UTC timestamp.
func NewEvent(typ EventType, region Region) Event {
	return Event{
		ID:         uuid.New().String(),
		Type:       typ,
		Region:     region,
		Speed:      ValueUnknown,
		Course:     ValueUnknown,
		OccurredAt: time.Now().UTC(),
	}
}
