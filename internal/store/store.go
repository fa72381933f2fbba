// Package store persists candidate regions and emitted monitoring events.
// It is an external collaborator of the monitoring core: the coordinator
// never touches it, the CLI and server wire the two together.
package store

import (
	"context"

	"github.com/sells-group/geofencer/internal/model"
)

// EventFilter specifies criteria for listing events.
type EventFilter struct {
	Type     model.EventType `json:"type,omitempty"`
	RegionID string          `json:"region_id,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for regions and events.
type Store interface {
	// Regions
	SaveRegion(ctx context.Context, r model.Region) error
	ListRegions(ctx context.Context) ([]model.Region, error)
	DeleteRegion(ctx context.Context, id string) error
	DeleteAllRegions(ctx context.Context) error

	// Events
	InsertEvent(ctx context.Context, ev model.Event) error
	ListEvents(ctx context.Context, filter EventFilter) ([]model.Event, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
