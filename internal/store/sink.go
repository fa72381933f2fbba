package store

import (
	"context"

	"go.uber.org/zap"

	"github.com/sells-group/geofencer/internal/model"
	"github.com/sells-group/geofencer/internal/monitor"
)

// EventRecorder is an EventSink that persists region transitions and
// monitoring failures. Position batches are not recorded.
type EventRecorder struct {
	monitor.BaseEventSink

	store Store
	log   *zap.Logger
}

func NewEventRecorder(s Store) *EventRecorder {
	return &EventRecorder{
		store: s,
		log:   zap.L().With(zap.String("component", "event_recorder")),
	}
}

func (r *EventRecorder) OnRegionEntered(region model.Region, speed, course float64) {
	ev := model.NewEvent(model.EventRegionEntered, region)
	ev.Speed = speed
	ev.Course = course
	r.record(ev)
}

func (r *EventRecorder) OnRegionExited(region model.Region, speed, course float64) {
	ev := model.NewEvent(model.EventRegionExited, region)
	ev.Speed = speed
	ev.Course = course
	r.record(ev)
}

func (r *EventRecorder) OnMonitoringFailed(region model.Region, err error) {
	ev := model.NewEvent(model.EventMonitoringFailed, region)
	if err != nil {
		ev.Error = err.Error()
	}
	r.record(ev)
}

func (r *EventRecorder) record(ev model.Event) {
	if err := r.store.InsertEvent(context.Background(), ev); err != nil {
		r.log.Warn("failed to persist event",
			zap.String("type", string(ev.Type)),
			zap.String("region_id", ev.Region.ID),
			zap.Error(err))
	}
}
