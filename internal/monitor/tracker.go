package monitor

import (
	"go.uber.org/zap"

	"github.com/sells-group/geofencer/internal/geomath"
	"github.com/sells-group/geofencer/internal/model"
)

// containmentState is the tracked inside/outside judgement for a region id.
type containmentState int

const (
	containmentUnknown containmentState = iota
	containmentInside
	containmentOutside
)

func (s containmentState) String() string {
	switch s {
	case containmentInside:
		return "inside"
	case containmentOutside:
		return "outside"
	default:
		return "unknown"
	}
}

// containmentTracker derives enter/exit transitions from raw position
// samples, one state machine per region id. It substitutes entirely for
// native monitoring, so it evaluates every candidate on every sample with no
// capacity limit.
//
// Events are emitted only on state change. The very first observation of a
// region emits an enter if the user is judged already inside; a first
// observation outside establishes the baseline silently, since no exit can
// be claimed without a prior inside.
type containmentTracker struct {
	sink    EventSink
	records map[string]containmentState
	// prev is the previously observed sample, kept for the bearing fallback
	// when a sample carries no course.
	prev *model.Position
	log  *zap.Logger
}

func newContainmentTracker(sink EventSink) *containmentTracker {
	return &containmentTracker{
		sink:    sink,
		records: make(map[string]containmentState),
		log:     zap.L().With(zap.String("component", "monitor.tracker")),
	}
}

// observe runs one sample through every candidate region's state machine.
func (t *containmentTracker) observe(sample model.Position, candidates []model.Region) {
	speed, course := t.motion(sample)

	for _, region := range candidates {
		next := containmentOutside
		if geomath.Distance(sample.Coordinate, region.Center) < region.Radius {
			next = containmentInside
		}

		current := t.records[region.ID]
		if current == next {
			continue
		}
		t.records[region.ID] = next

		switch {
		case next == containmentInside:
			// Covers both outside→inside and the unknown→inside first
			// observation.
			t.log.Debug("region entered",
				zap.String("region_id", region.ID),
				zap.String("from", current.String()),
			)
			t.sink.OnRegionEntered(region, speed, course)
		case current == containmentInside:
			t.log.Debug("region exited", zap.String("region_id", region.ID))
			t.sink.OnRegionExited(region, speed, course)
		}
		// unknown→outside: baseline established, nothing to emit.
	}

	prev := sample
	t.prev = &prev
}

// motion resolves the speed and course to attach to events for this sample.
// A supplied course is used verbatim; otherwise the bearing from the
// previous sample stands in for it.
func (t *containmentTracker) motion(sample model.Position) (speed, course float64) {
	speed = sample.Speed
	if !sample.HasSpeed() {
		speed = model.ValueUnknown
	}

	course = sample.Course
	if !sample.HasCourse() {
		course = model.ValueUnknown
		if t.prev != nil {
			course = geomath.Bearing(t.prev.Coordinate, sample.Coordinate)
		}
	}
	return speed, course
}

// forget drops the containment record for a region id, so a re-added region
// starts from the unknown baseline instead of leaking stale state.
func (t *containmentTracker) forget(id string) {
	delete(t.records, id)
}

// reset drops every record and the previous-sample baseline.
func (t *containmentTracker) reset() {
	t.records = make(map[string]containmentState)
	t.prev = nil
}
