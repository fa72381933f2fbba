package monitor

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geofencer/internal/model"
)

var errArmRejected = eris.New("arm rejected by platform")

func init() {
	// Replace global logger with a no-op to keep test output clean.
	zap.ReplaceGlobals(zap.NewNop())
}

// fakeSource records feed subscriptions and one-shot fix requests.
type fakeSource struct {
	oneShotRequests int
	continuousOn    bool
	coarseOn        bool
	continuousOpts  ContinuousOptions

	continuousStarts int
	coarseStarts     int
}

func (f *fakeSource) RequestOneShotFix() error {
	f.oneShotRequests++
	return nil
}

func (f *fakeSource) StartContinuousUpdates(opts ContinuousOptions) error {
	f.continuousOn = true
	f.continuousOpts = opts
	f.continuousStarts++
	return nil
}

func (f *fakeSource) StopContinuousUpdates() { f.continuousOn = false }

func (f *fakeSource) StartCoarseUpdates() error {
	f.coarseOn = true
	f.coarseStarts++
	return nil
}

func (f *fakeSource) StopCoarseUpdates() { f.coarseOn = false }

// armCall records one arm or disarm-all call, in order.
type armCall struct {
	op     string // "arm" or "disarm_all"
	region model.Region
}

// fakeMonitor is a recording NativeRegionMonitor. FailIDs lists region ids
// whose Arm calls are rejected; unsupported makes the whole platform decline.
type fakeMonitor struct {
	armed       []model.Region
	calls       []armCall
	failIDs     map[string]bool
	unsupported bool
}

func newFakeMonitor() *fakeMonitor {
	return &fakeMonitor{failIDs: map[string]bool{}}
}

func (f *fakeMonitor) Arm(region model.Region) error {
	f.calls = append(f.calls, armCall{op: "arm", region: region})
	if f.failIDs[region.ID] {
		return errArmRejected
	}
	f.armed = append(f.armed, region)
	return nil
}

func (f *fakeMonitor) Disarm(region model.Region) {
	for i, r := range f.armed {
		if r.Equal(region) {
			f.armed = append(f.armed[:i], f.armed[i+1:]...)
			return
		}
	}
}

func (f *fakeMonitor) DisarmAll() {
	f.calls = append(f.calls, armCall{op: "disarm_all"})
	f.armed = nil
}

func (f *fakeMonitor) MonitoringSupported() bool { return !f.unsupported }

func (f *fakeMonitor) CurrentlyArmed() []model.Region {
	out := make([]model.Region, len(f.armed))
	copy(out, f.armed)
	return out
}

// sinkEvent is one recorded EventSink callback.
type sinkEvent struct {
	kind   string // "enter", "exit", "failed", "positions"
	region model.Region
	speed  float64
	course float64
	err    error
	count  int
}

// recordingSink captures every sink callback in order.
type recordingSink struct {
	events []sinkEvent
}

func (r *recordingSink) OnPositionUpdate(samples []model.Position) {
	r.events = append(r.events, sinkEvent{kind: "positions", count: len(samples)})
}

func (r *recordingSink) OnRegionEntered(region model.Region, speed, course float64) {
	r.events = append(r.events, sinkEvent{kind: "enter", region: region, speed: speed, course: course})
}

func (r *recordingSink) OnRegionExited(region model.Region, speed, course float64) {
	r.events = append(r.events, sinkEvent{kind: "exit", region: region, speed: speed, course: course})
}

func (r *recordingSink) OnMonitoringFailed(region model.Region, err error) {
	r.events = append(r.events, sinkEvent{kind: "failed", region: region, err: err})
}

// ofKind filters recorded events by kind.
func (r *recordingSink) ofKind(kind string) []sinkEvent {
	var out []sinkEvent
	for _, ev := range r.events {
		if ev.kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// region builds a test region at the given center.
func region(id string, lat, lon, radius float64) model.Region {
	return model.Region{
		ID:     id,
		Center: model.Coordinate{Latitude: lat, Longitude: lon},
		Radius: radius,
	}
}

// sample builds a position sample without motion attributes.
func sample(lat, lon float64) model.Position {
	return model.Position{
		Coordinate: model.Coordinate{Latitude: lat, Longitude: lon},
		Speed:      model.ValueUnknown,
		Course:     model.ValueUnknown,
	}
}
