package monitor

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/geofencer/internal/geomath"
	"github.com/sells-group/geofencer/internal/model"
)

// PriorityScore ranks a region's urgency from a position: great-circle
// distance to the center minus the radius. Lower is more urgent; a negative
// score means the position is already inside the region.
func PriorityScore(pos model.Position, region model.Region) float64 {
	return geomath.Distance(pos.Coordinate, region.Center) - region.Radius
}

// workingSetSelector computes the capacity-limited working set and
// reconciles it against the native monitor.
type workingSetSelector struct {
	monitor  NativeRegionMonitor
	sink     EventSink
	capacity int
	log      *zap.Logger
}

func newWorkingSetSelector(nm NativeRegionMonitor, sink EventSink, capacity int) *workingSetSelector {
	return &workingSetSelector{
		monitor:  nm,
		sink:     sink,
		capacity: capacity,
		log:      zap.L().With(zap.String("component", "monitor.selector")),
	}
}

// rank returns the min(len(candidates), capacity) most urgent regions for
// pos, ranked by ascending priority score. The sort is stable so that exact
// score ties keep candidate insertion order.
func (s *workingSetSelector) rank(pos model.Position, candidates []model.Region) []model.Region {
	ranked := make([]model.Region, len(candidates))
	copy(ranked, candidates)

	scores := make([]float64, len(ranked))
	for i, r := range ranked {
		scores[i] = PriorityScore(pos, r)
	}
	order := make([]int, len(ranked))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] < scores[order[j]]
	})

	n := len(ranked)
	if n > s.capacity {
		n = s.capacity
	}
	out := make([]model.Region, 0, n)
	for _, idx := range order[:n] {
		out = append(out, ranked[idx])
	}
	return out
}

// refresh rebuilds the armed set from scratch: everything currently armed is
// de-armed, then the target working set is armed in ranked order. Rebuilding
// rather than patching guarantees the armed set always reflects the latest
// ranking, at the cost of one stop/start pair per region per refresh.
//
// An unsupported platform aborts the pass entirely; a rejected arm is
// reported through the sink and the remaining regions are still armed.
// Neither is retried.
func (s *workingSetSelector) refresh(pos model.Position, candidates []model.Region) {
	if !s.monitor.MonitoringSupported() {
		s.log.Warn("native region monitoring unsupported, skipping refresh")
		return
	}

	target := s.rank(pos, candidates)

	s.monitor.DisarmAll()
	for _, region := range target {
		if err := s.monitor.Arm(region); err != nil {
			s.log.Warn("arm rejected",
				zap.String("region_id", region.ID),
				zap.Error(err),
			)
			s.sink.OnMonitoringFailed(region, err)
		}
	}

	s.log.Debug("working set refreshed",
		zap.Int("candidates", len(candidates)),
		zap.Int("armed", len(target)),
	)
}
