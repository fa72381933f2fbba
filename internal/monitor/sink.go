package monitor

import (
	"go.uber.org/zap"

	"github.com/sells-group/geofencer/internal/model"
)

// LogSink is an EventSink that writes every event to the global zap logger.
// Position batches are logged at debug level to keep continuous feeds from
// drowning the output.
type LogSink struct{}

func (LogSink) OnPositionUpdate(samples []model.Position) {
	if len(samples) == 0 {
		return
	}
	last := samples[len(samples)-1]
	zap.L().Debug("position update",
		zap.Int("samples", len(samples)),
		zap.Float64("latitude", last.Latitude),
		zap.Float64("longitude", last.Longitude),
	)
}

func (LogSink) OnRegionEntered(region model.Region, speed, course float64) {
	zap.L().Info("region entered",
		zap.String("region_id", region.ID),
		zap.Float64("speed", speed),
		zap.Float64("course", course),
	)
}

func (LogSink) OnRegionExited(region model.Region, speed, course float64) {
	zap.L().Info("region exited",
		zap.String("region_id", region.ID),
		zap.Float64("speed", speed),
		zap.Float64("course", course),
	)
}

func (LogSink) OnMonitoringFailed(region model.Region, err error) {
	zap.L().Warn("region monitoring failed",
		zap.String("region_id", region.ID),
		zap.Error(err),
	)
}
