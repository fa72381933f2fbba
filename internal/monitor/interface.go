package monitor

import "github.com/sells-group/geofencer/internal/model"

// AuthorizationLevel is the location authorization granted by the platform.
type AuthorizationLevel int

const (
	// AuthorizationNotDetermined means no grant or denial has been observed yet.
	AuthorizationNotDetermined AuthorizationLevel = iota
	// AuthorizationDenied means the user declined location access.
	AuthorizationDenied
	// AuthorizationWhileInUse permits position fixes while the app is foregrounded.
	AuthorizationWhileInUse
	// AuthorizationAlways permits continuous background position fixes.
	AuthorizationAlways
)

func (l AuthorizationLevel) String() string {
	switch l {
	case AuthorizationNotDetermined:
		return "not_determined"
	case AuthorizationDenied:
		return "denied"
	case AuthorizationWhileInUse:
		return "while_in_use"
	case AuthorizationAlways:
		return "always"
	default:
		return "unknown"
	}
}

// Satisfies reports whether the granted level covers the required one.
func (l AuthorizationLevel) Satisfies(required AuthorizationLevel) bool {
	if l == AuthorizationDenied || l == AuthorizationNotDetermined {
		return false
	}
	return l >= required
}

// ContinuousOptions tunes a continuous position feed.
type ContinuousOptions struct {
	// DistanceFilter is the minimum horizontal movement in meters between
	// delivered samples; zero delivers every fix.
	DistanceFilter float64
	// DesiredAccuracy is the requested horizontal accuracy in meters.
	DesiredAccuracy float64
	// ActivityType hints the motion profile to the provider (e.g. "fitness",
	// "automotive").
	ActivityType string
	// AutoPause lets the provider pause the feed when the user is stationary.
	AutoPause bool
	// AllowBackground permits delivery while the app is backgrounded.
	AllowBackground bool
}

// PositionSource is the platform adapter that acquires position fixes. All
// calls are non-blocking; results arrive later through the PositionHandler
// the adapter was constructed with. Stop calls are idempotent.
type PositionSource interface {
	// RequestOneShotFix asks for a single fix, delivered asynchronously as a
	// position update.
	RequestOneShotFix() error
	// StartContinuousUpdates begins a full-rate position feed.
	StartContinuousUpdates(opts ContinuousOptions) error
	// StopContinuousUpdates halts the full-rate feed.
	StopContinuousUpdates()
	// StartCoarseUpdates begins a coarse significant-change feed.
	StartCoarseUpdates() error
	// StopCoarseUpdates halts the coarse feed.
	StopCoarseUpdates()
}

// PositionHandler receives position source callbacks. The Coordinator
// implements it. Adapters must serialize their callbacks: no two deliveries
// may run concurrently.
type PositionHandler interface {
	OnPositionUpdate(samples []model.Position)
	OnAuthorizationChanged(level AuthorizationLevel)
	OnFailure(err error)
}

// NativeRegionMonitor is the platform adapter for capacity-limited native
// region monitoring.
type NativeRegionMonitor interface {
	// Arm registers a region for native boundary-crossing detection.
	Arm(region model.Region) error
	// Disarm unregisters a region; unknown regions are a no-op.
	Disarm(region model.Region)
	// DisarmAll unregisters every armed region.
	DisarmAll()
	// MonitoringSupported reports whether the platform can monitor regions
	// natively at all.
	MonitoringSupported() bool
	// CurrentlyArmed returns the regions armed right now.
	CurrentlyArmed() []model.Region
}

// NativeMonitorHandler receives native monitor callbacks. The Coordinator
// implements it.
type NativeMonitorHandler interface {
	OnRegionEntered(region model.Region)
	OnRegionExited(region model.Region)
	OnArmed(region model.Region)
	OnArmFailed(region model.Region, err error)
}

// EventSink observes monitoring output. Embed BaseEventSink to get no-op
// defaults for the callbacks you don't care about. Sink methods are invoked
// from within the coordinator's callback path and must not call back into
// the Coordinator.
type EventSink interface {
	// OnPositionUpdate is forwarded for every delivered sample batch.
	OnPositionUpdate(samples []model.Position)
	// OnRegionEntered fires on an outside-to-inside transition. Speed and
	// course are negative when unknown.
	OnRegionEntered(region model.Region, speed, course float64)
	// OnRegionExited fires on an inside-to-outside transition.
	OnRegionExited(region model.Region, speed, course float64)
	// OnMonitoringFailed fires when a native arm request was rejected. The
	// region is not retried.
	OnMonitoringFailed(region model.Region, err error)
}

// BaseEventSink is a no-op EventSink for embedding.
type BaseEventSink struct{}

func (BaseEventSink) OnPositionUpdate([]model.Position) {}

func (BaseEventSink) OnRegionEntered(model.Region, float64, float64) {}

func (BaseEventSink) OnRegionExited(model.Region, float64, float64) {}

func (BaseEventSink) OnMonitoringFailed(model.Region, error) {}

// MultiSink fans events out to several sinks in order.
type MultiSink []EventSink

func (m MultiSink) OnPositionUpdate(samples []model.Position) {
	for _, s := range m {
		s.OnPositionUpdate(samples)
	}
}

func (m MultiSink) OnRegionEntered(region model.Region, speed, course float64) {
	for _, s := range m {
		s.OnRegionEntered(region, speed, course)
	}
}

func (m MultiSink) OnRegionExited(region model.Region, speed, course float64) {
	for _, s := range m {
		s.OnRegionExited(region, speed, course)
	}
}

func (m MultiSink) OnMonitoringFailed(region model.Region, err error) {
	for _, s := range m {
		s.OnMonitoringFailed(region, err)
	}
}
