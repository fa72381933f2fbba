package monitor

import (
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geofencer/internal/model"
)

// State is the coordinator lifecycle state.
type State int

const (
	// StateStopped means no feeds run and nothing is armed.
	StateStopped State = iota
	// StateStartingPositionFeed means a start is pending an authorization
	// grant; it resumes when the grant arrives.
	StateStartingPositionFeed
	// StateActive means feeds run and samples are being routed.
	StateActive
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStartingPositionFeed:
		return "starting_position_feed"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// feedKind identifies which position feed a pending start refers to.
type feedKind int

const (
	feedNone feedKind = iota
	feedCoarse
	feedContinuous
)

// Coordinator owns the candidate set, the working-set selector, and the
// containment tracker, and routes every external callback to exactly one of
// them based on the configured mode. Construct one per application and share
// it by reference; there is no implicit global instance.
//
// One mutex guards all coordinator state so that partial updates across the
// candidate set, containment records, and armed set can never be observed.
// Callbacks are expected to arrive serialized (see PositionHandler), but the
// coordinator itself is safe for use from multiple goroutines.
type Coordinator struct {
	mu sync.Mutex

	cfg     Config
	source  PositionSource
	monitor NativeRegionMonitor
	sink    EventSink
	log     *zap.Logger

	state      State
	candidates CandidateSet
	selector   *workingSetSelector
	tracker    *containmentTracker

	lastKnown     *model.Position
	auth          AuthorizationLevel
	pendingFeed   feedKind
	activeFeed    feedKind
	shouldMonitor bool
}

// New creates a stopped Coordinator. The sink may be nil when the caller
// only wants native callbacks logged.
func New(cfg Config, source PositionSource, nm NativeRegionMonitor, sink EventSink) (*Coordinator, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, eris.New("monitor: nil position source")
	}
	if cfg.Mode == ModeNative && nm == nil {
		return nil, eris.New("monitor: native mode requires a region monitor")
	}
	if sink == nil {
		sink = BaseEventSink{}
	}

	c := &Coordinator{
		cfg:           cfg,
		source:        source,
		monitor:       nm,
		sink:          sink,
		log:           zap.L().With(zap.String("component", "monitor.coordinator")),
		state:         StateStopped,
		tracker:       newContainmentTracker(sink),
		shouldMonitor: true,
	}
	if nm != nil {
		c.selector = newWorkingSetSelector(nm, sink, cfg.Capacity)
	}
	return c, nil
}

// Config returns the active configuration.
func (c *Coordinator) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// State returns the lifecycle state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start brings the coordinator up. If the required authorization level has
// not been granted yet the start is parked until an authorization change
// arrives; an already-observed denial fails immediately. Starting a running
// coordinator is a no-op.
func (c *Coordinator) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateStopped {
		return nil
	}
	if c.auth == AuthorizationDenied {
		return eris.Wrap(ErrAuthorizationDenied, "start")
	}

	want := c.desiredFeed()
	if !c.auth.Satisfies(c.cfg.RequiredAuthorization) {
		c.pendingFeed = want
		c.state = StateStartingPositionFeed
		c.log.Info("start pending authorization",
			zap.String("required", c.cfg.RequiredAuthorization.String()),
			zap.String("granted", c.auth.String()),
		)
		return nil
	}

	c.activate(want)
	return nil
}

// Stop halts feeds, disarms every native region, and returns to Stopped.
// The candidate set and last-known position survive. Idempotent.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopServices()
	c.pendingFeed = feedNone
	c.state = StateStopped
	c.log.Info("stopped")
}

// Reconfigure swaps the configuration. Only legal while stopped: a mode
// switch mid-flight could interleave native and software events.
func (c *Coordinator) Reconfigure(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateStopped {
		return eris.Wrap(ErrNotStopped, "reconfigure")
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.Mode == ModeNative && c.monitor == nil {
		return eris.New("monitor: native mode requires a region monitor")
	}

	c.cfg = cfg
	if c.monitor != nil {
		c.selector = newWorkingSetSelector(c.monitor, c.sink, cfg.Capacity)
	}
	c.tracker.reset()
	return nil
}

// AddRegion validates and appends a candidate region, then requests a
// working-set refresh.
func (c *Coordinator) AddRegion(r model.Region) error {
	if err := r.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.candidates.Add(r)
	c.requestRefresh()
	return nil
}

// AddRegions appends several regions with a single refresh request. The
// first invalid region aborts the batch before anything is inserted.
func (c *Coordinator) AddRegions(regions []model.Region) error {
	for _, r := range regions {
		if err := r.Validate(); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range regions {
		c.candidates.Add(r)
	}
	if len(regions) > 0 {
		c.requestRefresh()
	}
	return nil
}

// RemoveRegion deletes the first candidate structurally equal to r.
// Removing an unknown region is a tolerated no-op. When the set becomes
// empty all monitoring services are disabled.
func (c *Coordinator) RemoveRegion(r model.Region) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.candidates.Remove(r) {
		return
	}
	if !c.candidates.ContainsID(r.ID) {
		c.tracker.forget(r.ID)
	}

	if c.candidates.Len() == 0 {
		c.disableServices()
		return
	}
	c.requestRefresh()
}

// RemoveAllRegions clears the candidate set, disarms everything, and stops
// the feeds.
func (c *Coordinator) RemoveAllRegions() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.candidates.Clear()
	c.tracker.reset()
	c.disableServices()
}

// Regions returns the candidate set in insertion order.
func (c *Coordinator) Regions() []model.Region {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.candidates.Regions()
}

// ArmedRegions returns the natively armed working set, or nil in software
// mode.
func (c *Coordinator) ArmedRegions() []model.Region {
	if c.monitor == nil {
		return nil
	}
	return c.monitor.CurrentlyArmed()
}

// LastKnownPosition returns the most recent sample, if any was ever
// delivered.
func (c *Coordinator) LastKnownPosition() (model.Position, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastKnown == nil {
		return model.Position{}, false
	}
	return *c.lastKnown, true
}

// ShouldMonitorRegions reports the monitoring toggle.
func (c *Coordinator) ShouldMonitorRegions() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shouldMonitor
}

// SetShouldMonitorRegions toggles monitoring without discarding the
// candidate set. Turning it off disarms native regions (native mode) or
// stops the position feed (software mode); turning it back on re-triggers a
// refresh.
func (c *Coordinator) SetShouldMonitorRegions(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.shouldMonitor == enabled {
		return
	}
	c.shouldMonitor = enabled

	if !enabled {
		if c.cfg.Mode == ModeNative {
			if c.monitor != nil {
				c.monitor.DisarmAll()
			}
		} else {
			c.stopFeed()
		}
		return
	}
	if c.state == StateActive {
		c.startFeed(c.desiredFeed())
		c.requestRefresh()
	}
}

// OnPositionUpdate implements PositionHandler. The last sample of a batch
// becomes the last-known position. A delivery landing after Stop (a
// straggling one-shot fix) only updates the last-known position; nothing is
// routed and no events fire.
func (c *Coordinator) OnPositionUpdate(samples []model.Position) {
	if len(samples) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	last := samples[len(samples)-1]
	c.lastKnown = &last

	if c.state != StateActive {
		return
	}

	c.sink.OnPositionUpdate(samples)

	if !c.shouldMonitor || c.candidates.Len() == 0 {
		return
	}

	switch c.cfg.Mode {
	case ModeSoftware:
		for _, sample := range samples {
			c.tracker.observe(sample, c.candidates.Regions())
		}
	case ModeNative:
		if c.selector != nil {
			c.selector.refresh(last, c.candidates.Regions())
		}
	}
}

// OnAuthorizationChanged implements PositionHandler. A sufficient grant
// resumes a pending start; a denial while pending or active shuts the
// coordinator down.
func (c *Coordinator) OnAuthorizationChanged(level AuthorizationLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.auth = level
	c.log.Info("authorization changed", zap.String("level", level.String()))

	if level == AuthorizationDenied {
		if c.state != StateStopped {
			c.log.Warn("authorization denied, stopping monitoring services")
			c.stopServices()
			c.pendingFeed = feedNone
			c.state = StateStopped
		}
		return
	}

	if c.state == StateStartingPositionFeed && level.Satisfies(c.cfg.RequiredAuthorization) {
		want := c.pendingFeed
		c.pendingFeed = feedNone
		c.activate(want)
	}
}

// OnFailure implements PositionHandler. Transient feed failures are logged
// and otherwise ignored; restart policy belongs to the embedding
// application.
func (c *Coordinator) OnFailure(err error) {
	c.log.Warn("position source failure", zap.Error(err))
}

// OnRegionEntered implements NativeMonitorHandler, forwarding the native
// crossing with the last known motion attributes.
func (c *Coordinator) OnRegionEntered(region model.Region) {
	c.mu.Lock()
	defer c.mu.Unlock()
	speed, course := c.lastMotion()
	c.sink.OnRegionEntered(region, speed, course)
}

// OnRegionExited implements NativeMonitorHandler.
func (c *Coordinator) OnRegionExited(region model.Region) {
	c.mu.Lock()
	defer c.mu.Unlock()
	speed, course := c.lastMotion()
	c.sink.OnRegionExited(region, speed, course)
}

// OnArmed implements NativeMonitorHandler.
func (c *Coordinator) OnArmed(region model.Region) {
	c.log.Debug("region armed", zap.String("region_id", region.ID))
}

// OnArmFailed implements NativeMonitorHandler. The region is reported and
// not retried.
func (c *Coordinator) OnArmFailed(region model.Region, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.log.Warn("arm failed",
		zap.String("region_id", region.ID),
		zap.Error(err),
	)
	c.sink.OnMonitoringFailed(region, err)
}

// desiredFeed maps configuration to the feed the active mode needs.
// Software tracking cannot work without a continuous sample stream.
func (c *Coordinator) desiredFeed() feedKind {
	if c.cfg.Mode == ModeSoftware {
		return feedContinuous
	}
	switch c.cfg.Strategy {
	case StrategyCoarse:
		return feedCoarse
	case StrategyContinuous:
		return feedContinuous
	default:
		return feedNone
	}
}

// activate transitions to Active, starts the wanted feed, and kicks off the
// first refresh. Caller holds the lock.
func (c *Coordinator) activate(want feedKind) {
	c.state = StateActive
	if c.shouldMonitor {
		c.startFeed(want)
	}
	c.requestRefresh()
	c.log.Info("active",
		zap.String("mode", string(c.cfg.Mode)),
		zap.Int("candidates", c.candidates.Len()),
	)
}

// requestRefresh satisfies a refresh either immediately, by replaying the
// last-known position through the routing path, or by asking for a one-shot
// fix whose result arrives as a later position update. Caller holds the
// lock.
func (c *Coordinator) requestRefresh() {
	if c.state != StateActive || !c.shouldMonitor || c.candidates.Len() == 0 {
		return
	}

	// A refresh keeps the working set current as the user moves, so it also
	// (re)establishes the configured position feed if none is running.
	c.startFeed(c.desiredFeed())

	if c.lastKnown == nil {
		if err := c.source.RequestOneShotFix(); err != nil {
			c.log.Warn("one-shot fix request failed", zap.Error(err))
		}
		return
	}

	last := *c.lastKnown
	switch c.cfg.Mode {
	case ModeSoftware:
		c.tracker.observe(last, c.candidates.Regions())
	case ModeNative:
		if c.selector != nil {
			c.selector.refresh(last, c.candidates.Regions())
		}
	}
}

// startFeed subscribes the configured position feed. Caller holds the lock.
func (c *Coordinator) startFeed(want feedKind) {
	if c.activeFeed == want {
		return
	}
	c.stopFeed()

	switch want {
	case feedContinuous:
		if err := c.source.StartContinuousUpdates(c.cfg.Continuous); err != nil {
			c.log.Warn("continuous feed start failed", zap.Error(err))
			return
		}
	case feedCoarse:
		if err := c.source.StartCoarseUpdates(); err != nil {
			c.log.Warn("coarse feed start failed", zap.Error(err))
			return
		}
	default:
		return
	}
	c.activeFeed = want
}

// stopFeed unsubscribes whichever feed is running. Idempotent. Caller holds
// the lock.
func (c *Coordinator) stopFeed() {
	switch c.activeFeed {
	case feedContinuous:
		c.source.StopContinuousUpdates()
	case feedCoarse:
		c.source.StopCoarseUpdates()
	}
	c.activeFeed = feedNone
}

// stopServices halts feeds and disarms all native regions. Caller holds the
// lock.
func (c *Coordinator) stopServices() {
	c.stopFeed()
	if c.monitor != nil {
		c.monitor.DisarmAll()
	}
}

// disableServices is stopServices for the empty-candidate-set case: the
// coordinator stays Active so a later add resumes monitoring by itself.
// Caller holds the lock.
func (c *Coordinator) disableServices() {
	c.stopServices()
	c.log.Info("candidate set empty, monitoring services disabled")
}

// lastMotion returns the motion attributes of the last known sample, or
// unknown markers. Caller holds the lock.
func (c *Coordinator) lastMotion() (speed, course float64) {
	speed, course = model.ValueUnknown, model.ValueUnknown
	if c.lastKnown != nil {
		if c.lastKnown.HasSpeed() {
			speed = c.lastKnown.Speed
		}
		if c.lastKnown.HasCourse() {
			course = c.lastKnown.Course
		}
	}
	return speed, course
}
