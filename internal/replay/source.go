package replay

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/geofencer/internal/model"
	"github.com/sells-group/geofencer/internal/monitor"
)

// coarseStride is how many track points a coarse feed skips between
// deliveries, approximating a significant-change service.
const coarseStride = 5

// Source replays a track through the monitor.PositionSource interface.
// Handler callbacks are serialized: no two deliveries run concurrently.
//
// A Source starts with no authorization. Call GrantAuthorization (or
// DenyAuthorization) after the coordinator is bound to simulate the
// platform's permission prompt resolving.
type Source struct {
	mu      sync.Mutex
	track   []model.Position
	limiter *rate.Limiter
	log     *zap.Logger

	handler monitor.PositionHandler
	auth    monitor.AuthorizationLevel
	cursor  int
	cancel  context.CancelFunc

	doneOnce sync.Once
	done     chan struct{}

	// cbMu serializes handler callbacks across goroutines.
	cbMu sync.Mutex
}

// NewSource builds a replay source delivering at most one sample per
// interval once a feed is started.
func NewSource(track []model.Position, interval time.Duration) *Source {
	if interval <= 0 {
		interval = time.Second
	}
	return &Source{
		track:   track,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		log:     zap.L().With(zap.String("component", "replay")),
		done:    make(chan struct{}),
	}
}

// Bind attaches the handler that receives deliveries. It must be called
// before any feed is started.
func (s *Source) Bind(h monitor.PositionHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = h
}

// Done is closed once the track is exhausted.
func (s *Source) Done() <-chan struct{} {
	return s.done
}

// GrantAuthorization simulates the platform granting location access.
func (s *Source) GrantAuthorization(level monitor.AuthorizationLevel) {
	s.mu.Lock()
	s.auth = level
	h := s.handler
	s.mu.Unlock()
	if h != nil {
		s.cbMu.Lock()
		h.OnAuthorizationChanged(level)
		s.cbMu.Unlock()
	}
}

// DenyAuthorization simulates the user declining location access.
func (s *Source) DenyAuthorization() {
	s.GrantAuthorization(monitor.AuthorizationDenied)
}

func (s *Source) RequestOneShotFix() error {
	s.mu.Lock()
	h := s.handler
	if h == nil {
		s.mu.Unlock()
		return eris.New("replay: no handler bound")
	}
	if !s.auth.Satisfies(monitor.AuthorizationWhileInUse) {
		s.mu.Unlock()
		return monitor.ErrAuthorizationDenied
	}
	if s.cursor >= len(s.track) {
		s.mu.Unlock()
		return eris.New("replay: track exhausted")
	}
	fix := s.track[s.cursor]
	s.mu.Unlock()

	go s.deliver(h, fix)
	return nil
}

func (s *Source) StartContinuousUpdates(monitor.ContinuousOptions) error {
	return s.startFeed(1)
}

func (s *Source) StopContinuousUpdates() {
	s.stopFeed()
}

func (s *Source) StartCoarseUpdates() error {
	return s.startFeed(coarseStride)
}

func (s *Source) StopCoarseUpdates() {
	s.stopFeed()
}

func (s *Source) startFeed(stride int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.handler == nil {
		return eris.New("replay: no handler bound")
	}
	if !s.auth.Satisfies(monitor.AuthorizationWhileInUse) {
		return monitor.ErrAuthorizationDenied
	}
	if s.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.run(ctx, stride)
	return nil
}

// stopFeed cancels the feed goroutine without waiting for it. The
// coordinator calls this from inside its own lock; a delivery already in
// flight may still land and is handled as a stale sample.
func (s *Source) stopFeed() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *Source) run(ctx context.Context, stride int) {
	for {
		if err := s.limiter.Wait(ctx); err != nil {
			return
		}

		s.mu.Lock()
		if s.cursor >= len(s.track) {
			s.mu.Unlock()
			s.log.Debug("track exhausted")
			s.doneOnce.Do(func() { close(s.done) })
			return
		}
		fix := s.track[s.cursor]
		s.cursor += stride
		h := s.handler
		s.mu.Unlock()

		s.deliver(h, fix)
	}
}

func (s *Source) deliver(h monitor.PositionHandler, fix model.Position) {
	if fix.Timestamp.IsZero() {
		fix.Timestamp = time.Now().UTC()
	}
	s.cbMu.Lock()
	h.OnPositionUpdate([]model.Position{fix})
	s.cbMu.Unlock()
}
