package monitor

import "github.com/rotisserie/eris"

// Mode selects how boundary crossings are detected.
type Mode string

const (
	// ModeNative delegates crossing detection to the platform's region
	// monitor, limited to Capacity concurrently armed regions.
	ModeNative Mode = "native"
	// ModeSoftware computes containment locally from the position stream,
	// with no capacity limit.
	ModeSoftware Mode = "software"
)

// Strategy selects the position feed used to keep the native working set
// current as the user moves.
type Strategy string

const (
	// StrategyNone establishes no feed; the working set refreshes only on
	// candidate mutations and one-shot fixes.
	StrategyNone Strategy = "none"
	// StrategyCoarse subscribes to significant-change updates.
	StrategyCoarse Strategy = "coarse"
	// StrategyContinuous subscribes to the full-rate position feed.
	StrategyContinuous Strategy = "continuous"
)

// DefaultCapacity is the native monitoring slot limit documented by the
// platform.
const DefaultCapacity = 20

// Config is the immutable coordinator configuration, fixed at construction.
// Changing it requires a full stop and Reconfigure.
type Config struct {
	// Mode selects native or software crossing detection.
	Mode Mode
	// Capacity caps the native working set; ignored in software mode.
	Capacity int
	// Strategy selects the refresh feed in native mode; software mode always
	// uses the continuous feed.
	Strategy Strategy
	// RequiredAuthorization overrides the authorization level demanded
	// before feeds start. Zero value derives it from Mode: software needs
	// Always, native runs under WhileInUse.
	RequiredAuthorization AuthorizationLevel
	// Continuous tunes the full-rate feed.
	Continuous ContinuousOptions
}

// withDefaults fills unset fields.
func (c Config) withDefaults() Config {
	if c.Mode == "" {
		c.Mode = ModeNative
	}
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.Strategy == "" {
		c.Strategy = StrategyContinuous
	}
	if c.RequiredAuthorization == AuthorizationNotDetermined {
		if c.Mode == ModeSoftware {
			c.RequiredAuthorization = AuthorizationAlways
		} else {
			c.RequiredAuthorization = AuthorizationWhileInUse
		}
	}
	return c
}

// Validate rejects unknown enum values.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeNative, ModeSoftware:
	default:
		return eris.Errorf("monitor: unknown mode %q", c.Mode)
	}
	switch c.Strategy {
	case StrategyNone, StrategyCoarse, StrategyContinuous:
	default:
		return eris.Errorf("monitor: unknown strategy %q", c.Strategy)
	}
	if c.RequiredAuthorization == AuthorizationDenied {
		return eris.New("monitor: required authorization cannot be denied")
	}
	return nil
}
