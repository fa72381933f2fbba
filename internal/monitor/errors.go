package monitor

import "github.com/rotisserie/eris"

// ErrAuthorizationDenied is returned when the user has declined the
// authorization level the configured mode requires. It is propagated to the
// caller and never retried internally.
var ErrAuthorizationDenied = eris.New("monitor: authorization denied")

// ErrMonitoringUnsupported is returned by native monitor adapters on
// platforms without region monitoring. Arm attempts against such a platform
// are dropped and logged; software mode remains available.
var ErrMonitoringUnsupported = eris.New("monitor: native region monitoring unsupported")

// ErrNotStopped is returned by Reconfigure when the coordinator is running.
// A mode or capacity change requires a full stop first so that mixed-mode
// event emission can never be observed.
var ErrNotStopped = eris.New("monitor: coordinator must be stopped to reconfigure")
