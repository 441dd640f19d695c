// Package status provides a thread-safe view of the controller for the
// HTTP server, the metrics collector and lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/compost-controller/internal/controller"
	"github.com/sweeney/compost-controller/internal/display"
	"github.com/sweeney/compost-controller/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	Instance         string
	DelayMs          int64
	AerationMs       int64
	PulseMs          int64
	TempSetpoint     float64
	TempDeadband     float64
	HumiditySetpoint float64
	FilterWindow     int
	Transport        string
	Broker           string
	HTTPAddr         string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type; safe to use after the lock is released.
type Snapshot struct {
	Readings      logic.Readings
	Gases         []logic.GasEstimate
	Actuators     logic.Actuators
	Display       [display.Rows]string
	LastTick      time.Time
	LastAeration  time.Time
	Ready         bool
	Counts        controller.Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Actuators: logic.InitialActuators(),
			Display:   display.Splash(),
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Update records a completed tick.
func (t *Tracker) Update(res controller.Result, counts controller.Counts) {
	gases := append([]logic.GasEstimate(nil), res.Gases...)
	t.mu.Lock()
	t.snap.Readings = res.Readings
	t.snap.Gases = gases
	t.snap.Actuators = res.Actuators
	t.snap.Display = res.Display
	t.snap.LastTick = res.Time
	t.snap.LastAeration = res.LastAeration
	t.snap.Ready = true
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetCounts records statistics after a rejected tick.
func (t *Tracker) SetCounts(counts controller.Counts) {
	t.mu.Lock()
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	s.Gases = append([]logic.GasEstimate(nil), t.snap.Gases...)
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
