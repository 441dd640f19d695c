// Package config holds the controller's tunable parameters and loads them
// from an optional TOML file.
package config

import (
	"os"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"github.com/sweeney/compost-controller/internal/logic"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full set of tunables.
type Config struct {
	Control   Control
	Aeration  Aeration
	Loop      Loop
	Telemetry Telemetry
}

// Control holds setpoints and the filter window.
type Control struct {
	TempSetpoint     float64
	TempDeadband     float64
	HumiditySetpoint float64
	// HumidityDeadband > 0 switches the water pump to hysteresis control.
	HumidityDeadband float64
	FilterWindow     int
}

// Aeration holds the pump timing.
type Aeration struct {
	Interval time.Duration
	Pulse    time.Duration
}

// Loop holds the tick cadence.
type Loop struct {
	Delay time.Duration
}

// Telemetry holds transport tuning.
type Telemetry struct {
	Topic              string
	SystemTopic        string
	PublishTimeout     time.Duration
	BreakerFailures    int
	BreakerOpenTimeout time.Duration
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Control: Control{
			TempSetpoint:     logic.DefaultTempSetpoint,
			TempDeadband:     logic.DefaultTempDeadband,
			HumiditySetpoint: logic.DefaultHumiditySetpoint,
			FilterWindow:     logic.DefaultWindow,
		},
		Aeration: Aeration{
			Interval: logic.DefaultAerationInterval,
			Pulse:    logic.DefaultAerationPulse,
		},
		Loop: Loop{
			Delay: time.Second,
		},
		Telemetry: Telemetry{
			Topic:              "compost/enclosure/telemetry",
			SystemTopic:        "compost/enclosure/system",
			PublishTimeout:     500 * time.Millisecond,
			BreakerFailures:    3,
			BreakerOpenTimeout: 30 * time.Second,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	return Parse(data)
}

// Parse reads TOML over the defaults and validates the result.
// Keys absent from the document keep their default values.
func Parse(data []byte) (Config, error) {
	tree, err := toml.LoadBytes(data)
	if err != nil {
		return Config{}, errors.Wrap(err, "parse config")
	}

	cfg := Default()
	r := reader{tree: tree}
	r.floatAt("control.temp_setpoint", &cfg.Control.TempSetpoint)
	r.floatAt("control.temp_deadband", &cfg.Control.TempDeadband)
	r.floatAt("control.humidity_setpoint", &cfg.Control.HumiditySetpoint)
	r.floatAt("control.humidity_deadband", &cfg.Control.HumidityDeadband)
	r.intAt("control.filter_window", &cfg.Control.FilterWindow)
	r.durationAt("aeration.interval", &cfg.Aeration.Interval)
	r.durationAt("aeration.pulse", &cfg.Aeration.Pulse)
	r.durationAt("loop.delay", &cfg.Loop.Delay)
	r.stringAt("telemetry.topic", &cfg.Telemetry.Topic)
	r.stringAt("telemetry.system_topic", &cfg.Telemetry.SystemTopic)
	r.durationAt("telemetry.publish_timeout", &cfg.Telemetry.PublishTimeout)
	r.intAt("telemetry.breaker_failures", &cfg.Telemetry.BreakerFailures)
	r.durationAt("telemetry.breaker_open", &cfg.Telemetry.BreakerOpenTimeout)
	if r.err != nil {
		return Config{}, r.err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the control loop cannot run with.
func (c Config) Validate() error {
	switch {
	case c.Control.FilterWindow < 1:
		return errors.Wrapf(ErrInvalidConfig, "control.filter_window must be >= 1, got %d", c.Control.FilterWindow)
	case c.Control.TempDeadband < 0:
		return errors.Wrapf(ErrInvalidConfig, "control.temp_deadband must be >= 0, got %v", c.Control.TempDeadband)
	case c.Control.HumidityDeadband < 0:
		return errors.Wrapf(ErrInvalidConfig, "control.humidity_deadband must be >= 0, got %v", c.Control.HumidityDeadband)
	case c.Aeration.Interval <= 0:
		return errors.Wrapf(ErrInvalidConfig, "aeration.interval must be > 0, got %v", c.Aeration.Interval)
	case c.Aeration.Pulse < 0:
		return errors.Wrapf(ErrInvalidConfig, "aeration.pulse must be >= 0, got %v", c.Aeration.Pulse)
	case c.Loop.Delay <= 0:
		return errors.Wrapf(ErrInvalidConfig, "loop.delay must be > 0, got %v", c.Loop.Delay)
	case c.Telemetry.Topic == "":
		return errors.Wrap(ErrInvalidConfig, "telemetry.topic must not be empty")
	case c.Telemetry.SystemTopic == "":
		return errors.Wrap(ErrInvalidConfig, "telemetry.system_topic must not be empty")
	case c.Telemetry.PublishTimeout <= 0:
		return errors.Wrapf(ErrInvalidConfig, "telemetry.publish_timeout must be > 0, got %v", c.Telemetry.PublishTimeout)
	case c.Telemetry.BreakerFailures < 1:
		return errors.Wrapf(ErrInvalidConfig, "telemetry.breaker_failures must be >= 1, got %d", c.Telemetry.BreakerFailures)
	case c.Telemetry.BreakerOpenTimeout <= 0:
		return errors.Wrapf(ErrInvalidConfig, "telemetry.breaker_open must be > 0, got %v", c.Telemetry.BreakerOpenTimeout)
	}
	return nil
}

// reader copies typed values out of a tree, keeping the first error.
type reader struct {
	tree *toml.Tree
	err  error
}

func (r *reader) get(key string) (interface{}, bool) {
	if r.err != nil || !r.tree.Has(key) {
		return nil, false
	}
	return r.tree.Get(key), true
}

func (r *reader) fail(key string, v interface{}, want string) {
	r.err = errors.Wrapf(ErrInvalidConfig, "%s: expected %s, got %T", key, want, v)
}

func (r *reader) floatAt(key string, dst *float64) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	switch n := v.(type) {
	case float64:
		*dst = n
	case int64:
		*dst = float64(n)
	default:
		r.fail(key, v, "number")
	}
}

func (r *reader) intAt(key string, dst *int) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	n, isInt := v.(int64)
	if !isInt {
		r.fail(key, v, "integer")
		return
	}
	*dst = int(n)
}

func (r *reader) stringAt(key string, dst *string) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	s, isString := v.(string)
	if !isString {
		r.fail(key, v, "string")
		return
	}
	*dst = s
}

func (r *reader) durationAt(key string, dst *time.Duration) {
	var s string
	r.stringAt(key, &s)
	if r.err != nil || s == "" {
		return
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		r.err = errors.Wrapf(ErrInvalidConfig, "%s: %v", key, err)
		return
	}
	*dst = d
}
