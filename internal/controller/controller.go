// Package controller runs one control tick at a time: acquire, filter,
// decide, actuate, encode and emit.
package controller

import (
	"log/slog"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/sweeney/compost-controller/internal/config"
	"github.com/sweeney/compost-controller/internal/display"
	"github.com/sweeney/compost-controller/internal/gpio"
	"github.com/sweeney/compost-controller/internal/logic"
	"github.com/sweeney/compost-controller/internal/sensor"
	"github.com/sweeney/compost-controller/internal/telemetry"
)

// ErrInvalidReading means the tick was skipped and no state changed.
var ErrInvalidReading = errors.New("invalid reading")

// Emitter hands a telemetry message to the transport.
// Implementations must not block for long or retry.
type Emitter interface {
	Emit(msg telemetry.Message) error
}

// Result describes a completed tick. The aeration pulse finishes inside the
// tick, so Actuators.AerationPump is always the resting level; Pulsed and
// LastAeration report the pulse.
type Result struct {
	Time         time.Time
	Readings     logic.Readings
	Gases        []logic.GasEstimate
	Actuators    logic.Actuators
	Pulsed       bool
	LastAeration time.Time
	Message      telemetry.Message
	Display      [display.Rows]string
}

// Controller owns the loop state and its hardware collaborators.
// Not safe for concurrent use.
type Controller struct {
	cfg     config.Control
	sensors sensor.Source
	board   gpio.Board
	emitter Emitter
	display display.Display
	log     *slog.Logger

	// Sleep holds the aeration pump on. Tests replace it.
	Sleep func(time.Duration)

	state  *State
	counts Counts
}

// New creates a Controller whose aeration timer starts at start.
func New(cfg config.Config, sensors sensor.Source, board gpio.Board, emitter Emitter, disp display.Display, start time.Time) *Controller {
	timer := logic.AerationTimer{Interval: cfg.Aeration.Interval, Pulse: cfg.Aeration.Pulse}
	return &Controller{
		cfg:     cfg.Control,
		sensors: sensors,
		board:   board,
		emitter: emitter,
		display: disp,
		log:     slog.Default().With("component", "controller"),
		Sleep:   time.Sleep,
		state:   NewState(cfg.Control.FilterWindow, timer, start),
	}
}

// Start drives every actuator to its initial state and shows the splash.
func (c *Controller) Start() {
	for _, id := range logic.AllActuators {
		c.set(id, c.state.Actuators.Get(id))
	}
	display.Show(c.display, display.Splash())
}

// State returns a copy of the loop state.
func (c *Controller) State() *State {
	return c.state.Clone()
}

// Counts returns tick statistics.
func (c *Controller) Counts() Counts {
	return c.counts
}

// Tick runs one iteration. An error wrapping ErrInvalidReading means the
// tick was rejected before any state changed; any other error is a broken
// invariant and the loop should stop.
func (c *Controller) Tick(now time.Time) (Result, error) {
	raw, err := sensor.ReadAll(c.sensors)
	if err != nil {
		return c.reject(err.Error())
	}
	if !finite(raw.Temperature) || !finite(raw.Humidity) {
		return c.reject("temperature/humidity is not a finite number")
	}
	levelHigh, err := c.board.ReadLevel()
	if err != nil {
		return c.reject(err.Error())
	}

	s := c.state
	s.Temperature.Insert(raw.Temperature)
	s.Humidity.Insert(raw.Humidity)
	s.PH.Insert(logic.PHFromRaw(raw.Analog[sensor.PH]))

	readings := logic.Readings{SoilMoisture: logic.SoilMoisturePercent(raw.Analog[sensor.SoilMoisture])}
	for _, m := range []struct {
		f   *logic.Filter
		dst *float64
	}{
		{s.Temperature, &readings.Temperature},
		{s.Humidity, &readings.Humidity},
		{s.PH, &readings.PH},
	} {
		if *m.dst, err = m.f.Mean(); err != nil {
			return Result{}, errors.Wrap(err, "tick")
		}
	}

	next := s.Actuators
	next.Lamp = logic.DecideLamp(readings.Temperature, c.cfg.TempSetpoint, c.cfg.TempDeadband, s.Actuators.Lamp)
	if c.cfg.HumidityDeadband > 0 {
		next.WaterPump = logic.DecideWaterPumpHysteresis(readings.Humidity, c.cfg.HumiditySetpoint, c.cfg.HumidityDeadband, s.Actuators.WaterPump)
	} else {
		next.WaterPump = logic.DecideWaterPump(readings.Humidity, c.cfg.HumiditySetpoint)
	}
	next.DrainValve = logic.DecideDrainValve(levelHigh)

	if next.Lamp != s.Actuators.Lamp {
		c.counts.LampSwitches++
		c.log.Info("lamp switched", "on", next.Lamp, "temperature", readings.Temperature)
	}
	c.set(logic.Lamp, next.Lamp)
	c.set(logic.WaterPump, next.WaterPump)
	c.set(logic.DrainValve, next.DrainValve)
	s.Actuators = next

	var pulsed bool
	s.Aeration, pulsed = logic.DecideAeration(now, s.Aeration)
	if pulsed {
		c.pulseAeration(s.Aeration.Pulse)
	}

	gases := logic.Breakdown(
		logic.GasPPM(raw.Analog[sensor.Gas1]),
		logic.GasPPM(raw.Analog[sensor.Gas2]),
		logic.GasPPM(raw.Analog[sensor.Gas3]),
	)

	msg := telemetry.New(readings, gases)
	if err := c.emitter.Emit(msg); err != nil {
		c.counts.EmitFailures++
		c.log.Warn("telemetry dropped", "err", err)
	}

	lines := display.Summary(readings)
	display.Show(c.display, lines)

	c.counts.Ticks++
	return Result{
		Time:         now,
		Readings:     readings,
		Gases:        gases,
		Actuators:    s.Actuators,
		Pulsed:       pulsed,
		LastAeration: s.Aeration.LastActivation,
		Message:      msg,
		Display:      lines,
	}, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (c *Controller) reject(reason string) (Result, error) {
	c.counts.Rejected++
	c.log.Warn("sensor read rejected, skipping tick", "reason", reason)
	return Result{}, errors.Wrap(ErrInvalidReading, reason)
}

// pulseAeration is the only blocking step of a tick.
func (c *Controller) pulseAeration(d time.Duration) {
	c.counts.Pulses++
	c.log.Debug("aeration pulse", "duration", d)
	c.set(logic.AerationPump, true)
	c.Sleep(d)
	c.set(logic.AerationPump, false)
}

func (c *Controller) set(id logic.Actuator, on bool) {
	if err := c.board.Set(id, on); err != nil {
		c.log.Error("actuator write failed", "actuator", id, "on", on, "err", err)
	}
}
