// Package logic contains the pure signal-conditioning and control rules for the
// compost enclosure. This package has NO hardware, MQTT, OS, or time.Sleep
// dependencies. Time is always injectable via time.Time parameters.
package logic

import "time"

// Actuator identifies one of the enclosure's driven outputs.
type Actuator string

const (
	Lamp         Actuator = "lamp"
	WaterPump    Actuator = "water_pump"
	AerationPump Actuator = "aeration_pump"
	DrainValve   Actuator = "drain_valve"
)

// AllActuators lists the actuators in wiring order.
var AllActuators = []Actuator{Lamp, WaterPump, AerationPump, DrainValve}

// Actuators holds the commanded state of every actuator.
// true means the output is driven HIGH.
type Actuators struct {
	Lamp         bool
	WaterPump    bool
	AerationPump bool
	DrainValve   bool
}

// Get returns the state of a single actuator.
func (a Actuators) Get(id Actuator) bool {
	switch id {
	case Lamp:
		return a.Lamp
	case WaterPump:
		return a.WaterPump
	case AerationPump:
		return a.AerationPump
	case DrainValve:
		return a.DrainValve
	}
	return false
}

// Set updates one actuator. It reports false for an unknown id.
func (a *Actuators) Set(id Actuator, on bool) bool {
	switch id {
	case Lamp:
		a.Lamp = on
	case WaterPump:
		a.WaterPump = on
	case AerationPump:
		a.AerationPump = on
	case DrainValve:
		a.DrainValve = on
	default:
		return false
	}
	return true
}

// InitialActuators is the safe power-on state: everything off except the
// drain valve, which idles HIGH.
func InitialActuators() Actuators {
	return Actuators{DrainValve: true}
}

// Readings are the filtered and derived values produced by one tick.
type Readings struct {
	Temperature  float64 // °C, moving average
	Humidity     float64 // %RH, moving average
	PH           float64 // moving average
	SoilMoisture int     // percent, 0..100
}

// AerationTimer gates the aeration pump pulses.
type AerationTimer struct {
	LastActivation time.Time
	Interval       time.Duration
	Pulse          time.Duration
}
