package logic

import "time"

// Default setpoints for the enclosure.
const (
	DefaultTempSetpoint     = 40.0 // °C
	DefaultTempDeadband     = 2.0  // °C
	DefaultHumiditySetpoint = 50.0 // %RH
	DefaultAerationInterval = 10 * time.Second
	DefaultAerationPulse    = 2 * time.Second
)

// DecideLamp applies a deadband around the temperature setpoint.
// Inside [setpoint-deadband, setpoint+deadband] the previous state is kept.
func DecideLamp(filteredTemp, setpoint, deadband float64, previousOn bool) bool {
	switch {
	case filteredTemp < setpoint-deadband:
		return true
	case filteredTemp > setpoint+deadband:
		return false
	default:
		return previousOn
	}
}

// DecideWaterPump runs the pump whenever humidity is below the setpoint.
// There is no deadband, so the pump can chatter when humidity sits on the
// setpoint. DecideWaterPumpHysteresis is the opt-in alternative.
func DecideWaterPump(filteredHumidity, setpoint float64) bool {
	return filteredHumidity < setpoint
}

// DecideWaterPumpHysteresis is DecideWaterPump with the lamp's deadband rule.
// It is only used when a positive humidity deadband is configured.
func DecideWaterPumpHysteresis(filteredHumidity, setpoint, deadband float64, previousOn bool) bool {
	return DecideLamp(filteredHumidity, setpoint, deadband, previousOn)
}

// DecideAeration reports whether an aeration pulse is due at now.
// When it is, the returned timer has LastActivation set to now.
// The caller performs the pulse itself.
func DecideAeration(now time.Time, timer AerationTimer) (AerationTimer, bool) {
	if now.Sub(timer.LastActivation) < timer.Interval {
		return timer, false
	}
	timer.LastActivation = now
	return timer, true
}

// DecideDrainValve drives the valve HIGH while the level sensor reads LOW
// and holds it LOW once the sensor signals full.
func DecideDrainValve(levelSensorHigh bool) bool {
	return !levelSensorHigh
}
