package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecideLamp(t *testing.T) {
	tests := []struct {
		name     string
		temp     float64
		previous bool
		want     bool
	}{
		{"cold turns on", 37.9, false, true},
		{"cold stays on", 30, true, true},
		{"hot turns off", 42.1, true, false},
		{"hot stays off", 50, false, false},
		{"deadband keeps on", 40, true, true},
		{"deadband keeps off", 40, false, false},
		{"lower edge keeps off", 38, false, false},
		{"upper edge keeps on", 42, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecideLamp(tt.temp, DefaultTempSetpoint, DefaultTempDeadband, tt.previous)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecideLampStickyInsideDeadband(t *testing.T) {
	for _, start := range []bool{true, false} {
		state := start
		for _, temp := range []float64{38, 39.5, 41.99, 40, 42, 38.01} {
			state = DecideLamp(temp, 40, 2, state)
			assert.Equal(t, start, state, "temp=%v", temp)
		}
	}
}

func TestDecideLampIdempotentOutsideDeadband(t *testing.T) {
	state := false
	for i := 0; i < 5; i++ {
		state = DecideLamp(30, 40, 2, state)
		assert.True(t, state)
	}
	for i := 0; i < 5; i++ {
		state = DecideLamp(50, 40, 2, state)
		assert.False(t, state)
	}
}

func TestDecideWaterPump(t *testing.T) {
	assert.True(t, DecideWaterPump(49.99, 50))
	assert.False(t, DecideWaterPump(50, 50))
	assert.False(t, DecideWaterPump(80, 50))
}

func TestDecideWaterPumpHysteresis(t *testing.T) {
	assert.True(t, DecideWaterPumpHysteresis(44, 50, 5, false))
	assert.True(t, DecideWaterPumpHysteresis(52, 50, 5, true))
	assert.False(t, DecideWaterPumpHysteresis(48, 50, 5, false))
	assert.False(t, DecideWaterPumpHysteresis(56, 50, 5, true))
}

func TestDecideAeration(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	timer := AerationTimer{LastActivation: start, Interval: 10 * time.Second, Pulse: 2 * time.Second}

	next, pulse := DecideAeration(start.Add(9999*time.Millisecond), timer)
	assert.False(t, pulse)
	assert.Equal(t, timer, next)

	next, pulse = DecideAeration(start.Add(10*time.Second), timer)
	assert.True(t, pulse)
	assert.True(t, next.LastActivation.Equal(start.Add(10*time.Second)))
	assert.Equal(t, timer.Interval, next.Interval)
	assert.Equal(t, timer.Pulse, next.Pulse)
}

func TestDecideAerationAtMostOncePerInterval(t *testing.T) {
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	timer := AerationTimer{LastActivation: start, Interval: 10 * time.Second}

	var pulses []time.Time
	for ms := 0; ms <= 60000; ms += 700 {
		now := start.Add(time.Duration(ms) * time.Millisecond)
		var pulse bool
		timer, pulse = DecideAeration(now, timer)
		if pulse {
			pulses = append(pulses, now)
		}
	}

	assert.NotEmpty(t, pulses)
	assert.GreaterOrEqual(t, pulses[0].Sub(start), 10*time.Second)
	for i := 1; i < len(pulses); i++ {
		assert.GreaterOrEqual(t, pulses[i].Sub(pulses[i-1]), 10*time.Second)
	}
}

func TestDecideDrainValve(t *testing.T) {
	assert.True(t, DecideDrainValve(false))
	assert.False(t, DecideDrainValve(true))
}
