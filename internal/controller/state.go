package controller

import (
	"time"

	"github.com/sweeney/compost-controller/internal/logic"
)

// State is everything the loop carries from one tick to the next.
type State struct {
	Temperature *logic.Filter
	Humidity    *logic.Filter
	PH          *logic.Filter
	Actuators   logic.Actuators
	Aeration    logic.AerationTimer
}

// NewState creates zeroed filters, the safe actuator state and an aeration
// timer that first fires one interval after start.
func NewState(window int, aeration logic.AerationTimer, start time.Time) *State {
	aeration.LastActivation = start
	return &State{
		Temperature: logic.NewFilter(window),
		Humidity:    logic.NewFilter(window),
		PH:          logic.NewFilter(window),
		Actuators:   logic.InitialActuators(),
		Aeration:    aeration,
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	return &State{
		Temperature: s.Temperature.Clone(),
		Humidity:    s.Humidity.Clone(),
		PH:          s.PH.Clone(),
		Actuators:   s.Actuators,
		Aeration:    s.Aeration,
	}
}

// Counts are tick statistics since startup.
type Counts struct {
	Ticks        int
	Rejected     int
	Pulses       int
	LampSwitches int
	EmitFailures int
}
