// Package gpio drives the enclosure relays and reads the level sensor with
// hardware abstraction.
// The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"fmt"

	"github.com/sweeney/compost-controller/internal/logic"
)

// Board is the digital I/O surface of the enclosure.
type Board interface {
	// Set drives an actuator output. true = HIGH.
	Set(id logic.Actuator, on bool) error

	// ReadLevel returns true when the reservoir level sensor reads HIGH.
	ReadLevel() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Default pin assignments (BCM numbering).
const (
	DefaultPinLamp       = 17
	DefaultPinWaterPump  = 27
	DefaultPinAeration   = 22
	DefaultPinDrainValve = 23
	DefaultPinLevel      = 24
)

// Pins maps each actuator and the level sensor to a BCM line offset.
type Pins struct {
	Lamp       int
	WaterPump  int
	Aeration   int
	DrainValve int
	Level      int
}

// DefaultPins returns the default wiring.
func DefaultPins() Pins {
	return Pins{
		Lamp:       DefaultPinLamp,
		WaterPump:  DefaultPinWaterPump,
		Aeration:   DefaultPinAeration,
		DrainValve: DefaultPinDrainValve,
		Level:      DefaultPinLevel,
	}
}

// Output returns the line offset for an actuator.
func (p Pins) Output(id logic.Actuator) (int, bool) {
	switch id {
	case logic.Lamp:
		return p.Lamp, true
	case logic.WaterPump:
		return p.WaterPump, true
	case logic.AerationPump:
		return p.Aeration, true
	case logic.DrainValve:
		return p.DrainValve, true
	}
	return 0, false
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}

func errUnknownActuator(id logic.Actuator) error {
	return fmt.Errorf("unknown actuator %q", id)
}
