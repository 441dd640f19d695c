//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/compost-controller/internal/logic"
)

const consumer = "compost-controller"

// RealBoard drives actual hardware using the Linux GPIO character device.
type RealBoard struct {
	chip    *gpiocdev.Chip
	outputs map[logic.Actuator]*gpiocdev.Line
	level   *gpiocdev.Line
}

// NewRealBoard requests the relay and level sensor lines on gpiochip0.
// Outputs start in the given initial state so relays do not glitch on startup.
func NewRealBoard(pins Pins, initial logic.Actuators) (*RealBoard, error) {
	chip, err := gpiocdev.NewChip("gpiochip0", gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	b := &RealBoard{chip: chip, outputs: make(map[logic.Actuator]*gpiocdev.Line)}
	for _, id := range logic.AllActuators {
		pin, _ := pins.Output(id)
		line, err := chip.RequestLine(pin, gpiocdev.AsOutput(level(initial.Get(id))))
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("request %s pin %d: %w", id, pin, err)
		}
		b.outputs[id] = line
	}

	// The float switch closes to 3V3; pull-down keeps an open switch LOW.
	b.level, err = chip.RequestLine(pins.Level, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request level pin %d: %w", pins.Level, err)
	}

	return b, nil
}

// Set drives the actuator's line.
func (b *RealBoard) Set(id logic.Actuator, on bool) error {
	line, ok := b.outputs[id]
	if !ok {
		return errUnknownActuator(id)
	}
	if err := line.SetValue(level(on)); err != nil {
		return fmt.Errorf("set %s: %w", id, err)
	}
	return nil
}

// ReadLevel returns the raw level sensor state.
func (b *RealBoard) ReadLevel() (bool, error) {
	v, err := b.level.Value()
	if err != nil {
		return false, fmt.Errorf("read level pin: %w", err)
	}
	return v == 1, nil
}

// Close switches every relay off and releases GPIO resources.
// Lines are reconfigured as pulled-down inputs, matching Pi boot defaults,
// so relay boards do not latch during a reboot.
func (b *RealBoard) Close() error {
	var errs []error

	for _, id := range logic.AllActuators {
		line := b.outputs[id]
		if line == nil {
			continue
		}
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("release %s: %w", id, err))
		}
		if err := line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s: %w", id, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
	}
	if b.level != nil {
		if err := b.level.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close level pin: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
