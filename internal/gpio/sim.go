package gpio

import (
	"log/slog"
	"sync"

	"github.com/sweeney/compost-controller/internal/logic"
)

// SimBoard stands in for the relay board on a bench without GPIO. It logs
// output changes and reports a fixed level sensor value.
type SimBoard struct {
	mu    sync.Mutex
	state logic.Actuators
	level bool
	log   *slog.Logger
}

// NewSimBoard creates a SimBoard whose level sensor always reads levelHigh.
func NewSimBoard(initial logic.Actuators, levelHigh bool) *SimBoard {
	return &SimBoard{
		state: initial,
		level: levelHigh,
		log:   slog.Default().With("component", "simboard"),
	}
}

// Set records the output and logs transitions.
func (b *SimBoard) Set(id logic.Actuator, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.state.Get(id)
	if !b.state.Set(id, on) {
		return errUnknownActuator(id)
	}
	if prev != on {
		b.log.Debug("output changed", "actuator", id, "on", on)
	}
	return nil
}

// ReadLevel returns the configured level.
func (b *SimBoard) ReadLevel() (bool, error) {
	return b.level, nil
}

// State returns the current outputs.
func (b *SimBoard) State() logic.Actuators {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Close is a no-op.
func (b *SimBoard) Close() error {
	return nil
}
