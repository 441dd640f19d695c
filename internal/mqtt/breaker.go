package mqtt

import (
	"log/slog"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sweeney/compost-controller/internal/telemetry"
)

// BreakerEmitter stops calling a failing transport for a while. While the
// breaker is open messages are dropped immediately, so a dead broker never
// adds publish timeouts to the control loop.
type BreakerEmitter struct {
	next Emitter
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerEmitter trips after failures consecutive errors and probes the
// transport again after openFor.
func NewBreakerEmitter(next Emitter, failures int, openFor time.Duration) *BreakerEmitter {
	log := slog.Default().With("component", "telemetry")
	return &BreakerEmitter{
		next: next,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "telemetry",
			Timeout: openFor,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= uint32(failures)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			},
		}),
	}
}

// Emit forwards msg unless the breaker is open.
func (b *BreakerEmitter) Emit(msg telemetry.Message) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.next.Emit(msg)
	})
	return err
}

// State returns the breaker state.
func (b *BreakerEmitter) State() gobreaker.State {
	return b.cb.State()
}
