// Package mqtt carries telemetry and lifecycle events off the controller.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/sweeney/compost-controller/internal/telemetry"
)

// Lifecycle event names published on the system topic.
const (
	EventStartup     = "STARTUP"
	EventShutdown    = "SHUTDOWN"
	EventOffline     = "OFFLINE"
	EventReconnected = "RECONNECTED"
)

// ErrNotConnected is returned when a message is dropped because the broker
// connection is down.
var ErrNotConnected = errors.New("not connected")

// Emitter hands one telemetry message to a transport.
type Emitter interface {
	Emit(msg telemetry.Message) error
}

// Publisher is an Emitter that also carries lifecycle events.
type Publisher interface {
	Emitter

	// PublishSystem sends a lifecycle event to the system topic.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event (startup, shutdown, reconnect).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // shutdown only, e.g. "SIGTERM"
	RawPayload []byte // if set, published verbatim
	Retained   bool
}

// SystemPayload is the wire form of a SystemEvent without a status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload renders a lifecycle event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}
