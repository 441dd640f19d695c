package mqtt

import (
	"github.com/sweeney/compost-controller/internal/telemetry"
)

// FakePublisher records published messages for test assertions.
type FakePublisher struct {
	// Messages contains all telemetry that was emitted.
	Messages []telemetry.Message

	// Payloads contains the encoded telemetry.
	Payloads [][]byte

	SystemEvents   []SystemEvent
	SystemPayloads [][]byte

	// EmitError, if set, will be returned by Emit.
	EmitError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Connected: true}
}

// Emit records the message.
func (f *FakePublisher) Emit(msg telemetry.Message) error {
	if f.EmitError != nil {
		return f.EmitError
	}

	payload, err := telemetry.Encode(msg)
	if err != nil {
		return err
	}
	f.Messages = append(f.Messages, msg)
	f.Payloads = append(f.Payloads, payload)
	return nil
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded messages and injected errors.
func (f *FakePublisher) Reset() {
	f.Messages = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.EmitError = nil
	f.PublishSystemError = nil
	f.Connected = true
}
