package mqtt

import (
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/sweeney/compost-controller/internal/telemetry"
)

// LineEmitter writes each message as one newline-terminated JSON record,
// e.g. to a serial port or stdout.
type LineEmitter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewLineEmitter creates a LineEmitter writing to w.
func NewLineEmitter(w io.Writer) *LineEmitter {
	return &LineEmitter{w: w}
}

// Emit writes the encoded message followed by '\n'.
func (l *LineEmitter) Emit(msg telemetry.Message) error {
	payload, err := telemetry.Encode(msg)
	if err != nil {
		return errors.Wrap(err, "encode telemetry")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.Write(append(payload, '\n')); err != nil {
		return errors.Wrap(err, "write line")
	}
	return nil
}
