//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/compost-controller/internal/logic"
)

// RealBoard is not available on non-Linux platforms.
type RealBoard struct{}

// NewRealBoard returns an error on non-Linux platforms.
func NewRealBoard(pins Pins, initial logic.Actuators) (*RealBoard, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Set is not implemented on non-Linux platforms.
func (b *RealBoard) Set(id logic.Actuator, on bool) error {
	return errors.New("gpio: not supported")
}

// ReadLevel is not implemented on non-Linux platforms.
func (b *RealBoard) ReadLevel() (bool, error) {
	return false, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (b *RealBoard) Close() error {
	return nil
}
