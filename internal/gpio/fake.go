package gpio

import (
	"errors"

	"github.com/sweeney/compost-controller/internal/logic"
)

// Write is one recorded actuator command.
type Write struct {
	ID logic.Actuator
	On bool
}

// FakeBoard is a test double that records actuator writes and returns
// scripted level sensor values.
type FakeBoard struct {
	// Levels contains scripted level sensor values.
	// Each call to ReadLevel() consumes the next one.
	Levels []bool

	// index tracks current position in Levels
	index int

	// Writes contains every Set call in order.
	Writes []Write

	// State holds the last value written to each actuator.
	State logic.Actuators

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by ReadLevel()
	ReadError error

	// SetError, if set, will be returned by Set() after recording the write
	SetError error
}

// NewFakeBoard creates a FakeBoard with the given level samples.
func NewFakeBoard(levels ...bool) *FakeBoard {
	return &FakeBoard{Levels: levels}
}

// Set records the write.
func (f *FakeBoard) Set(id logic.Actuator, on bool) error {
	f.Writes = append(f.Writes, Write{ID: id, On: on})
	if !f.State.Set(id, on) {
		return errors.New("unknown actuator")
	}
	return f.SetError
}

// ReadLevel returns the next scripted level.
// If samples are exhausted, returns the last sample repeatedly.
func (f *FakeBoard) ReadLevel() (bool, error) {
	if f.ReadError != nil {
		return false, f.ReadError
	}

	if len(f.Levels) == 0 {
		return false, errors.New("no samples configured")
	}

	v := f.Levels[f.index]
	if f.index < len(f.Levels)-1 {
		f.index++
	}
	return v, nil
}

// Close marks the board as closed.
func (f *FakeBoard) Close() error {
	f.Closed = true
	return nil
}

// WritesFor returns the recorded values for one actuator.
func (f *FakeBoard) WritesFor(id logic.Actuator) []bool {
	var out []bool
	for _, w := range f.Writes {
		if w.ID == id {
			out = append(out, w.On)
		}
	}
	return out
}

// Reset clears recorded writes and rewinds the level samples.
func (f *FakeBoard) Reset() {
	f.index = 0
	f.Writes = nil
	f.State = logic.Actuators{}
	f.Closed = false
}
