package gpio

import (
	"errors"
	"testing"

	"github.com/sweeney/compost-controller/internal/logic"
)

func TestFakeBoardReadLevel(t *testing.T) {
	f := NewFakeBoard(true, false)

	v, err := f.ReadLevel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != true {
		t.Errorf("sample 0: expected true, got %v", v)
	}

	v, err = f.ReadLevel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != false {
		t.Errorf("sample 1: expected false, got %v", v)
	}

	// Third read should repeat last sample
	v, _ = f.ReadLevel()
	if v != false {
		t.Errorf("sample 2 (repeat): expected false, got %v", v)
	}
}

func TestFakeBoardNoSamples(t *testing.T) {
	f := NewFakeBoard()

	_, err := f.ReadLevel()
	if err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeBoardReadError(t *testing.T) {
	f := NewFakeBoard(true)
	f.ReadError = errors.New("simulated error")

	_, err := f.ReadLevel()
	if err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeBoardSetRecordsWrites(t *testing.T) {
	f := NewFakeBoard()

	f.Set(logic.Lamp, true)
	f.Set(logic.AerationPump, true)
	f.Set(logic.AerationPump, false)

	if !f.State.Lamp {
		t.Error("expected lamp on")
	}
	if f.State.AerationPump {
		t.Error("expected aeration off after last write")
	}
	got := f.WritesFor(logic.AerationPump)
	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("aeration writes: got %v, want [true false]", got)
	}
	if len(f.Writes) != 3 {
		t.Errorf("expected 3 writes, got %d", len(f.Writes))
	}
}

func TestFakeBoardSetUnknown(t *testing.T) {
	f := NewFakeBoard()
	if err := f.Set("heater", true); err == nil {
		t.Error("expected error for unknown actuator")
	}
}

func TestFakeBoardSetError(t *testing.T) {
	f := NewFakeBoard()
	f.SetError = errors.New("relay fault")
	if err := f.Set(logic.WaterPump, true); err == nil {
		t.Error("expected SetError to be returned")
	}
	if !f.State.WaterPump {
		t.Error("write should still be recorded")
	}
}

func TestFakeBoardCloseAndReset(t *testing.T) {
	f := NewFakeBoard(true, false)
	f.ReadLevel()
	f.Set(logic.Lamp, true)

	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed || len(f.Writes) != 0 || f.State.Lamp {
		t.Error("reset should clear state")
	}
	v, _ := f.ReadLevel()
	if v != true {
		t.Errorf("after reset: expected true, got %v", v)
	}
}

func TestPinsOutput(t *testing.T) {
	p := DefaultPins()
	for _, id := range logic.AllActuators {
		if _, ok := p.Output(id); !ok {
			t.Errorf("no pin for %s", id)
		}
	}
	if _, ok := p.Output("heater"); ok {
		t.Error("unexpected pin for unknown actuator")
	}
	if pin, _ := p.Output(logic.Lamp); pin != DefaultPinLamp {
		t.Errorf("lamp pin: got %d, want %d", pin, DefaultPinLamp)
	}
}

func TestSimBoard(t *testing.T) {
	b := NewSimBoard(logic.InitialActuators(), true)

	level, err := b.ReadLevel()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !level {
		t.Error("expected configured level HIGH")
	}

	if err := b.Set(logic.Lamp, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := b.State()
	if !got.Lamp || !got.DrainValve {
		t.Errorf("unexpected state: %+v", got)
	}

	if err := b.Set("fan", true); err == nil {
		t.Error("expected error for unknown actuator")
	}
	if err := b.Close(); err != nil {
		t.Errorf("unexpected close error: %v", err)
	}
}
