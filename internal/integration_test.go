package internal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/compost-controller/internal/config"
	"github.com/sweeney/compost-controller/internal/controller"
	"github.com/sweeney/compost-controller/internal/display"
	"github.com/sweeney/compost-controller/internal/gpio"
	"github.com/sweeney/compost-controller/internal/logic"
	"github.com/sweeney/compost-controller/internal/mqtt"
	"github.com/sweeney/compost-controller/internal/sensor"
	"github.com/sweeney/compost-controller/internal/status"
)

var startTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func enclosureSample(temp float64) sensor.Sample {
	return sensor.Sample{
		Temperature: temp,
		Humidity:    55,
		Analog: map[sensor.Channel]int{
			sensor.Gas1:         512,
			sensor.Gas2:         256,
			sensor.Gas3:         100,
			sensor.PH:           500,
			sensor.SoilMoisture: 600,
		},
	}
}

type wireMessage struct {
	Temperatura float64 `json:"temperatura"`
	Umidade     float64 `json:"umidade"`
	PH          float64 `json:"ph"`
	UmidSolo    int     `json:"umidSolo"`
	Gases       []struct {
		Composto string  `json:"composto"`
		PPM      float64 `json:"ppm"`
	} `json:"gases"`
}

// TestIntegrationWarmUp runs a cold enclosure warming past the lamp band
// while the reservoir fills, with telemetry on the line transport.
func TestIntegrationWarmUp(t *testing.T) {
	var samples []sensor.Sample
	for i := 0; i < 10; i++ {
		samples = append(samples, enclosureSample(35))
	}
	for i := 0; i < 20; i++ {
		samples = append(samples, enclosureSample(45))
	}
	levels := make([]bool, 30)
	for i := 15; i < 30; i++ {
		levels[i] = true
	}

	src := sensor.NewFakeSource(samples...)
	board := gpio.NewFakeBoard(levels...)
	var wire bytes.Buffer
	emitter := mqtt.NewBreakerEmitter(mqtt.NewLineEmitter(&wire), 3, time.Minute)
	lcd := &display.Recorder{}
	tracker := status.NewTracker(startTime, status.Config{Transport: "line"})

	ctrl := controller.New(config.Default(), src, board, emitter, lcd, startTime)
	ctrl.Sleep = func(time.Duration) {}
	ctrl.Start()

	var results []controller.Result
	for i := range samples {
		res, err := ctrl.Tick(startTime.Add(time.Duration(i) * time.Second))
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		tracker.Update(res, ctrl.Counts())
		results = append(results, res)
	}

	if !results[0].Actuators.Lamp {
		t.Error("tick 0: lamp should switch on at 35 C")
	}
	// Mean after k ticks at 45 is 35+k; 42 is still inside the band.
	if !results[16].Actuators.Lamp {
		t.Errorf("tick 16: lamp should hold at mean %.1f", results[16].Readings.Temperature)
	}
	if results[17].Actuators.Lamp {
		t.Errorf("tick 17: lamp should switch off at mean %.1f", results[17].Readings.Temperature)
	}
	if got := ctrl.Counts().LampSwitches; got != 2 {
		t.Errorf("lamp switches: got %d, want 2", got)
	}

	if !results[14].Actuators.DrainValve || results[15].Actuators.DrainValve {
		t.Error("drain valve should close when the level sensor goes HIGH at tick 15")
	}
	if got := ctrl.Counts().Pulses; got != 2 {
		t.Errorf("aeration pulses: got %d, want 2", got)
	}
	if board.State.AerationPump {
		t.Error("aeration pump must be off between pulses")
	}

	scanner := bufio.NewScanner(&wire)
	lines := 0
	var last wireMessage
	for scanner.Scan() {
		lines++
		if err := json.Unmarshal(scanner.Bytes(), &last); err != nil {
			t.Fatalf("line %d: invalid JSON: %v", lines, err)
		}
	}
	if lines != len(samples) {
		t.Errorf("expected %d telemetry lines, got %d", len(samples), lines)
	}
	if last.Temperatura != 45 {
		t.Errorf("last temperature: got %v, want 45", last.Temperatura)
	}
	if len(last.Gases) != 11 || last.Gases[0].Composto != "Metano" || last.Gases[0].PPM != 200 {
		t.Errorf("unexpected gases: %+v", last.Gases)
	}

	if lcd.Rows[0] != "T:45.0C U:55.0%" {
		t.Errorf("display row 0: got %q", lcd.Rows[0])
	}

	snap := tracker.Snapshot()
	if snap.Counts.Ticks != 30 || snap.Actuators.Lamp {
		t.Errorf("unexpected snapshot: ticks=%d lamp=%v", snap.Counts.Ticks, snap.Actuators.Lamp)
	}
}

// TestIntegrationSensorFaultSkipsTick checks that a failed read leaves no
// trace on the wire or the outputs.
func TestIntegrationSensorFaultSkipsTick(t *testing.T) {
	faulty := enclosureSample(0)
	faulty.Err = errors.New("dht checksum")
	samples := []sensor.Sample{enclosureSample(40), faulty, enclosureSample(40)}

	board := gpio.NewFakeBoard(false)
	var wire bytes.Buffer
	ctrl := controller.New(config.Default(), sensor.NewFakeSource(samples...), board, mqtt.NewLineEmitter(&wire), &display.Recorder{}, startTime)
	ctrl.Sleep = func(time.Duration) {}

	var rejected int
	for i := range samples {
		_, err := ctrl.Tick(startTime.Add(time.Duration(i) * time.Second))
		if errors.Is(err, controller.ErrInvalidReading) {
			rejected++
			continue
		}
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	if rejected != 1 {
		t.Errorf("rejected: got %d, want 1", rejected)
	}
	if got := bytes.Count(wire.Bytes(), []byte("\n")); got != 2 {
		t.Errorf("expected 2 telemetry lines, got %d", got)
	}
	if got := len(board.WritesFor(logic.Lamp)); got != 2 {
		t.Errorf("expected 2 lamp writes, got %d", got)
	}
	if got := ctrl.State().Temperature.Len(); got != 2 {
		t.Errorf("filter length: got %d, want 2", got)
	}
}

// TestIntegrationBrokerOutage checks that a dead transport trips the
// breaker and the loop keeps controlling.
func TestIntegrationBrokerOutage(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	pub.EmitError = mqtt.ErrNotConnected
	emitter := mqtt.NewBreakerEmitter(pub, 3, time.Hour)

	board := gpio.NewFakeBoard(false)
	ctrl := controller.New(config.Default(), sensor.NewFakeSource(enclosureSample(30)), board, emitter, &display.Recorder{}, startTime)
	ctrl.Sleep = func(time.Duration) {}

	for i := 0; i < 10; i++ {
		if _, err := ctrl.Tick(startTime.Add(time.Duration(i) * time.Second)); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}

	if got := ctrl.Counts().EmitFailures; got != 10 {
		t.Errorf("emit failures: got %d, want 10", got)
	}
	if !board.State.Lamp {
		t.Error("lamp control must continue during a broker outage")
	}
	if len(pub.Messages) != 0 {
		t.Errorf("no telemetry should be delivered, got %d", len(pub.Messages))
	}
}
