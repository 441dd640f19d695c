package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/compost-controller/internal/logic"
	"github.com/sweeney/compost-controller/internal/telemetry"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string            `json:"event,omitempty"`
	Reason        string            `json:"reason,omitempty"`
	Instance      string            `json:"instance"`
	Ready         bool              `json:"ready"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	StartTime     string            `json:"start_time"`
	Timestamp     string            `json:"timestamp"`
	LastTick      string            `json:"last_tick,omitempty"`
	LastAeration  string            `json:"last_aeration,omitempty"`
	Readings      *ReadingsJSON     `json:"readings,omitempty"`
	Actuators     map[string]string `json:"actuators"`
	Display       []string          `json:"display"`
	MQTT          MQTTStatus        `json:"mqtt"`
	Counts        CountsJSON        `json:"counts"`
	Config        ConfigJSON        `json:"config"`
}

// ReadingsJSON is the filtered sensor state. Gas values use the telemetry
// compound names.
type ReadingsJSON struct {
	Temperature  telemetry.Fixed2            `json:"temperature"`
	Humidity     telemetry.Fixed2            `json:"humidity"`
	PH           telemetry.Fixed2            `json:"ph"`
	SoilMoisture int                         `json:"soil_moisture"`
	Gases        map[string]telemetry.Fixed2 `json:"gases"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of tick statistics.
type CountsJSON struct {
	Ticks        int `json:"ticks"`
	Rejected     int `json:"rejected"`
	Pulses       int `json:"aeration_pulses"`
	LampSwitches int `json:"lamp_switches"`
	EmitFailures int `json:"emit_failures"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	DelayMs          int64   `json:"delay_ms"`
	AerationMs       int64   `json:"aeration_interval_ms"`
	PulseMs          int64   `json:"aeration_pulse_ms"`
	TempSetpoint     float64 `json:"temp_setpoint"`
	TempDeadband     float64 `json:"temp_deadband"`
	HumiditySetpoint float64 `json:"humidity_setpoint"`
	FilterWindow     int     `json:"filter_window"`
	Transport        string  `json:"transport"`
	Broker           string  `json:"broker,omitempty"`
	HTTPAddr         string  `json:"http_addr"`
}

// OnOff renders an actuator level.
func OnOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func buildInner(snap Snapshot) StatusInner {
	actuators := make(map[string]string, len(logic.AllActuators))
	for _, id := range logic.AllActuators {
		actuators[string(id)] = OnOff(snap.Actuators.Get(id))
	}

	inner := StatusInner{
		Instance:      snap.Config.Instance,
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Actuators:     actuators,
		Display:       snap.Display[:],
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Ticks:        snap.Counts.Ticks,
			Rejected:     snap.Counts.Rejected,
			Pulses:       snap.Counts.Pulses,
			LampSwitches: snap.Counts.LampSwitches,
			EmitFailures: snap.Counts.EmitFailures,
		},
		Config: ConfigJSON{
			DelayMs:          snap.Config.DelayMs,
			AerationMs:       snap.Config.AerationMs,
			PulseMs:          snap.Config.PulseMs,
			TempSetpoint:     snap.Config.TempSetpoint,
			TempDeadband:     snap.Config.TempDeadband,
			HumiditySetpoint: snap.Config.HumiditySetpoint,
			FilterWindow:     snap.Config.FilterWindow,
			Transport:        snap.Config.Transport,
			Broker:           snap.Config.Broker,
			HTTPAddr:         snap.Config.HTTPAddr,
		},
	}

	if snap.Ready {
		inner.LastTick = snap.LastTick.UTC().Format(time.RFC3339)
		if snap.Counts.Pulses > 0 {
			inner.LastAeration = snap.LastAeration.UTC().Format(time.RFC3339)
		}
		gases := make(map[string]telemetry.Fixed2, len(snap.Gases))
		for _, g := range snap.Gases {
			gases[string(g.Compound)] = telemetry.Fixed2(telemetry.Round2(g.PPM))
		}
		inner.Readings = &ReadingsJSON{
			Temperature:  telemetry.Fixed2(telemetry.Round2(snap.Readings.Temperature)),
			Humidity:     telemetry.Fixed2(telemetry.Round2(snap.Readings.Humidity)),
			PH:           telemetry.Fixed2(telemetry.Round2(snap.Readings.PH)),
			SoilMoisture: snap.Readings.SoilMoisture,
			Gases:        gases,
		}
	}
	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
