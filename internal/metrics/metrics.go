// Package metrics exposes the controller status as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sweeney/compost-controller/internal/logic"
	"github.com/sweeney/compost-controller/internal/status"
)

const namespace = "compost"

// Collector reads a status snapshot on every scrape.
type Collector struct {
	tracker *status.Tracker

	ready         *prometheus.Desc
	mqttConnected *prometheus.Desc
	temperature   *prometheus.Desc
	humidity      *prometheus.Desc
	ph            *prometheus.Desc
	soil          *prometheus.Desc
	gas           *prometheus.Desc
	actuator      *prometheus.Desc
	ticks         *prometheus.Desc
	rejected      *prometheus.Desc
	pulses        *prometheus.Desc
	lampSwitches  *prometheus.Desc
	emitFailures  *prometheus.Desc
}

// NewCollector creates a Collector for tracker.
func NewCollector(tracker *status.Tracker) *Collector {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		tracker:       tracker,
		ready:         desc("ready", "1 once the first tick has completed."),
		mqttConnected: desc("mqtt_connected", "1 while the broker connection is open."),
		temperature:   desc("temperature_celsius", "Filtered enclosure temperature."),
		humidity:      desc("humidity_percent", "Filtered relative humidity."),
		ph:            desc("ph", "Filtered substrate pH."),
		soil:          desc("soil_moisture_percent", "Soil moisture from the last tick."),
		gas:           desc("gas_ppm", "Estimated compound concentration.", "compound"),
		actuator:      desc("actuator_on", "1 while the actuator output is HIGH.", "actuator"),
		ticks:         desc("ticks_total", "Completed control ticks."),
		rejected:      desc("ticks_rejected_total", "Ticks skipped because of an invalid reading."),
		pulses:        desc("aeration_pulses_total", "Aeration pump pulses."),
		lampSwitches:  desc("lamp_switches_total", "Heating lamp state changes."),
		emitFailures:  desc("telemetry_dropped_total", "Telemetry messages the transport did not accept."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.ready, c.mqttConnected, c.temperature, c.humidity, c.ph, c.soil,
		c.gas, c.actuator, c.ticks, c.rejected, c.pulses, c.lampSwitches, c.emitFailures,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector. Sensor gauges are omitted until
// the first tick completes.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.tracker.Snapshot()

	ch <- prometheus.MustNewConstMetric(c.ready, prometheus.GaugeValue, bool01(snap.Ready))
	ch <- prometheus.MustNewConstMetric(c.mqttConnected, prometheus.GaugeValue, bool01(snap.MQTTConnected))

	for _, id := range logic.AllActuators {
		ch <- prometheus.MustNewConstMetric(c.actuator, prometheus.GaugeValue, bool01(snap.Actuators.Get(id)), string(id))
	}

	counters := []struct {
		d *prometheus.Desc
		v int
	}{
		{c.ticks, snap.Counts.Ticks},
		{c.rejected, snap.Counts.Rejected},
		{c.pulses, snap.Counts.Pulses},
		{c.lampSwitches, snap.Counts.LampSwitches},
		{c.emitFailures, snap.Counts.EmitFailures},
	}
	for _, m := range counters {
		ch <- prometheus.MustNewConstMetric(m.d, prometheus.CounterValue, float64(m.v))
	}

	if !snap.Ready {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.temperature, prometheus.GaugeValue, snap.Readings.Temperature)
	ch <- prometheus.MustNewConstMetric(c.humidity, prometheus.GaugeValue, snap.Readings.Humidity)
	ch <- prometheus.MustNewConstMetric(c.ph, prometheus.GaugeValue, snap.Readings.PH)
	ch <- prometheus.MustNewConstMetric(c.soil, prometheus.GaugeValue, float64(snap.Readings.SoilMoisture))
	for _, g := range snap.Gases {
		ch <- prometheus.MustNewConstMetric(c.gas, prometheus.GaugeValue, g.PPM, string(g.Compound))
	}
}

// NewRegistry returns a registry holding the controller collector and the
// Go runtime collector.
func NewRegistry(tracker *status.Tracker) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(tracker), collectors.NewGoCollector())
	return reg
}

func bool01(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
