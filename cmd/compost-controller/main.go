// Command compost-controller runs the compost enclosure control loop: it
// reads the sensors, drives the lamp, pumps and drain valve, and streams
// telemetry over MQTT or a serial line.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/pkg/errors"

	"github.com/sweeney/compost-controller/internal/config"
	"github.com/sweeney/compost-controller/internal/controller"
	"github.com/sweeney/compost-controller/internal/display"
	"github.com/sweeney/compost-controller/internal/gpio"
	"github.com/sweeney/compost-controller/internal/logic"
	"github.com/sweeney/compost-controller/internal/metrics"
	"github.com/sweeney/compost-controller/internal/mqtt"
	"github.com/sweeney/compost-controller/internal/sensor"
	"github.com/sweeney/compost-controller/internal/status"
	"github.com/sweeney/compost-controller/internal/web"
)

type options struct {
	configPath string
	broker     string
	transport  string
	lineOut    string
	httpAddr   string
	sensors    string
	board      string
	pins       gpio.Pins
	logLevel   string
	printState bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "TOML config file (empty for built-in defaults)")
	flag.StringVar(&o.broker, "broker", "tcp://localhost:1883", "MQTT broker address")
	flag.StringVar(&o.transport, "transport", "mqtt", `Telemetry transport: "mqtt" or "line"`)
	flag.StringVar(&o.lineOut, "line-out", "-", `Output for -transport line: a file or device path, "-" for stdout`)
	flag.StringVar(&o.httpAddr, "http", ":8080", "HTTP status address (empty to disable)")
	flag.StringVar(&o.sensors, "sensors", "iio", `Sensor source: "iio" or "sim"`)
	flag.StringVar(&o.board, "board", "gpio", `Actuator board: "gpio" or "sim"`)
	flag.IntVar(&o.pins.Lamp, "pin-lamp", gpio.DefaultPinLamp, "BCM pin for the heating lamp relay")
	flag.IntVar(&o.pins.WaterPump, "pin-pump", gpio.DefaultPinWaterPump, "BCM pin for the water pump relay")
	flag.IntVar(&o.pins.Aeration, "pin-aeration", gpio.DefaultPinAeration, "BCM pin for the aeration pump relay")
	flag.IntVar(&o.pins.DrainValve, "pin-valve", gpio.DefaultPinDrainValve, "BCM pin for the drain valve")
	flag.IntVar(&o.pins.Level, "pin-level", gpio.DefaultPinLevel, "BCM pin for the reservoir level sensor")
	flag.StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	flag.BoolVar(&o.printState, "print-state", false, "Read the sensors once, print the readings and exit")
	flag.Parse()

	if err := setupLogging(os.Stderr, o.logLevel); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(2)
	}

	if err := run(o); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func setupLogging(w io.Writer, level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return errors.Wrapf(err, "log level %q", level)
	}
	slog.SetDefault(slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: time.DateTime,
	})))
	return nil
}

func run(o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}

	sensors, err := openSensors(o.sensors)
	if err != nil {
		return err
	}

	if o.printState {
		return printState(os.Stdout, sensors)
	}

	board, err := openBoard(o.board, o.pins)
	if err != nil {
		return err
	}
	defer board.Close()

	instance := uuid.NewString()
	emitter, lifecycle, conn, closeTransport, err := openTransport(o, cfg, instance)
	if err != nil {
		return err
	}
	defer closeTransport()

	start := time.Now()
	tracker := status.NewTracker(start, status.Config{
		Instance:         instance,
		DelayMs:          cfg.Loop.Delay.Milliseconds(),
		AerationMs:       cfg.Aeration.Interval.Milliseconds(),
		PulseMs:          cfg.Aeration.Pulse.Milliseconds(),
		TempSetpoint:     cfg.Control.TempSetpoint,
		TempDeadband:     cfg.Control.TempDeadband,
		HumiditySetpoint: cfg.Control.HumiditySetpoint,
		FilterWindow:     cfg.Control.FilterWindow,
		Transport:        o.transport,
		Broker:           brokerFor(o),
		HTTPAddr:         o.httpAddr,
	})

	if o.httpAddr != "" {
		srv := web.New(o.httpAddr, tracker, metrics.NewRegistry(tracker))
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("http server error", "err", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		slog.Info("http status server listening", "addr", o.httpAddr)
	}

	disp := display.LogDisplay{Logger: slog.Default().With("component", "lcd")}
	ctrl := controller.New(cfg, sensors, board, emitter, disp, start)

	slog.Info("started",
		"instance", instance,
		"transport", o.transport,
		"sensors", o.sensors,
		"board", o.board,
		"delay", cfg.Loop.Delay,
		"aeration_interval", cfg.Aeration.Interval,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	wait := func() <-chan time.Time { return time.After(cfg.Loop.Delay) }
	return runLoop(ctrl, lifecycle, conn, tracker, time.Now, wait, sigCh)
}

// runLoop ticks the controller until a signal arrives. Each tick is
// followed by the configured delay, so the period is the tick duration
// plus the delay. lifecycle and conn may be nil.
func runLoop(ctrl *controller.Controller, lifecycle mqtt.Publisher, conn mqtt.ConnectionStatus, tracker *status.Tracker, now func() time.Time, wait func() <-chan time.Time, sig <-chan os.Signal) error {
	ctrl.Start()
	refreshConnection(tracker, conn)
	publishLifecycle(lifecycle, tracker, now(), mqtt.EventStartup, "")

	for {
		res, err := ctrl.Tick(now())
		switch {
		case err == nil:
			tracker.Update(res, ctrl.Counts())
		case errors.Is(err, controller.ErrInvalidReading):
			tracker.SetCounts(ctrl.Counts())
		default:
			tracker.SetCounts(ctrl.Counts())
			publishLifecycle(lifecycle, tracker, now(), mqtt.EventShutdown, "ERROR")
			return err
		}
		refreshConnection(tracker, conn)

		select {
		case s := <-sig:
			slog.Info("shutting down", "signal", s)
			refreshConnection(tracker, conn)
			publishLifecycle(lifecycle, tracker, now(), mqtt.EventShutdown, signalName(s))
			return nil
		case <-wait():
		}
	}
}

func refreshConnection(tracker *status.Tracker, conn mqtt.ConnectionStatus) {
	if conn != nil {
		tracker.SetMQTTConnected(conn.IsConnected())
	}
}

func publishLifecycle(p mqtt.Publisher, tracker *status.Tracker, ts time.Time, event, reason string) {
	if p == nil {
		return
	}
	err := p.PublishSystem(mqtt.SystemEvent{
		Timestamp:  ts,
		Event:      event,
		Reason:     reason,
		Retained:   true,
		RawPayload: status.FormatStatusEvent(tracker.Snapshot(), event, reason),
	})
	if err != nil {
		slog.Warn("failed to publish lifecycle event", "event", event, "err", err)
		return
	}
	slog.Info("published lifecycle event", "event", event)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

func openSensors(kind string) (sensor.Source, error) {
	switch kind {
	case "iio":
		return sensor.NewIIOSource(sensor.DefaultIIOConfig())
	case "sim":
		return sensor.NewSimSource(time.Now().UnixNano()), nil
	}
	return nil, errors.Errorf("unknown sensor source %q", kind)
}

func openBoard(kind string, pins gpio.Pins) (gpio.Board, error) {
	switch kind {
	case "gpio":
		b, err := gpio.NewRealBoard(pins, logic.InitialActuators())
		if err != nil {
			return nil, errors.Wrap(err, "init gpio")
		}
		return b, nil
	case "sim":
		return gpio.NewSimBoard(logic.InitialActuators(), false), nil
	}
	return nil, errors.Errorf("unknown board %q", kind)
}

// openTransport returns the telemetry emitter, the lifecycle publisher and
// connection status (nil for the line transport), and a cleanup func.
func openTransport(o options, cfg config.Config, instance string) (mqtt.Emitter, mqtt.Publisher, mqtt.ConnectionStatus, func(), error) {
	t := cfg.Telemetry
	switch o.transport {
	case "mqtt":
		pub, err := mqtt.NewRealPublisher(context.Background(), mqtt.Options{
			Broker:         o.broker,
			Topic:          t.Topic,
			SystemTopic:    t.SystemTopic,
			PublishTimeout: t.PublishTimeout,
			InstanceID:     instance,
			ConnectRetries: 5,
		})
		if err != nil {
			return nil, nil, nil, nil, err
		}
		emitter := mqtt.NewBreakerEmitter(pub, t.BreakerFailures, t.BreakerOpenTimeout)
		return emitter, pub, pub, func() { pub.Close() }, nil

	case "line":
		w, closeFn, err := openLineOut(o.lineOut)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		emitter := mqtt.NewBreakerEmitter(mqtt.NewLineEmitter(w), t.BreakerFailures, t.BreakerOpenTimeout)
		return emitter, nil, nil, closeFn, nil
	}
	return nil, nil, nil, nil, errors.Errorf("unknown transport %q", o.transport)
}

func openLineOut(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, nil, errors.Wrap(err, "open line output")
	}
	return f, func() { f.Close() }, nil
}

func brokerFor(o options) string {
	if o.transport == "mqtt" {
		return o.broker
	}
	return ""
}

// printState performs one acquisition and prints the converted values.
// Actuators are not touched.
func printState(w io.Writer, s sensor.Source) error {
	raw, err := sensor.ReadAll(s)
	if err != nil {
		return errors.Wrap(err, "read sensors")
	}
	fmt.Fprintf(w, "temperature: %.1f C\n", raw.Temperature)
	fmt.Fprintf(w, "humidity: %.1f %%\n", raw.Humidity)
	fmt.Fprintf(w, "ph: %.2f\n", logic.PHFromRaw(raw.Analog[sensor.PH]))
	fmt.Fprintf(w, "soil moisture: %d %%\n", logic.SoilMoisturePercent(raw.Analog[sensor.SoilMoisture]))
	gases := logic.Breakdown(
		logic.GasPPM(raw.Analog[sensor.Gas1]),
		logic.GasPPM(raw.Analog[sensor.Gas2]),
		logic.GasPPM(raw.Analog[sensor.Gas3]),
	)
	for _, g := range gases {
		fmt.Fprintf(w, "%s: %.2f ppm\n", g.Compound, g.PPM)
	}
	return nil
}
