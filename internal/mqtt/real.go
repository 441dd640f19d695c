package mqtt

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/sweeney/compost-controller/internal/telemetry"
)

// Options configures a RealPublisher.
type Options struct {
	Broker         string
	Topic          string
	SystemTopic    string
	PublishTimeout time.Duration
	// InstanceID suffixes the client ID. A random one is used if empty.
	InstanceID string
	// ConnectRetries bounds the initial connection attempts.
	ConnectRetries uint64
}

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client paho.Client
	opts   Options
	log    *slog.Logger

	// connected is set after the first successful connect; later connects
	// publish RECONNECTED to replace the broker's retained OFFLINE will.
	connected atomic.Bool
}

// NewRealPublisher connects to the broker, retrying with exponential
// backoff. The broker is told to publish OFFLINE on the system topic if
// the connection drops without a clean Close.
func NewRealPublisher(ctx context.Context, o Options) (*RealPublisher, error) {
	if o.InstanceID == "" {
		o.InstanceID = uuid.NewString()
	}
	p := &RealPublisher{
		opts: o,
		log:  slog.Default().With("component", "mqtt"),
	}

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: EventOffline})
	if err != nil {
		return nil, errors.Wrap(err, "format will")
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID("compost-controller-"+o.InstanceID).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(time.Minute).
		SetBinaryWill(o.SystemTopic, will, 1, true).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			p.log.Warn("broker connection lost", "err", err)
		}).
		SetReconnectingHandler(func(paho.Client, *paho.ClientOptions) {
			p.log.Info("reconnecting to broker")
		}).
		SetOnConnectHandler(p.onConnect)

	p.client = paho.NewClient(opts)

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), o.ConnectRetries), ctx)
	err = backoff.RetryNotify(func() error {
		token := p.client.Connect()
		if !token.WaitTimeout(10 * time.Second) {
			return errors.New("connection timeout")
		}
		return token.Error()
	}, bo, func(err error, next time.Duration) {
		p.log.Warn("broker connect failed", "broker", o.Broker, "err", err, "retry_in", next)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "connect to %s", o.Broker)
	}

	return p, nil
}

func (p *RealPublisher) onConnect(c paho.Client) {
	if !p.connected.Swap(true) {
		return
	}
	p.log.Info("reconnected to broker")
	payload, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: EventReconnected})
	if err != nil {
		return
	}
	// Handlers run on paho's connection goroutine; waiting here would block it.
	go func() {
		token := c.Publish(p.opts.SystemTopic, 1, true, payload)
		if !token.WaitTimeout(5*time.Second) || token.Error() != nil {
			p.log.Warn("failed to publish reconnect event", "err", token.Error())
		}
	}()
}

// Emit publishes telemetry at QoS 0, not retained. A message that cannot
// be delivered within the publish timeout is dropped, never queued.
func (p *RealPublisher) Emit(msg telemetry.Message) error {
	if !p.client.IsConnectionOpen() {
		return ErrNotConnected
	}

	payload, err := telemetry.Encode(msg)
	if err != nil {
		return errors.Wrap(err, "encode telemetry")
	}

	token := p.client.Publish(p.opts.Topic, 0, false, payload)
	if !token.WaitTimeout(p.opts.PublishTimeout) {
		return errors.New("publish timeout")
	}
	return errors.Wrap(token.Error(), "publish")
}

// PublishSystem sends a lifecycle event at QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return errors.Wrap(err, "format system payload")
	}

	token := p.client.Publish(p.opts.SystemTopic, 1, event.Retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return errors.New("publish system timeout")
	}
	return errors.Wrap(token.Error(), "publish system")
}

// IsConnected reports whether the broker connection is currently open.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}
