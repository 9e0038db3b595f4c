package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"poultrymapek/internal/breaker"
)

// MQTTBus is the production Bus, generalized from
// device/internal/simulator.go's single-topic client into a general
// publish/subscribe transport over the platform's hierarchical topic space.
type MQTTBus struct {
	client mqtt.Client
	log    *slog.Logger
	pubBreaker *breaker.Breaker

	mu        sync.Mutex
	connected bool
}

// Options configures the underlying paho client.
type Options struct {
	BrokerURL    string
	ClientID     string
	Username     string
	Password     string
	QoS          byte
	ConnectRetry bool
}

// Connect dials the broker and blocks until the connection succeeds or
// fails. A failed initial connect is a fail-stop condition for every
// process that calls it (spec §7): callers should os.Exit on error rather
// than retry indefinitely, matching device/internal/simulator.go's
// connect-or-panic behavior but returning the error instead of panicking.
func Connect(opts Options, log *slog.Logger) (*MQTTBus, error) {
	b := &MQTTBus{log: log}

	mopts := mqtt.NewClientOptions().
		AddBroker(opts.BrokerURL).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(opts.ConnectRetry).
		SetOnConnectHandler(func(mqtt.Client) {
			b.mu.Lock()
			b.connected = true
			b.mu.Unlock()
			log.Info("mqtt connected", "broker", opts.BrokerURL)
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			b.mu.Lock()
			b.connected = false
			b.mu.Unlock()
			log.Warn("mqtt connection lost", "error", err)
		})
	if opts.Username != "" {
		mopts.SetUsername(opts.Username)
		mopts.SetPassword(opts.Password)
	}

	client := mqtt.NewClient(mopts)
	token := client.Connect()
	if ok := token.WaitTimeout(10 * time.Second); !ok {
		return nil, fmt.Errorf("mqtt connect to %s: timed out", opts.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", opts.BrokerURL, err)
	}

	b.client = client
	b.connected = true
	if opts.QoS == 0 {
		opts.QoS = 1
	}
	b.client = client
	b.pubBreaker = breaker.New("mqtt-publish", breaker.Config{}, log)
	return b, nil
}

// Publish fast-fails via a circuit breaker once the broker has repeatedly
// refused publishes, rather than letting every tick/callback loop block on a
// broker that is flapping.
func (b *MQTTBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.pubBreaker.Execute(ctx, func(ctx context.Context) error {
		token := b.client.Publish(topic, 1, false, payload)
		done := make(chan struct{})
		go func() { token.Wait(); close(done) }()
		select {
		case <-done:
			return token.Error()
		case <-ctx.Done():
			return ctx.Err()
		}
	})
}

func (b *MQTTBus) Subscribe(ctx context.Context, topic string, handler Handler) (func() error, error) {
	cb := func(_ mqtt.Client, m mqtt.Message) {
		handler(ctx, Message{Topic: m.Topic(), Payload: m.Payload()})
	}
	token := b.client.Subscribe(topic, 1, cb)
	token.Wait()
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt subscribe %s: %w", topic, err)
	}
	unsub := func() error {
		t := b.client.Unsubscribe(topic)
		t.Wait()
		return t.Error()
	}
	return unsub, nil
}

func (b *MQTTBus) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.connected
}

func (b *MQTTBus) Close() {
	b.client.Disconnect(250)
}
