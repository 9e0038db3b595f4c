// Package bus wraps the MQTT pub/sub transport every MAPE-K component talks
// over. It is grounded on device/internal/simulator.go and
// device/internal/publisher.go's paho.mqtt.golang usage, generalized from a
// single hard-coded topic/client into the platform's hierarchical
// {farm}/{zone}/{kind}/[subkind] topic space with wildcard subscriptions
// (the reason paho was kept over the rest of the pack's Kafka stack: Kafka
// has no broker-side wildcard subscribe, and the MAPE-K topology needs
// `+/+/status`-style fan-in).
package bus

import "context"

// Message is a single delivered publication: the resolved topic (wildcards
// expanded to the concrete topic the broker matched) and raw payload.
type Message struct {
	Topic   string
	Payload []byte
}

// Handler processes one delivered Message. Handlers are invoked serially per
// subscription by the underlying transport (paho.mqtt.golang guarantees
// in-order, non-concurrent delivery per client), so component state touched
// only from a Handler needs no additional locking.
type Handler func(ctx context.Context, msg Message)

// Bus is the capability every MAPE-K component depends on. Components never
// import paho.mqtt.golang directly; they depend on this interface, which
// tests satisfy with the in-memory implementation in memory.go (spec's
// design note that tests substitute an in-memory bus with the same
// contract).
type Bus interface {
	// Publish sends payload to topic. QoS and retain are transport details
	// the concrete implementation chooses; callers only need "delivered or
	// erred".
	Publish(ctx context.Context, topic string, payload []byte) error

	// Subscribe registers handler for topic, which may contain MQTT
	// wildcards (+ for one level, # for the remainder). Returns an
	// unsubscribe function.
	Subscribe(ctx context.Context, topic string, handler Handler) (unsubscribe func() error, err error)

	// Connected reports the current transport connectivity, for /healthz.
	Connected() bool

	// Close disconnects the underlying transport.
	Close()
}
