package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"poultrymapek/internal/bus"
	"poultrymapek/internal/metrics"
	"poultrymapek/internal/model"
)

// Worker runs one Zone's two logical threads of control (spec §5): the bus
// callback goroutine that applies inbound commands, and the tick/publish
// goroutine that advances physics and emits sensor readings. Both share the
// Zone's own mutex; the Worker itself holds no additional state beyond
// wiring and a stop channel.
type Worker struct {
	Zone *Zone

	bus             bus.Bus
	log             *slog.Logger
	metrics         *metrics.Metrics
	tickInterval    time.Duration
	sensorInterval  time.Duration
	unsubscribe     func() error

	stop chan struct{}
	done chan struct{}
}

// NewWorker wires zone to bus, ready for Start.
func NewWorker(zone *Zone, b bus.Bus, tickInterval, sensorInterval time.Duration, m *metrics.Metrics, log *slog.Logger) *Worker {
	return &Worker{
		Zone:           zone,
		bus:            b,
		log:            log,
		metrics:        m,
		tickInterval:   tickInterval,
		sensorInterval: sensorInterval,
		stop:           make(chan struct{}),
		done:           make(chan struct{}),
	}
}

// Start subscribes to this zone's command topic and launches the
// tick/publish loop in a background goroutine.
func (w *Worker) Start(ctx context.Context) error {
	cmdTopic := fmt.Sprintf("%s/%s/cmd/+", w.Zone.Key.Farm, w.Zone.Key.Zone)
	unsub, err := w.bus.Subscribe(ctx, cmdTopic, w.onCommand)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", cmdTopic, err)
	}
	w.unsubscribe = unsub

	go w.runLoop(ctx)
	return nil
}

// Stop signals the tick loop to exit on its next wake and unsubscribes from
// commands. It blocks until the loop has observed the stop flag (spec §5's
// "await orderly disconnect").
func (w *Worker) Stop() {
	close(w.stop)
	<-w.done
	if w.unsubscribe != nil {
		_ = w.unsubscribe()
	}
}

func (w *Worker) onCommand(_ context.Context, msg bus.Message) {
	// Topic: {farm}/{zone}/cmd/{actuator}
	parts := splitTopic(msg.Topic)
	if len(parts) != 4 {
		w.log.Warn("malformed command topic, dropped", "topic", msg.Topic)
		return
	}
	actuator := model.ActuatorType(parts[3])

	var payload map[string]any
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		w.log.Warn("malformed command payload, dropped", "topic", msg.Topic, "error", err)
		if w.metrics != nil {
			w.metrics.CommandRejected(parts[0], parts[1], "malformed")
		}
		return
	}
	w.Zone.ApplyCommand(actuator, payload)
	if w.metrics != nil {
		w.metrics.CommandApplied(parts[0], parts[1], string(actuator))
	}
}

func (w *Worker) runLoop(ctx context.Context) {
	defer close(w.done)
	tickTicker := time.NewTicker(w.tickInterval)
	defer tickTicker.Stop()
	sensorTicker := time.NewTicker(w.sensorInterval)
	defer sensorTicker.Stop()

	dtS := w.tickInterval.Seconds()
	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case <-tickTicker.C:
			w.Zone.Tick(dtS)
		case <-sensorTicker.C:
			if err := w.Zone.Publish(ctx, w.bus.Publish); err != nil {
				w.log.Warn("sensor publish failed", "farm", w.Zone.Key.Farm, "zone", w.Zone.Key.Zone, "error", err)
			}
		}
	}
}

func splitTopic(topic string) []string {
	var parts []string
	start := 0
	for i := 0; i < len(topic); i++ {
		if topic[i] == '/' {
			parts = append(parts, topic[start:i])
			start = i + 1
		}
	}
	return append(parts, topic[start:])
}
