// Package monitor implements MAPE-K's "Monitor" stage (spec §4.3): it
// subscribes to every zone's sensor topics and records each primitive
// reading into the Knowledge store. It is grounded on aggregator's
// subscribe-then-window pattern (services/aggregator/internal), generalized
// from aggregator's single fixed topic to the platform's
// {farm}/{zone}/sensors/{group} wildcard space.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"poultrymapek/internal/bus"
	"poultrymapek/internal/knowledge"
	"poultrymapek/internal/metrics"
	"poultrymapek/internal/model"
)

// Monitor subscribes to +/+/sensors/+ and writes each decoded reading to the
// Knowledge store.
type Monitor struct {
	bus     bus.Bus
	store   *knowledge.Store
	metrics *metrics.Metrics
	log     *slog.Logger

	unsubscribe func() error
}

// New wires a Monitor to a bus and a Knowledge store.
func New(b bus.Bus, store *knowledge.Store, m *metrics.Metrics, log *slog.Logger) *Monitor {
	return &Monitor{bus: b, store: store, metrics: m, log: log}
}

// Start subscribes to every zone's sensor topics.
func (mon *Monitor) Start(ctx context.Context) error {
	unsub, err := mon.bus.Subscribe(ctx, "+/+/sensors/+", mon.onReading)
	if err != nil {
		return fmt.Errorf("subscribe +/+/sensors/+: %w", err)
	}
	mon.unsubscribe = unsub
	return nil
}

// Stop unsubscribes.
func (mon *Monitor) Stop() {
	if mon.unsubscribe != nil {
		_ = mon.unsubscribe()
	}
}

func (mon *Monitor) onReading(_ context.Context, msg bus.Message) {
	parts := strings.Split(msg.Topic, "/")
	if len(parts) != 4 || parts[2] != "sensors" {
		mon.log.Warn("malformed sensor topic, dropped", "topic", msg.Topic)
		mon.drop("bad_topic")
		return
	}
	farm, zone, group := parts[0], parts[1], parts[3]

	var raw map[string]float64
	if err := json.Unmarshal(msg.Payload, &raw); err != nil {
		mon.log.Warn("malformed sensor payload, dropped", "topic", msg.Topic, "error", err)
		mon.drop("malformed")
		return
	}

	now := time.Now()
	switch group {
	case "air":
		mon.record(farm, zone, model.SensorTemperature, raw["temperature_c"], now)
		mon.record(farm, zone, model.SensorCO2, raw["co2_ppm"], now)
		mon.record(farm, zone, model.SensorAmmonia, raw["nh3_ppm"], now)
	case "feed_level":
		mon.record(farm, zone, model.SensorFeedLevel, raw["feed_kg"], now)
	case "water_level":
		mon.record(farm, zone, model.SensorWaterLevel, raw["water_l"], now)
	case "activity":
		mon.record(farm, zone, model.SensorActivity, raw["activity"], now)
	default:
		mon.log.Warn("unknown sensor group, dropped", "topic", msg.Topic, "group", group)
		mon.drop("unknown_group")
	}
}

func (mon *Monitor) record(farm, zone string, t model.SensorType, value float64, ts time.Time) {
	mon.store.LogSensor(knowledge.SensorRecord{Farm: farm, Zone: zone, Type: t, Value: value, Timestamp: ts})
	if mon.metrics != nil {
		mon.metrics.SensorReading(farm, zone, string(t))
	}
}

func (mon *Monitor) drop(reason string) {
	if mon.metrics != nil {
		mon.metrics.SensorDrop(reason)
	}
}
