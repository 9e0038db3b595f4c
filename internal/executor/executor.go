// Package executor implements MAPE-K's "Execute" stage (spec §4.6): it
// turns each Plan action into a per-actuator command publication and
// archives it to Knowledge. Grounded on device/internal/publisher.go's
// publish-and-log pattern, generalized from one hard-coded device to every
// actuator kind in the topology.
package executor

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
	"poultrymapek/internal/topology"
)

// Executor subscribes to +/+/plan and fans out each action onto its
// cmd/{actuator} topic.
type Executor struct {
	bus      bus.Bus
	resolver *topology.Resolver
	store    *knowledge.Store
	metrics  *metrics.Metrics
	log      *slog.Logger

	unsubscribe func() error
}

// New wires an Executor to a bus and Knowledge store.
func New(b bus.Bus, resolver *topology.Resolver, store *knowledge.Store, m *metrics.Metrics, log *slog.Logger) *Executor {
	return &Executor{bus: b, resolver: resolver, store: store, metrics: m, log: log}
}

// Start publishes the cold-boot all-OFF sweep for every known zone, then
// subscribes to plans.
func (e *Executor) Start(ctx context.Context) error {
	e.coldBootSweep(ctx)

	unsub, err := e.bus.Subscribe(ctx, "+/+/plan", e.onPlan)
	if err != nil {
		return fmt.Errorf("subscribe +/+/plan: %w", err)
	}
	e.unsubscribe = unsub
	return nil
}

// Stop unsubscribes.
func (e *Executor) Stop() {
	if e.unsubscribe != nil {
		_ = e.unsubscribe()
	}
}

func (e *Executor) coldBootSweep(ctx context.Context) {
	doc := e.resolver.Document()
	for _, fz := range doc.ZoneKeys() {
		for _, actuator := range model.AllActuators {
			cmd := offCommand(actuator)
			e.publishCommand(ctx, fz.Farm, fz.Zone, actuator, cmd)
		}
	}
}

// offCommand returns the canonical all-OFF command for an actuator kind,
// for the startup cold-boot sweep.
func offCommand(actuator model.ActuatorType) map[string]any {
	switch actuator {
	case model.ActuatorFan:
		return map[string]any{"action": "SET", "level": 0}
	case model.ActuatorHeater:
		return map[string]any{"action": "SET", "level_pct": 0}
	case model.ActuatorInlet:
		return map[string]any{"action": "SET", "open_pct": 0}
	case model.ActuatorLight:
		return map[string]any{"action": "SET", "level_pct": 0}
	default: // feed_dispenser, water_valve
		return map[string]any{"action": "OFF"}
	}
}

func (e *Executor) onPlan(ctx context.Context, msg bus.Message) {
	farm, zone, ok := farmZoneFromTopic(msg.Topic)

	var plan model.Plan
	if err := json.Unmarshal(msg.Payload, &plan); err != nil {
		e.log.Warn("malformed plan payload, dropped", "topic", msg.Topic, "error", err)
		return
	}
	if !ok {
		farm, zone = string(plan.FarmID), string(plan.Zone)
	}
	if farm == "" || zone == "" {
		e.log.Warn("plan missing farm/zone, dropped", "topic", msg.Topic)
		return
	}

	for _, action := range plan.Actions {
		e.publishCommand(ctx, farm, zone, action.Actuator, action.Command)
	}
}

func (e *Executor) publishCommand(ctx context.Context, farm, zone string, actuator model.ActuatorType, command map[string]any) {
	payload, err := json.Marshal(command)
	if err != nil {
		e.log.Error("marshal command failed", "farm", farm, "zone", zone, "actuator", actuator, "error", err)
		return
	}

	topic := fmt.Sprintf("%s/%s/cmd/%s", farm, zone, actuator)
	if err := e.bus.Publish(ctx, topic, payload); err != nil {
		e.log.Warn("publish command failed", "topic", topic, "error", err)
	}

	stateStr := canonicalStateStr(actuator, command)
	e.log.Debug("command issued", "farm", farm, "zone", zone, "actuator", actuator, "state", stateStr)

	if e.store != nil {
		e.store.LogActuatorCommand(knowledge.ActuatorCommandRecord{
			Farm: farm, Zone: zone, Actuator: actuator, Command: command, Timestamp: time.Now(),
		})
	}
	if e.metrics != nil {
		e.metrics.PlanAction(farm, zone, string(actuator))
	}
}

// canonicalStateStr renders the translation-table human-readable state
// string for a command, purely for logging — the wire payload is always
// the verbatim action.Command map.
func canonicalStateStr(actuator model.ActuatorType, cmd map[string]any) string {
	switch actuator {
	case model.ActuatorFan:
		return fmt.Sprintf("SET %v%%", cmd["level"])
	case model.ActuatorHeater:
		if lvl, ok := cmd["level_pct"]; ok {
			return fmt.Sprintf("SET %v%%", lvl)
		}
		if cmd["action"] == "ON" {
			return "SET 100%"
		}
		return "SET 0%"
	case model.ActuatorInlet:
		return fmt.Sprintf("OPEN %v%%", cmd["open_pct"])
	case model.ActuatorFeeder:
		if cmd["action"] == "DISPENSE" {
			return fmt.Sprintf("DISPENSE %vg", cmd["amount_g"])
		}
		return fmt.Sprintf("%v", cmd["action"])
	case model.ActuatorWater:
		if cmd["action"] == "OPEN" {
			return fmt.Sprintf("OPEN %vs", cmd["duration_s"])
		}
		return fmt.Sprintf("%v", cmd["action"])
	case model.ActuatorLight:
		return fmt.Sprintf("SET %v%%", cmd["level_pct"])
	default:
		return fmt.Sprintf("%v", cmd)
	}
}

// farmZoneFromTopic parses {farm}/{zone}/plan, the preferred source of
// farm/zone (spec §4.6: "topic preferred, payload fallback").
func farmZoneFromTopic(topic string) (farm, zone string, ok bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 || parts[2] != "plan" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
