package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"poultrymapek/internal/bus"
	"poultrymapek/internal/knowledge"
	"poultrymapek/internal/metrics"
	"poultrymapek/internal/model"
	"poultrymapek/internal/topology"
)

// Mode selects which control law BuildPlan runs: "status" consumes a full
// ZoneStatus (spec §4.5's primary planner), "starvation" consumes the same
// status but drives the issue-stream variant described in spec §4.5's
// second paragraph, reducing the status to issues from whichever of the
// temperature, NH3, feed and water ok-flags are false (the CO2 and activity
// flags raise no issue).
type Mode string

const (
	ModeStatus     Mode = "status"
	ModeStarvation Mode = "starvation"
)

// Planner subscribes to every zone's status topic, runs the configured
// control law, and publishes the resulting Plan. One Planner serves the
// whole topology; per-zone memory lives in State/StarvationState maps keyed
// by (farm, zone).
type Planner struct {
	bus      bus.Bus
	resolver *topology.Resolver
	store    *knowledge.Store
	metrics  *metrics.Metrics
	log      *slog.Logger
	mode     Mode

	status     *State
	starvation map[zoneKey]*StarvationState

	unsubscribe func() error
}

// New builds a Planner. resolver supplies per-zone ZoneConfig lookups so
// the control law always uses the zone's current thresholds, not a
// snapshot taken at startup.
func New(b bus.Bus, resolver *topology.Resolver, store *knowledge.Store, m *metrics.Metrics, mode Mode, log *slog.Logger) *Planner {
	return &Planner{
		bus:        b,
		resolver:   resolver,
		store:      store,
		metrics:    m,
		mode:       mode,
		log:        log,
		status:     NewState(),
		starvation: make(map[zoneKey]*StarvationState),
	}
}

// Start subscribes to every zone's status topic.
func (p *Planner) Start(ctx context.Context) error {
	unsub, err := p.bus.Subscribe(ctx, "+/+/status", p.onStatus)
	if err != nil {
		return fmt.Errorf("subscribe +/+/status: %w", err)
	}
	p.unsubscribe = unsub
	return nil
}

// Stop unsubscribes from the status topic.
func (p *Planner) Stop() {
	if p.unsubscribe != nil {
		_ = p.unsubscribe()
	}
}

func (p *Planner) onStatus(ctx context.Context, msg bus.Message) {
	var status model.ZoneStatus
	if err := json.Unmarshal(msg.Payload, &status); err != nil {
		p.log.Warn("malformed status payload, dropped", "topic", msg.Topic, "error", err)
		return
	}

	farm, zone := string(status.FarmID), string(status.Zone)
	cfg := p.resolver.ResolveZoneConfig(farm, zone)
	now := time.Now()

	var actions []model.Action
	switch p.mode {
	case ModeStarvation:
		actions = p.buildStarvationPlan(status, cfg, now)
	default:
		actions = p.status.BuildActions(status, cfg, now)
	}
	if len(actions) == 0 {
		return
	}

	plan := model.Plan{FarmID: status.FarmID, Zone: status.Zone, Actions: actions}
	payload, err := json.Marshal(plan)
	if err != nil {
		p.log.Error("marshal plan failed", "farm", farm, "zone", zone, "error", err)
		return
	}

	topic := fmt.Sprintf("%s/%s/plan", farm, zone)
	if err := p.bus.Publish(ctx, topic, payload); err != nil {
		p.log.Warn("publish plan failed", "topic", topic, "error", err)
	}
	if p.store != nil {
		p.store.LogPlan(knowledge.PlanRecord{Farm: farm, Zone: zone, Actions: actions, Timestamp: now})
	}
	if p.metrics != nil {
		for _, a := range actions {
			p.metrics.PlanAction(farm, zone, string(a.Actuator))
		}
	}
}

// buildStarvationPlan reduces a ZoneStatus's ok-flags/alert into issue
// registrations against the zone's StarvationState, then asks it for the
// single highest-priority issue's actions. This is how spec §4.5's "issue
// stream" variant is driven when only a ZoneStatus (rather than a raw
// issue feed) is available on the bus.
func (p *Planner) buildStarvationPlan(status model.ZoneStatus, cfg model.ZoneConfig, now time.Time) []model.Action {
	key := zoneKey{string(status.FarmID), string(status.Zone)}
	st, ok := p.starvation[key]
	if !ok {
		st = NewStarvationState()
		p.starvation[key] = st
	}

	if !status.TempOK && status.TemperatureC != nil {
		if *status.TemperatureC > cfg.TempMaxC {
			st.RegisterIssue(IssueTempHigh, *status.TemperatureC, cfg, now)
		} else if *status.TemperatureC < cfg.TempMinC {
			st.RegisterIssue(IssueTempLow, *status.TemperatureC, cfg, now)
		}
	} else {
		st.ClearIssue(IssueTempHigh)
		st.ClearIssue(IssueTempLow)
	}

	if !status.NH3OK && status.NH3ppm != nil {
		st.RegisterIssue(IssueAirQualityBad, *status.NH3ppm, cfg, now)
	} else {
		st.ClearIssue(IssueAirQualityBad)
	}

	if !status.FeedOK && status.FeedKg != nil {
		st.RegisterIssue(IssueFeedLow, *status.FeedKg, cfg, now)
	} else {
		st.ClearIssue(IssueFeedLow)
	}

	if !status.WaterOK && status.WaterL != nil {
		st.RegisterIssue(IssueWaterLow, *status.WaterL, cfg, now)
	} else {
		st.ClearIssue(IssueWaterLow)
	}

	return st.Plan(cfg, now)
}
