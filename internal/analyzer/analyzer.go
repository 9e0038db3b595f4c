// Package analyzer implements MAPE-K's "Analyze" stage (spec §4.4): on a
// fixed interval, it reduces each zone's windowed Knowledge readings into a
// ZoneStatus (ok-flags plus an ordered alert phrase) and publishes it.
// Grounded on aggregator's periodic-tick pattern, generalized from a single
// aggregate metric to the platform's six-field status.
package analyzer

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

const lookbackWindow = 10 * time.Minute

// Analyzer periodically computes and publishes a ZoneStatus per zone.
type Analyzer struct {
	bus      bus.Bus
	resolver *topology.Resolver
	store    *knowledge.Store
	metrics  *metrics.Metrics
	log      *slog.Logger
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

// New builds an Analyzer. interval is status_interval_s (spec default 5s).
func New(b bus.Bus, resolver *topology.Resolver, store *knowledge.Store, m *metrics.Metrics, interval time.Duration, log *slog.Logger) *Analyzer {
	return &Analyzer{
		bus:      b,
		resolver: resolver,
		store:    store,
		metrics:  m,
		log:      log,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the periodic analysis loop.
func (a *Analyzer) Start(ctx context.Context) {
	go a.run(ctx)
}

// Stop ends the loop and waits for it to exit.
func (a *Analyzer) Stop() {
	close(a.stop)
	<-a.done
}

func (a *Analyzer) run(ctx context.Context) {
	defer close(a.done)
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.cycle(ctx)
		}
	}
}

func (a *Analyzer) cycle(ctx context.Context) {
	if err := a.resolver.Reload(); err != nil {
		a.log.Warn("topology reload failed, using previous topology", "error", err)
	}
	doc := a.resolver.Document()

	for _, fz := range doc.ZoneKeys() {
		func() {
			defer func() {
				if r := recover(); r != nil {
					a.log.Error("analyzer cycle panicked for zone, skipping", "farm", fz.Farm, "zone", fz.Zone, "panic", r)
				}
			}()
			a.analyzeZone(ctx, fz.Farm, fz.Zone)
		}()
	}
}

func (a *Analyzer) analyzeZone(ctx context.Context, farm, zone string) {
	cfg := a.resolver.ResolveZoneConfig(farm, zone)
	now := time.Now()
	from := now.Add(-lookbackWindow)

	temp := a.latest(farm, zone, model.SensorTemperature, from, now)
	co2 := a.latest(farm, zone, model.SensorCO2, from, now)
	nh3 := a.latest(farm, zone, model.SensorAmmonia, from, now)
	feed := a.latest(farm, zone, model.SensorFeedLevel, from, now)
	water := a.latest(farm, zone, model.SensorWaterLevel, from, now)
	activity := a.latest(farm, zone, model.SensorActivity, from, now)

	status := model.ZoneStatus{
		FarmID:       model.FarmID(farm),
		Zone:         model.ZoneID(zone),
		TemperatureC: temp,
		CO2ppm:       co2,
		NH3ppm:       nh3,
		FeedKg:       feed,
		WaterL:       water,
		Activity:     activity,
	}

	var phrases []string

	switch {
	case temp == nil:
		phrases = append(phrases, "No temperature")
	case *temp < cfg.TempMinC:
		phrases = append(phrases, "Too cold")
	case *temp > cfg.TempMaxC:
		phrases = append(phrases, "Too hot")
	default:
		status.TempOK = true
	}

	switch {
	case co2 == nil:
		phrases = append(phrases, "No CO2")
	case *co2 > cfg.CO2MaxPpm:
		phrases = append(phrases, "High CO2")
	default:
		status.CO2OK = true
	}

	switch {
	case nh3 == nil:
		phrases = append(phrases, "No NH3")
	case *nh3 > cfg.NH3ThresholdPpm:
		phrases = append(phrases, "High NH3")
	default:
		status.NH3OK = true
	}

	switch {
	case feed == nil:
		phrases = append(phrases, "No feed data")
	case *feed < cfg.FeedThresholdKg:
		phrases = append(phrases, "Low feed")
	default:
		status.FeedOK = true
	}

	switch {
	case water == nil:
		phrases = append(phrases, "No water data")
	case *water < cfg.WaterThresholdL:
		phrases = append(phrases, "Low water")
	default:
		status.WaterOK = true
	}

	switch {
	case activity == nil:
		phrases = append(phrases, "No activity")
	case *activity < cfg.ActivityMin:
		phrases = append(phrases, "Low activity")
	default:
		status.ActivityOK = true
	}

	if len(phrases) == 0 {
		status.Alert = "OK"
	} else {
		status.Alert = strings.Join(phrases, " & ")
	}

	payload, err := json.Marshal(status)
	if err != nil {
		a.log.Error("marshal status failed", "farm", farm, "zone", zone, "error", err)
		return
	}
	topic := fmt.Sprintf("%s/%s/status", farm, zone)
	if err := a.bus.Publish(ctx, topic, payload); err != nil {
		a.log.Warn("publish status failed", "topic", topic, "error", err)
	}
	if a.store != nil {
		a.store.LogSymptom(knowledge.SymptomRecord{Farm: farm, Zone: zone, Alert: status.Alert, Timestamp: now})
	}
	if a.metrics != nil {
		a.metrics.StatusPublished(farm, zone)
	}
}

func (a *Analyzer) latest(farm, zone string, t model.SensorType, from, to time.Time) *float64 {
	rec, ok := a.store.GetLatestSensorValue(farm, zone, t)
	if !ok || rec.Timestamp.Before(from) || rec.Timestamp.After(to) {
		return nil
	}
	v := rec.Value
	return &v
}
