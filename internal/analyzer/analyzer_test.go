package analyzer

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"poultrymapek/internal/bus"
	"poultrymapek/internal/knowledge"
	"poultrymapek/internal/model"
	"poultrymapek/internal/topology"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newResolver(t *testing.T) *topology.Resolver {
	t.Helper()
	path := filepath.Join(t.TempDir(), "system_config.json")
	if err := os.WriteFile(path, []byte(`{"farms":[{"id":"f1","zones":["z1"]}]}`), 0o644); err != nil {
		t.Fatalf("write topology: %v", err)
	}
	return topology.NewResolver(path)
}

func TestAnalyzeZoneMissingTemperatureEmitsAlert(t *testing.T) {
	resolver := newResolver(t)
	store := knowledge.New(knowledge.Options{Window: time.Minute}, testLogger())
	b := bus.NewMemoryBus()

	var published model.ZoneStatus
	_, _ = b.Subscribe(context.Background(), "f1/z1/status", func(_ context.Context, msg bus.Message) {
		_ = json.Unmarshal(msg.Payload, &published)
	})

	a := New(b, resolver, store, nil, time.Second, testLogger())
	a.analyzeZone(context.Background(), "f1", "z1")

	if published.TempOK {
		t.Fatalf("expected temp_ok=false when no temperature reading exists")
	}
	want := "No temperature & No CO2 & No NH3 & No feed data & No water data & No activity"
	if published.Alert != want {
		t.Fatalf("expected alert %q, got %q", want, published.Alert)
	}
}

func TestAnalyzeZoneAllOKProducesOKAlert(t *testing.T) {
	resolver := newResolver(t)
	store := knowledge.New(knowledge.Options{Window: time.Minute}, testLogger())
	b := bus.NewMemoryBus()

	now := time.Now()
	store.LogSensor(knowledge.SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorTemperature, Value: 24, Timestamp: now})
	store.LogSensor(knowledge.SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorCO2, Value: 1000, Timestamp: now})
	store.LogSensor(knowledge.SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorAmmonia, Value: 5, Timestamp: now})
	store.LogSensor(knowledge.SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorFeedLevel, Value: 50, Timestamp: now})
	store.LogSensor(knowledge.SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorWaterLevel, Value: 50, Timestamp: now})
	store.LogSensor(knowledge.SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorActivity, Value: 0.5, Timestamp: now})

	var published model.ZoneStatus
	_, _ = b.Subscribe(context.Background(), "f1/z1/status", func(_ context.Context, msg bus.Message) {
		_ = json.Unmarshal(msg.Payload, &published)
	})

	a := New(b, resolver, store, nil, time.Second, testLogger())
	a.analyzeZone(context.Background(), "f1", "z1")

	if published.Alert != "OK" {
		t.Fatalf("expected alert OK, got %q", published.Alert)
	}
	if !(published.TempOK && published.CO2OK && published.NH3OK && published.FeedOK && published.WaterOK && published.ActivityOK) {
		t.Fatalf("expected all ok-flags true, got %+v", published)
	}
}

func TestAnalyzeZoneOrderedAlertJoin(t *testing.T) {
	resolver := newResolver(t)
	store := knowledge.New(knowledge.Options{Window: time.Minute}, testLogger())
	b := bus.NewMemoryBus()

	now := time.Now()
	store.LogSensor(knowledge.SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorTemperature, Value: 35, Timestamp: now})
	store.LogSensor(knowledge.SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorCO2, Value: 4000, Timestamp: now})

	var published model.ZoneStatus
	_, _ = b.Subscribe(context.Background(), "f1/z1/status", func(_ context.Context, msg bus.Message) {
		_ = json.Unmarshal(msg.Payload, &published)
	})

	a := New(b, resolver, store, nil, time.Second, testLogger())
	a.analyzeZone(context.Background(), "f1", "z1")

	want := "Too hot & High CO2 & No NH3 & No feed data & No water data & No activity"
	if published.Alert != want {
		t.Fatalf("expected alert %q, got %q", want, published.Alert)
	}
}
