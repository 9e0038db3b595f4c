package monitor

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"poultrymapek/internal/bus"
	"poultrymapek/internal/knowledge"
	"poultrymapek/internal/model"
)

func testLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestMonitorRecordsAirReadings(t *testing.T) {
	b := bus.NewMemoryBus()
	store := knowledge.New(knowledge.Options{Window: time.Minute}, testLogger())
	mon := New(b, store, nil, testLogger())
	ctx := context.Background()
	if err := mon.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}

	_ = b.Publish(ctx, "f1/z1/sensors/air", []byte(`{"temperature_c":24.5,"co2_ppm":1500,"nh3_ppm":12}`))

	rec, ok := store.GetLatestSensorValue("f1", "z1", model.SensorTemperature)
	if !ok {
		t.Fatalf("expected a temperature reading to be recorded")
	}
	if rec.Value != 24.5 {
		t.Fatalf("expected temperature 24.5, got %v", rec.Value)
	}
	if _, ok := store.GetLatestSensorValue("f1", "z1", model.SensorCO2); !ok {
		t.Fatalf("expected a co2 reading to be recorded")
	}
}

func TestMonitorDropsMalformedPayload(t *testing.T) {
	b := bus.NewMemoryBus()
	store := knowledge.New(knowledge.Options{Window: time.Minute}, testLogger())
	mon := New(b, store, nil, testLogger())
	ctx := context.Background()
	_ = mon.Start(ctx)

	_ = b.Publish(ctx, "f1/z1/sensors/air", []byte(`not json`))

	if _, ok := store.GetLatestSensorValue("f1", "z1", model.SensorTemperature); ok {
		t.Fatalf("expected malformed payload to be dropped, not recorded")
	}
}

func TestMonitorIgnoresUnknownGroup(t *testing.T) {
	b := bus.NewMemoryBus()
	store := knowledge.New(knowledge.Options{Window: time.Minute}, testLogger())
	mon := New(b, store, nil, testLogger())
	ctx := context.Background()
	_ = mon.Start(ctx)

	_ = b.Publish(ctx, "f1/z1/sensors/unknown", []byte(`{"foo":1}`))

	if _, ok := store.GetLatestSensorValue("f1", "z1", model.SensorActivity); ok {
		t.Fatalf("expected unknown group to record nothing")
	}
}
