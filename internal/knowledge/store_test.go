package knowledge

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"poultrymapek/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStoreLatestSensorValue(t *testing.T) {
	s := New(Options{}, testLogger())
	now := time.Now()

	s.LogSensor(SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorTemperature, Value: 21.0, Timestamp: now.Add(-time.Minute)})
	s.LogSensor(SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorTemperature, Value: 22.5, Timestamp: now})

	got, ok := s.GetLatestSensorValue("f1", "z1", model.SensorTemperature)
	if !ok {
		t.Fatalf("expected a latest value")
	}
	if got.Value != 22.5 {
		t.Fatalf("expected latest value 22.5, got %v", got.Value)
	}

	if _, ok := s.GetLatestSensorValue("f1", "z1", model.SensorCO2); ok {
		t.Fatalf("expected no co2 value logged")
	}
	if _, ok := s.GetLatestSensorValue("f1", "z2", model.SensorTemperature); ok {
		t.Fatalf("expected zone isolation, z2 has no readings")
	}
}

func TestStorePrunesOutsideWindow(t *testing.T) {
	s := New(Options{Window: 5 * time.Minute}, testLogger())
	now := time.Now()

	s.LogSensor(SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorCO2, Value: 900, Timestamp: now.Add(-time.Hour)})
	s.LogSensor(SensorRecord{Farm: "f1", Zone: "z1", Type: model.SensorCO2, Value: 950, Timestamp: now})

	series := s.SensorSeries("f1", "z1", model.SensorCO2, now.Add(-10*time.Minute), now.Add(time.Minute))
	if len(series) != 1 {
		t.Fatalf("expected stale reading pruned, got %d entries: %+v", len(series), series)
	}
	if series[0].Value != 950 {
		t.Fatalf("expected surviving reading to be the fresh one, got %v", series[0].Value)
	}
}

func TestStoreLatestPlanAndCommand(t *testing.T) {
	s := New(Options{}, testLogger())
	now := time.Now()

	s.LogPlan(PlanRecord{Farm: "f1", Zone: "z1", Actions: []model.Action{{Actuator: model.ActuatorFan, Priority: 2}}, Timestamp: now})
	plan, ok := s.GetLatestPlan("f1", "z1")
	if !ok || len(plan.Actions) != 1 {
		t.Fatalf("expected a logged plan with one action, got %+v ok=%v", plan, ok)
	}

	s.LogActuatorCommand(ActuatorCommandRecord{Farm: "f1", Zone: "z1", Actuator: model.ActuatorFan, Command: map[string]any{"level": 0.5}, Timestamp: now})
	cmd, ok := s.GetLatestCommand("f1", "z1", model.ActuatorFan)
	if !ok || cmd.Command["level"] != 0.5 {
		t.Fatalf("expected logged command with level 0.5, got %+v ok=%v", cmd, ok)
	}
}
