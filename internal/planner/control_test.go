package planner

import (
	"testing"
	"time"

	"poultrymapek/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func findAction(actions []model.Action, actuator model.ActuatorType) (model.Action, bool) {
	for _, a := range actions {
		if a.Actuator == actuator {
			return a, true
		}
	}
	return model.Action{}, false
}

func TestBuildActionsColdBarnEngagesHeater(t *testing.T) {
	s := NewState()
	cfg := model.DefaultZoneConfig()
	cfg.TempSetpointC = 24.0

	status := model.ZoneStatus{
		FarmID:       "f1",
		Zone:         "z1",
		TemperatureC: floatPtr(10.0),
	}
	actions := s.BuildActions(status, cfg, time.Unix(0, 0))

	heater, ok := findAction(actions, model.ActuatorHeater)
	if !ok {
		t.Fatalf("expected a heater action")
	}
	level, _ := heater.Command["level_pct"].(int)
	if level <= 0 {
		t.Fatalf("expected heater to engage with a positive level, got %v", heater.Command)
	}

	fan, ok := findAction(actions, model.ActuatorFan)
	if !ok {
		t.Fatalf("expected a fan action")
	}
	fanLevel, _ := fan.Command["level"].(int)
	if float64(fanLevel) < cfg.HeaterMinFan {
		t.Fatalf("expected fan floored at heater_min_fan while heater is on, got %v", fan.Command)
	}
}

func TestBuildActionsHotBarnFanProportional(t *testing.T) {
	s := NewState()
	cfg := model.DefaultZoneConfig()
	cfg.TempSetpointC = 26.0
	cfg.CO2SetpointPpm = 1500.0
	cfg.FanKpTemp = 10.0
	cfg.FanKpCO2 = 0.02

	status := model.ZoneStatus{
		FarmID:       "f1",
		Zone:         "z1",
		TemperatureC: floatPtr(30.0),
		CO2ppm:       floatPtr(1800.0),
	}
	actions := s.BuildActions(status, cfg, time.Unix(0, 0))

	fan, ok := findAction(actions, model.ActuatorFan)
	if !ok {
		t.Fatalf("expected a fan action")
	}
	level, _ := fan.Command["level"].(int)
	if level != 46 {
		t.Fatalf("expected fan level 46 before any subsequent rate limiting, got %v", level)
	}

	heater, ok := findAction(actions, model.ActuatorHeater)
	if !ok {
		t.Fatalf("expected a heater action even when off")
	}
	if heater.Command["level_pct"].(int) != 0 {
		t.Fatalf("expected heater off in a hot barn, got %v", heater.Command)
	}
}

func TestBuildActionsMissingSensorsMaxFan(t *testing.T) {
	s := NewState()
	cfg := model.DefaultZoneConfig()

	status := model.ZoneStatus{FarmID: "f1", Zone: "z1"}
	actions := s.BuildActions(status, cfg, time.Unix(0, 0))

	fan, ok := findAction(actions, model.ActuatorFan)
	if !ok {
		t.Fatalf("expected a fan action")
	}
	if fan.Command["level"].(int) != int(cfg.FanMaxPct) {
		t.Fatalf("expected fan_max when both temperature and co2 are missing, got %v", fan.Command)
	}
}

func TestBuildActionsFeedWaterHysteresisTrajectory(t *testing.T) {
	s := NewState()
	cfg := model.DefaultZoneConfig()
	cfg.FeedRefillLowKg = 1.5
	cfg.FeedRefillHighKg = 2.5
	trajectory := []float64{2.0, 1.4, 1.0, 1.8, 2.6}
	want := []string{"OFF", "ON", "ON", "ON", "OFF"}

	now := time.Unix(0, 0)
	for i, v := range trajectory {
		status := model.ZoneStatus{FarmID: "f1", Zone: "z1", FeedKg: floatPtr(v)}
		actions := s.BuildActions(status, cfg, now)
		feeder, ok := findAction(actions, model.ActuatorFeeder)
		if !ok {
			t.Fatalf("step %d: expected a feed_dispenser action", i)
		}
		if feeder.Command["action"] != want[i] {
			t.Fatalf("step %d: feed=%v expected %v, got %v", i, v, want[i], feeder.Command["action"])
		}
		now = now.Add(time.Second)
	}
}

func TestBuildActionsActionsSortedByPriority(t *testing.T) {
	s := NewState()
	cfg := model.DefaultZoneConfig()
	status := model.ZoneStatus{
		FarmID:       "f1",
		Zone:         "z1",
		TemperatureC: floatPtr(24.0),
		Activity:     floatPtr(0.3),
	}
	actions := s.BuildActions(status, cfg, time.Unix(0, 0))
	for i := 1; i < len(actions); i++ {
		if actions[i].Priority < actions[i-1].Priority {
			t.Fatalf("actions not sorted by priority: %+v", actions)
		}
	}
}
