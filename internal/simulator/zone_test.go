package simulator

import (
	"io"
	"log/slog"
	"testing"

	"poultrymapek/internal/model"
)

func testZone(t *testing.T) *Zone {
	t.Helper()
	cfg := model.DefaultZoneConfig()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewZone(model.ZoneKey{Farm: "f1", Zone: "z1"}, cfg, log)
}

func TestApplyCommandRejectedDuringStartupLockout(t *testing.T) {
	z := testZone(t)
	// sim_time_s starts at 0, well inside the 60s lockout window.
	z.ApplyCommand(model.ActuatorFan, map[string]any{"level": 100.0})

	z.Tick(1.0)
	snap := z.Snapshot()
	if snap.FanLevelCommand != 0 {
		t.Fatalf("expected fan_level_command to stay 0 during lockout, got %v", snap.FanLevelCommand)
	}
	if snap.FanLevel != 0 {
		t.Fatalf("expected fan_level to stay 0 during lockout, got %v", snap.FanLevel)
	}
}

func TestApplyCommandAcceptedAfterLockout(t *testing.T) {
	z := testZone(t)
	// Advance past the 60s startup_override_s window.
	for i := 0; i < 61; i++ {
		z.Tick(1.0)
	}
	z.ApplyCommand(model.ActuatorFan, map[string]any{"level": 100.0})
	if snap := z.Snapshot(); snap.FanLevelCommand != 100.0 {
		t.Fatalf("expected fan_level_command 100 after lockout, got %v", snap.FanLevelCommand)
	}
}

func TestStateStaysWithinInvariantBounds(t *testing.T) {
	z := testZone(t)
	for i := 0; i < 600; i++ {
		z.Tick(1.0)
	}
	snap := z.Snapshot()
	cfg := model.DefaultZoneConfig()

	if snap.TemperatureC < 10 || snap.TemperatureC > 40 {
		t.Fatalf("temperature_c out of bounds: %v", snap.TemperatureC)
	}
	if snap.CO2ppm < 400 || snap.CO2ppm > 6000 {
		t.Fatalf("co2_ppm out of bounds: %v", snap.CO2ppm)
	}
	if snap.NH3ppm < 0 || snap.NH3ppm > 200 {
		t.Fatalf("nh3_ppm out of bounds: %v", snap.NH3ppm)
	}
	if snap.FeedKg < 0 || snap.FeedKg > cfg.FeedHopperCapacityKg {
		t.Fatalf("feed_kg out of bounds: %v", snap.FeedKg)
	}
	if snap.WaterL < 0 || snap.WaterL > cfg.WaterTankCapacityL {
		t.Fatalf("water_l out of bounds: %v", snap.WaterL)
	}
	if snap.Activity < 0 || snap.Activity > 1 {
		t.Fatalf("activity out of bounds: %v", snap.Activity)
	}
	for _, lvl := range []float64{snap.FanLevel, snap.HeaterLevel, snap.InletOpenPct, snap.LightLevelPct} {
		if lvl < 0 || lvl > 100 {
			t.Fatalf("actuator level out of [0,100]: %v", lvl)
		}
	}
}

func TestFanDwellGatesRapidSwitching(t *testing.T) {
	z := testZone(t)
	for i := 0; i < 61; i++ {
		z.Tick(1.0)
	}
	z.ApplyCommand(model.ActuatorFan, map[string]any{"level": 100.0})
	z.Tick(1.0)
	if !z.Snapshot().FanOn {
		t.Fatalf("expected fan on after command with dwell satisfied (cold start last_switch=0)")
	}

	// Immediately command off; min_fan_on_s (90s) has not elapsed, so fan
	// must remain on until the dwell is satisfied.
	z.ApplyCommand(model.ActuatorFan, map[string]any{"level": 0.0})
	z.Tick(1.0)
	if !z.Snapshot().FanOn {
		t.Fatalf("expected fan to remain on before min_fan_on_s dwell elapses")
	}
}

func TestApplyCommandIdempotentFanLevel(t *testing.T) {
	z := testZone(t)
	for i := 0; i < 61; i++ {
		z.Tick(1.0)
	}
	z.ApplyCommand(model.ActuatorFan, map[string]any{"level": 55.0})
	first := z.Snapshot().FanLevelCommand
	z.ApplyCommand(model.ActuatorFan, map[string]any{"level": 55.0})
	second := z.Snapshot().FanLevelCommand
	if first != second {
		t.Fatalf("expected idempotent command application, got %v then %v", first, second)
	}
}

func TestApplyCommandClampsOutOfRangeLevel(t *testing.T) {
	z := testZone(t)
	for i := 0; i < 61; i++ {
		z.Tick(1.0)
	}
	z.ApplyCommand(model.ActuatorInlet, map[string]any{"open_pct": 150.0})
	if got := z.Snapshot().InletOpenPctCommand; got != 100.0 {
		t.Fatalf("expected clamp to 100, got %v", got)
	}
}

func TestApplyCommandUnknownActuatorIgnored(t *testing.T) {
	z := testZone(t)
	for i := 0; i < 61; i++ {
		z.Tick(1.0)
	}
	before := z.Snapshot()
	z.ApplyCommand(model.ActuatorType("sprinkler"), map[string]any{"level": 10.0})
	after := z.Snapshot()
	if before != after {
		t.Fatalf("expected unknown actuator command to be a no-op")
	}
}
