package planner

import (
	"testing"
	"time"
)

func TestRateLimitFirstCallPassesThrough(t *testing.T) {
	s := NewState()
	now := time.Unix(0, 0)
	got := s.rateLimit("f1", "z1", "fan", 46.0, 80.0, now)
	if got != 46.0 {
		t.Fatalf("expected first call to pass target through unchanged, got %v", got)
	}
}

func TestRateLimitClampsToMaxDelta(t *testing.T) {
	s := NewState()
	t0 := time.Unix(0, 0)
	s.rateLimit("f1", "z1", "fan", 20.0, 80.0, t0)

	t1 := t0.Add(30 * time.Second)
	got := s.rateLimit("f1", "z1", "fan", 80.0, 80.0, t1)
	if got != 60.0 {
		t.Fatalf("expected rate-limited value 60, got %v", got)
	}
}

func TestHysteresisStateSchmittTrigger(t *testing.T) {
	s := NewState()
	now := time.Unix(0, 0)
	trajectory := []float64{2.0, 1.4, 1.0, 1.8, 2.6}
	want := []bool{false, true, true, true, false}

	for i, v := range trajectory {
		val := v
		got := s.hysteresisState("f1", "z1", "feed", &val, 1.5, 2.5)
		if got != want[i] {
			t.Fatalf("step %d: value=%v expected %v, got %v", i, v, want[i], got)
		}
		now = now.Add(time.Second)
	}
	_ = now
}

func TestHysteresisStateHoldsOnMissingValue(t *testing.T) {
	s := NewState()
	v := 1.0
	s.hysteresisState("f1", "z1", "feed", &v, 1.5, 2.5)
	got := s.hysteresisState("f1", "z1", "feed", nil, 1.5, 2.5)
	if !got {
		t.Fatalf("expected missing value to hold previous state (on)")
	}
}

func TestHeaterOnStateFirstSwitchBypassesDwell(t *testing.T) {
	s := NewState()
	now := time.Unix(0, 0)
	cold := 10.0
	on := s.heaterOnState("f1", "z1", &cold, 24.0, 0.4, 120.0, 120.0, now)
	if !on {
		t.Fatalf("expected heater to engage immediately on first cold reading")
	}
}

func TestHeaterOnStateRespectsMinOnDwell(t *testing.T) {
	s := NewState()
	now := time.Unix(0, 0)
	cold := 10.0
	s.heaterOnState("f1", "z1", &cold, 24.0, 0.4, 120.0, 120.0, now)

	warm := 30.0
	soon := now.Add(5 * time.Second)
	on := s.heaterOnState("f1", "z1", &warm, 24.0, 0.4, 120.0, 120.0, soon)
	if !on {
		t.Fatalf("expected heater to stay on until min_on_s dwell elapses")
	}

	late := now.Add(121 * time.Second)
	on = s.heaterOnState("f1", "z1", &warm, 24.0, 0.4, 120.0, 120.0, late)
	if on {
		t.Fatalf("expected heater to switch off once min_on_s dwell has elapsed and temp is above setpoint+deadband")
	}
}
