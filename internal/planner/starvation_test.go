package planner

import (
	"testing"
	"time"

	"poultrymapek/internal/model"
)

func TestStarvationPrefersUnaddressedIssueOverFreshOne(t *testing.T) {
	st := NewStarvationState()
	cfg := model.DefaultZoneConfig()
	t0 := time.Unix(0, 0)

	// FEED_LOW has gone unaddressed for 320s, well past the 300s
	// starvation_threshold_s default, and the hopper is nearly empty, so its
	// severity and starvation multipliers push it within 80% of TEMP_HIGH's
	// base priority (10) even though FEED_LOW's base priority (7) is lower.
	st.RegisterIssue(IssueFeedLow, 0.0, cfg, t0)
	later := t0.Add(320 * time.Second)
	st.RegisterIssue(IssueFeedLow, 0.0, cfg, later)
	st.RegisterIssue(IssueTempHigh, cfg.TempMaxC+0.5, cfg, later)

	issue, _, _, ok := st.highestPriorityIssue()
	if !ok {
		t.Fatalf("expected an issue to be selected")
	}
	if issue != IssueFeedLow {
		t.Fatalf("expected starved FEED_LOW to win, got %v", issue)
	}
}

func TestStarvationResolveConflictsDropsOpposedActuator(t *testing.T) {
	actions := []model.Action{
		{Actuator: model.ActuatorHeater, Priority: 1, Command: map[string]any{"action": "ON"}},
		{Actuator: model.ActuatorFan, Priority: 1, Command: map[string]any{"action": "ON"}},
	}
	resolved := resolveConflicts(actions)
	if len(resolved) != 1 {
		t.Fatalf("expected conflicting fan/heater actions to collapse to one, got %+v", resolved)
	}
	if resolved[0].Actuator != model.ActuatorFan {
		t.Fatalf("expected the later action (fan) to win the conflict, got %v", resolved[0].Actuator)
	}
}

func TestStarvationShouldExecuteGatesMinInterval(t *testing.T) {
	st := NewStarvationState()
	now := time.Unix(0, 0)
	if !st.shouldExecute(model.ActuatorFan, 30.0, now) {
		t.Fatalf("expected first execution to be allowed")
	}
	st.markExecuted(model.ActuatorFan, now)
	if st.shouldExecute(model.ActuatorFan, 30.0, now.Add(5*time.Second)) {
		t.Fatalf("expected execution to be gated before min_interval elapses")
	}
	if !st.shouldExecute(model.ActuatorFan, 30.0, now.Add(31*time.Second)) {
		t.Fatalf("expected execution to be allowed once min_interval has elapsed")
	}
}

func TestStarvationPlanTempLowTurnsHeaterOnDropsFan(t *testing.T) {
	st := NewStarvationState()
	cfg := model.DefaultZoneConfig()
	now := time.Unix(0, 0)
	st.RegisterIssue(IssueTempLow, cfg.TempMinC-2.0, cfg, now)

	actions := st.Plan(cfg, now)
	heater, ok := findAction(actions, model.ActuatorHeater)
	if !ok || heater.Command["action"] != "ON" {
		t.Fatalf("expected heater ON action, got %+v", actions)
	}
	if fan, ok := findAction(actions, model.ActuatorFan); ok {
		t.Fatalf("expected the opposed fan action to be dropped by conflict resolution, got %+v", fan)
	}
}

func TestStarvationPlanFeedLowDispensesScaledAmount(t *testing.T) {
	st := NewStarvationState()
	cfg := model.DefaultZoneConfig()
	now := time.Unix(0, 0)
	st.RegisterIssue(IssueFeedLow, cfg.FeedThresholdKg/2.0, cfg, now)

	actions := st.Plan(cfg, now)
	feeder, ok := findAction(actions, model.ActuatorFeeder)
	if !ok {
		t.Fatalf("expected a feed_dispenser action, got %+v", actions)
	}
	if feeder.Command["action"] != "DISPENSE" {
		t.Fatalf("expected DISPENSE action, got %v", feeder.Command)
	}
	amount, _ := feeder.Command["amount_g"].(int)
	if amount <= 0 {
		t.Fatalf("expected a positive dispense amount, got %v", amount)
	}
}
