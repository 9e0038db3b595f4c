package simulator

import (
	"log/slog"
	"sync"

	"poultrymapek/internal/model"
)

// Zone owns one (farm, zone)'s EnvironmentState. A command-apply goroutine
// and a tick/publish goroutine share it under mu (spec §5): the command
// goroutine writes under lock from the bus callback; the tick goroutine
// locks, advances state, copies a Snapshot, and unlocks before publishing.
type Zone struct {
	Key model.ZoneKey
	log *slog.Logger

	mu    sync.Mutex
	state EnvironmentState
	cfg   model.ZoneConfig
}

// NewZone builds a Zone in its initial physical state for the given config.
func NewZone(key model.ZoneKey, cfg model.ZoneConfig, log *slog.Logger) *Zone {
	return &Zone{
		Key:   key,
		log:   log,
		state: NewEnvironmentState(cfg),
		cfg:   cfg,
	}
}

// UpdateConfig swaps in a freshly resolved config (e.g. after a topology
// reload), without resetting physical state.
func (z *Zone) UpdateConfig(cfg model.ZoneConfig) {
	z.mu.Lock()
	defer z.mu.Unlock()
	z.cfg = cfg
}

// ApplyCommand performs an idempotent, per-field write of commanded
// targets for one actuator. Rejected wholesale while sim_time_s is inside
// the startup lockout window (spec §3 invariant d); numeric fields are
// clamped; {actuator}_cmd_last_s is updated on acceptance. Unknown actuator
// names and malformed payloads are logged and ignored — the tick loop never
// raises.
func (z *Zone) ApplyCommand(actuator model.ActuatorType, payload map[string]any) {
	z.mu.Lock()
	defer z.mu.Unlock()

	if z.state.SimTimeS < z.cfg.StartupOverrideS {
		z.log.Info("command rejected, startup lockout", "farm", z.Key.Farm, "zone", z.Key.Zone, "actuator", actuator, "sim_time_s", z.state.SimTimeS)
		return
	}

	s := &z.state
	now := s.SimTimeS

	switch actuator {
	case model.ActuatorFan:
		if level, ok := numField(payload, "level"); ok {
			s.FanLevelCommand = clampf(level, 0.0, 100.0)
			s.FanCmdLastS = now
		}

	case model.ActuatorHeater:
		if level, ok := numField(payload, "level_pct"); ok {
			s.HeaterLevelCommand = clampf(level, 0.0, 100.0)
			s.HeaterCmdLastS = now
		}
		if action, ok := strField(payload, "action"); ok {
			switch action {
			case "ON":
				s.HeaterLevelCommand = 100.0
				s.HeaterCmdLastS = now
			case "OFF":
				s.HeaterLevelCommand = 0.0
				s.HeaterCmdLastS = now
			}
		}

	case model.ActuatorInlet:
		if pct, ok := numField(payload, "open_pct"); ok {
			s.InletOpenPctCommand = clampf(pct, 0.0, 100.0)
			s.InletCmdLastS = now
		}

	case model.ActuatorFeeder:
		if action, ok := strField(payload, "action"); ok {
			switch action {
			case "ON":
				s.FeedRefillOn = true
			case "OFF":
				s.FeedRefillOn = false
			}
		}
		if amountG, ok := numField(payload, "amount_g"); ok && z.cfg.FeedRefillFlowKgS > 0 {
			s.FeedRefillRemainingS = (amountG / 1000.0) / z.cfg.FeedRefillFlowKgS
		}

	case model.ActuatorWater:
		if action, ok := strField(payload, "action"); ok {
			switch action {
			case "ON":
				s.WaterRefillOn = true
			case "OFF":
				s.WaterRefillOn = false
			}
		}
		if durationS, ok := numField(payload, "duration_s"); ok {
			s.WaterRefillRemainingS = durationS
		}

	case model.ActuatorLight:
		if pct, ok := numField(payload, "level_pct"); ok {
			s.LightLevelPctCommand = clampf(pct, 0.0, 100.0)
			s.LightCmdLastS = now
		}

	default:
		z.log.Warn("unknown actuator in command", "farm", z.Key.Farm, "zone", z.Key.Zone, "actuator", actuator)
	}
}

// Tick advances sim_time_s by dt_s and integrates every physical and
// actuator model in the order spec §4.1 requires: auto-control fallback,
// actuator dynamics, then ventilation/thermal/gas/consumption/activity
// (each reading the updated actuator outputs from the previous stage).
func (z *Zone) Tick(dtS float64) {
	z.mu.Lock()
	defer z.mu.Unlock()

	s := &z.state
	s.SimTimeS += dtS
	applyAutoControl(s, z.cfg)
	applyActuatorDynamics(s, z.cfg, dtS)
	applyThermalAndGas(s, z.cfg, dtS)
	applyConsumption(s, z.cfg, dtS)
	applyActivity(s, z.cfg, dtS)
}

// Snapshot returns a value copy of the current state, usable without
// further locking.
func (z *Zone) Snapshot() EnvironmentState {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.state
}

func numField(payload map[string]any, key string) (float64, bool) {
	v, ok := payload[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func strField(payload map[string]any, key string) (string, bool) {
	v, ok := payload[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
