// Package planner implements the control law that turns a ZoneStatus into
// a conflict-free, rate-limited Plan (spec §4.5), ported from
// original_source/planner/planner_service.py's module-level _LAST_LEVELS /
// _REFILL_STATE / _HEATER_STATE dictionaries. Per spec §9's design note,
// those singleton caches become a per-zone state struct owned by the single
// goroutine that drives the planner's bus callback — no lock is needed
// provided the MQTT client delivers callbacks serially, which is the
// contract paho.mqtt.golang (and MemoryBus) honor.
package planner

import (
	"time"

	"poultrymapek/internal/model"
)

// zoneKey is the per-(farm,zone) state the planner retains for the
// controller process lifetime, created lazily on first status.
type zoneKey struct {
	farm, zone string
}

type rateState struct {
	level float64
	at    time.Time
}

// State is the planner's persistent memory: rate-limit memos keyed by
// (farm, zone, actuator), refill latches keyed by (farm, zone, "feed"|
// "water"), and the heater on/off latch keyed by (farm, zone).
type State struct {
	lastLevels map[zoneActuatorKey]rateState
	refill     map[zoneActuatorKey]bool
	heaterOn   map[zoneKey]bool
	heaterAt   map[zoneKey]time.Time
}

type zoneActuatorKey struct {
	farm, zone, actuator string
}

// NewState returns an empty planner state.
func NewState() *State {
	return &State{
		lastLevels: make(map[zoneActuatorKey]rateState),
		refill:     make(map[zoneActuatorKey]bool),
		heaterOn:   make(map[zoneKey]bool),
		heaterAt:   make(map[zoneKey]time.Time),
	}
}

// rateLimit clamps target's change from the last-emitted level for
// (farm,zone,actuator) to maxRatePerMin, and records the new level/time.
// Mirrors planner_service.py._rate_limit, using a 0.1s floor on dt to avoid
// a divide-by-near-zero runaway on back-to-back calls.
func (s *State) rateLimit(farm, zone, actuator string, target, maxRatePerMin float64, now time.Time) float64 {
	key := zoneActuatorKey{farm, zone, actuator}
	prev, ok := s.lastLevels[key]
	if !ok {
		prev = rateState{level: target, at: now}
	}
	dt := now.Sub(prev.at).Seconds()
	if dt < 0.1 {
		dt = 0.1
	}
	maxDelta := maxRatePerMin * (dt / 60.0)

	var newValue float64
	switch {
	case target > prev.level+maxDelta:
		newValue = prev.level + maxDelta
	case target < prev.level-maxDelta:
		newValue = prev.level - maxDelta
	default:
		newValue = target
	}
	s.lastLevels[key] = rateState{level: newValue, at: now}
	return newValue
}

// hysteresisState implements the Schmitt-trigger refill latch shared by
// feed and water: on when value <= low, off when value >= high, otherwise
// holds its previous state. A missing value holds the previous state too.
func (s *State) hysteresisState(farm, zone, actuator string, value *float64, low, high float64) bool {
	key := zoneActuatorKey{farm, zone, actuator}
	state := s.refill[key]
	if value == nil {
		return state
	}
	switch {
	case *value <= low:
		state = true
	case *value >= high:
		state = false
	}
	s.refill[key] = state
	return state
}

// heaterOnState implements the planner's heater hysteresis with minimum
// on/off dwell. The very first decision for a zone may flip off->on without
// satisfying min_off_s (open question (c): applies at every process start,
// since heaterAt has no entry yet — a restart is a cold start).
func (s *State) heaterOnState(farm, zone string, temp *float64, setpoint, deadband, minOnS, minOffS float64, now time.Time) bool {
	key := zoneKey{farm, zone}
	state := s.heaterOn[key]
	lastSwitch, hasSwitch := s.heaterAt[key]
	if !hasSwitch {
		lastSwitch = now
	}

	if state {
		if temp != nil && *temp >= setpoint+deadband && now.Sub(lastSwitch).Seconds() >= minOnS {
			state = false
			lastSwitch = now
		}
	} else {
		if temp != nil && *temp <= setpoint-deadband {
			if !hasSwitch || now.Sub(lastSwitch).Seconds() >= minOffS {
				state = true
				lastSwitch = now
			}
		}
	}

	s.heaterOn[key] = state
	s.heaterAt[key] = lastSwitch
	return state
}
