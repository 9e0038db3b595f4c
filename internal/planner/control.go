package planner

import (
	"math"
	"time"

	"poultrymapek/internal/model"
)

func clampf(v, low, high float64) float64 {
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}

// bothNil reports whether both readings are missing — used to implement
// "fan=fan_max when both T and CO2 are missing".
func bothNil(a, b *float64) bool { return a == nil && b == nil }

// BuildActions is the full control law of spec §4.5, ported stage by stage
// from planner_service.py._build_actions_from_status. Missing status
// fields are tolerated and degrade gracefully rather than failing.
func (s *State) BuildActions(status model.ZoneStatus, cfg model.ZoneConfig, now time.Time) []model.Action {
	farm, zone := string(status.FarmID), string(status.Zone)
	var actions []model.Action

	temp, nh3, feed, water, activity, co2 :=
		status.TemperatureC, status.NH3ppm, status.FeedKg, status.WaterL, status.Activity, status.CO2ppm

	// 1. Fan command. Runs even with no T/CO2 at all: a zone Knowledge has
	// gone silent on both gets driven at fan_max rather than left uncommanded.
	var fanLevel *float64
	{
		tempError := 0.0
		if temp != nil {
			tempError = math.Max(0.0, *temp-cfg.TempSetpointC)
		}
		co2Error := 0.0
		if co2 != nil {
			co2Error = math.Max(0.0, *co2-cfg.CO2SetpointPpm)
		}
		level := cfg.FanKpTemp*tempError + cfg.FanKpCO2*co2Error
		if nh3 != nil && *nh3 > cfg.NH3ThresholdPpm {
			level += 30.0
		}
		if bothNil(temp, co2) {
			level = cfg.FanMaxPct
		}
		level = clampf(level, cfg.FanMinPct, cfg.FanMaxPct)
		fanLevel = &level
	}

	// 2. Heater level via hysteresis + proportional.
	var heaterLevel *float64
	if temp != nil {
		heaterOn := s.heaterOnState(farm, zone, temp, cfg.TempSetpointC, cfg.HeaterDeadbandC, cfg.HeaterMinOnS, cfg.HeaterMinOffS, now)
		var level float64
		if heaterOn {
			deficit := math.Max(0.0, cfg.TempSetpointC-*temp)
			level = math.Min(100.0, cfg.HeaterKpTemp*deficit)
			if level < cfg.HeaterMinLevel {
				level = cfg.HeaterMinLevel
			}
		} else {
			level = 0.0
		}
		level = s.rateLimit(farm, zone, "heater", level, cfg.HeaterRateLimitPerMin, now)
		heaterLevel = &level
	}

	// 3. Coupling corrections.
	if heaterLevel != nil && *heaterLevel > 0.0 && fanLevel != nil {
		v := math.Max(*fanLevel, cfg.HeaterMinFan)
		fanLevel = &v
	}
	if fanLevel != nil {
		v := math.Max(*fanLevel, cfg.FanMinVentPct)
		fanLevel = &v
		if temp != nil && *temp < cfg.TempSetpointC-cfg.ColdVentDeltaC &&
			(co2 == nil || *co2 < cfg.CO2MaxPpm) && (nh3 == nil || *nh3 < cfg.NH3ThresholdPpm) {
			v2 := math.Min(*fanLevel, cfg.FanColdMaxPct)
			fanLevel = &v2
		}
	}

	if fanLevel != nil {
		v := s.rateLimit(farm, zone, "fan", *fanLevel, cfg.FanRateLimitPerMin, now)
		actions = append(actions, model.Action{
			Actuator: model.ActuatorFan,
			Priority: 1,
			Command:  map[string]any{"action": "SET", "level": int(v)},
		})
	}
	if heaterLevel != nil {
		actions = append(actions, model.Action{
			Actuator: model.ActuatorHeater,
			Priority: 1,
			Command:  map[string]any{"action": "SET", "level_pct": int(*heaterLevel)},
		})
	}

	// 4. Inlet.
	var inletOpen *float64
	if fanLevel != nil {
		v := 20.0 + 0.6**fanLevel
		if co2 != nil && *co2 > cfg.CO2SetpointPpm {
			v += math.Min(20.0, (*co2-cfg.CO2SetpointPpm)/50.0)
		}
		if nh3 != nil && *nh3 > cfg.NH3ThresholdPpm {
			v += math.Min(15.0, (*nh3-cfg.NH3ThresholdPpm)*1.5)
		}
		v = clampf(v, cfg.InletMinPct, 100.0)
		if temp != nil && *temp < cfg.TempSetpointC-cfg.ColdVentDeltaC &&
			(co2 == nil || *co2 < cfg.CO2MaxPpm) && (nh3 == nil || *nh3 < cfg.NH3ThresholdPpm) {
			v = math.Min(v, cfg.InletColdMaxPct)
		}
		inletOpen = &v
	}
	if inletOpen != nil {
		v := s.rateLimit(farm, zone, "inlet", *inletOpen, cfg.InletRateLimitPerMin, now)
		actions = append(actions, model.Action{
			Actuator: model.ActuatorInlet,
			Priority: 2,
			Command:  map[string]any{"action": "SET", "open_pct": int(v)},
		})
	}

	// 5. Feed/water Schmitt-trigger refill latches.
	feedOn := s.hysteresisState(farm, zone, "feed", feed, cfg.FeedRefillLowKg, cfg.FeedRefillHighKg)
	waterOn := s.hysteresisState(farm, zone, "water", water, cfg.WaterRefillLowL, cfg.WaterRefillHighL)
	actions = append(actions,
		model.Action{Actuator: model.ActuatorFeeder, Priority: 3, Command: map[string]any{"action": onOff(feedOn)}},
		model.Action{Actuator: model.ActuatorWater, Priority: 3, Command: map[string]any{"action": onOff(waterOn)}},
	)

	// 6. Light.
	timeOfDayH := localHourOfDay(now)
	night := !(cfg.LightsOnH <= timeOfDayH && timeOfDayH < cfg.LightsOffH)
	minLight := cfg.LightMinDayPct
	if night {
		minLight = cfg.LightMinNightPct
	}
	var lightLevel float64
	if activity != nil {
		activityError := cfg.ActivityMin - *activity
		lightLevel = 60.0 + 70.0*activityError
		if *activity > cfg.LightActivityHigh {
			lightLevel -= 20.0
		}
		lightLevel = clampf(lightLevel, minLight, 100.0)
	} else {
		lightLevel = minLight
	}
	lightLevel = s.rateLimit(farm, zone, "light", lightLevel, cfg.LightRateLimitPerMin, now)
	actions = append(actions, model.Action{
		Actuator: model.ActuatorLight,
		Priority: 4,
		Command:  map[string]any{"action": "SET", "level_pct": int(lightLevel)},
	})

	sortByPriority(actions)
	return actions
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func localHourOfDay(t time.Time) float64 {
	lt := t.Local()
	return float64(lt.Hour()) + float64(lt.Minute())/60.0 + float64(lt.Second())/3600.0
}

func sortByPriority(actions []model.Action) {
	// insertion sort: action lists are short (≤6) and already near-sorted
	// by construction order, matching the stable ordering of the Python
	// original's actions.sort(key=lambda a: a.priority).
	for i := 1; i < len(actions); i++ {
		for j := i; j > 0 && actions[j].Priority < actions[j-1].Priority; j-- {
			actions[j], actions[j-1] = actions[j-1], actions[j]
		}
	}
}
