package simulator

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

// outsideTemp follows a 24-hour sine, or a host-clock-driven sine with a
// seasonal cosine offset when cfg.UseHostTime is set (model.py._outside_temp).
func outsideTemp(simTimeS float64, cfg model.ZoneConfig) float64 {
	if cfg.UseHostTime {
		now := time.Now()
		dayPhase := (float64(now.Hour()) + float64(now.Minute())/60.0 + float64(now.Second())/3600.0) / 24.0
		seasonPhase := 2.0 * math.Pi * ((float64(now.YearDay()) - cfg.OutsideTempSeasonalPeakDOY) / 365.0)
		seasonalOffset := cfg.OutsideTempSeasonalSwingC * math.Cos(seasonPhase)
		return cfg.OutsideTempBaseC + seasonalOffset + cfg.OutsideTempSwingC*math.Sin(2.0*math.Pi*dayPhase)
	}
	phase := math.Mod(simTimeS, cfg.OutsideTempPeriodS) / cfg.OutsideTempPeriodS
	return cfg.OutsideTempBaseC + cfg.OutsideTempSwingC*math.Sin(2.0*math.Pi*phase)
}

func timeOfDayH(simTimeS float64, useHostTime bool) float64 {
	if useHostTime {
		now := time.Now()
		return float64(now.Hour()) + float64(now.Minute())/60.0 + float64(now.Second())/3600.0
	}
	return math.Mod(simTimeS/3600.0, 24.0)
}

// stageFanLevel rounds a commanded fan level up to the nearest stage in
// {0,40,70,100}.
func stageFanLevel(commandLevel float64) float64 {
	if commandLevel <= 0.0 {
		return 0.0
	}
	for _, stage := range fanStages[1:] {
		if commandLevel <= stage {
			return stage
		}
	}
	return fanStages[len(fanStages)-1]
}

func ventilationFlow(fanLevel, inletOpenPct float64, cfg model.ZoneConfig) float64 {
	inletFactor := 0.2 + 0.8*(inletOpenPct/100.0)
	fanFlow := cfg.FanMaxFlowM3S * (fanLevel / 100.0) * inletFactor
	return cfg.BaseInfiltrationM3S + fanFlow
}

// applyAutoControl overwrites any *_command field whose corresponding
// *_cmd_last_s is zero or staler than auto_control_timeout_s, per spec
// §4.1's auto-control fallback. Mirrors model.py.step()'s auto-control
// block, generalized to read cfg instead of module-level constants.
func applyAutoControl(s *EnvironmentState, cfg model.ZoneConfig) {
	if !(s.AutoControl && s.SimTimeS >= cfg.StartupOverrideS) {
		return
	}
	now := s.SimTimeS

	if s.FanCmdLastS == 0.0 || now-s.FanCmdLastS >= cfg.AutoControlTimeoutS {
		switch {
		case s.TemperatureC >= cfg.FanOnTempC:
			s.FanLevelCommand = math.Max(s.FanLevelCommand, cfg.AutoFanLevel)
		case s.TemperatureC <= cfg.FanOffTempC:
			s.FanLevelCommand = 0.0
		}
	}

	if s.HeaterCmdLastS == 0.0 || now-s.HeaterCmdLastS >= cfg.AutoControlTimeoutS {
		switch {
		case s.TemperatureC <= cfg.HeaterOnTempC:
			s.HeaterLevelCommand = 100.0
		case s.TemperatureC >= cfg.HeaterOffTempC:
			s.HeaterLevelCommand = 0.0
		}
	}

	if s.InletCmdLastS == 0.0 || now-s.InletCmdLastS >= cfg.AutoControlTimeoutS {
		staged := stageFanLevel(s.FanLevelCommand)
		if v, ok := inletForStage[staged]; ok {
			s.InletOpenPctCommand = v
		}
	}

	if s.LightCmdLastS == 0.0 || now-s.LightCmdLastS >= cfg.AutoControlTimeoutS {
		tod := timeOfDayH(s.SimTimeS, cfg.UseHostTime)
		if tod >= cfg.LightsOnH && tod < cfg.LightsOffH {
			s.LightLevelPctCommand = cfg.LightDayPct
		} else {
			s.LightLevelPctCommand = cfg.LightNightPct
		}
	}
}

// rampToward advances current toward target by at most ratePerMin*dt_s/60,
// the rate-limited ramp shared by heater/inlet/light (and the fan's staged
// target once staging and dwell have been applied).
func rampToward(current, target, ratePerMin, dtS float64) float64 {
	step := ratePerMin * (dtS / 60.0)
	delta := target - current
	if delta > step {
		delta = step
	} else if delta < -step {
		delta = -step
	}
	return clampf(current+delta, 0.0, 100.0)
}

// applyActuatorDynamics integrates the fan dwell-gated state machine and
// the heater/inlet/light ramps (model.py.step()'s "ACTUATOR DYNAMICS"
// block). Stage ordering is load-bearing: these run before ventilation and
// thermal/gas integration, which read the updated levels.
func applyActuatorDynamics(s *EnvironmentState, cfg model.ZoneConfig, dtS float64) {
	if s.SimTimeS < cfg.StartupOverrideS {
		s.FanLevelCommand = 0.0
		s.HeaterLevelCommand = 0.0
		s.InletOpenPctCommand = 0.0
		s.LightLevelPctCommand = 0.0
	}

	s.FanLevelCommand = clampf(s.FanLevelCommand, 0.0, 100.0)
	s.HeaterLevelCommand = clampf(s.HeaterLevelCommand, 0.0, 100.0)
	s.InletOpenPctCommand = clampf(s.InletOpenPctCommand, 0.0, 100.0)
	s.LightLevelPctCommand = clampf(s.LightLevelPctCommand, 0.0, 100.0)

	now := s.SimTimeS
	desiredFanOn := s.FanLevelCommand > 0.0
	if desiredFanOn != s.FanOn {
		elapsed := now - s.FanLastSwitchS
		switch {
		// FanLastSwitchS == 0 means the fan has never switched: the first
		// OFF->ON transition is not held back by min_fan_off_s.
		case desiredFanOn && (s.FanLastSwitchS == 0.0 || elapsed >= cfg.MinFanOffS):
			s.FanOn = true
			s.FanLastSwitchS = now
		case !desiredFanOn && elapsed >= cfg.MinFanOnS:
			s.FanOn = false
			s.FanLastSwitchS = now
		}
	}

	stagedTarget := stageFanLevel(s.FanLevelCommand)
	targetFanLevel := 0.0
	if s.FanOn {
		targetFanLevel = stagedTarget
	}
	s.FanLevel = rampToward(s.FanLevel, targetFanLevel, cfg.FanRampPerMin, dtS)
	s.HeaterLevel = rampToward(s.HeaterLevel, s.HeaterLevelCommand, cfg.HeaterRampPerMin, dtS)
	s.InletOpenPct = rampToward(s.InletOpenPct, s.InletOpenPctCommand, cfg.InletRampPerMin, dtS)
	s.LightLevelPct = rampToward(s.LightLevelPct, s.LightLevelPctCommand, cfg.LightRampPerMin, dtS)
}

// applyThermalAndGas integrates temperature, CO2, and NH3 one dt_s step,
// given the current (already-dynamics-updated) actuator levels.
func applyThermalAndGas(s *EnvironmentState, cfg model.ZoneConfig, dtS float64) {
	flow := ventilationFlow(s.FanLevel, s.InletOpenPct, cfg)
	outside := outsideTemp(s.SimTimeS, cfg)

	heatCapacity := cfg.AirDensity * cfg.AirCp * cfg.BarnVolumeM3 * cfg.ThermalMassFactor
	qLoss := cfg.BarnUAWPerK * (s.TemperatureC - outside)
	qVent := cfg.AirDensity * cfg.AirCp * flow * (s.TemperatureC - outside)
	qHeater := cfg.HeaterPowerW * (s.HeaterLevel / 100.0)
	birdHeatW := float64(cfg.BirdCount) * (cfg.BirdHeatWBase + cfg.BirdHeatWActivity*s.Activity)

	dTemp := (qHeater + birdHeatW - qLoss - qVent) / heatCapacity
	s.TemperatureC = clampf(s.TemperatureC+dTemp*dtS, 10.0, 40.0)

	co2Lps := cfg.CO2LpsPerBird * (1.0 + cfg.CO2ActivityMult*s.Activity)
	co2M3S := (co2Lps * float64(cfg.BirdCount)) / 1000.0
	co2GenPpmS := (co2M3S / cfg.BarnVolumeM3) * 1.0e6
	co2VentPpmS := (flow / cfg.BarnVolumeM3) * (cfg.OutsideCO2ppm - s.CO2ppm)
	s.CO2ppm = clampf(s.CO2ppm+(co2GenPpmS+co2VentPpmS)*dtS, 400.0, 6000.0)

	tempFactor := math.Max(0.0, s.TemperatureC-20.0)
	nh3MgS := cfg.NH3MgSPerBird * float64(cfg.BirdCount) *
		(1.0 + cfg.NH3ActivityMult*s.Activity) * (1.0 + cfg.NH3TempCoeff*tempFactor)
	nh3GenPpmS := (nh3MgS / cfg.BarnVolumeM3) * (24.45 / 17.0)
	nh3VentPpmS := (flow / cfg.BarnVolumeM3) * (0.0 - s.NH3ppm)
	nh3DecayPpmS := -cfg.NH3DecayPerS * s.NH3ppm
	s.NH3ppm = clampf(s.NH3ppm+(nh3GenPpmS+nh3VentPpmS+nh3DecayPpmS)*dtS, 0.0, 200.0)
}

// applyConsumption integrates feed/water drawdown and refill, including the
// continuous-vs-pulsed refill modes (spec §4.1, open question (b):
// last-field-wins between the two — both simply accumulate toward capacity
// whenever either is active).
func applyConsumption(s *EnvironmentState, cfg model.ZoneConfig, dtS float64) {
	feedKgS := (cfg.FeedGPerBirdDay / 1000.0) / 86400.0
	feedRate := float64(cfg.BirdCount) * feedKgS * (0.6 + cfg.FeedActivityMult*s.Activity)
	if s.TemperatureC > 28.0 {
		feedRate *= 0.9
	}
	if s.TemperatureC < 18.0 {
		feedRate *= 0.85
	}
	if s.WaterL < 1.0 {
		feedRate *= 0.7
	}
	s.FeedKg = math.Max(0.0, s.FeedKg-feedRate*dtS)
	if s.FeedRefillRemainingS > 0.0 {
		s.FeedRefillRemainingS = math.Max(0.0, s.FeedRefillRemainingS-dtS)
	}
	if s.FeedRefillOn || s.FeedRefillRemainingS > 0.0 {
		s.FeedKg = math.Min(cfg.FeedHopperCapacityKg, s.FeedKg+cfg.FeedRefillFlowKgS*dtS)
	}

	waterLS := cfg.WaterLPerBirdDay / 86400.0
	waterRate := float64(cfg.BirdCount) * waterLS * (0.7 + cfg.WaterActivityMult*s.Activity)
	if s.TemperatureC > 26.0 {
		waterRate *= 1.2
	}
	if s.TemperatureC < 18.0 {
		waterRate *= 0.9
	}
	s.WaterL = math.Max(0.0, s.WaterL-waterRate*dtS)
	if s.WaterRefillRemainingS > 0.0 {
		s.WaterRefillRemainingS = math.Max(0.0, s.WaterRefillRemainingS-dtS)
	}
	if s.WaterRefillOn || s.WaterRefillRemainingS > 0.0 {
		s.WaterL = math.Min(cfg.WaterTankCapacityL, s.WaterL+cfg.WaterRefillFlowLS*dtS)
	}
}

// applyActivity relaxes activity toward a target driven by light, circadian
// phase, and discomfort penalties, with first-order time constant
// activity_time_constant_min.
func applyActivity(s *EnvironmentState, cfg model.ZoneConfig, dtS float64) {
	tod := timeOfDayH(s.SimTimeS, cfg.UseHostTime)
	circadian := 0.5 + 0.5*math.Sin(2.0*math.Pi*(tod-6.0)/24.0)
	lightFactor := s.LightLevelPct / 100.0

	target := 0.15 + 0.5*lightFactor + 0.2*circadian
	if s.TemperatureC < 20.0 || s.TemperatureC > 30.0 {
		target -= 0.2
	}
	if s.CO2ppm > 3000.0 {
		target -= 0.15
	}
	if s.NH3ppm > 20.0 {
		target -= 0.15
	}
	if s.FeedKg < 1.0 {
		target -= 0.1
	}
	if s.WaterL < 1.0 {
		target -= 0.1
	}
	target = clampf(target, 0.0, 1.0)

	tauS := cfg.ActivityTimeConstantMin * 60.0
	s.Activity += (target - s.Activity) * (dtS / tauS)
	s.Activity = clampf(s.Activity, 0.0, 1.0)
}
