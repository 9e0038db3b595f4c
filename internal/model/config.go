package model

// ZoneConfig is a resolved snapshot of the ~50 scalar parameters that drive
// one zone's simulator, analyzer thresholds, and planner control law.
// Struct tags carry the flat, lowercase_snake_case key used in the topology
// document; the topology resolver reads these tags via reflection (see
// internal/topology). Environment variables do not override these fields.
type ZoneConfig struct {
	// Outside-climate & simulator globals.
	OutsideTempBaseC          float64 `cfg:"outside_temp_base_c"`
	OutsideTempSwingC         float64 `cfg:"outside_temp_swing_c"`
	OutsideTempPeriodS        float64 `cfg:"outside_temp_period_s"`
	OutsideCO2ppm             float64 `cfg:"outside_co2_ppm"`
	OutsideTempSeasonalSwingC float64 `cfg:"outside_temp_seasonal_swing_c"`
	OutsideTempSeasonalPeakDOY float64 `cfg:"outside_temp_seasonal_peak_doy"`
	UseHostTime               bool    `cfg:"use_host_time"`
	StartupOverrideS          float64 `cfg:"startup_override_s"`

	// Barn geometry & thermal constants.
	BarnVolumeM3       float64 `cfg:"barn_volume_m3"`
	BarnUAWPerK        float64 `cfg:"barn_ua_w_per_k"`
	ThermalMassFactor  float64 `cfg:"thermal_mass_factor"`
	AirDensity         float64 `cfg:"air_density"`
	AirCp              float64 `cfg:"air_cp"`

	// Ventilation.
	FanMaxFlowM3S      float64 `cfg:"fan_max_flow_m3_s"`
	BaseInfiltrationM3S float64 `cfg:"base_infiltration_m3_s"`

	// Flock & emissions.
	HeaterPowerW       float64 `cfg:"heater_power_w"`
	BirdCount          int     `cfg:"bird_count"`
	BirdHeatWBase      float64 `cfg:"bird_heat_w_base"`
	BirdHeatWActivity  float64 `cfg:"bird_heat_w_activity"`
	CO2LpsPerBird      float64 `cfg:"co2_lps_per_bird"`
	CO2ActivityMult    float64 `cfg:"co2_activity_mult"`
	NH3MgSPerBird      float64 `cfg:"nh3_mg_s_per_bird"`
	NH3ActivityMult    float64 `cfg:"nh3_activity_mult"`
	NH3TempCoeff       float64 `cfg:"nh3_temp_coeff"`
	NH3DecayPerS       float64 `cfg:"nh3_decay_per_s"`

	// Feed & water consumption / capacity.
	FeedGPerBirdDay       float64 `cfg:"feed_g_per_bird_day"`
	WaterLPerBirdDay      float64 `cfg:"water_l_per_bird_day"`
	FeedActivityMult      float64 `cfg:"feed_activity_mult"`
	WaterActivityMult     float64 `cfg:"water_activity_mult"`
	FeedHopperCapacityKg  float64 `cfg:"feed_hopper_capacity_kg"`
	WaterTankCapacityL    float64 `cfg:"water_tank_capacity_l"`
	FeedRefillFlowKgS     float64 `cfg:"feed_refill_flow_kg_s"`
	WaterRefillFlowLS     float64 `cfg:"water_refill_flow_l_s"`
	FeedInitialKg         float64 `cfg:"feed_initial_kg"`
	WaterInitialL         float64 `cfg:"water_initial_l"`

	// Simulator auto-control fallback.
	FanOnTempC           float64 `cfg:"fan_on_temp_c"`
	FanOffTempC          float64 `cfg:"fan_off_temp_c"`
	HeaterOnTempC        float64 `cfg:"heater_on_temp_c"`
	HeaterOffTempC       float64 `cfg:"heater_off_temp_c"`
	AutoFanLevel         float64 `cfg:"auto_fan_level"`
	MinFanOnS            float64 `cfg:"min_fan_on_s"`
	MinFanOffS           float64 `cfg:"min_fan_off_s"`
	AutoControl          bool    `cfg:"auto_control"`
	AutoControlTimeoutS  float64 `cfg:"auto_control_timeout_s"`

	// Light schedule & actuator ramps.
	LightsOnH          float64 `cfg:"lights_on_h"`
	LightsOffH         float64 `cfg:"lights_off_h"`
	LightDayPct        float64 `cfg:"light_day_pct"`
	LightNightPct      float64 `cfg:"light_night_pct"`
	FanRampPerMin      float64 `cfg:"fan_ramp_per_min"`
	HeaterRampPerMin   float64 `cfg:"heater_ramp_per_min"`
	InletRampPerMin    float64 `cfg:"inlet_ramp_per_min"`
	LightRampPerMin    float64 `cfg:"light_ramp_per_min"`
	ActivityTimeConstantMin float64 `cfg:"activity_time_constant_min"`

	// Analyzer thresholds.
	TempMinC       float64 `cfg:"temp_min"`
	TempMaxC       float64 `cfg:"temp_max"`
	CO2MaxPpm      float64 `cfg:"co2_max"`
	NH3ThresholdPpm float64 `cfg:"nh3_threshold"`
	FeedThresholdKg float64 `cfg:"feed_threshold"`
	WaterThresholdL float64 `cfg:"water_threshold"`
	ActivityMin     float64 `cfg:"activity_min"`

	// Planner control law.
	TempSetpointC        float64 `cfg:"temp_setpoint"`
	CO2SetpointPpm       float64 `cfg:"co2_setpoint"`
	FanKpTemp            float64 `cfg:"fan_kp_temp"`
	FanKpCO2             float64 `cfg:"fan_kp_co2"`
	FanMaxPct            float64 `cfg:"fan_max"`
	FanMinPct            float64 `cfg:"fan_min"`
	HeaterKpTemp         float64 `cfg:"heater_kp_temp"`
	HeaterDeadbandC      float64 `cfg:"heater_deadband_c"`
	HeaterMinOnS         float64 `cfg:"heater_min_on_s"`
	HeaterMinOffS        float64 `cfg:"heater_min_off_s"`
	HeaterMinLevel       float64 `cfg:"heater_min_level"`
	HeaterMinFan         float64 `cfg:"heater_min_fan"`
	FanMinVentPct        float64 `cfg:"fan_min_vent_pct"`
	InletMinPct          float64 `cfg:"inlet_min_pct"`
	FanColdMaxPct        float64 `cfg:"fan_cold_max_pct"`
	InletColdMaxPct      float64 `cfg:"inlet_cold_max_pct"`
	ColdVentDeltaC       float64 `cfg:"cold_vent_delta_c"`
	LightActivityHigh    float64 `cfg:"light_activity_high"`
	LightMinDayPct       float64 `cfg:"light_min_day_pct"`
	LightMinNightPct     float64 `cfg:"light_min_night_pct"`
	FanRateLimitPerMin   float64 `cfg:"fan_rate_limit_per_min"`
	HeaterRateLimitPerMin float64 `cfg:"heater_rate_limit_per_min"`
	InletRateLimitPerMin float64 `cfg:"inlet_rate_limit_per_min"`
	LightRateLimitPerMin float64 `cfg:"light_rate_limit_per_min"`
	FeedRefillLowKg      float64 `cfg:"feed_refill_low_kg"`
	FeedRefillHighKg     float64 `cfg:"feed_refill_high_kg"`
	WaterRefillLowL      float64 `cfg:"water_refill_low_l"`
	WaterRefillHighL     float64 `cfg:"water_refill_high_l"`

	// Starvation-aware planner variant.
	StarvationThresholdS   float64 `cfg:"starvation_threshold_s"`
	MinActionIntervalS     float64 `cfg:"min_action_interval_s"`
}

// DefaultZoneConfig returns the hard-coded fallback tier used when a key is
// absent from zone, farm, and global-defaults config (resolution precedence
// zone > farm > defaults > this fallback, per spec §3).
func DefaultZoneConfig() ZoneConfig {
	return ZoneConfig{
		OutsideTempBaseC:           12.0,
		OutsideTempSwingC:          4.0,
		OutsideTempPeriodS:         24.0 * 3600.0,
		OutsideCO2ppm:              420.0,
		OutsideTempSeasonalSwingC:  8.0,
		OutsideTempSeasonalPeakDOY: 200,
		UseHostTime:                false,
		StartupOverrideS:           60.0,

		BarnVolumeM3:      300.0,
		BarnUAWPerK:       350.0,
		ThermalMassFactor: 2.5,
		AirDensity:        1.2,
		AirCp:             1005.0,

		FanMaxFlowM3S:       3.5,
		BaseInfiltrationM3S: 0.05,

		HeaterPowerW:      6000.0,
		BirdCount:         2000,
		BirdHeatWBase:     4.5,
		BirdHeatWActivity: 1.5,
		CO2LpsPerBird:     0.011,
		CO2ActivityMult:   0.3,
		NH3MgSPerBird:     0.0008,
		NH3ActivityMult:   0.25,
		NH3TempCoeff:      0.02,
		NH3DecayPerS:      0.00005,

		FeedGPerBirdDay:      120.0,
		WaterLPerBirdDay:     0.22,
		FeedActivityMult:     0.5,
		WaterActivityMult:    0.5,
		FeedHopperCapacityKg: 300.0,
		WaterTankCapacityL:   400.0,
		FeedRefillFlowKgS:    0.5,
		WaterRefillFlowLS:    0.3,
		FeedInitialKg:        150.0,
		WaterInitialL:        200.0,

		FanOnTempC:          26.0,
		FanOffTempC:         24.0,
		HeaterOnTempC:       18.0,
		HeaterOffTempC:      20.0,
		AutoFanLevel:        40.0,
		MinFanOnS:            90.0,
		MinFanOffS:           90.0,
		AutoControl:          true,
		AutoControlTimeoutS:  120.0,

		LightsOnH:               6.0,
		LightsOffH:              22.0,
		LightDayPct:             80.0,
		LightNightPct:           5.0,
		FanRampPerMin:           60.0,
		HeaterRampPerMin:        40.0,
		InletRampPerMin:         50.0,
		LightRampPerMin:         100.0,
		ActivityTimeConstantMin: 10.0,

		TempMinC:        18.0,
		TempMaxC:        28.0,
		CO2MaxPpm:       3000.0,
		NH3ThresholdPpm: 20.0,
		FeedThresholdKg: 5.0,
		WaterThresholdL: 10.0,
		ActivityMin:     0.2,

		TempSetpointC:      24.0,
		CO2SetpointPpm:     1500.0,
		FanKpTemp:          10.0,
		FanKpCO2:           0.02,
		FanMaxPct:          100.0,
		FanMinPct:          0.0,
		HeaterKpTemp:       20.0,
		HeaterDeadbandC:    0.4,
		HeaterMinOnS:       120.0,
		HeaterMinOffS:      120.0,
		HeaterMinLevel:     20.0,
		HeaterMinFan:       20.0,
		FanMinVentPct:      10.0,
		InletMinPct:        10.0,
		FanColdMaxPct:      40.0,
		InletColdMaxPct:    30.0,
		ColdVentDeltaC:     2.0,
		LightActivityHigh:  0.8,
		LightMinDayPct:     20.0,
		LightMinNightPct:   2.0,
		FanRateLimitPerMin:   80.0,
		HeaterRateLimitPerMin: 60.0,
		InletRateLimitPerMin: 60.0,
		LightRateLimitPerMin: 120.0,
		FeedRefillLowKg:    20.0,
		FeedRefillHighKg:   40.0,
		WaterRefillLowL:    30.0,
		WaterRefillHighL:   60.0,

		StarvationThresholdS: 300.0,
		MinActionIntervalS:   30.0,
	}
}
