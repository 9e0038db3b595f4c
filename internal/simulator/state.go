// Package simulator is the per-zone physics engine: a physically-based
// thermal and gas mass-balance integrator with staged ventilation and
// constrained actuator dynamics, standing in for a real barn. It is
// ground-truthed against original_source/environment/model.py, the legacy
// environment package's step() function, generalized from one hard-coded
// zone into a config-driven per-(farm,zone) worker.
package simulator

import "poultrymapek/internal/model"

// EnvironmentState is the full physical and actuator-dynamic state of one
// zone. It is mutated only under its Zone's mutex, by the tick goroutine and
// by the command callback (ApplyCommand); callers elsewhere use Snapshot for
// a value copy.
type EnvironmentState struct {
	TemperatureC float64
	CO2ppm       float64
	NH3ppm       float64
	FeedKg       float64
	WaterL       float64
	Activity     float64

	FanLevel        float64
	FanLevelCommand float64
	FanOn           bool
	FanLastSwitchS  float64
	FanCmdLastS     float64

	HeaterLevel        float64
	HeaterLevelCommand float64
	HeaterCmdLastS     float64

	InletOpenPct        float64
	InletOpenPctCommand float64
	InletCmdLastS       float64

	LightLevelPct        float64
	LightLevelPctCommand float64
	LightCmdLastS        float64

	FeedRefillOn          bool
	FeedRefillRemainingS  float64
	WaterRefillOn         bool
	WaterRefillRemainingS float64

	AutoControl bool
	SimTimeS    float64
}

// NewEnvironmentState builds the initial state for a freshly started zone
// worker, seeding feed/water from the resolved config's initial levels.
func NewEnvironmentState(cfg model.ZoneConfig) EnvironmentState {
	return EnvironmentState{
		TemperatureC: 23.0,
		CO2ppm:       1500.0,
		NH3ppm:       12.0,
		FeedKg:       cfg.FeedInitialKg,
		WaterL:       cfg.WaterInitialL,
		Activity:     0.4,

		InletOpenPct:         30.0,
		InletOpenPctCommand:  30.0,
		LightLevelPct:        30.0,
		LightLevelPctCommand: 30.0,

		AutoControl: cfg.AutoControl,
	}
}

// fanStages are the discrete ventilation levels the fan command is
// rounded up to; spec §4.1's "staged ventilation".
var fanStages = []float64{0.0, 40.0, 70.0, 100.0}

// inletForStage maps a staged fan level to its paired auto-control inlet
// opening (original_source/environment/model.py's INLET_FOR_STAGE).
var inletForStage = map[float64]float64{
	0.0:   10.0,
	40.0:  40.0,
	70.0:  60.0,
	100.0: 80.0,
}
