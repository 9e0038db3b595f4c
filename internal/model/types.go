package model

import "time"

// SensorReading is an immutable physical sample. Value is the physical
// quantity, never normalized.
type SensorReading struct {
	Farm      FarmID
	Zone      ZoneID
	Type      SensorType
	Value     float64
	Timestamp time.Time
}

// ZoneStatus is produced once per status interval per zone by the Analyzer.
// A nil pointer field means "no reading found in the lookback window".
type ZoneStatus struct {
	FarmID      FarmID  `json:"farm_id"`
	Zone        ZoneID  `json:"zone"`
	TemperatureC *float64 `json:"temperature_c"`
	CO2ppm       *float64 `json:"co2_ppm"`
	NH3ppm       *float64 `json:"nh3_ppm"`
	FeedKg       *float64 `json:"feed_kg"`
	WaterL       *float64 `json:"water_l"`
	Activity     *float64 `json:"activity"`

	TempOK     bool `json:"temp_ok"`
	CO2OK      bool `json:"co2_ok"`
	NH3OK      bool `json:"nh3_ok"`
	FeedOK     bool `json:"feed_ok"`
	WaterOK    bool `json:"water_ok"`
	ActivityOK bool `json:"activity_ok"`

	Alert string `json:"alert"`
}

// Action is one actuator directive within a Plan.
type Action struct {
	Actuator ActuatorType   `json:"actuator"`
	Priority int            `json:"priority"`
	Command  map[string]any `json:"command"`
}

// Plan is the Planner's output for one zone, one status cycle.
type Plan struct {
	FarmID  FarmID   `json:"farm_id"`
	Zone    ZoneID   `json:"zone"`
	Actions []Action `json:"actions"`
}
