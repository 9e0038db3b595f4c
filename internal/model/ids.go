// Package model holds the wire- and domain-level types shared by every
// MAPE-K stage: identifiers, sensor/actuator enums, readings, status,
// plans, and the resolved per-zone configuration.
package model

import "fmt"

// FarmID identifies a farm. Opaque string, matched verbatim in topics.
type FarmID string

// ZoneID identifies a zone within a farm. Opaque string.
type ZoneID string

// ZoneKey uniquely identifies a controllable environment.
type ZoneKey struct {
	Farm FarmID
	Zone ZoneID
}

func (k ZoneKey) String() string {
	return fmt.Sprintf("%s/%s", k.Farm, k.Zone)
}

// SensorType is the closed set of sensor kinds carried in a SensorReading.
type SensorType string

const (
	SensorTemperature SensorType = "temperature"
	SensorCO2         SensorType = "co2"
	SensorAmmonia     SensorType = "ammonia"
	SensorFeedLevel   SensorType = "feed_level"
	SensorWaterLevel  SensorType = "water_level"
	SensorActivity    SensorType = "activity"
)

// ActuatorType is the closed set of actuator kinds a Plan can target.
type ActuatorType string

const (
	ActuatorFan       ActuatorType = "fan"
	ActuatorHeater    ActuatorType = "heater"
	ActuatorInlet     ActuatorType = "inlet"
	ActuatorFeeder    ActuatorType = "feed_dispenser"
	ActuatorWater     ActuatorType = "water_valve"
	ActuatorLight     ActuatorType = "light"
)

// AllActuators lists every actuator type, in a stable order, for sweeps like
// the executor's cold-boot all-OFF bootstrap.
var AllActuators = []ActuatorType{
	ActuatorFan, ActuatorHeater, ActuatorInlet, ActuatorFeeder, ActuatorWater, ActuatorLight,
}
