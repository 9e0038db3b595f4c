package knowledge

import (
	"time"

	"poultrymapek/internal/model"
)

// SensorRecord is one ingested reading, as written by the monitor.
type SensorRecord struct {
	Farm      string          `json:"farm"`
	Zone      string          `json:"zone"`
	Type      model.SensorType `json:"type"`
	Value     float64         `json:"value"`
	Timestamp time.Time       `json:"timestamp"`
}

// ActuatorCommandRecord is one published command, as written by the
// executor.
type ActuatorCommandRecord struct {
	Farm      string              `json:"farm"`
	Zone      string              `json:"zone"`
	Actuator  model.ActuatorType  `json:"actuator"`
	Command   map[string]any      `json:"command"`
	Timestamp time.Time           `json:"timestamp"`
}

// SymptomRecord is the alert string the analyzer computed for a zone in one
// cycle: its " & "-joined phrases, or "OK".
type SymptomRecord struct {
	Farm      string    `json:"farm"`
	Zone      string    `json:"zone"`
	Alert     string    `json:"alert"`
	Timestamp time.Time `json:"timestamp"`
}

// PlanRecord is one plan the planner emitted for a zone.
type PlanRecord struct {
	Farm      string        `json:"farm"`
	Zone      string        `json:"zone"`
	Actions   []model.Action `json:"actions"`
	Timestamp time.Time     `json:"timestamp"`
}

func (r SensorRecord) ts() time.Time          { return r.Timestamp }
func (r ActuatorCommandRecord) ts() time.Time { return r.Timestamp }
func (r SymptomRecord) ts() time.Time         { return r.Timestamp }
func (r PlanRecord) ts() time.Time            { return r.Timestamp }
