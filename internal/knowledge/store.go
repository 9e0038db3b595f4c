// Package knowledge implements the MAPE-K "Knowledge" store: a windowed
// time-series of sensor readings, accepted actuator commands, analyzer
// symptoms, and planner plans, keyed by (farm, zone, and a per-kind
// subkey). It generalizes services/aggregator/internal/windowing.go's
// single-purpose reading buffer to every record kind the pipeline needs to
// recall, and optionally appends every write to a durable JSON-lines log in
// the manner of services/ledger/internal/storage/file_ledger.go (without
// that package's hash-chaining, which exists there for tamper-evidence this
// platform has no requirement for).
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"poultrymapek/internal/breaker"
	"poultrymapek/internal/model"
)

const defaultWindow = 10 * time.Minute

// Store is the Knowledge component every analyzer/planner/executor
// instance queries and writes.
type Store struct {
	sensors  *windowBuffer[SensorRecord]
	commands *windowBuffer[ActuatorCommandRecord]
	symptoms *windowBuffer[SymptomRecord]
	plans    *windowBuffer[PlanRecord]

	durable     *durableLog
	durableBrk  *breaker.Breaker
	log         *slog.Logger
}

// Options configures the store's retention window and optional durable
// append log.
type Options struct {
	Window     time.Duration
	Durable    bool
	DurablePath string
}

// New builds a Store. If opts.Durable is set, writes are also appended to
// opts.DurablePath; a failure to open that file falls back to in-memory-only
// with a logged warning rather than preventing the process from starting.
func New(opts Options, log *slog.Logger) *Store {
	window := opts.Window
	if window <= 0 {
		window = defaultWindow
	}
	s := &Store{
		sensors:  newWindowBuffer[SensorRecord](window),
		commands: newWindowBuffer[ActuatorCommandRecord](window),
		symptoms: newWindowBuffer[SymptomRecord](window),
		plans:    newWindowBuffer[PlanRecord](window),
		log:      log,
	}
	if opts.Durable {
		dl, err := newDurableLog(opts.DurablePath)
		if err != nil {
			log.Warn("knowledge durable log unavailable, continuing in-memory only", "path", opts.DurablePath, "error", err)
		} else {
			s.durable = dl
			s.durableBrk = breaker.New("knowledge-durable-append", breaker.Config{}, log)
		}
	}
	return s
}

func sensorKey(farm, zone string, t model.SensorType) string {
	return fmt.Sprintf("%s/%s/%s", farm, zone, t)
}

func actuatorKey(farm, zone string, a model.ActuatorType) string {
	return fmt.Sprintf("%s/%s/%s", farm, zone, a)
}

func zoneKey(farm, zone string) string {
	return fmt.Sprintf("%s/%s", farm, zone)
}

// LogSensor records one sensor reading.
func (s *Store) LogSensor(r SensorRecord) {
	s.sensors.add(sensorKey(r.Farm, r.Zone, r.Type), r)
	s.appendDurable("sensor", r)
}

// LogActuatorCommand records one accepted actuator command.
func (s *Store) LogActuatorCommand(r ActuatorCommandRecord) {
	s.commands.add(actuatorKey(r.Farm, r.Zone, r.Actuator), r)
	s.appendDurable("command", r)
}

// LogSymptom records one analyzer alert.
func (s *Store) LogSymptom(r SymptomRecord) {
	s.symptoms.add(zoneKey(r.Farm, r.Zone), r)
	s.appendDurable("symptom", r)
}

// LogPlan records one planner plan.
func (s *Store) LogPlan(r PlanRecord) {
	s.plans.add(zoneKey(r.Farm, r.Zone), r)
	s.appendDurable("plan", r)
}

// GetLatestSensorValue returns the most recent reading of type t for
// (farm, zone). Pruning runs only on insert, so the returned reading can be
// older than the retention window when nothing newer has been logged.
func (s *Store) GetLatestSensorValue(farm, zone string, t model.SensorType) (SensorRecord, bool) {
	return s.sensors.latest(sensorKey(farm, zone, t))
}

// GetLatestCommand returns the most recently accepted command for actuator
// a in (farm, zone).
func (s *Store) GetLatestCommand(farm, zone string, a model.ActuatorType) (ActuatorCommandRecord, bool) {
	return s.commands.latest(actuatorKey(farm, zone, a))
}

// GetLatestPlan returns the most recently logged plan for (farm, zone).
func (s *Store) GetLatestPlan(farm, zone string) (PlanRecord, bool) {
	return s.plans.latest(zoneKey(farm, zone))
}

// SensorSeries returns every reading of type t for (farm, zone) within
// [from, to].
func (s *Store) SensorSeries(farm, zone string, t model.SensorType, from, to time.Time) []SensorRecord {
	return s.sensors.series(sensorKey(farm, zone, t), from, to)
}

// SymptomSeries returns every symptom recorded for (farm, zone) within
// [from, to].
func (s *Store) SymptomSeries(farm, zone string, from, to time.Time) []SymptomRecord {
	return s.symptoms.series(zoneKey(farm, zone), from, to)
}

// appendDurable fast-fails via a breaker once the durable log's underlying
// writes start erroring, rather than retrying a stuck disk on every record.
func (s *Store) appendDurable(kind string, v any) {
	if s.durable == nil {
		return
	}
	err := s.durableBrk.Execute(context.Background(), func(context.Context) error {
		return s.durable.append(kind, v)
	})
	if err != nil {
		s.log.Warn("knowledge durable append failed", "kind", kind, "error", err)
	}
}

// Close releases the durable log's file handle, if one is open.
func (s *Store) Close() error {
	if s.durable == nil {
		return nil
	}
	return s.durable.close()
}
