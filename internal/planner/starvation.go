package planner

import (
	"math"
	"sort"
	"time"

	"poultrymapek/internal/model"
)

// Issue names the starvation-aware planner's input alphabet. Unlike the
// full-status control law, this variant reacts to a stream of detected
// issues rather than a complete ZoneStatus (spec §4.5's "variant planner,
// used when there is only an issue stream").
type Issue string

const (
	IssueTempHigh      Issue = "TEMP_HIGH"
	IssueTempLow       Issue = "TEMP_LOW"
	IssueAirQualityBad Issue = "AIR_QUALITY_BAD"
	IssueWaterLow      Issue = "WATER_LOW"
	IssueFeedLow       Issue = "FEED_LOW"
)

// baseIssuePriority mirrors Computation.ISSUE_PRIORITIES: higher is more
// critical, before severity and starvation scaling.
var baseIssuePriority = map[Issue]int{
	IssueTempHigh:      10,
	IssueTempLow:       10,
	IssueAirQualityBad: 9,
	IssueWaterLow:      8,
	IssueFeedLow:       7,
}

// conflicts lists actuators that must not be commanded simultaneously.
var conflicts = map[model.ActuatorType][]model.ActuatorType{
	model.ActuatorHeater: {model.ActuatorFan},
	model.ActuatorFan:    {model.ActuatorHeater},
}

type issueRecord struct {
	value         float64
	firstDetected time.Time
	lastUpdated   time.Time
}

// StarvationState is one zone's starvation-aware planner memory: issue
// history, active issues, computed priorities, and a starvation queue of
// issues that have gone unaddressed past starvation_threshold_s.
type StarvationState struct {
	issueHistory   map[Issue]time.Time
	activeIssues   map[Issue]issueRecord
	issuePriority  map[Issue]int
	starvation     map[Issue]bool
	lastActionTime map[model.ActuatorType]time.Time
}

// NewStarvationState returns an empty per-zone starvation planner state.
func NewStarvationState() *StarvationState {
	return &StarvationState{
		issueHistory:   make(map[Issue]time.Time),
		activeIssues:   make(map[Issue]issueRecord),
		issuePriority:  make(map[Issue]int),
		starvation:     make(map[Issue]bool),
		lastActionTime: make(map[model.ActuatorType]time.Time),
	}
}

// RegisterIssue records a detected issue, computes its starvation-scaled
// priority, and marks it starved once its age exceeds
// cfg.StarvationThresholdS (Computation.register_issue +
// _calculate_priority + _check_starvation, combined).
func (s *StarvationState) RegisterIssue(issue Issue, value float64, cfg model.ZoneConfig, now time.Time) {
	first, ok := s.issueHistory[issue]
	if !ok {
		first = now
		s.issueHistory[issue] = now
	}
	s.activeIssues[issue] = issueRecord{value: value, firstDetected: first, lastUpdated: now}

	priority := s.calculatePriority(issue, value, cfg, now)
	s.issuePriority[issue] = priority

	age := now.Sub(first).Seconds()
	if age >= cfg.StarvationThresholdS {
		s.starvation[issue] = true
	}
}

// ClearIssue removes an issue after it has been addressed.
func (s *StarvationState) ClearIssue(issue Issue) {
	delete(s.issueHistory, issue)
	delete(s.activeIssues, issue)
	delete(s.issuePriority, issue)
	delete(s.starvation, issue)
}

func (s *StarvationState) calculatePriority(issue Issue, value float64, cfg model.ZoneConfig, now time.Time) int {
	base, ok := baseIssuePriority[issue]
	if !ok {
		base = 5
	}
	severity := 1.0
	switch issue {
	case IssueTempHigh:
		if value > cfg.TempMaxC {
			severity = 1.0 + ((value-cfg.TempMaxC)/cfg.TempMaxC)*0.5
		}
	case IssueTempLow:
		if value < cfg.TempMinC {
			severity = 1.0 + ((cfg.TempMinC-value)/cfg.TempMinC)*0.5
		}
	case IssueAirQualityBad:
		if value > cfg.NH3ThresholdPpm {
			severity = 1.0 + ((value-cfg.NH3ThresholdPpm)/cfg.NH3ThresholdPpm)*0.5
		}
	case IssueWaterLow:
		if value < cfg.WaterThresholdL {
			severity = 1.0 + ((cfg.WaterThresholdL-value)/cfg.WaterThresholdL)*0.3
		}
	case IssueFeedLow:
		if value < cfg.FeedThresholdKg {
			severity = 1.0 + ((cfg.FeedThresholdKg-value)/cfg.FeedThresholdKg)*0.3
		}
	}

	if first, ok := s.issueHistory[issue]; ok {
		age := now.Sub(first).Seconds()
		if age > cfg.StarvationThresholdS {
			starvationFactor := math.Min(1.5, 1.0+(age-cfg.StarvationThresholdS)/600.0)
			severity *= starvationFactor
		}
	}
	return int(float64(base) * severity)
}

// highestPriorityIssue picks the winning issue: a starved issue whose
// priority is within 80% of the best active priority is preferred over an
// equally-or-more urgent non-starved one (Computation.get_highest_priority_issue).
func (s *StarvationState) highestPriorityIssue() (Issue, int, float64, bool) {
	var starvedIssue Issue
	starvedPriority := 0
	haveStarved := false
	for issue := range s.starvation {
		if p := s.issuePriority[issue]; !haveStarved || p > starvedPriority {
			starvedIssue, starvedPriority, haveStarved = issue, p, true
		}
	}

	var maxIssue Issue
	maxPriority := 0
	haveActive := false
	for issue, p := range s.issuePriority {
		if !haveActive || p > maxPriority {
			maxIssue, maxPriority, haveActive = issue, p, true
		}
	}

	if haveStarved && float64(starvedPriority) >= float64(maxPriority)*0.8 {
		return starvedIssue, starvedPriority, s.activeIssues[starvedIssue].value, true
	}
	if haveActive {
		return maxIssue, maxPriority, s.activeIssues[maxIssue].value, true
	}
	if haveStarved {
		return starvedIssue, starvedPriority, s.activeIssues[starvedIssue].value, true
	}
	return "", 0, 0, false
}

// shouldExecute enforces the minimum inter-action interval per actuator
// (Computation.should_execute_action), suppressing rapid toggling.
func (s *StarvationState) shouldExecute(actuator model.ActuatorType, minIntervalS float64, now time.Time) bool {
	last, ok := s.lastActionTime[actuator]
	if !ok {
		return true
	}
	return now.Sub(last).Seconds() >= minIntervalS
}

func (s *StarvationState) markExecuted(actuator model.ActuatorType, now time.Time) {
	s.lastActionTime[actuator] = now
}

// planActionsForIssue maps one issue to the actuator actions that address
// it (Computation.plan_actions), before conflict resolution.
func (s *StarvationState) planActionsForIssue(issue Issue, value float64, cfg model.ZoneConfig, now time.Time) []model.Action {
	var actions []model.Action
	// The actuator that addresses the issue is appended last, so
	// resolveConflicts (which keeps the later of two opposed actions) keeps it.
	switch issue {
	case IssueTempHigh, IssueAirQualityBad:
		if issue == IssueTempHigh && s.shouldExecute(model.ActuatorHeater, cfg.MinActionIntervalS, now) {
			actions = append(actions, model.Action{Actuator: model.ActuatorHeater, Priority: 1, Command: map[string]any{"action": "OFF"}})
			s.markExecuted(model.ActuatorHeater, now)
		}
		if s.shouldExecute(model.ActuatorFan, cfg.MinActionIntervalS, now) {
			actions = append(actions, model.Action{Actuator: model.ActuatorFan, Priority: 1, Command: map[string]any{"action": "ON"}})
			s.markExecuted(model.ActuatorFan, now)
		}

	case IssueTempLow:
		if s.shouldExecute(model.ActuatorFan, cfg.MinActionIntervalS, now) {
			actions = append(actions, model.Action{Actuator: model.ActuatorFan, Priority: 1, Command: map[string]any{"action": "OFF"}})
			s.markExecuted(model.ActuatorFan, now)
		}
		if s.shouldExecute(model.ActuatorHeater, cfg.MinActionIntervalS, now) {
			actions = append(actions, model.Action{Actuator: model.ActuatorHeater, Priority: 1, Command: map[string]any{"action": "ON"}})
			s.markExecuted(model.ActuatorHeater, now)
		}

	case IssueFeedLow:
		multiplier := 1.0
		if value < cfg.FeedThresholdKg {
			multiplier = math.Max(1.0, (cfg.FeedThresholdKg-value)/cfg.FeedThresholdKg*2.0)
		}
		amountG := int(10.0 * multiplier)
		if s.shouldExecute(model.ActuatorFeeder, cfg.MinActionIntervalS, now) {
			actions = append(actions, model.Action{Actuator: model.ActuatorFeeder, Priority: 3, Command: map[string]any{"action": "DISPENSE", "amount_g": amountG}})
			s.markExecuted(model.ActuatorFeeder, now)
		}

	case IssueWaterLow:
		if s.shouldExecute(model.ActuatorWater, cfg.MinActionIntervalS, now) {
			actions = append(actions, model.Action{Actuator: model.ActuatorWater, Priority: 3, Command: map[string]any{"action": "OPEN"}})
			s.markExecuted(model.ActuatorWater, now)
		}
	}
	return resolveConflicts(actions)
}

// resolveConflicts drops the earlier of two opposed actuator actions
// (Computation.resolve_conflicts), keeping the later one in the list.
func resolveConflicts(actions []model.Action) []model.Action {
	var resolved []model.Action
	present := make(map[model.ActuatorType]bool)
	for _, a := range actions {
		for _, opposed := range conflicts[a.Actuator] {
			if present[opposed] {
				var kept []model.Action
				for _, r := range resolved {
					if r.Actuator != opposed {
						kept = append(kept, r)
					}
				}
				resolved = kept
				delete(present, opposed)
			}
		}
		resolved = append(resolved, a)
		present[a.Actuator] = true
	}
	return resolved
}

// Plan selects the single highest-priority issue (preferring a starved one
// within 80% of the best) and returns its conflict-resolved actions,
// clearing it from the starvation queue once addressed.
func (s *StarvationState) Plan(cfg model.ZoneConfig, now time.Time) []model.Action {
	issue, _, value, ok := s.highestPriorityIssue()
	if !ok {
		return nil
	}
	actions := s.planActionsForIssue(issue, value, cfg, now)
	delete(s.starvation, issue)
	sort.SliceStable(actions, func(i, j int) bool { return actions[i].Priority < actions[j].Priority })
	return actions
}
