package observability

import (
	"fmt"
	"time"
)

// Metrics holds calculated metrics derived from the event log.
type Metrics struct {
	PlansGenerated      int            `json:"plans_generated"`
	WorkflowsFailed     int            `json:"workflows_failed"`
	FailuresByStage     map[string]int `json:"failures_by_stage"`
	DegradedPlans       int            `json:"degraded_plans"`
	MissingByCapability map[string]int `json:"missing_by_capability"`
	AverageQuality      float64        `json:"average_quality"`
	AverageDurationMS   float64        `json:"average_duration_ms"`
	EventCount          int            `json:"event_count"`
	OldestEvent         *time.Time     `json:"oldest_event,omitempty"`
	NewestEvent         *time.Time     `json:"newest_event,omitempty"`
}

// MetricsCalculator derives metrics from the event log.
type MetricsCalculator interface {
	Calculate(since time.Time) (*Metrics, error)
}

// metricsCalculator implements MetricsCalculator by reading from an EventLog.
type metricsCalculator struct {
	eventLog EventLog
}

// NewMetricsCalculator creates a new MetricsCalculator that reads from the given EventLog.
func NewMetricsCalculator(eventLog EventLog) MetricsCalculator {
	return &metricsCalculator{eventLog: eventLog}
}

// Calculate reads all events since the given time and aggregates them into metrics.
func (mc *metricsCalculator) Calculate(since time.Time) (*Metrics, error) {
	events, err := mc.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for metrics: %w", err)
	}

	m := &Metrics{
		FailuresByStage:     make(map[string]int),
		MissingByCapability: make(map[string]int),
	}
	m.EventCount = len(events)

	var qualitySum, durationSum float64
	var durationCount int

	for i, event := range events {
		if i == 0 {
			t := event.Time
			m.OldestEvent = &t
		}
		t := event.Time
		m.NewestEvent = &t

		switch event.Type {
		case EventWorkflowCompleted:
			m.PlansGenerated++
			if score, ok := event.Data["quality_score"].(float64); ok {
				qualitySum += score
			}
			if degraded, ok := event.Data["degraded"].(bool); ok && degraded {
				m.DegradedPlans++
			}
			if ms, ok := event.Data["duration_ms"].(float64); ok {
				durationSum += ms
				durationCount++
			}
		case EventWorkflowFailed:
			m.WorkflowsFailed++
			if stage, ok := event.Data["stage"].(string); ok {
				m.FailuresByStage[stage]++
			}
		case EventStageSettled:
			if status, ok := event.Data["status"].(string); ok && status == "missing" {
				if name, ok := event.Data["capability"].(string); ok {
					m.MissingByCapability[name]++
				}
			}
		}
	}

	if m.PlansGenerated > 0 {
		m.AverageQuality = qualitySum / float64(m.PlansGenerated)
	}
	if durationCount > 0 {
		m.AverageDurationMS = durationSum / float64(durationCount)
	}
	return m, nil
}
