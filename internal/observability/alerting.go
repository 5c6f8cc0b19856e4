package observability

import (
	"fmt"
	"time"
)

// AlertSeverity represents the urgency of an alert.
type AlertSeverity string

const (
	SeverityHigh   AlertSeverity = "high"
	SeverityMedium AlertSeverity = "medium"
	SeverityLow    AlertSeverity = "low"
)

// Alert represents a triggered alert condition.
type Alert struct {
	ID          string        `json:"id"`
	Condition   string        `json:"condition"`
	Severity    AlertSeverity `json:"severity"`
	Message     string        `json:"message"`
	TriggeredAt time.Time     `json:"triggered_at"`
}

// AlertThresholds configures when alerts should fire.
type AlertThresholds struct {
	// MinAverageQuality is the quality floor for recently generated plans.
	MinAverageQuality float64 `yaml:"min_average_quality" json:"min_average_quality"`
	// MaxFailureRatePct is the tolerated share of failed workflows, 0-100.
	MaxFailureRatePct int `yaml:"max_failure_rate_pct" json:"max_failure_rate_pct"`
	// MissingStreak is how many consecutive missing settlements of the same
	// capability indicate a broken data source.
	MissingStreak int `yaml:"missing_streak" json:"missing_streak"`
	// WindowHours bounds how far back the engine looks.
	WindowHours int `yaml:"window_hours" json:"window_hours"`
}

// DefaultAlertThresholds returns sensible defaults for alert thresholds.
func DefaultAlertThresholds() AlertThresholds {
	return AlertThresholds{
		MinAverageQuality: 6.0,
		MaxFailureRatePct: 25,
		MissingStreak:     5,
		WindowHours:       24,
	}
}

// AlertEngine evaluates alert conditions against the event log.
type AlertEngine interface {
	Evaluate() ([]Alert, error)
}

// alertEngine implements AlertEngine by reading events and checking thresholds.
type alertEngine struct {
	eventLog   EventLog
	thresholds AlertThresholds
	now        func() time.Time
}

// NewAlertEngine creates a new AlertEngine with the given EventLog and thresholds.
func NewAlertEngine(eventLog EventLog, thresholds AlertThresholds) AlertEngine {
	return &alertEngine{
		eventLog:   eventLog,
		thresholds: thresholds,
		now:        time.Now,
	}
}

// Evaluate reads events within the window and checks all alert conditions,
// returning any triggered alerts.
func (ae *alertEngine) Evaluate() ([]Alert, error) {
	now := ae.now().UTC()
	since := now.Add(-time.Duration(ae.thresholds.WindowHours) * time.Hour)

	events, err := ae.eventLog.Read(EventFilter{Since: &since})
	if err != nil {
		return nil, fmt.Errorf("reading events for alerting: %w", err)
	}

	var alerts []Alert
	alerts = append(alerts, ae.checkQualityFloor(events, now)...)
	alerts = append(alerts, ae.checkFailureRate(events, now)...)
	alerts = append(alerts, ae.checkMissingStreaks(events, now)...)
	return alerts, nil
}

// checkQualityFloor alerts when the average quality of generated plans in
// the window drops below the configured floor.
func (ae *alertEngine) checkQualityFloor(events []Event, now time.Time) []Alert {
	var sum float64
	var count int
	for _, event := range events {
		if event.Type != EventWorkflowCompleted {
			continue
		}
		if score, ok := event.Data["quality_score"].(float64); ok {
			sum += score
			count++
		}
	}
	if count == 0 {
		return nil
	}

	avg := sum / float64(count)
	if avg >= ae.thresholds.MinAverageQuality {
		return nil
	}
	return []Alert{{
		ID:        "quality-floor",
		Condition: "average_quality_low",
		Severity:  SeverityMedium,
		Message: fmt.Sprintf("average plan quality %.1f/10 over the last %d plans is below the %.1f floor",
			avg, count, ae.thresholds.MinAverageQuality),
		TriggeredAt: now,
	}}
}

// checkFailureRate alerts when the share of failed workflows in the window
// exceeds the tolerated percentage.
func (ae *alertEngine) checkFailureRate(events []Event, now time.Time) []Alert {
	completed, failed := 0, 0
	for _, event := range events {
		switch event.Type {
		case EventWorkflowCompleted:
			completed++
		case EventWorkflowFailed:
			failed++
		}
	}

	total := completed + failed
	if total == 0 || failed*100 <= total*ae.thresholds.MaxFailureRatePct {
		return nil
	}
	return []Alert{{
		ID:        "failure-rate",
		Condition: "failure_rate_high",
		Severity:  SeverityHigh,
		Message: fmt.Sprintf("%d of %d workflows failed in the last %dh, exceeding %d%%",
			failed, total, ae.thresholds.WindowHours, ae.thresholds.MaxFailureRatePct),
		TriggeredAt: now,
	}}
}

// checkMissingStreaks alerts when the same capability settles missing
// enough times in a row, which usually means its data source is broken
// rather than sparse.
func (ae *alertEngine) checkMissingStreaks(events []Event, now time.Time) []Alert {
	streaks := make(map[string]int)
	seen := make(map[string]bool)
	var alerted []string

	for _, event := range events {
		if event.Type != EventStageSettled {
			continue
		}
		name, _ := event.Data["capability"].(string)
		status, _ := event.Data["status"].(string)
		if name == "" {
			continue
		}
		if status == "missing" {
			streaks[name]++
		} else {
			streaks[name] = 0
		}
		if streaks[name] >= ae.thresholds.MissingStreak && !seen[name] {
			seen[name] = true
			alerted = append(alerted, name)
		}
	}

	var alerts []Alert
	for _, name := range alerted {
		alerts = append(alerts, Alert{
			ID:        fmt.Sprintf("missing-%s", name),
			Condition: "capability_missing_streak",
			Severity:  SeverityMedium,
			Message: fmt.Sprintf("capability %s settled missing %d times in a row; its data source may be misconfigured",
				name, ae.thresholds.MissingStreak),
			TriggeredAt: now,
		})
	}
	return alerts
}
