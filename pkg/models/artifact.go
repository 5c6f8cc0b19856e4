package models

import "time"

// ComponentStatus tells whether a lesson component was produced or had to be
// marked unavailable because its optional producer did not deliver.
type ComponentStatus string

const (
	ComponentPresent     ComponentStatus = "present"
	ComponentUnavailable ComponentStatus = "unavailable"
)

// Component names used in LessonArtifact.Components.
const (
	ComponentStandards  = "standards"
	ComponentStrategies = "learning_strategies"
	ComponentContent    = "content"
	ComponentReview     = "qa_review"
)

// Component is one named part of the final lesson plan. An unavailable
// component carries the reason instead of content; it is reported
// explicitly, never silently omitted.
type Component struct {
	Status  ComponentStatus `yaml:"status" json:"status"`
	Content string          `yaml:"content,omitempty" json:"content,omitempty"`
	Reason  string          `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// ReviewStatus is the reviewer's overall verdict on a generated plan.
type ReviewStatus string

const (
	ReviewReady        ReviewStatus = "ready"
	ReviewMinorChanges ReviewStatus = "minor_changes"
	ReviewMajorChanges ReviewStatus = "major_changes"
	ReviewUnknown      ReviewStatus = "unknown"
)

// LessonArtifact is the composite result of one completed workflow. It is
// built once during aggregation and returned to the caller unchanged.
type LessonArtifact struct {
	Request      LessonRequest        `yaml:"request" json:"request"`
	Components   map[string]Component `yaml:"components" json:"components"`
	QualityScore float64              `yaml:"quality_score" json:"quality_score"`
	ReviewStatus ReviewStatus         `yaml:"review_status" json:"review_status"`
	Suggestions  []string             `yaml:"suggestions,omitempty" json:"suggestions,omitempty"`
	GeneratedAt  time.Time            `yaml:"generated_at" json:"generated_at"`
}

// UnavailableCount returns how many components are marked unavailable.
func (a *LessonArtifact) UnavailableCount() int {
	n := 0
	for _, c := range a.Components {
		if c.Status == ComponentUnavailable {
			n++
		}
	}
	return n
}

// Degraded reports whether the plan was produced with at least one
// component missing.
func (a *LessonArtifact) Degraded() bool {
	return a.UnavailableCount() > 0
}
