package models

import "time"

// TeacherProfile is the long-term memory entry for one teacher identity.
// Counter fields accumulate across every completed workflow; last-write-wins
// fields hold the most recent preference only. Profiles are created on first
// observed identity and never deleted automatically.
type TeacherProfile struct {
	TeacherID string `yaml:"teacher_id"`

	// Additive counters: every merge call is reflected in the sums.
	PlanCount      int            `yaml:"plan_count"`
	SubjectCounts  map[string]int `yaml:"subject_counts,omitempty"`
	GradeCounts    map[int]int    `yaml:"grade_counts,omitempty"`
	StrategyCounts map[string]int `yaml:"strategy_counts,omitempty"`

	// Last-write-wins preferences: merging the same observation twice
	// leaves these at the value of the second application.
	LastSubject   string `yaml:"last_subject,omitempty"`
	LastGrade     int    `yaml:"last_grade,omitempty"`
	PreferredTier string `yaml:"preferred_tier,omitempty"`
	TeachingStyle string `yaml:"teaching_style,omitempty"`

	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// Observation is one completed workflow's contribution to a teacher's
// profile, merged into the store during aggregation.
type Observation struct {
	Subject       string   `yaml:"subject"`
	Grade         int      `yaml:"grade"`
	Strategies    []string `yaml:"strategies,omitempty"`
	PreferredTier string   `yaml:"preferred_tier,omitempty"`
	TeachingStyle string   `yaml:"teaching_style,omitempty"`
}

// Suggestions are the personalized hints derived from a profile, attached
// to the generation prompt and shown to the caller.
type Suggestions struct {
	TopSubjects   []string `yaml:"top_subjects,omitempty"`
	TopGrades     []int    `yaml:"top_grades,omitempty"`
	TopStrategies []string `yaml:"top_strategies,omitempty"`
	PreferredTier string   `yaml:"preferred_tier,omitempty"`
	TeachingStyle string   `yaml:"teaching_style,omitempty"`
	PlanCount     int      `yaml:"plan_count"`
}
