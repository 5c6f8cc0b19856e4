package models

// GradeMin and GradeMax bound the school grades the system accepts
// (1st through 11th grade of the Ukrainian school system).
const (
	GradeMin = 1
	GradeMax = 11
)

// DefaultDurationMinutes is assumed when a request does not specify
// a lesson duration.
const DefaultDurationMinutes = 45

// LessonRequest describes one lesson-plan generation request. A request is
// immutable once built: the workflow reads it but never modifies it.
type LessonRequest struct {
	Grade           int    `yaml:"grade" json:"grade"`
	Subject         string `yaml:"subject" json:"subject"`
	Topic           string `yaml:"topic" json:"topic"`
	DurationMinutes int    `yaml:"duration_minutes" json:"duration"`
	SessionID       string `yaml:"session_id,omitempty" json:"session_id,omitempty"`
	TeacherID       string `yaml:"teacher_id,omitempty" json:"teacher_id,omitempty"`
}
