package workflow

import (
	"fmt"
	"strings"

	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

// ValidateRequest checks a lesson request against the hard constraints.
// It returns the first violation as a ValidationError and has no side
// effects: an invalid request leaves every store untouched.
func ValidateRequest(req models.LessonRequest) error {
	if req.Grade < models.GradeMin || req.Grade > models.GradeMax {
		return &ValidationError{
			Field:  "grade",
			Reason: fmt.Sprintf("must be between %d and %d, got %d", models.GradeMin, models.GradeMax, req.Grade),
		}
	}
	if strings.TrimSpace(req.Subject) == "" {
		return &ValidationError{Field: "subject", Reason: "must not be empty"}
	}
	if strings.TrimSpace(req.Topic) == "" {
		return &ValidationError{Field: "topic", Reason: "must not be empty"}
	}
	if req.DurationMinutes <= 0 {
		return &ValidationError{
			Field:  "duration",
			Reason: fmt.Sprintf("must be positive, got %d", req.DurationMinutes),
		}
	}
	return nil
}
