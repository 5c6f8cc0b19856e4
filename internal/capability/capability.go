// Package capability defines the task capabilities the lesson workflow
// dispatches and the tagged Result they settle with. A capability never
// panics the pipeline: it either succeeds with a payload, reports its data
// missing, or fails with an error, and the workflow decides what each
// outcome means based on whether the capability is optional.
package capability

import (
	"context"
	"errors"
	"time"

	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

// Status is the discriminant of a Result.
type Status string

const (
	StatusSuccess Status = "success"
	StatusMissing Status = "missing"
	StatusFailed  Status = "failed"
)

// Result is the settled outcome of one capability invocation. Exactly one
// of Payload, Reason, and Err is meaningful, selected by Status. Results
// are values; once returned they are never mutated.
type Result struct {
	Status   Status
	Payload  string
	Reason   string
	Err      error
	TimedOut bool
}

// Success wraps a produced payload.
func Success(payload string) Result {
	return Result{Status: StatusSuccess, Payload: payload}
}

// Missing records that the capability's data is unavailable. This is data,
// not an error: a Missing result from an optional capability degrades the
// plan instead of failing the workflow.
func Missing(reason string) Result {
	return Result{Status: StatusMissing, Reason: reason}
}

// Failed wraps an invocation error.
func Failed(err error) Result {
	return Result{Status: StatusFailed, Err: err}
}

// Input carries everything a capability may need for one request. Each
// capability reads only the fields it cares about.
type Input struct {
	Request models.LessonRequest
	Session models.SessionContext
	Profile models.Suggestions

	// Fetched holds the settled fetch-stage results, keyed by capability
	// name. Populated for the generation and review capabilities.
	Fetched map[string]Result

	// Draft is the generated lesson content under review. Populated for
	// the review capability only.
	Draft string
}

// Capability is one unit of work the orchestrator dispatches. Optional
// capabilities may settle Missing without failing the workflow; required
// ones must succeed for the workflow to complete.
type Capability interface {
	Name() string
	Optional() bool
	Invoke(ctx context.Context, in Input) Result
}

// Run invokes the capability under a timeout and classifies the outcome:
// a failure of an optional capability becomes Missing, a failure of a
// required one stays Failed. Timeouts are flagged on the result so the
// workflow can report them distinctly.
func Run(ctx context.Context, c Capability, timeout time.Duration, in Input) Result {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	res := c.Invoke(runCtx, in)
	if res.Status != StatusFailed {
		return res
	}

	res.TimedOut = errors.Is(res.Err, context.DeadlineExceeded) ||
		errors.Is(runCtx.Err(), context.DeadlineExceeded)

	if c.Optional() {
		reason := "unavailable"
		if res.TimedOut {
			reason = "timed out"
		} else if res.Err != nil {
			reason = res.Err.Error()
		}
		return Result{Status: StatusMissing, Reason: reason, TimedOut: res.TimedOut}
	}
	return res
}
