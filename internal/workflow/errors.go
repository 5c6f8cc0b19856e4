package workflow

import "fmt"

// ValidationError reports a request that can never succeed as stated.
// Validation failures are terminal: the workflow moves to FAILED without
// side effects and the request is not retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Reason)
}

// CapabilityFailure reports a required capability that failed or timed out,
// carrying the stage it failed in and the wrapped cause.
type CapabilityFailure struct {
	Stage      State
	Capability string
	Timeout    bool
	Err        error
}

func (e *CapabilityFailure) Error() string {
	if e.Timeout {
		return fmt.Sprintf("stage %s: capability %s timed out: %v", e.Stage, e.Capability, e.Err)
	}
	return fmt.Sprintf("stage %s: capability %s failed: %v", e.Stage, e.Capability, e.Err)
}

func (e *CapabilityFailure) Unwrap() error { return e.Err }
