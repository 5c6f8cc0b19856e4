// Package workflow runs the lesson-plan pipeline: validate the request,
// fetch supporting data concurrently, generate the content, review it, and
// aggregate everything into a single artifact. Each request gets its own
// workflow value; the orchestrator itself is safe for concurrent use.
package workflow

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pedagogue-ai/pedagogue/internal/capability"
	"github.com/pedagogue-ai/pedagogue/internal/observability"
	"github.com/pedagogue-ai/pedagogue/internal/storage"
	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

// Orchestrator wires the capabilities and stores together and runs one
// workflow per request.
type Orchestrator struct {
	fetchers  []capability.Capability
	generator capability.Capability
	reviewer  capability.Capability

	sessions storage.SessionStoreManager
	memory   storage.MemoryBankManager

	timeouts models.WorkflowConfig
	events   observability.EventLog // nil disables event recording

	now func() time.Time
}

// Options collects the orchestrator's dependencies. Sessions, Memory, and
// Events may be nil; the corresponding side effects are skipped.
type Options struct {
	Fetchers  []capability.Capability
	Generator capability.Capability
	Reviewer  capability.Capability
	Sessions  storage.SessionStoreManager
	Memory    storage.MemoryBankManager
	Timeouts  models.WorkflowConfig
	Events    observability.EventLog
}

// New creates an Orchestrator from its dependencies.
func New(opts Options) *Orchestrator {
	return &Orchestrator{
		fetchers:  opts.Fetchers,
		generator: opts.Generator,
		reviewer:  opts.Reviewer,
		sessions:  opts.Sessions,
		memory:    opts.Memory,
		timeouts:  opts.Timeouts,
		events:    opts.Events,
		now:       time.Now,
	}
}

// run tracks the state of one workflow execution.
type run struct {
	orch  *Orchestrator
	req   models.LessonRequest
	state State
	start time.Time
}

// to moves the workflow to the next state, enforcing the transition table.
func (r *run) to(next State) error {
	if err := ValidateTransition(r.state, next); err != nil {
		return err
	}
	r.orch.emit(observability.EventWorkflowTransition, "INFO", map[string]any{
		"from":       string(r.state),
		"to":         string(next),
		"session_id": r.req.SessionID,
	})
	r.state = next
	return nil
}

// fail moves the workflow to FAILED and returns the cause. FAILED is
// reachable from every non-terminal state, so the transition always holds.
func (r *run) fail(cause error) error {
	r.orch.emit(observability.EventWorkflowFailed, "ERROR", map[string]any{
		"stage":      string(r.state),
		"error":      cause.Error(),
		"session_id": r.req.SessionID,
	})
	r.state = StateFailed
	return cause
}

func (o *Orchestrator) emit(eventType, level string, data map[string]any) {
	if o.events == nil {
		return
	}
	_ = o.events.Write(observability.Event{
		Time:    o.now(),
		Level:   level,
		Type:    eventType,
		Message: eventType,
		Data:    data,
	})
}

// Run executes the full pipeline for one request and returns the finished
// artifact. On failure the returned error is a *ValidationError or a
// *CapabilityFailure; no session or memory write happens on any failure
// path.
func (o *Orchestrator) Run(ctx context.Context, req models.LessonRequest) (*models.LessonArtifact, error) {
	r := &run{orch: o, req: req, state: StateParsing, start: o.now()}

	if err := ValidateRequest(req); err != nil {
		return nil, r.fail(err)
	}

	// Read-only personalization inputs. Their absence never blocks the
	// pipeline.
	var profile models.Suggestions
	if o.memory != nil && req.TeacherID != "" {
		if s, err := o.memory.Suggestions(req.TeacherID); err == nil && s != nil {
			profile = *s
		}
	}
	var session models.SessionContext
	if o.sessions != nil && req.SessionID != "" {
		if sc, err := o.sessions.Context(req.SessionID); err == nil {
			session = sc
		}
	}

	in := capability.Input{Request: req, Session: session, Profile: profile}

	if err := r.to(StateFetching); err != nil {
		return nil, r.fail(err)
	}
	fetched := o.fetch(ctx, in)
	in.Fetched = fetched
	for name, res := range fetched {
		if res.Status == capability.StatusFailed {
			return nil, r.fail(&CapabilityFailure{
				Stage:      StateFetching,
				Capability: name,
				Timeout:    res.TimedOut,
				Err:        res.Err,
			})
		}
	}

	if err := r.to(StateGenerating); err != nil {
		return nil, r.fail(err)
	}
	content := capability.Run(ctx, o.generator, o.timeouts.GenerateTimeout, in)
	if content.Status != capability.StatusSuccess {
		return nil, r.fail(&CapabilityFailure{
			Stage:      StateGenerating,
			Capability: o.generator.Name(),
			Timeout:    content.TimedOut,
			Err:        content.Err,
		})
	}

	if err := r.to(StateReviewing); err != nil {
		return nil, r.fail(err)
	}
	in.Draft = content.Payload
	reviewed := capability.Run(ctx, o.reviewer, o.timeouts.ReviewTimeout, in)
	if reviewed.Status != capability.StatusSuccess {
		return nil, r.fail(&CapabilityFailure{
			Stage:      StateReviewing,
			Capability: o.reviewer.Name(),
			Timeout:    reviewed.TimedOut,
			Err:        reviewed.Err,
		})
	}

	if err := r.to(StateAggregating); err != nil {
		return nil, r.fail(err)
	}
	artifact := o.aggregate(req, fetched, content.Payload, reviewed.Payload)
	if err := o.persist(req, fetched, artifact); err != nil {
		return nil, r.fail(err)
	}

	if err := r.to(StateDone); err != nil {
		return nil, r.fail(err)
	}
	o.emit(observability.EventWorkflowCompleted, "INFO", map[string]any{
		"session_id":    req.SessionID,
		"teacher_id":    req.TeacherID,
		"quality_score": artifact.QualityScore,
		"degraded":      artifact.Degraded(),
		"duration_ms":   o.now().Sub(r.start).Milliseconds(),
	})
	return artifact, nil
}

// fetch dispatches all fetch capabilities concurrently and joins them
// unconditionally: every capability settles with a Result before the stage
// ends, so a fast failure never abandons its sibling.
func (o *Orchestrator) fetch(ctx context.Context, in capability.Input) map[string]capability.Result {
	results := make([]capability.Result, len(o.fetchers))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range o.fetchers {
		g.Go(func() error {
			results[i] = capability.Run(gctx, c, o.timeouts.FetchTimeout, in)
			return nil
		})
	}
	_ = g.Wait() // task funcs never return errors; Results carry outcomes

	fetched := make(map[string]capability.Result, len(o.fetchers))
	for i, c := range o.fetchers {
		fetched[c.Name()] = results[i]
		o.emit(observability.EventStageSettled, "INFO", map[string]any{
			"stage":      string(StateFetching),
			"capability": c.Name(),
			"status":     string(results[i].Status),
		})
	}
	return fetched
}

// aggregate builds the final artifact. Missing components are reported
// explicitly with their reasons, never silently dropped.
func (o *Orchestrator) aggregate(req models.LessonRequest, fetched map[string]capability.Result, content, reviewText string) *models.LessonArtifact {
	components := make(map[string]models.Component, len(fetched)+2)
	for name, res := range fetched {
		switch res.Status {
		case capability.StatusSuccess:
			components[name] = models.Component{Status: models.ComponentPresent, Content: res.Payload}
		default:
			components[name] = models.Component{Status: models.ComponentUnavailable, Reason: res.Reason}
		}
	}
	components[models.ComponentContent] = models.Component{Status: models.ComponentPresent, Content: content}
	components[models.ComponentReview] = models.Component{Status: models.ComponentPresent, Content: reviewText}

	review := capability.ParseReview(reviewText)
	return &models.LessonArtifact{
		Request:      req,
		Components:   components,
		QualityScore: review.Average,
		ReviewStatus: review.Status,
		Suggestions:  review.Suggestions,
		GeneratedAt:  o.now(),
	}
}

// persist writes exactly one session turn and one memory observation for a
// completed workflow. Reached only from AGGREGATING.
func (o *Orchestrator) persist(req models.LessonRequest, fetched map[string]capability.Result, artifact *models.LessonArtifact) error {
	if o.sessions != nil && req.SessionID != "" {
		summary := fmt.Sprintf("План уроку: %s (оцінка %.1f/10)", req.Topic, artifact.QualityScore)
		if err := o.sessions.AppendTurn(req.SessionID, req, summary); err != nil {
			return fmt.Errorf("recording session turn: %w", err)
		}
	}
	if o.memory != nil && req.TeacherID != "" {
		obs := models.Observation{Subject: req.Subject, Grade: req.Grade}
		if ped, ok := fetched[models.ComponentStrategies]; ok && ped.Status == capability.StatusSuccess {
			obs.Strategies = capability.ExtractEngagementMethods(ped.Payload)
		}
		if err := o.memory.Merge(req.TeacherID, obs); err != nil {
			return fmt.Errorf("merging teacher observation: %w", err)
		}
	}
	return nil
}
