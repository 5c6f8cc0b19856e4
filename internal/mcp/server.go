// Package mcp provides an MCP (Model Context Protocol) server that exposes
// curriculum search and pipeline health as MCP tools for AI assistants.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pedagogue-ai/pedagogue/internal/cache"
	"github.com/pedagogue-ai/pedagogue/internal/capability"
	"github.com/pedagogue-ai/pedagogue/internal/observability"
	"github.com/pedagogue-ai/pedagogue/internal/standards"
)

// Server wraps pedagogue services and exposes them as MCP tools.
type Server struct {
	server      *gomcp.Server
	loader      standards.Loader
	lookups     *cache.LookupCache
	cacheTTL    time.Duration
	metricsCalc observability.MetricsCalculator
	alertEngine observability.AlertEngine
}

// NewServer creates a new MCP server over the given standards loader and
// lookup cache. metricsCalc and alertEngine may be nil if observability is
// disabled.
func NewServer(loader standards.Loader, lookups *cache.LookupCache, cacheTTL time.Duration, metricsCalc observability.MetricsCalculator, alertEngine observability.AlertEngine, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		loader:      loader,
		lookups:     lookups,
		cacheTTL:    cacheTTL,
		metricsCalc: metricsCalc,
		alertEngine: alertEngine,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "pedagogue", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on the given transport, blocking until the client
// disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type searchStandardsInput struct {
	Grade   int    `json:"grade" jsonschema:"required,school grade from 1 to 11"`
	Subject string `json:"subject" jsonschema:"required,subject name in Ukrainian (e.g. Математика)"`
}

type searchStandardsOutput struct {
	Grade    int    `json:"grade"`
	Subject  string `json:"subject"`
	Filename string `json:"filename,omitempty"`
	Summary  string `json:"summary"`
	Cached   bool   `json:"cached"`
}

type listStandardsInput struct{}

type listStandardsOutput struct {
	Documents []string `json:"documents"`
	Count     int      `json:"count"`
}

type cacheInfoInput struct{}

type cacheInfoOutput struct {
	Size      int `json:"size"`
	Capacity  int `json:"capacity"`
	Hits      int `json:"hits"`
	Misses    int `json:"misses"`
	Evictions int `json:"evictions"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	PlansGenerated    int            `json:"plans_generated"`
	WorkflowsFailed   int            `json:"workflows_failed"`
	FailuresByStage   map[string]int `json:"failures_by_stage"`
	DegradedPlans     int            `json:"degraded_plans"`
	AverageQuality    float64        `json:"average_quality"`
	AverageDurationMS float64        `json:"average_duration_ms"`
	EventCount        int            `json:"event_count"`
	OldestEvent       string         `json:"oldest_event,omitempty"`
	NewestEvent       string         `json:"newest_event,omitempty"`
}

type getAlertsInput struct{}

type alertOutput struct {
	ID          string `json:"id"`
	Condition   string `json:"condition"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	TriggeredAt string `json:"triggered_at"`
}

type getAlertsOutput struct {
	Alerts []alertOutput `json:"alerts"`
	Count  int           `json:"count"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "search_standards",
		Description: "Find the state curriculum standards for a grade and subject. Returns a compact summary of competencies, learning outcomes, and content.",
	}, s.handleSearchStandards)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "list_standards",
		Description: "List the curriculum documents available to the standards loader.",
	}, s.handleListStandards)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "cache_info",
		Description: "Report lookup cache statistics: size, capacity, hits, misses, and evictions.",
	}, s.handleCacheInfo)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get aggregated metrics from the event log, including generated plans, failures by stage, and average quality.",
	}, s.handleGetMetrics)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_alerts",
		Description: "Evaluate and return active alerts (low average quality, high failure rate, capabilities repeatedly missing).",
	}, s.handleGetAlerts)
}

// --- Tool handlers ---

func (s *Server) handleSearchStandards(ctx context.Context, _ *gomcp.CallToolRequest, input searchStandardsInput) (*gomcp.CallToolResult, searchStandardsOutput, error) {
	if input.Grade < 1 || input.Grade > 11 {
		return errorResult(fmt.Sprintf("grade must be between 1 and 11, got %d", input.Grade)), searchStandardsOutput{}, nil
	}
	if input.Subject == "" {
		return errorResult("subject is required"), searchStandardsOutput{}, nil
	}

	key := capability.CacheKey(input.Grade, input.Subject)
	if summary, ok := s.lookups.Get(key); ok {
		return nil, searchStandardsOutput{
			Grade:   input.Grade,
			Subject: input.Subject,
			Summary: summary,
			Cached:  true,
		}, nil
	}

	doc, err := s.loader.Load(ctx, input.Grade, input.Subject)
	if err != nil {
		var notFound *standards.ErrNotFound
		if errors.As(err, &notFound) {
			return errorResult(err.Error()), searchStandardsOutput{}, nil
		}
		return errorResult(fmt.Sprintf("loading standards: %s", err)), searchStandardsOutput{}, nil
	}

	summary := doc.Summary()
	s.lookups.Put(key, summary, s.cacheTTL)

	return nil, searchStandardsOutput{
		Grade:    input.Grade,
		Subject:  input.Subject,
		Filename: doc.Filename,
		Summary:  summary,
		Cached:   false,
	}, nil
}

func (s *Server) handleListStandards(_ context.Context, _ *gomcp.CallToolRequest, _ listStandardsInput) (*gomcp.CallToolResult, listStandardsOutput, error) {
	docs, err := s.loader.ListAvailable()
	if err != nil {
		return errorResult(fmt.Sprintf("listing documents: %s", err)), listStandardsOutput{}, nil
	}

	return nil, listStandardsOutput{
		Documents: docs,
		Count:     len(docs),
	}, nil
}

func (s *Server) handleCacheInfo(_ context.Context, _ *gomcp.CallToolRequest, _ cacheInfoInput) (*gomcp.CallToolResult, cacheInfoOutput, error) {
	stats := s.lookups.Stats()
	return nil, cacheInfoOutput{
		Size:      stats.Size,
		Capacity:  stats.Capacity,
		Hits:      stats.Hits,
		Misses:    stats.Misses,
		Evictions: stats.Evictions,
	}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		PlansGenerated:    metrics.PlansGenerated,
		WorkflowsFailed:   metrics.WorkflowsFailed,
		FailuresByStage:   metrics.FailuresByStage,
		DegradedPlans:     metrics.DegradedPlans,
		AverageQuality:    metrics.AverageQuality,
		AverageDurationMS: metrics.AverageDurationMS,
		EventCount:        metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}

	return nil, out, nil
}

func (s *Server) handleGetAlerts(_ context.Context, _ *gomcp.CallToolRequest, _ getAlertsInput) (*gomcp.CallToolResult, getAlertsOutput, error) {
	if s.alertEngine == nil {
		return errorResult("alert engine not available (observability may be disabled)"), getAlertsOutput{}, nil
	}

	alerts, err := s.alertEngine.Evaluate()
	if err != nil {
		return errorResult(fmt.Sprintf("evaluating alerts: %s", err)), getAlertsOutput{}, nil
	}

	out := getAlertsOutput{
		Alerts: make([]alertOutput, len(alerts)),
		Count:  len(alerts),
	}
	for i, a := range alerts {
		out.Alerts[i] = alertOutput{
			ID:          a.ID,
			Condition:   a.Condition,
			Severity:    string(a.Severity),
			Message:     a.Message,
			TriggeredAt: a.TriggeredAt.Format(time.RFC3339),
		}
	}

	return nil, out, nil
}

// --- Helpers ---

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		FailuresByStage: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or "24h"
// into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}
