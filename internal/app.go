// Package internal provides the App struct that wires all components of
// Pedagogue together and initializes the CLI layer.
package internal

import (
	"os"
	"path/filepath"

	"github.com/pedagogue-ai/pedagogue/internal/cache"
	"github.com/pedagogue-ai/pedagogue/internal/capability"
	"github.com/pedagogue-ai/pedagogue/internal/cli"
	"github.com/pedagogue-ai/pedagogue/internal/config"
	"github.com/pedagogue-ai/pedagogue/internal/genai"
	"github.com/pedagogue-ai/pedagogue/internal/observability"
	"github.com/pedagogue-ai/pedagogue/internal/standards"
	"github.com/pedagogue-ai/pedagogue/internal/storage"
	"github.com/pedagogue-ai/pedagogue/internal/workflow"
	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

// App holds all service dependencies for Pedagogue.
type App struct {
	BasePath string

	// Configuration
	ConfigMgr config.ConfigurationManager
	Cfg       *models.Config

	// Storage layer
	Sessions storage.SessionStoreManager
	Memory   storage.MemoryBankManager

	// Standards corpus and lookup cache
	Loader  standards.Loader
	Lookups *cache.LookupCache

	// Generation services
	Client       genai.CompletionClient
	Parser       *genai.RequestParser
	Orchestrator *workflow.Orchestrator

	// Observability
	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
}

// NewApp creates and wires all components of Pedagogue. basePath is the
// directory holding .pedagogue.yaml, the standards corpus, the memory bank,
// and the event log (typically the project directory or PEDAGOGUE_HOME).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	app.ConfigMgr = config.NewConfigurationManager(basePath)
	cfg, err := app.ConfigMgr.Load()
	if err != nil {
		return nil, err
	}
	if err := app.ConfigMgr.Validate(cfg); err != nil {
		return nil, err
	}
	app.Cfg = cfg

	// --- Storage layer ---
	app.Sessions = storage.NewSessionStoreManager(cfg.Session.CompactThreshold, cfg.Session.RetainTurns)
	app.Memory = storage.NewMemoryBankManager(basePath)

	// --- Standards corpus and lookup cache ---
	standardsDir := cfg.Standards.Dir
	if !filepath.IsAbs(standardsDir) {
		standardsDir = filepath.Join(basePath, standardsDir)
	}
	app.Loader = standards.NewLoader(standardsDir, standards.NewTextExtractor())
	app.Lookups = cache.New(cfg.Cache.Capacity)

	// --- Generation services ---
	client := genai.NewHTTPClient(cfg.Completion)
	app.Client = client
	app.Parser = genai.NewRequestParser(client)

	// --- Observability ---
	eventLogPath := filepath.Join(basePath, ".pedagogue_events.jsonl")
	app.EventLog, err = observability.NewJSONLEventLog(eventLogPath)
	if err != nil {
		// Non-fatal: run without observability if the log can't be created.
		app.EventLog = nil
	}
	if app.EventLog != nil {
		thresholds := observability.DefaultAlertThresholds()
		if cfg.Alerts.MinAverageQuality > 0 {
			thresholds.MinAverageQuality = cfg.Alerts.MinAverageQuality
		}
		if cfg.Alerts.MaxFailureRatePct > 0 {
			thresholds.MaxFailureRatePct = cfg.Alerts.MaxFailureRatePct
		}
		if cfg.Alerts.MissingStreak > 0 {
			thresholds.MissingStreak = cfg.Alerts.MissingStreak
		}
		if cfg.Alerts.WindowHours > 0 {
			thresholds.WindowHours = cfg.Alerts.WindowHours
		}
		app.AlertEngine = observability.NewAlertEngine(app.EventLog, thresholds)
		app.MetricsCalc = observability.NewMetricsCalculator(app.EventLog)
	}
	if cfg.Alerts.SlackWebhookURL != "" {
		app.Notifier = observability.NewSlackNotifier(cfg.Alerts.SlackWebhookURL)
	}

	// --- Workflow orchestrator ---
	app.Orchestrator = workflow.New(workflow.Options{
		Fetchers: []capability.Capability{
			capability.NewStandardsCapability(app.Loader, app.Lookups, cfg.Cache.TTL),
			capability.NewPedagogyCapability(client),
		},
		Generator: capability.NewGeneratorCapability(client),
		Reviewer:  capability.NewReviewerCapability(client),
		Sessions:  app.Sessions,
		Memory:    app.Memory,
		Timeouts:  cfg.Workflow,
		Events:    app.EventLog,
	})

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Cfg = cfg
	cli.Orchestrator = app.Orchestrator
	cli.Parser = app.Parser
	cli.Sessions = app.Sessions
	cli.Memory = app.Memory
	cli.Lookups = app.Lookups
	cli.Loader = app.Loader
	cli.EventLog = app.EventLog
	cli.AlertEngine = app.AlertEngine
	cli.MetricsCalc = app.MetricsCalc
	cli.Notifier = app.Notifier

	return app, nil
}

// Close releases resources held by the App, such as the event log file
// handle. It is safe to call Close on an App whose EventLog is nil.
func (a *App) Close() error {
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for the Pedagogue data directory.
// It checks the PEDAGOGUE_HOME env var, then walks up from the current
// directory looking for .pedagogue.yaml, then falls back to the cwd.
func ResolveBasePath() string {
	if home := os.Getenv("PEDAGOGUE_HOME"); home != "" {
		return home
	}
	dir, err := os.Getwd()
	if err != nil {
		return "."
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, ".pedagogue.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	cwd, _ := os.Getwd()
	return cwd
}
