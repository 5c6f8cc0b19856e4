package cli

import (
	"github.com/pedagogue-ai/pedagogue/internal/cache"
	"github.com/pedagogue-ai/pedagogue/internal/genai"
	"github.com/pedagogue-ai/pedagogue/internal/observability"
	"github.com/pedagogue-ai/pedagogue/internal/standards"
	"github.com/pedagogue-ai/pedagogue/internal/storage"
	"github.com/pedagogue-ai/pedagogue/internal/workflow"
	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

// Service instances, set during app initialization in app.go.
var (
	BasePath string
	Cfg      *models.Config

	Orchestrator *workflow.Orchestrator
	Parser       *genai.RequestParser

	Sessions storage.SessionStoreManager
	Memory   storage.MemoryBankManager
	Lookups  *cache.LookupCache
	Loader   standards.Loader

	EventLog    observability.EventLog
	AlertEngine observability.AlertEngine
	MetricsCalc observability.MetricsCalculator
	Notifier    observability.Notifier
)
