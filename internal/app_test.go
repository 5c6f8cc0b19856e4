package internal

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestResolveBasePath_HomeSet(t *testing.T) {
	// PEDAGOGUE_HOME takes precedence over everything else.
	tmpDir := t.TempDir()
	t.Setenv("PEDAGOGUE_HOME", tmpDir)

	got := ResolveBasePath()
	if got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q", got, tmpDir)
	}
}

func TestResolveBasePath_FindsConfigFile(t *testing.T) {
	// ResolveBasePath walks up to find .pedagogue.yaml.
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "sub", "nested")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatal(err)
	}

	configPath := filepath.Join(tmpDir, ".pedagogue.yaml")
	if err := os.WriteFile(configPath, []byte("cache:\n  capacity: 64\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	origDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(origDir) }()
	if err := os.Chdir(subDir); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PEDAGOGUE_HOME", "")

	got := ResolveBasePath()
	if got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q (should find .pedagogue.yaml in parent)", got, tmpDir)
	}
}

func TestResolveBasePath_FallbackToCwd(t *testing.T) {
	tmpDir := t.TempDir()
	origDir, _ := os.Getwd()
	defer func() { _ = os.Chdir(origDir) }()
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PEDAGOGUE_HOME", "")

	got := ResolveBasePath()
	if got != tmpDir {
		t.Errorf("ResolveBasePath() = %q, want %q (should fall back to cwd)", got, tmpDir)
	}
}

func TestNewApp_Success(t *testing.T) {
	tmpDir := t.TempDir()
	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.Cfg == nil {
		t.Fatal("Cfg not set")
	}
	if app.Cfg.Session.CompactThreshold != 4000 {
		t.Errorf("default compact threshold = %d, want 4000", app.Cfg.Session.CompactThreshold)
	}
	if app.Orchestrator == nil {
		t.Error("Orchestrator not wired")
	}
	if app.Parser == nil {
		t.Error("Parser not wired")
	}
	if app.Sessions == nil || app.Memory == nil {
		t.Error("storage managers not wired")
	}
	if app.Lookups == nil || app.Loader == nil {
		t.Error("standards lookup path not wired")
	}
	if app.EventLog == nil || app.AlertEngine == nil || app.MetricsCalc == nil {
		t.Error("observability not wired")
	}
	// No webhook configured, so no notifier.
	if app.Notifier != nil {
		t.Error("Notifier set without a webhook URL")
	}

	// The event log file should exist in the base path.
	if _, err := os.Stat(filepath.Join(tmpDir, ".pedagogue_events.jsonl")); err != nil {
		t.Errorf("event log not created: %v", err)
	}
}

func TestNewApp_InvalidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	content := "cache:\n  capacity: -1\n"
	if err := os.WriteFile(filepath.Join(tmpDir, ".pedagogue.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := NewApp(tmpDir)
	if err == nil {
		t.Fatal("NewApp() accepted an invalid config")
	}
	if !strings.Contains(err.Error(), "cache.capacity") {
		t.Errorf("error does not name the bad key: %v", err)
	}
}

func TestNewApp_AlertsConfigApplied(t *testing.T) {
	tmpDir := t.TempDir()
	content := `alerts:
  missing_streak: 3
  slack_webhook_url: https://hooks.slack.com/services/T0/B0/x
`
	if err := os.WriteFile(filepath.Join(tmpDir, ".pedagogue.yaml"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	app, err := NewApp(tmpDir)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	defer func() { _ = app.Close() }()

	if app.Notifier == nil {
		t.Error("Notifier not created from webhook URL")
	}
	if app.Cfg.Alerts.MissingStreak != 3 {
		t.Errorf("missing streak = %d, want 3", app.Cfg.Alerts.MissingStreak)
	}
	if app.Cfg.Cache.TTL != 24*time.Hour {
		t.Errorf("unset cache TTL lost its default: %v", app.Cfg.Cache.TTL)
	}
}
