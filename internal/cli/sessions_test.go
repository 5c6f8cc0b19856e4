package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pedagogue-ai/pedagogue/internal/storage"
	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

func setupSessions(t *testing.T) storage.SessionStoreManager {
	t.Helper()
	orig := Sessions
	t.Cleanup(func() { Sessions = orig })

	Sessions = storage.NewSessionStoreManager(4000, 5)
	return Sessions
}

func TestSessionsShowCmd_EmptySession(t *testing.T) {
	setupSessions(t)

	if err := sessionsShowCmd.RunE(sessionsShowCmd, []string{"s-unknown"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionsShowCmd_WithTurns(t *testing.T) {
	store := setupSessions(t)

	req := models.LessonRequest{Grade: 5, Subject: "Математика", Topic: "Дроби", DurationMinutes: 45, SessionID: "s-1"}
	if err := store.AppendTurn("s-1", req, "урок про дроби"); err != nil {
		t.Fatalf("appending turn: %v", err)
	}

	if err := sessionsShowCmd.RunE(sessionsShowCmd, []string{"s-1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSessionsShowCmd_NilStore(t *testing.T) {
	orig := Sessions
	defer func() { Sessions = orig }()
	Sessions = nil

	if err := sessionsShowCmd.RunE(sessionsShowCmd, []string{"s-1"}); err == nil {
		t.Fatal("expected error when Sessions is nil")
	}
}

func TestSessionsExportCmd(t *testing.T) {
	store := setupSessions(t)

	req := models.LessonRequest{Grade: 7, Subject: "Біологія", Topic: "Клітини", DurationMinutes: 45, SessionID: "s-2"}
	if err := store.AppendTurn("s-2", req, "урок про клітини"); err != nil {
		t.Fatalf("appending turn: %v", err)
	}

	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := sessionsExportCmd.RunE(sessionsExportCmd, []string{"s-2", path}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading exported file: %v", err)
	}
	if !strings.Contains(string(data), "Біологія") {
		t.Error("expected exported session to contain the turn subject")
	}
}

func TestSessionsExportCmd_UnknownSession(t *testing.T) {
	setupSessions(t)

	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := sessionsExportCmd.RunE(sessionsExportCmd, []string{"s-missing", path}); err == nil {
		t.Fatal("expected error exporting an unknown session")
	}
}
