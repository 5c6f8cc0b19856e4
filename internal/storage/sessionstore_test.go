package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

func turnRequest(subject, topic string) models.LessonRequest {
	return models.LessonRequest{Grade: 5, Subject: subject, Topic: topic, DurationMinutes: 45}
}

// contextSize recomputes the retained size the way the store counts it.
func contextSize(ctx models.SessionContext) int {
	size := 0
	if ctx.Compacted {
		size += ctx.Summary.Size()
	}
	for _, t := range ctx.Turns {
		size += t.Size()
	}
	return size
}

func TestAppendAndContext(t *testing.T) {
	store := NewSessionStoreManager(10_000, 5)

	if err := store.AppendTurn("s1", turnRequest("Математика", "Дроби"), "план"); err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}
	if err := store.AppendTurn("s1", turnRequest("Математика", "Відсотки"), "план"); err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}

	ctx, err := store.Context("s1")
	if err != nil {
		t.Fatalf("Context failed: %v", err)
	}
	if len(ctx.Turns) != 2 {
		t.Fatalf("turns = %d, want 2", len(ctx.Turns))
	}
	if ctx.Compacted {
		t.Fatalf("small session compacted prematurely")
	}
	if ctx.Turns[0].Index != 1 || ctx.Turns[1].Index != 2 {
		t.Fatalf("turn ordering broken: %d, %d", ctx.Turns[0].Index, ctx.Turns[1].Index)
	}
	if ctx.Turns[0].Request.Topic != "Дроби" {
		t.Fatalf("oldest-first order violated: %q", ctx.Turns[0].Request.Topic)
	}
}

func TestUnknownSessionYieldsEmptyContext(t *testing.T) {
	store := NewSessionStoreManager(100, 2)

	ctx, err := store.Context("never-seen")
	if err != nil {
		t.Fatalf("unknown session must not error: %v", err)
	}
	if len(ctx.Turns) != 0 || ctx.Compacted {
		t.Fatalf("unknown session context not empty: %+v", ctx)
	}
	if store.SessionCount() != 0 {
		t.Fatalf("Context must not create a record")
	}
}

func TestAppendRejectsEmptySessionID(t *testing.T) {
	store := NewSessionStoreManager(100, 2)
	if err := store.AppendTurn("", turnRequest("Математика", "Дроби"), "план"); err == nil {
		t.Fatalf("empty session id accepted")
	}
}

func TestCompactionKeepsNewestTurnsVerbatim(t *testing.T) {
	const threshold, retain = 120, 3
	store := NewSessionStoreManager(threshold, retain)

	topics := []string{"Дроби", "Відсотки", "Рівняння", "Геометрія", "Степені", "Корені"}
	for _, topic := range topics {
		if err := store.AppendTurn("s1", turnRequest("Математика", topic), "короткий план уроку"); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	ctx, _ := store.Context("s1")
	if !ctx.Compacted {
		t.Fatalf("session over threshold not compacted")
	}
	if len(ctx.Turns) != retain {
		t.Fatalf("retained %d turns, want %d", len(ctx.Turns), retain)
	}
	// The newest K turns survive verbatim, oldest first.
	want := topics[len(topics)-retain:]
	for i, turn := range ctx.Turns {
		if turn.Request.Topic != want[i] {
			t.Fatalf("retained turn %d = %q, want %q", i, turn.Request.Topic, want[i])
		}
	}
	if ctx.Summary.Text == "" {
		t.Fatalf("compacted session has no summary")
	}
	if contextSize(ctx) > threshold {
		t.Fatalf("retained size %d exceeds threshold %d", contextSize(ctx), threshold)
	}
}

func TestCompactionSummaryTalliesSubjects(t *testing.T) {
	// Threshold roomy enough that the summary survives untrimmed.
	store := NewSessionStoreManager(400, 1)

	long := strings.Repeat("детальний план уроку ", 8)
	_ = store.AppendTurn("s1", turnRequest("Математика", "Дроби"), long)
	_ = store.AppendTurn("s1", turnRequest("Історія", "Козаччина"), long)
	_ = store.AppendTurn("s1", turnRequest("Математика", "Відсотки"), long)

	ctx, _ := store.Context("s1")
	if !ctx.Compacted {
		t.Fatalf("not compacted")
	}
	if !strings.Contains(ctx.Summary.Text, "Математика") {
		t.Fatalf("summary lost subject tally: %q", ctx.Summary.Text)
	}
	if !strings.Contains(ctx.Summary.Text, "Попередня розмова") {
		t.Fatalf("summary header missing: %q", ctx.Summary.Text)
	}
}

func TestCompactionCountsFoldedTurns(t *testing.T) {
	store := NewSessionStoreManager(60, 1)

	for i := 0; i < 5; i++ {
		if err := store.AppendTurn("s1", turnRequest("Історія", "Козаччина"), "довгий план уроку з деталями"); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	ctx, _ := store.Context("s1")
	if !ctx.Compacted {
		t.Fatalf("not compacted")
	}
	if ctx.Summary.TurnsCompacted != 4 {
		t.Fatalf("turns compacted = %d, want 4", ctx.Summary.TurnsCompacted)
	}
	if store.TurnCount("s1") != 1 {
		t.Fatalf("turn count = %d, want 1", store.TurnCount("s1"))
	}
}

func TestNoCompactionWhileTailShort(t *testing.T) {
	// Threshold crossable by fewer turns than the retained tail: nothing
	// older than the tail exists yet, so nothing can be folded away.
	store := NewSessionStoreManager(10, 5)

	if err := store.AppendTurn("s1", turnRequest("Математика", "Дуже довга назва теми уроку"), "план"); err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}

	ctx, _ := store.Context("s1")
	if ctx.Compacted {
		t.Fatalf("compacted with nothing older than the tail")
	}
	if len(ctx.Turns) != 1 {
		t.Fatalf("turns = %d, want 1", len(ctx.Turns))
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	store := NewSessionStoreManager(10_000, 5)

	_ = store.AppendTurn("a", turnRequest("Математика", "Дроби"), "план")
	_ = store.AppendTurn("b", turnRequest("Історія", "Козаччина"), "план")

	ctxA, _ := store.Context("a")
	if len(ctxA.Turns) != 1 || ctxA.Turns[0].Request.Subject != "Математика" {
		t.Fatalf("session a contaminated: %+v", ctxA.Turns)
	}
	if store.SessionCount() != 2 {
		t.Fatalf("session count = %d, want 2", store.SessionCount())
	}
}

func TestExportSession(t *testing.T) {
	store := NewSessionStoreManager(10_000, 5)
	_ = store.AppendTurn("s1", turnRequest("Математика", "Дроби"), "план уроку")

	path := filepath.Join(t.TempDir(), "session.yaml")
	if err := store.ExportSession("s1", path); err != nil {
		t.Fatalf("ExportSession failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	if !strings.Contains(string(data), "Дроби") {
		t.Fatalf("export missing turn data:\n%s", data)
	}

	if err := store.ExportSession("missing", filepath.Join(t.TempDir(), "x.yaml")); err == nil {
		t.Fatalf("exporting an empty session must fail")
	}
}
