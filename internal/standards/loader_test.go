package standards

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const curriculumFixture = `НАВЧАЛЬНА ПРОГРАМА З МАТЕМАТИКИ

Ключові компетентності
Математична компетентність формується через розв'язування практичних задач
Уміння вчитися впродовж життя через самостійну роботу з джерелами

Очікувані результати навчання
Учень розуміє поняття звичайного дробу та його частин
Учень порівнює дроби з однаковими знаменниками

Зміст навчального матеріалу
Звичайні дроби, чисельник і знаменник, порівняння дробів
`

func writeDoc(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func newTestLoader(t *testing.T) (Loader, string) {
	t.Helper()
	dir := t.TempDir()
	return NewLoader(dir, NewTextExtractor()), dir
}

func TestLoadMatchesGradeAndSubject(t *testing.T) {
	loader, dir := newTestLoader(t)
	writeDoc(t, dir, "математика_5_клас.txt", curriculumFixture)
	writeDoc(t, dir, "математика_7_клас.txt", "інша програма")

	doc, err := loader.Load(context.Background(), 5, "Математика")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.Filename != "математика_5_клас.txt" {
		t.Fatalf("picked %q", doc.Filename)
	}
	if doc.Grade != 5 || doc.Subject != "Математика" {
		t.Fatalf("doc identity = %d/%q", doc.Grade, doc.Subject)
	}
	if len(doc.Competencies) == 0 || len(doc.LearningOutcomes) == 0 {
		t.Fatalf("sections not parsed: %+v", doc)
	}
}

func TestLoadFallsBackToSubjectOnlyMatch(t *testing.T) {
	loader, dir := newTestLoader(t)
	writeDoc(t, dir, "математика_програма.txt", curriculumFixture)

	doc, err := loader.Load(context.Background(), 5, "Математика")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.Filename != "математика_програма.txt" {
		t.Fatalf("picked %q", doc.Filename)
	}
}

func TestLoadGradeDigitBoundaries(t *testing.T) {
	loader, dir := newTestLoader(t)
	writeDoc(t, dir, "програма_11_клас.txt", curriculumFixture)

	// Grade 1 must not match the "11" in the filename.
	if _, err := loader.Load(context.Background(), 1, "Хімія"); err == nil {
		t.Fatalf("grade 1 matched an 11th-grade document")
	}

	doc, err := loader.Load(context.Background(), 11, "Хімія")
	if err != nil {
		t.Fatalf("grade 11 lookup failed: %v", err)
	}
	if doc.Filename != "програма_11_клас.txt" {
		t.Fatalf("picked %q", doc.Filename)
	}
}

func TestLoadNotFound(t *testing.T) {
	loader, _ := newTestLoader(t)

	_, err := loader.Load(context.Background(), 5, "Астрономія")
	var notFound *ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %v, want *ErrNotFound", err)
	}
	if notFound.Grade != 5 || notFound.Subject != "Астрономія" {
		t.Fatalf("error fields = %+v", notFound)
	}
}

func TestLoadMissingDirectoryIsNotFound(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent"), NewTextExtractor())
	var notFound *ErrNotFound
	if _, err := loader.Load(context.Background(), 5, "Математика"); !errors.As(err, &notFound) {
		t.Fatalf("missing directory must read as not found, got %v", err)
	}
}

func TestLoadHonorsCancelledContext(t *testing.T) {
	loader, dir := newTestLoader(t)
	writeDoc(t, dir, "математика_5_клас.txt", curriculumFixture)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := loader.Load(ctx, 5, "Математика")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestLoadEmptyDocumentSurfacesErrNoText(t *testing.T) {
	loader, dir := newTestLoader(t)
	writeDoc(t, dir, "математика_5_клас.txt", "   \n  ")

	_, err := loader.Load(context.Background(), 5, "Математика")
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("error = %v, want ErrNoText", err)
	}
}

func TestListAvailable(t *testing.T) {
	loader, dir := newTestLoader(t)
	writeDoc(t, dir, "б.txt", "x")
	writeDoc(t, dir, "а.md", "x")
	writeDoc(t, dir, "ignored.pdf", "x")

	names, err := loader.ListAvailable()
	if err != nil {
		t.Fatalf("ListAvailable failed: %v", err)
	}
	if len(names) != 2 || names[0] != "а.md" || names[1] != "б.txt" {
		t.Fatalf("names = %v", names)
	}
}

func TestParseCurriculumSections(t *testing.T) {
	doc := ParseCurriculum(curriculumFixture)

	if len(doc.Competencies) != 3 {
		t.Fatalf("competencies = %v", doc.Competencies)
	}
	if len(doc.LearningOutcomes) != 3 {
		t.Fatalf("outcomes = %v", doc.LearningOutcomes)
	}
	if len(doc.ContentLines) != 2 {
		t.Fatalf("content lines = %v", doc.ContentLines)
	}
}

func TestDocumentSummary(t *testing.T) {
	doc := ParseCurriculum(curriculumFixture)
	doc.Filename = "математика_5_клас.txt"
	doc.Grade = 5
	doc.Subject = "Математика"

	summary := doc.Summary()
	for _, want := range []string{"Навчальна програма", "Компетентності", "Очікувані результати"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestKeyConcepts(t *testing.T) {
	doc := ParseCurriculum(curriculumFixture)
	concepts := doc.KeyConcepts("Дроби", 3)
	if len(concepts) != 3 || concepts[0] != "Дроби" {
		t.Fatalf("concepts = %v", concepts)
	}
}

func TestTextExtractor(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := os.WriteFile(path, []byte("  текст документа  "), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	ex := NewTextExtractor()
	text, err := ex.Extract(path)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if text != "текст документа" {
		t.Fatalf("text = %q", text)
	}

	if _, err := ex.Extract(filepath.Join(dir, "absent.txt")); err == nil {
		t.Fatalf("missing file accepted")
	}
}
