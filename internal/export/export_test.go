package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

func sampleArtifact() *models.LessonArtifact {
	return &models.LessonArtifact{
		Request: models.LessonRequest{
			Grade:           5,
			Subject:         "Математика",
			Topic:           "Дроби",
			DurationMinutes: 45,
		},
		Components: map[string]models.Component{
			models.ComponentStandards:  {Status: models.ComponentUnavailable, Reason: "документ не знайдено"},
			models.ComponentStrategies: {Status: models.ComponentPresent, Content: "Think-Pair-Share"},
			models.ComponentContent:    {Status: models.ComponentPresent, Content: "Повний план уроку про дроби"},
			models.ComponentReview:     {Status: models.ComponentPresent, Content: "Відгук: 8/10"},
		},
		QualityScore: 8.0,
		ReviewStatus: models.ReviewMinorChanges,
		Suggestions:  []string{"Додати наочні матеріали"},
		GeneratedAt:  time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC),
	}
}

func TestFilename(t *testing.T) {
	a := sampleArtifact()
	got := Filename(a, "txt", a.GeneratedAt)
	want := "Урок_5_клас_Математика_20250310_143000.txt"
	if got != want {
		t.Fatalf("filename = %q, want %q", got, want)
	}

	a.Request.Subject = "Історія України"
	if got := Filename(a, "md", a.GeneratedAt); strings.Contains(got, " ") {
		t.Fatalf("filename must not contain spaces: %q", got)
	}
}

func TestToTXT(t *testing.T) {
	dir := t.TempDir()
	path, err := ToTXT(sampleArtifact(), dir)
	if err != nil {
		t.Fatalf("ToTXT failed: %v", err)
	}
	if filepath.Ext(path) != ".txt" {
		t.Fatalf("unexpected extension: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"ПЛАН УРОКУ",
		"Клас:           5",
		"Тема:           Дроби",
		"Загальна оцінка: 8.0/10",
		"Потребує незначних змін",
		"Повний план уроку про дроби",
		"Недоступно: документ не знайдено",
		"1. Додати наочні матеріали",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("export missing %q", want)
		}
	}
}

func TestToMarkdown(t *testing.T) {
	dir := t.TempDir()
	path, err := ToMarkdown(sampleArtifact(), dir)
	if err != nil {
		t.Fatalf("ToMarkdown failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading export: %v", err)
	}
	content := string(data)

	for _, want := range []string{
		"# План уроку",
		"| Клас | 5 |",
		"## Стратегії навчання",
		"> Недоступно: документ не знайдено",
		"## Пропозиції для покращення",
	} {
		if !strings.Contains(content, want) {
			t.Fatalf("markdown export missing %q", want)
		}
	}
}

func TestExportCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	if _, err := ToTXT(sampleArtifact(), dir); err != nil {
		t.Fatalf("export into missing directory failed: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("export directory not created: %v", err)
	}
}
