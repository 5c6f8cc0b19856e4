// Package export renders finished lesson artifacts as files a teacher can
// open directly: plain text and Markdown. Export is a read-only view of a
// completed artifact; it never touches the stores.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

const separatorWidth = 80

// statusLabels translate review statuses to the wording teachers see.
var statusLabels = map[models.ReviewStatus]string{
	models.ReviewReady:        "Готовий до використання",
	models.ReviewMinorChanges: "Потребує незначних змін",
	models.ReviewMajorChanges: "Потребує значного доопрацювання",
	models.ReviewUnknown:      "Статус невідомий",
}

// componentOrder fixes the section order in exported files.
var componentOrder = []struct {
	name  string
	title string
}{
	{models.ComponentStandards, "СТАНДАРТИ НУШ"},
	{models.ComponentStrategies, "СТРАТЕГІЇ НАВЧАННЯ"},
	{models.ComponentContent, "ПЛАН УРОКУ"},
	{models.ComponentReview, "РЕКОМЕНДАЦІЇ ЕКСПЕРТА"},
}

// Filename builds the export filename for an artifact:
// Урок_<grade>_клас_<subject>_<timestamp>.<ext>
func Filename(artifact *models.LessonArtifact, ext string, now time.Time) string {
	subject := strings.ReplaceAll(strings.TrimSpace(artifact.Request.Subject), " ", "_")
	if subject == "" {
		subject = "lesson"
	}
	return fmt.Sprintf("Урок_%d_клас_%s_%s.%s",
		artifact.Request.Grade, subject, now.Format("20060102_150405"), ext)
}

// ToTXT writes the artifact as a plain-text file into dir and returns the
// created path.
func ToTXT(artifact *models.LessonArtifact, dir string) (string, error) {
	return write(artifact, dir, "txt", renderTXT)
}

// ToMarkdown writes the artifact as a Markdown file into dir and returns
// the created path.
func ToMarkdown(artifact *models.LessonArtifact, dir string) (string, error) {
	return write(artifact, dir, "md", renderMarkdown)
}

func write(artifact *models.LessonArtifact, dir, ext string, render func(*models.LessonArtifact) string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}

	now := artifact.GeneratedAt
	if now.IsZero() {
		now = time.Now()
	}
	path := filepath.Join(dir, Filename(artifact, ext, now))
	if err := os.WriteFile(path, []byte(render(artifact)), 0o600); err != nil {
		return "", fmt.Errorf("writing export file: %w", err)
	}
	return path, nil
}

func renderTXT(a *models.LessonArtifact) string {
	var b strings.Builder
	rule := strings.Repeat("=", separatorWidth)
	sub := strings.Repeat("-", separatorWidth)

	fmt.Fprintf(&b, "%s\nПЛАН УРОКУ\nЗгенеровано системою Pedagogue AI\n%s\n\n", rule, rule)

	fmt.Fprintf(&b, "ІНФОРМАЦІЯ ПРО УРОК\n%s\n", sub)
	fmt.Fprintf(&b, "Клас:           %d\n", a.Request.Grade)
	fmt.Fprintf(&b, "Предмет:        %s\n", a.Request.Subject)
	fmt.Fprintf(&b, "Тема:           %s\n", a.Request.Topic)
	fmt.Fprintf(&b, "Тривалість:     %d хвилин\n", a.Request.DurationMinutes)
	fmt.Fprintf(&b, "Дата створення: %s\n\n", a.GeneratedAt.Format("02.01.2006 15:04"))

	fmt.Fprintf(&b, "ОЦІНКА ЯКОСТІ\n%s\n", sub)
	fmt.Fprintf(&b, "Загальна оцінка: %.1f/10\n", a.QualityScore)
	fmt.Fprintf(&b, "Статус:          %s\n\n", statusLabel(a.ReviewStatus))

	for _, section := range componentOrder {
		comp, ok := a.Components[section.name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s\n%s\n", section.title, sub)
		if comp.Status == models.ComponentPresent {
			b.WriteString(strings.TrimSpace(comp.Content))
		} else {
			fmt.Fprintf(&b, "Недоступно: %s", comp.Reason)
		}
		b.WriteString("\n\n")
	}

	if len(a.Suggestions) > 0 {
		b.WriteString("Пропозиції для покращення:\n")
		for i, s := range a.Suggestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s\nКінець плану уроку\nЗгенеровано Pedagogue AI\n%s\n", rule, rule)
	return b.String()
}

func renderMarkdown(a *models.LessonArtifact) string {
	var b strings.Builder

	b.WriteString("# План уроку\n\n")
	b.WriteString("*Згенеровано системою Pedagogue AI*\n\n")

	b.WriteString("## Інформація про урок\n\n")
	fmt.Fprintf(&b, "| Поле | Значення |\n|---|---|\n")
	fmt.Fprintf(&b, "| Клас | %d |\n", a.Request.Grade)
	fmt.Fprintf(&b, "| Предмет | %s |\n", a.Request.Subject)
	fmt.Fprintf(&b, "| Тема | %s |\n", a.Request.Topic)
	fmt.Fprintf(&b, "| Тривалість | %d хвилин |\n", a.Request.DurationMinutes)
	fmt.Fprintf(&b, "| Дата створення | %s |\n\n", a.GeneratedAt.Format("02.01.2006 15:04"))

	b.WriteString("## Оцінка якості\n\n")
	fmt.Fprintf(&b, "**Загальна оцінка:** %.1f/10\n\n", a.QualityScore)
	fmt.Fprintf(&b, "**Статус:** %s\n\n", statusLabel(a.ReviewStatus))

	titles := map[string]string{
		models.ComponentStandards:  "Стандарти НУШ",
		models.ComponentStrategies: "Стратегії навчання",
		models.ComponentContent:    "План уроку",
		models.ComponentReview:     "Рекомендації експерта",
	}
	for _, section := range componentOrder {
		comp, ok := a.Components[section.name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", titles[section.name])
		if comp.Status == models.ComponentPresent {
			b.WriteString(strings.TrimSpace(comp.Content))
		} else {
			fmt.Fprintf(&b, "> Недоступно: %s", comp.Reason)
		}
		b.WriteString("\n\n")
	}

	if len(a.Suggestions) > 0 {
		b.WriteString("## Пропозиції для покращення\n\n")
		for i, s := range a.Suggestions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func statusLabel(status models.ReviewStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return statusLabels[models.ReviewUnknown]
}
