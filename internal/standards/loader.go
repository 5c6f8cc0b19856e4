// Package standards locates and parses local curriculum documents (НУШ
// programs from the Ministry of Education), feeding the standards-lookup
// capability. The documents live in a local directory; discovery is by
// grade/subject filename conventions.
package standards

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Document is one parsed curriculum document.
type Document struct {
	Filename         string   `yaml:"filename"`
	Grade            int      `yaml:"grade"`
	Subject          string   `yaml:"subject"`
	Competencies     []string `yaml:"competencies,omitempty"`
	LearningOutcomes []string `yaml:"learning_outcomes,omitempty"`
	ContentLines     []string `yaml:"content_lines,omitempty"`
	Text             string   `yaml:"text,omitempty"`
}

// Loader finds and parses curriculum documents for a grade and subject.
// Load honors ctx so a stalled read cannot overrun the caller's budget.
type Loader interface {
	Load(ctx context.Context, grade int, subject string) (*Document, error)
	ListAvailable() ([]string, error)
}

// ErrNotFound is returned when no document matches a grade/subject pair.
// The standards capability converts it to a Missing result.
type ErrNotFound struct {
	Grade   int
	Subject string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("no curriculum document for grade %d subject %q", e.Grade, e.Subject)
}

type fileLoader struct {
	dir       string
	extractor Extractor
}

// NewLoader creates a Loader reading documents from dir using the given
// text extractor.
func NewLoader(dir string, extractor Extractor) Loader {
	return &fileLoader{dir: dir, extractor: extractor}
}

// Load finds the best-matching document for grade and subject, extracts its
// text, and parses the curriculum sections out of it. Cancellation is
// checked between the directory scan and the extraction, the two points
// where filesystem latency accrues.
func (l *fileLoader) Load(ctx context.Context, grade int, subject string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading standards: %w", err)
	}

	path, err := l.findFile(grade, subject)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("loading standards: %w", err)
	}

	text, err := l.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("loading standards from %s: %w", filepath.Base(path), err)
	}

	doc := ParseCurriculum(text)
	doc.Filename = filepath.Base(path)
	doc.Grade = grade
	doc.Subject = subject
	return doc, nil
}

// extractable file extensions, in preference order.
var docExtensions = []string{".txt", ".md"}

func hasDocExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range docExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// findFile picks the document whose name mentions both the grade and the
// subject, falling back to either alone. Filenames follow conventions like
// "математика_5_клас.txt".
func (l *fileLoader) findFile(grade int, subject string) (string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", &ErrNotFound{Grade: grade, Subject: subject}
		}
		return "", fmt.Errorf("reading standards directory: %w", err)
	}

	subjectLower := strings.ToLower(subject)
	gradeStr := strconv.Itoa(grade)

	var bothMatch, subjectMatch, gradeMatch string
	for _, e := range entries {
		if e.IsDir() || !hasDocExtension(e.Name()) {
			continue
		}
		name := strings.ToLower(e.Name())
		hasSubject := strings.Contains(name, subjectLower)
		hasGrade := containsGrade(name, gradeStr)

		switch {
		case hasSubject && hasGrade && bothMatch == "":
			bothMatch = e.Name()
		case hasSubject && subjectMatch == "":
			subjectMatch = e.Name()
		case hasGrade && gradeMatch == "":
			gradeMatch = e.Name()
		}
	}

	for _, name := range []string{bothMatch, subjectMatch, gradeMatch} {
		if name != "" {
			return filepath.Join(l.dir, name), nil
		}
	}
	return "", &ErrNotFound{Grade: grade, Subject: subject}
}

// containsGrade matches the grade number without matching it as a substring
// of a longer number ("1" must not match "11_клас").
func containsGrade(name, gradeStr string) bool {
	for i := 0; i+len(gradeStr) <= len(name); i++ {
		if name[i:i+len(gradeStr)] != gradeStr {
			continue
		}
		beforeOK := i == 0 || !isDigit(name[i-1])
		afterOK := i+len(gradeStr) == len(name) || !isDigit(name[i+len(gradeStr)])
		if beforeOK && afterOK {
			return true
		}
	}
	return false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// ListAvailable returns the names of every document in the standards
// directory, sorted.
func (l *fileLoader) ListAvailable() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing standards directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && hasDocExtension(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// minSectionLineLen filters out headers and page artifacts when parsing
// curriculum sections.
const minSectionLineLen = 20

// ParseCurriculum extracts the curriculum sections from document text by
// the section-keyword conventions of НУШ programs.
func ParseCurriculum(text string) *Document {
	doc := &Document{Text: text}

	seen := make(map[string]bool)
	section := ""
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "компетентност"):
			section = "competencies"
		case strings.Contains(lower, "результат") && strings.Contains(lower, "навчан"):
			section = "outcomes"
		case strings.Contains(lower, "зміст"):
			section = "content"
		}

		if section == "" || len([]rune(line)) < minSectionLineLen || seen[line] {
			continue
		}
		seen[line] = true

		switch section {
		case "competencies":
			doc.Competencies = append(doc.Competencies, line)
		case "outcomes":
			doc.LearningOutcomes = append(doc.LearningOutcomes, line)
		case "content":
			doc.ContentLines = append(doc.ContentLines, line)
		}
	}
	return doc
}

// Summary renders the parsed document as the text block handed to the
// generation prompt and stored in the artifact's standards component.
func (d *Document) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Навчальна програма: %s (клас %d, %s)\n", d.Filename, d.Grade, d.Subject)
	if len(d.Competencies) > 0 {
		b.WriteString("\nКомпетентності:\n")
		for _, c := range firstN(d.Competencies, 5) {
			fmt.Fprintf(&b, "- %s\n", c)
		}
	}
	if len(d.LearningOutcomes) > 0 {
		b.WriteString("\nОчікувані результати навчання:\n")
		for _, o := range firstN(d.LearningOutcomes, 5) {
			fmt.Fprintf(&b, "- %s\n", o)
		}
	}
	return strings.TrimSpace(b.String())
}

func firstN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}

// KeyConcepts returns up to limit concepts for the generation prompt: the
// topic itself followed by the longest competencies.
func (d *Document) KeyConcepts(topic string, limit int) []string {
	concepts := []string{topic}
	for _, c := range d.Competencies {
		if len(concepts) >= limit {
			break
		}
		if len([]rune(c)) > 10 {
			concepts = append(concepts, c)
		}
	}
	return concepts
}
