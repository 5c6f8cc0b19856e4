package standards

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// ErrNoText reports a document that exists but carries no extractable text.
var ErrNoText = errors.New("document contains no text")

// Extractor turns a document reference into plain text. Failures and
// empty documents surface as errors; the standards capability converts
// them to Missing results so the pipeline degrades instead of aborting.
type Extractor interface {
	Extract(path string) (string, error)
}

// TextExtractor reads plain-text and markdown curriculum documents.
type TextExtractor struct {
	// MaxBytes caps how much of a document is read; 0 means no cap.
	MaxBytes int64
}

// NewTextExtractor creates an Extractor with a 4 MiB read cap.
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{MaxBytes: 4 << 20}
}

// Extract reads the document and returns its text. Binary content and
// empty documents return ErrNoText.
func (e *TextExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: paths come from the managed standards directory
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	if e.MaxBytes > 0 && int64(len(data)) > e.MaxBytes {
		data = data[:e.MaxBytes]
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", ErrNoText
	}
	if !utf8.ValidString(text) {
		return "", fmt.Errorf("extracting text: %w: not valid UTF-8", ErrNoText)
	}
	return text, nil
}
