package genai

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubClient struct {
	text string
	err  error
}

func (s *stubClient) Complete(ctx context.Context, prompt Prompt) (string, error) {
	return s.text, s.err
}

func TestParseCompleteRequest(t *testing.T) {
	parser := NewRequestParser(&stubClient{
		text: `{"grade": 5, "subject": "Математика", "topic": "Дроби", "duration": 45}`,
	})

	req, err := parser.Parse(context.Background(), "Потрібен урок математики про дроби для 5 класу")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if req.Grade != 5 || req.Subject != "Математика" || req.Topic != "Дроби" || req.DurationMinutes != 45 {
		t.Fatalf("parsed request = %+v", req)
	}
}

func TestParseDefaultsDuration(t *testing.T) {
	parser := NewRequestParser(&stubClient{
		text: `{"grade": 7, "subject": "Історія", "topic": "Козаччина", "duration": null}`,
	})

	req, err := parser.Parse(context.Background(), "урок історії про козаччину, 7 клас")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if req.DurationMinutes != 45 {
		t.Fatalf("duration = %d, want default 45", req.DurationMinutes)
	}
}

func TestParseReportsMissingFields(t *testing.T) {
	parser := NewRequestParser(&stubClient{
		text: `{"grade": null, "subject": "Математика", "topic": null, "duration": 45}`,
	})

	_, err := parser.Parse(context.Background(), "зроби щось з математики")
	if err == nil {
		t.Fatalf("incomplete request accepted")
	}
	msg := err.Error()
	if !strings.Contains(msg, "grade") || !strings.Contains(msg, "topic") {
		t.Fatalf("missing fields not listed: %q", msg)
	}
	if strings.Contains(msg, "subject") {
		t.Fatalf("present field reported missing: %q", msg)
	}
}

func TestParseToleratesCodeFence(t *testing.T) {
	parser := NewRequestParser(&stubClient{
		text: "```json\n{\"grade\": 9, \"subject\": \"Біологія\", \"topic\": \"Клітина\"}\n```",
	})

	req, err := parser.Parse(context.Background(), "урок біології про клітину для 9 класу")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if req.Grade != 9 || req.Topic != "Клітина" {
		t.Fatalf("parsed request = %+v", req)
	}
}

func TestParseToleratesSingleElementArray(t *testing.T) {
	parser := NewRequestParser(&stubClient{
		text: `[{"grade": 3, "subject": "Читання", "topic": "Казки"}]`,
	})

	req, err := parser.Parse(context.Background(), "урок читання, казки, 3 клас")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if req.Grade != 3 || req.Subject != "Читання" {
		t.Fatalf("parsed request = %+v", req)
	}
}

func TestParseEmptyRequestRejected(t *testing.T) {
	parser := NewRequestParser(&stubClient{text: "{}"})
	if _, err := parser.Parse(context.Background(), "   "); err == nil {
		t.Fatalf("empty request accepted")
	}
}

func TestParsePropagatesClientError(t *testing.T) {
	parser := NewRequestParser(&stubClient{err: errors.New("service down")})
	if _, err := parser.Parse(context.Background(), "урок"); err == nil {
		t.Fatalf("client error swallowed")
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	parser := NewRequestParser(&stubClient{text: "на жаль, не можу розпарсити"})
	if _, err := parser.Parse(context.Background(), "урок"); err == nil {
		t.Fatalf("malformed response accepted")
	}
}
