package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

// parserSystem instructs the completion service to act as the request
// interpreter for Ukrainian teachers.
const parserSystem = `Ти - головний координатор системи підтримки вчителів "Pedagogue AI".
Аналізуй запити українських вчителів та визначай параметри для генерації плану уроку.
Завжди відповідай українською мовою.`

const parserPromptTemplate = `Проаналізуй запит українського вчителя та визнач параметри для генерації плану уроку.

ЗАПИТ ВЧИТЕЛЯ: %s

Визнач та надай у форматі JSON:
{
    "grade": <номер класу 1-11>,
    "subject": "<назва предмету українською>",
    "topic": "<тема уроку>",
    "duration": <тривалість в хвилинах, за замовчуванням 45>
}

Якщо якась інформація відсутня, використовуй null.`

// RequestParser turns a natural-language teacher request into a
// LessonRequest ready for validation. It is the translation step the
// command surface performs before the workflow's PARSING stage.
type RequestParser struct {
	client CompletionClient
}

// NewRequestParser creates a RequestParser on top of the given client.
func NewRequestParser(client CompletionClient) *RequestParser {
	return &RequestParser{client: client}
}

// parsedParams mirrors the JSON shape the parser prompt asks for. Pointer
// fields distinguish "absent" from zero values.
type parsedParams struct {
	Grade    *int    `json:"grade"`
	Subject  *string `json:"subject"`
	Topic    *string `json:"topic"`
	Duration *int    `json:"duration"`
}

// Parse interprets a free-form request. Missing grade/subject/topic yield
// an error listing the absent fields so the surface can ask the teacher to
// restate the request.
func (p *RequestParser) Parse(ctx context.Context, request string) (models.LessonRequest, error) {
	var req models.LessonRequest
	if strings.TrimSpace(request) == "" {
		return req, fmt.Errorf("parsing request: request text is empty")
	}

	text, err := p.client.Complete(ctx, Prompt{
		System:      parserSystem,
		Text:        fmt.Sprintf(parserPromptTemplate, request),
		Temperature: 0.2,
		JSONOutput:  true,
	})
	if err != nil {
		return req, fmt.Errorf("parsing request: %w", err)
	}

	params, err := decodeParams(text)
	if err != nil {
		return req, fmt.Errorf("parsing request: %w", err)
	}

	var missing []string
	if params.Grade == nil {
		missing = append(missing, "grade")
	}
	if params.Subject == nil || strings.TrimSpace(*params.Subject) == "" {
		missing = append(missing, "subject")
	}
	if params.Topic == nil || strings.TrimSpace(*params.Topic) == "" {
		missing = append(missing, "topic")
	}
	if len(missing) > 0 {
		return req, fmt.Errorf("parsing request: missing fields: %s", strings.Join(missing, ", "))
	}

	req.Grade = *params.Grade
	req.Subject = strings.TrimSpace(*params.Subject)
	req.Topic = strings.TrimSpace(*params.Topic)
	req.DurationMinutes = models.DefaultDurationMinutes
	if params.Duration != nil && *params.Duration > 0 {
		req.DurationMinutes = *params.Duration
	}
	return req, nil
}

// decodeParams tolerates the service wrapping its JSON in a code fence or
// returning a single-element array instead of an object.
func decodeParams(text string) (parsedParams, error) {
	var params parsedParams

	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	if strings.HasPrefix(cleaned, "[") {
		var list []parsedParams
		if err := json.Unmarshal([]byte(cleaned), &list); err != nil {
			return params, fmt.Errorf("decoding parameters: %w", err)
		}
		if len(list) == 0 {
			return params, fmt.Errorf("decoding parameters: empty result")
		}
		return list[0], nil
	}

	if err := json.Unmarshal([]byte(cleaned), &params); err != nil {
		return params, fmt.Errorf("decoding parameters: %w", err)
	}
	return params, nil
}
