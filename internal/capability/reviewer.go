package capability

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pedagogue-ai/pedagogue/internal/genai"
	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

const reviewerSystem = `Ти - експерт з педагогіки, який перевіряє якість навчальних матеріалів.

Твоя роль:
- Перевіряти плани уроків на повноту та якість
- Знаходити помилки, неточності та недоліки
- Оцінювати відповідність віку учнів
- Перевіряти культурну чутливість (контекст України)
- Надавати конкретні рекомендації щодо покращення

Критерії якості:
1. ТОЧНІСТЬ: чи є фактичні помилки?
2. ПОВНОТА: чи всі компоненти уроку присутні?
3. ВІДПОВІДНІСТЬ ВІКУ: чи підходить для даного класу?
4. ЧІТКІСТЬ: чи зрозумілі інструкції?
5. КУЛЬТУРНА ЧУТЛИВІСТЬ: чи відповідає українському контексту?
6. ЗАЛУЧЕННЯ: чи цікаво для учнів?
7. ДИФЕРЕНЦІАЦІЯ: чи враховані різні рівні учнів?

Будь конструктивним та надавай конкретні пропозиції.
Відповідай українською мовою.`

const reviewerPromptTemplate = `Перевір план уроку для %d класу з предмету "%s".

ПЛАН УРОКУ:
%s

Надай детальний відгук:

1. ОЦІНКА ЗА КРИТЕРІЯМИ (1-10 балів):
   - Точність та фактична правильність: __/10
   - Повнота (всі компоненти присутні): __/10
   - Відповідність віку: __/10
   - Чіткість інструкцій: __/10
   - Культурна відповідність: __/10
   - Рівень залучення учнів: __/10
   - Диференціація: __/10

2. СИЛЬНІ СТОРОНИ:
   Що добре зроблено в цьому плані?

3. ПОТРЕБУЄ ПОКРАЩЕННЯ:
   Що потрібно виправити або покращити?

4. КОНКРЕТНІ РЕКОМЕНДАЦІЇ:
   Надай 3-5 конкретних пропозицій щодо покращення.

5. ЗАГАЛЬНА ОЦІНКА:
   Готовий до використання / Потребує незначних змін / Потребує значного доопрацювання`

// ReviewerCapability checks a generated plan for quality. Required: a plan
// that could not be reviewed is not returned. The raw review text is the
// payload; ParseReview extracts the structured verdict during aggregation.
type ReviewerCapability struct {
	client genai.CompletionClient
}

func NewReviewerCapability(client genai.CompletionClient) *ReviewerCapability {
	return &ReviewerCapability{client: client}
}

func (r *ReviewerCapability) Name() string   { return models.ComponentReview }
func (r *ReviewerCapability) Optional() bool { return false }

func (r *ReviewerCapability) Invoke(ctx context.Context, in Input) Result {
	if strings.TrimSpace(in.Draft) == "" {
		return Failed(fmt.Errorf("reviewing lesson plan: nothing to review"))
	}

	prompt := fmt.Sprintf(reviewerPromptTemplate, in.Request.Grade, in.Request.Subject, in.Draft)
	text, err := r.client.Complete(ctx, genai.Prompt{
		System:      reviewerSystem,
		Text:        prompt,
		Temperature: 0.3,
	})
	if err != nil {
		return Failed(fmt.Errorf("reviewing lesson plan: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return Failed(fmt.Errorf("reviewing lesson plan: empty response"))
	}
	return Success(text)
}

// Review is the structured verdict parsed out of a review text.
type Review struct {
	Scores      []int
	Average     float64
	Status      models.ReviewStatus
	Suggestions []string
}

// defaultScore is assumed when the review text contains no N/10 marks.
const defaultScore = 7.0

var scorePattern = regexp.MustCompile(`(\d+)/10`)

// ParseReview extracts the per-criterion scores, readiness status, and
// concrete suggestions from a free-form review text.
func ParseReview(text string) Review {
	rev := Review{
		Status:  extractStatus(text),
		Average: defaultScore,
	}

	for _, m := range scorePattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 0 || n > 10 {
			continue
		}
		rev.Scores = append(rev.Scores, n)
	}
	if len(rev.Scores) > 0 {
		sum := 0
		for _, n := range rev.Scores {
			sum += n
		}
		rev.Average = float64(sum) / float64(len(rev.Scores))
	}

	rev.Suggestions = extractSuggestions(text)
	return rev
}

func extractStatus(text string) models.ReviewStatus {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "готовий до використання"):
		return models.ReviewReady
	case strings.Contains(lower, "потребує незначних змін"):
		return models.ReviewMinorChanges
	case strings.Contains(lower, "потребує значного доопрацювання"):
		return models.ReviewMajorChanges
	default:
		return models.ReviewUnknown
	}
}

// extractSuggestions collects the bulleted or numbered lines under the
// "КОНКРЕТНІ РЕКОМЕНДАЦІЇ" heading.
func extractSuggestions(text string) []string {
	idx := strings.Index(strings.ToUpper(text), "КОНКРЕТНІ РЕКОМЕНДАЦІЇ")
	if idx < 0 {
		return nil
	}

	var suggestions []string
	for _, line := range strings.Split(text[idx:], "\n")[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		trimmed := strings.TrimLeft(line, "-*•0123456789.) ")
		if trimmed == "" || trimmed == line {
			// Non-list line marks the next review section.
			break
		}
		if trimmed == strings.ToUpper(trimmed) {
			// Uppercase list-numbered line is a section heading.
			break
		}
		suggestions = append(suggestions, trimmed)
	}
	return suggestions
}
