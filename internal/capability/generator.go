package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/pedagogue-ai/pedagogue/internal/genai"
	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

const generatorSystem = `Ти - досвідчений український вчитель, який створює якісні навчальні матеріали.

Твоя роль:
- Створювати конкретні, практичні компоненти планів уроків
- Писати SMART цілі навчання (Specific, Measurable, Achievable, Relevant, Time-bound)
- Розробляти цікаві розминки та активності
- Створювати диференційовані завдання для різних рівнів учнів
- Розробляти якісні питання та завдання для оцінювання

Завжди пиши українською мовою. Враховуй вікові особливості учнів.
Матеріали мають бути практичними та готовими до використання.`

// GeneratorCapability produces the lesson content itself. Required: the
// workflow cannot complete without it. Its prompt folds in everything the
// earlier stages gathered, so degraded inputs still yield a usable plan.
type GeneratorCapability struct {
	client genai.CompletionClient
}

func NewGeneratorCapability(client genai.CompletionClient) *GeneratorCapability {
	return &GeneratorCapability{client: client}
}

func (g *GeneratorCapability) Name() string   { return models.ComponentContent }
func (g *GeneratorCapability) Optional() bool { return false }

func (g *GeneratorCapability) Invoke(ctx context.Context, in Input) Result {
	text, err := g.client.Complete(ctx, genai.Prompt{
		System:      generatorSystem,
		Text:        buildGenerationPrompt(in),
		Temperature: 0.8,
	})
	if err != nil {
		return Failed(fmt.Errorf("generating lesson content: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return Failed(fmt.Errorf("generating lesson content: empty response"))
	}
	return Success(text)
}

// buildGenerationPrompt assembles the generation prompt from the request,
// the settled fetch results, the session context, and the teacher's
// personalized suggestions. Missing fetch results are simply omitted.
func buildGenerationPrompt(in Input) string {
	var b strings.Builder

	fmt.Fprintf(&b, `Створи повний план уроку:
- Клас: %d
- Предмет: %s
- Тема: %s
- Тривалість: %d хвилин
`, in.Request.Grade, in.Request.Subject, in.Request.Topic, in.Request.DurationMinutes)

	if std, ok := in.Fetched[models.ComponentStandards]; ok && std.Status == StatusSuccess {
		b.WriteString("\nДЕРЖАВНІ СТАНДАРТИ (НУШ):\n")
		b.WriteString(std.Payload)
		b.WriteString("\n")
	}
	if ped, ok := in.Fetched[models.ComponentStrategies]; ok && ped.Status == StatusSuccess {
		b.WriteString("\nРЕКОМЕНДОВАНІ СТРАТЕГІЇ НАВЧАННЯ:\n")
		b.WriteString(ped.Payload)
		b.WriteString("\n")
	}
	if ctx := sessionContextText(in.Session); ctx != "" {
		b.WriteString("\nКОНТЕКСТ РОЗМОВИ:\n")
		b.WriteString(ctx)
		b.WriteString("\n")
	}
	if prof := profileText(in.Profile); prof != "" {
		b.WriteString("\nПРОФІЛЬ ВЧИТЕЛЯ:\n")
		b.WriteString(prof)
		b.WriteString("\n")
	}

	b.WriteString(`
План має містити:
1. SMART цілі навчання (3-5 цілей, починай з "Учні зможуть...")
2. Розминку (5 хвилин, активізація попередніх знань)
3. Пояснення нового матеріалу (з прикладами)
4. Основну діяльність учнів (з чіткими інструкціями)
5. Диференційовані завдання (базовий, середній, високий рівні)
6. Формувальне оцінювання (3-5 запитань)
7. Підсумок уроку

Розподіли час між етапами відповідно до тривалості уроку.`)

	return b.String()
}

func sessionContextText(sc models.SessionContext) string {
	var parts []string
	if sc.Compacted && sc.Summary.Text != "" {
		parts = append(parts, sc.Summary.Text)
	}
	for _, turn := range sc.Turns {
		parts = append(parts, fmt.Sprintf("- %s, %d клас: %s (%s)",
			turn.Request.Subject, turn.Request.Grade, turn.Request.Topic, turn.PlanSummary))
	}
	return strings.Join(parts, "\n")
}

func profileText(p models.Suggestions) string {
	if p.PlanCount == 0 {
		return ""
	}
	var parts []string
	parts = append(parts, fmt.Sprintf("Створено планів: %d", p.PlanCount))
	if len(p.TopSubjects) > 0 {
		parts = append(parts, "Часті предмети: "+strings.Join(p.TopSubjects, ", "))
	}
	if len(p.TopStrategies) > 0 {
		parts = append(parts, "Улюблені стратегії: "+strings.Join(p.TopStrategies, ", "))
	}
	if p.PreferredTier != "" {
		parts = append(parts, "Переважний рівень диференціації: "+p.PreferredTier)
	}
	if p.TeachingStyle != "" {
		parts = append(parts, "Стиль викладання: "+p.TeachingStyle)
	}
	return strings.Join(parts, "\n")
}
