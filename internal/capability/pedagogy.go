package capability

import (
	"context"
	"fmt"
	"strings"

	"github.com/pedagogue-ai/pedagogue/internal/genai"
	"github.com/pedagogue-ai/pedagogue/pkg/models"
)

const pedagogySystem = `Ти - експерт з навчальних наук (Learning Science) та доказової педагогіки.

Твої знання включають:

1. ТАКСОНОМІЯ БЛУМА (Bloom's Taxonomy):
   - Пам'ять: запам'ятовування фактів
   - Розуміння: пояснення ідей
   - Застосування: використання знань
   - Аналіз: розбиття на частини
   - Синтез: створення нового
   - Оцінювання: формування суджень

2. ІНТЕРВАЛЬНЕ ПОВТОРЕННЯ (Spaced Repetition):
   - Розподіл повторень у часі покращує довготривалу пам'ять
   - Оптимальні інтервали: 1 день, 3 дні, 7 днів, 14 днів

3. КОГНІТИВНЕ НАВАНТАЖЕННЯ (Cognitive Load Theory):
   - Внутрішнє: складність самого матеріалу
   - Зовнішнє: спосіб подачі інформації
   - Germane: побудова схем та розуміння
   - Рекомендації: зменшувати зовнішнє, підтримувати germane

4. ПРАКТИКА ВІДТВОРЕННЯ (Retrieval Practice):
   - Активне згадування покращує запам'ятовування
   - Тестування як метод навчання
   - Формувальне оцінювання

5. SCAFFOLDING (Підтримка):
   - Поступове зменшення допомоги
   - Зона найближчого розвитку (Виготський)
   - Диференціація за рівнями

6. МЕТОДИ ЗАЛУЧЕННЯ:
   - Think-Pair-Share
   - Jigsaw
   - Gamification
   - Проблемне навчання
   - Проєктне навчання

Надавай конкретні стратегії, адаптовані до віку учнів.
Відповідай українською мовою.`

const pedagogyPromptTemplate = `Запропонуй доказові стратегії навчання для уроку:
- Клас: %d
- Предмет: %s
- Тема: %s
- Тривалість: %d хвилин

Надай рекомендації щодо:
1. Рівень за таксономією Блума (відповідно до віку)
2. Стратегії залучення учнів
3. Методи зменшення когнітивного навантаження
4. Практика відтворення (формувальне оцінювання)
5. Scaffolding для різних рівнів учнів
6. План інтервального повторення теми`

// PedagogyCapability asks the completion service for evidence-based
// learning strategies matching the lesson. Optional: a failed suggestion
// degrades the plan, the lesson content is still generated.
type PedagogyCapability struct {
	client genai.CompletionClient
}

func NewPedagogyCapability(client genai.CompletionClient) *PedagogyCapability {
	return &PedagogyCapability{client: client}
}

func (p *PedagogyCapability) Name() string   { return models.ComponentStrategies }
func (p *PedagogyCapability) Optional() bool { return true }

func (p *PedagogyCapability) Invoke(ctx context.Context, in Input) Result {
	prompt := fmt.Sprintf(pedagogyPromptTemplate,
		in.Request.Grade, in.Request.Subject, in.Request.Topic, in.Request.DurationMinutes)

	text, err := p.client.Complete(ctx, genai.Prompt{
		System:      pedagogySystem,
		Text:        prompt,
		Temperature: 0.7,
	})
	if err != nil {
		return Failed(fmt.Errorf("suggesting learning strategies: %w", err))
	}
	if strings.TrimSpace(text) == "" {
		return Missing("empty strategy response")
	}
	return Success(text)
}

// bloomLevels ordered from lowest to highest.
var bloomLevels = []string{"пам'ять", "розуміння", "застосування", "аналіз", "синтез", "оцінювання"}

// ExtractBloomLevel pulls the primary Bloom's taxonomy level mentioned in
// a strategies text, defaulting to "розуміння".
func ExtractBloomLevel(text string) string {
	lower := strings.ToLower(text)
	for _, level := range bloomLevels {
		if strings.Contains(lower, level) {
			return level
		}
	}
	return "розуміння"
}

var engagementMethods = []string{"Think-Pair-Share", "Jigsaw", "гейміфікація", "проблемне навчання", "проєктне навчання"}

// ExtractEngagementMethods lists the known engagement methods mentioned in
// a strategies text. Used to build the teacher's memory observation.
func ExtractEngagementMethods(text string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, method := range engagementMethods {
		if strings.Contains(lower, strings.ToLower(method)) {
			found = append(found, method)
		}
	}
	return found
}
