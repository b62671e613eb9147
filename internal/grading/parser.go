package grading

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"vocab-coach/pkg/models"
)

// Тексты по умолчанию при неполном ответе модели.
// На них завязаны пользовательские сообщения, менять нельзя.
const (
	DefaultFeedback   = "No feedback available"
	FallbackFeedback  = "Unable to process assessment. Please try again."
	ParseFailureTag   = "parse_error"
	sectionLabelGroup = `SCORE|FEEDBACK|STRENGTHS|WEAK_AREAS`
)

var (
	scoreRe     = regexp.MustCompile(`(?i)SCORE:\s*(\d+)\s*/\s*100`)
	feedbackRe  = regexp.MustCompile(`(?is)FEEDBACK:\s*(.*?)\s*(?:(?:` + sectionLabelGroup + `):|$)`)
	strengthsRe = regexp.MustCompile(`(?is)STRENGTHS:\s*(.*?)\s*(?:(?:` + sectionLabelGroup + `):|$)`)
	weakAreasRe = regexp.MustCompile(`(?is)WEAK_AREAS:\s*(.*?)\s*(?:(?:` + sectionLabelGroup + `):|$)`)
)

// Parser разбирает свободный текст ответа модели в типизированный результат
type Parser struct {
	logger  *zap.Logger
	extract func(raw string) models.GradedResult
}

// NewParser создает новый парсер ответов оценки
func NewParser(logger *zap.Logger) *Parser {
	p := &Parser{logger: logger}
	p.extract = p.extractResult
	return p
}

// Parse никогда не возвращает ошибку: некорректный ответ модели
// деградирует в результат с значениями по умолчанию, а не роняет конвейер.
func (p *Parser) Parse(raw string) (result models.GradedResult) {
	// Жесткий дефолт, если разбор сам по себе падает
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("паника при разборе ответа оценки", zap.Any("panic", r))
			result = models.GradedResult{
				Score:     0,
				Feedback:  FallbackFeedback,
				Strengths: []string{},
				WeakAreas: []string{ParseFailureTag},
			}
		}
	}()

	return p.extract(raw)
}

// extractResult вытаскивает секции ответа по регулярным выражениям
func (p *Parser) extractResult(raw string) models.GradedResult {
	score := 0
	if m := scoreRe.FindStringSubmatch(raw); m != nil {
		parsed, err := strconv.Atoi(m[1])
		if err == nil {
			score = parsed
		}
	} else {
		// Аномалия разбора: логируем, но не считаем ошибкой
		p.logger.Warn("ответ оценки без секции SCORE", zap.Int("response_length", len(raw)))
	}

	// Балл всегда зажимается в [0,100] независимо от ответа модели
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	feedback := DefaultFeedback
	if m := feedbackRe.FindStringSubmatch(raw); m != nil && strings.TrimSpace(m[1]) != "" {
		feedback = strings.TrimSpace(m[1])
	}

	return models.GradedResult{
		Score:     score,
		Feedback:  feedback,
		Strengths: parseList(raw, strengthsRe),
		WeakAreas: parseList(raw, weakAreasRe),
	}
}

// parseList извлекает секцию и разбивает ее по запятым,
// отбрасывая пустые элементы
func parseList(raw string, re *regexp.Regexp) []string {
	items := []string{}
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return items
	}
	for _, item := range strings.Split(m[1], ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
