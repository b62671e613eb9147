package grading

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"vocab-coach/internal/ai"
	"vocab-coach/internal/retry"
	"vocab-coach/pkg/models"
)

// Client оценивает транскрипт ответа ученика через AI провайдера.
// Возвращает сырой текст ответа модели без разбора.
type Client struct {
	aiClient    ai.AIClient
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// NewClient создает новый клиент оценки
func NewClient(aiClient ai.AIClient, maxTokens int, temperature float64, logger *zap.Logger) *Client {
	return &Client{
		aiClient:    aiClient,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// Grade строит промпт с рубрикой и запрашивает оценку у AI.
// Вызов повторяется один раз через секунду при любой ошибке провайдера.
func (c *Client) Grade(ctx context.Context, transcript, targetLanguage, nativeLanguage string, lessonWords []models.VocabularyEntry, expectedAnswer string) (string, error) {
	prompt := BuildPrompt(transcript, targetLanguage, nativeLanguage, lessonWords, expectedAnswer)

	var raw string
	err := retry.Do(ctx, retry.RemoteCall, c.logger, "grade_transcript", func(ctx context.Context) error {
		resp, err := c.aiClient.GenerateResponse(ctx, []ai.Message{
			{Role: "user", Content: prompt},
		}, ai.GenerationOptions{
			Temperature: c.temperature,
			MaxTokens:   c.maxTokens,
		})
		if err != nil {
			return err
		}
		raw = resp.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ошибка оценки транскрипта: %w", err)
	}

	c.logger.Info("получена оценка от AI",
		zap.String("provider", c.aiClient.GetName()),
		zap.String("target_language", targetLanguage),
		zap.Int("transcript_length", len(transcript)),
		zap.Int("response_length", len(raw)))

	return raw, nil
}

// BuildPrompt строит фиксированный промпт оценки.
// Рубрика: произношение 25, грамматика 25, словарь 20, беглость 20,
// понимание 10 — в сумме 100 баллов.
func BuildPrompt(transcript, targetLanguage, nativeLanguage string, lessonWords []models.VocabularyEntry, expectedAnswer string) string {
	words := make([]string, 0, len(lessonWords))
	for _, entry := range lessonWords {
		words = append(words, entry.Word)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are a language tutor assessing a %s-speaking student learning %s.\n\n",
		languageNameEn(nativeLanguage), languageNameEn(targetLanguage))
	fmt.Fprintf(&b, "The student recorded a spoken answer. Transcript:\n%s\n\n", transcript)
	fmt.Fprintf(&b, "Today's lesson words: %s\n", strings.Join(words, ", "))
	fmt.Fprintf(&b, "Expected answer: %s\n\n", expectedAnswer)
	b.WriteString("Grade the answer out of 100 points using this rubric:\n")
	b.WriteString("- Pronunciation (inferred from transcript quality): 25 points\n")
	b.WriteString("- Grammar: 25 points\n")
	b.WriteString("- Vocabulary usage: 20 points\n")
	b.WriteString("- Fluency: 20 points\n")
	b.WriteString("- Comprehension of the task: 10 points\n\n")
	b.WriteString("Respond with exactly four labeled lines:\n")
	b.WriteString("SCORE: <number>/100\n")
	b.WriteString("FEEDBACK: <one or two encouraging sentences>\n")
	b.WriteString("STRENGTHS: <comma-separated list>\n")
	b.WriteString("WEAK_AREAS: <comma-separated list>\n")

	return b.String()
}

// languageNameEn возвращает английское название языка для промпта
func languageNameEn(code string) string {
	switch code {
	case "en":
		return "English"
	case "es":
		return "Spanish"
	case "fr":
		return "French"
	case "de":
		return "German"
	case "it":
		return "Italian"
	case "pt":
		return "Portuguese"
	case "ru":
		return "Russian"
	default:
		return code
	}
}
