package grading

import (
	"testing"

	"vocab-coach/pkg/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestParseWellFormedResponse(t *testing.T) {
	p := NewParser(zap.NewNop())

	raw := "SCORE: 85/100\nFEEDBACK: Great job!\nSTRENGTHS: clarity, pace\nWEAK_AREAS: grammar"
	result := p.Parse(raw)

	assert.Equal(t, 85, result.Score)
	assert.Equal(t, "Great job!", result.Feedback)
	assert.Equal(t, []string{"clarity", "pace"}, result.Strengths)
	assert.Equal(t, []string{"grammar"}, result.WeakAreas)
}

func TestParseScoreVariants(t *testing.T) {
	p := NewParser(zap.NewNop())

	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{"нижний регистр", "score: 70/100", 70},
		{"пробелы вокруг дроби", "SCORE: 42 / 100", 42},
		{"балл выше ста зажимается", "SCORE: 100/100 extra", 100},
		{"нулевой балл", "SCORE: 0/100", 0},
		{"секция отсутствует", "the model rambled instead", 0},
		{"число без /100 игнорируется", "SCORE: 88", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := p.Parse(tt.raw)
			assert.Equal(t, tt.expected, result.Score)
		})
	}
}

func TestParseMissingSections(t *testing.T) {
	p := NewParser(zap.NewNop())

	result := p.Parse("SCORE: 50/100")

	assert.Equal(t, 50, result.Score)
	assert.Equal(t, DefaultFeedback, result.Feedback)
	assert.Empty(t, result.Strengths)
	assert.Empty(t, result.WeakAreas)
}

func TestParseListTrimsAndDropsEmpty(t *testing.T) {
	p := NewParser(zap.NewNop())

	raw := "SCORE: 60/100\nFEEDBACK: ok\nSTRENGTHS:  vocabulary ,  , confidence,\nWEAK_AREAS: ,"
	result := p.Parse(raw)

	assert.Equal(t, []string{"vocabulary", "confidence"}, result.Strengths)
	assert.Empty(t, result.WeakAreas)
}

func TestParseFeedbackStopsAtNextSection(t *testing.T) {
	p := NewParser(zap.NewNop())

	raw := "FEEDBACK: Nice work on the vocabulary.\nSTRENGTHS: effort\nSCORE: 77/100"
	result := p.Parse(raw)

	assert.Equal(t, "Nice work on the vocabulary.", result.Feedback)
	assert.Equal(t, []string{"effort"}, result.Strengths)
	assert.Equal(t, 77, result.Score)
}

func TestParseMultilineFeedback(t *testing.T) {
	p := NewParser(zap.NewNop())

	raw := "SCORE: 90/100\nFEEDBACK: Excellent answer.\nKeep practicing daily.\nSTRENGTHS: fluency"
	result := p.Parse(raw)

	assert.Equal(t, "Excellent answer.\nKeep practicing daily.", result.Feedback)
}

func TestParseIsIdempotent(t *testing.T) {
	p := NewParser(zap.NewNop())

	raw := "SCORE: 85/100\nFEEDBACK: Great job!\nSTRENGTHS: clarity, pace\nWEAK_AREAS: grammar"
	first := p.Parse(raw)
	second := p.Parse(raw)

	assert.Equal(t, first, second)
}

func TestParseEmptyInput(t *testing.T) {
	p := NewParser(zap.NewNop())

	result := p.Parse("")

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, DefaultFeedback, result.Feedback)
	assert.Empty(t, result.Strengths)
	assert.Empty(t, result.WeakAreas)
}

func TestParseRecoversFromPanic(t *testing.T) {
	p := NewParser(zap.NewNop())
	p.extract = func(raw string) models.GradedResult {
		panic("разбор упал")
	}

	// Паника внутри разбора гасится и деградирует в жесткий дефолт
	result := p.Parse("SCORE: 85/100")

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, FallbackFeedback, result.Feedback)
	assert.Equal(t, []string{}, result.Strengths)
	assert.Equal(t, []string{ParseFailureTag}, result.WeakAreas)
}
