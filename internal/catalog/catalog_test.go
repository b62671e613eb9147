package catalog

import (
	"errors"
	"testing"

	"vocab-coach/pkg/models"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestGetLesson(t *testing.T) {
	c := New(zap.NewNop())

	lesson, err := c.GetLesson("en", 1)
	assert.NoError(t, err)
	assert.NotNil(t, lesson)
	assert.Equal(t, "en", lesson.Language)
	assert.Equal(t, 1, lesson.Day)
	assert.Len(t, lesson.Entries, models.LessonWordCount)
	assert.NotEmpty(t, lesson.PracticePrompt)
}

func TestLanguagesSorted(t *testing.T) {
	c := New(zap.NewNop())

	// Порядок стабилен между вызовами, иначе клавиатура выбора прыгает
	assert.Equal(t, []string{"en", "es", "fr"}, c.Languages())
	assert.Equal(t, c.Languages(), c.Languages())
}

func TestGetLessonAllDaysHaveFiveEntries(t *testing.T) {
	c := New(zap.NewNop())

	for _, lang := range c.Languages() {
		for day := 1; day <= c.Days(lang); day++ {
			lesson, err := c.GetLesson(lang, day)
			assert.NoError(t, err, "язык %s день %d", lang, day)
			assert.Len(t, lesson.Entries, models.LessonWordCount, "язык %s день %d", lang, day)
		}
	}
}

func TestGetLessonNotFound(t *testing.T) {
	c := New(zap.NewNop())

	tests := []struct {
		name     string
		language string
		day      int
	}{
		{"неизвестный язык", "ja", 1},
		{"день за пределами плана", "en", 9999},
		{"нулевой день", "en", 0},
		{"отрицательный день", "en", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.GetLesson(tt.language, tt.day)
			assert.True(t, errors.Is(err, ErrLessonNotFound))
		})
	}
}

func TestGetLessonInvalidContent(t *testing.T) {
	// Каталог с испорченным уроком: 3 слова вместо 5
	c := &Catalog{
		lessons: map[string][]models.Lesson{
			"en": {
				{
					Language: "en",
					Day:      1,
					Entries: []models.VocabularyEntry{
						{Word: "a"}, {Word: "b"}, {Word: "c"},
					},
				},
			},
		},
		logger: zap.NewNop(),
	}

	_, err := c.GetLesson("en", 1)
	assert.True(t, errors.Is(err, ErrInvalidContent))
	assert.False(t, errors.Is(err, ErrLessonNotFound))
}

func TestLessonWords(t *testing.T) {
	c := New(zap.NewNop())

	lesson, err := c.GetLesson("en", 1)
	assert.NoError(t, err)

	words := lesson.Words()
	assert.Len(t, words, models.LessonWordCount)
	assert.Equal(t, "morning", words[0])
}
