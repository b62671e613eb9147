package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserProfileValidate(t *testing.T) {
	valid := UserProfile{
		Identity:         "user-1",
		TargetLanguage:   "en",
		LessonDay:        1,
		AverageScore:     50,
		NotificationHour: 9,
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*UserProfile)
	}{
		{"пустой identity", func(p *UserProfile) { p.Identity = " " }},
		{"неизвестный язык", func(p *UserProfile) { p.TargetLanguage = "xx" }},
		{"нулевой день урока", func(p *UserProfile) { p.LessonDay = 0 }},
		{"средний балл выше 100", func(p *UserProfile) { p.AverageScore = 101 }},
		{"отрицательный streak", func(p *UserProfile) { p.CurrentStreak = -1 }},
		{"час уведомлений 24", func(p *UserProfile) { p.NotificationHour = 24 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestUserProfileValidateEmptyLanguage(t *testing.T) {
	// Язык до выбора пустой, это допустимо
	p := UserProfile{Identity: "user-1", LessonDay: 1, NotificationHour: 9}
	assert.NoError(t, p.Validate())
}

func TestAssessmentRecordValidate(t *testing.T) {
	valid := AssessmentRecord{
		Identity:       "user-1",
		LessonDay:      2,
		TargetLanguage: "es",
		Score:          85,
	}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.Score = 101
	assert.Error(t, bad.Validate())

	bad = valid
	bad.TargetLanguage = ""
	assert.Error(t, bad.Validate())
}

func TestIsValidLanguage(t *testing.T) {
	for _, code := range SupportedLanguages {
		assert.True(t, IsValidLanguage(code), code)
	}
	assert.False(t, IsValidLanguage("xx"))
	assert.False(t, IsValidLanguage(""))
	assert.False(t, IsValidLanguage("EN"))
}

func TestLessonWords(t *testing.T) {
	lesson := Lesson{Entries: []VocabularyEntry{
		{Word: "hola"}, {Word: "adiós"},
	}}
	assert.Equal(t, []string{"hola", "adiós"}, lesson.Words())
}

func TestPipelineError(t *testing.T) {
	inner := errors.New("connection refused")
	perr := NewPipelineError(ErrorStoreUnavailable, StagePersist, "Попробуйте позже.", inner)

	assert.ErrorIs(t, perr, inner)
	assert.Contains(t, perr.Error(), "store_unavailable")
	assert.Contains(t, perr.Error(), StagePersist)

	// Без вложенной ошибки в тексте остается сообщение
	perr = NewPipelineError(ErrorInvalidInput, StageValidate, "Пустой запрос.", nil)
	assert.Contains(t, perr.Error(), "Пустой запрос.")
}

func TestUserFieldUpdateIsEmpty(t *testing.T) {
	empty := &UserFieldUpdate{}
	assert.True(t, empty.IsEmpty())

	day := 3
	assert.False(t, (&UserFieldUpdate{LessonDay: &day}).IsEmpty())
}
