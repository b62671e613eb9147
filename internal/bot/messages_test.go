package bot

import (
	"strings"
	"testing"
	"time"

	"vocab-coach/internal/assessment"
	"vocab-coach/internal/stats"
	"vocab-coach/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestLessonMessage(t *testing.T) {
	m := NewMessages()
	lesson := &models.Lesson{
		Language: "en",
		Day:      2,
		Entries: []models.VocabularyEntry{
			{Word: "water", Translation: "вода", Example: "Can I have some water?"},
			{Word: "bread", Translation: "хлеб"},
		},
		PracticePrompt: "Order a drink at a cafe.",
	}

	text := m.Lesson(lesson)
	assert.Contains(t, text, "День 2")
	assert.Contains(t, text, "<b>water</b> — вода")
	assert.Contains(t, text, "Can I have some water?")
	assert.Contains(t, text, "Order a drink at a cafe.")
}

func TestOutcomeMessage(t *testing.T) {
	m := NewMessages()
	text := m.Outcome(&models.AssessmentOutcome{
		Score:      85,
		Transcript: "hola como estas",
		Feedback:   "Good pronunciation overall.",
		Strengths:  []string{"clear vowels"},
		WeakAreas:  []string{"rolled r"},
	})

	assert.Contains(t, text, "85/100")
	assert.Contains(t, text, "hola como estas")
	assert.Contains(t, text, "Good pronunciation overall.")
	assert.Contains(t, text, "clear vowels")
	assert.Contains(t, text, "rolled r")
}

func TestOutcomeMessageWithoutLists(t *testing.T) {
	m := NewMessages()
	text := m.Outcome(&models.AssessmentOutcome{
		Score:    40,
		Feedback: "No feedback available",
	})

	assert.Contains(t, text, "40/100")
	assert.NotContains(t, text, "Сильные стороны")
	assert.NotContains(t, text, "Над чем поработать")
}

func TestStatsMessage(t *testing.T) {
	m := NewMessages()
	text := m.Stats(&assessment.UserStats{
		Profile: &models.UserProfile{
			TargetLanguage:   "es",
			LessonDay:        4,
			LessonsCompleted: 12,
			AverageScore:     76.6,
			CurrentStreak:    5,
		},
		WeakAreas: []stats.WeakAreaCount{
			{Area: "rolled r", Count: 3},
			{Area: "verb endings", Count: 2},
		},
	})

	assert.Contains(t, text, "испанский")
	assert.Contains(t, text, "76.6")
	assert.Contains(t, text, "Серия дней: 5")
	assert.Contains(t, text, "rolled r (3)")
}

func TestWeeklySummary(t *testing.T) {
	m := NewMessages()
	records := []models.AssessmentRecord{
		{Score: 80, WeakAreas: []string{"articles"}},
		{Score: 90, WeakAreas: []string{"articles", "tenses"}},
	}
	text := m.WeeklySummary(records, stats.AggregateWeakAreas(records))

	assert.Contains(t, text, "Попыток: 2")
	assert.Contains(t, text, "85.0")
	assert.Contains(t, text, "Лучший балл: 90")
	assert.Contains(t, text, "articles (2)")
}

func TestWeeklySummaryEmpty(t *testing.T) {
	m := NewMessages()
	text := m.WeeklySummary(nil, nil)
	assert.True(t, strings.Contains(text, "не было"))
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter()

	for i := 0; i < MaxRequestsPerMinute; i++ {
		if !rl.IsAllowed(1) {
			t.Fatalf("запрос %d должен быть разрешен", i)
		}
	}
	assert.False(t, rl.IsAllowed(1), "запрос сверх лимита должен быть отклонен")
	assert.True(t, rl.IsAllowed(2), "лимит считается по пользователям отдельно")
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter()
	old := time.Now().Add(-2 * RateLimitWindow)
	for i := 0; i < MaxRequestsPerMinute; i++ {
		rl.requests[1] = append(rl.requests[1], old)
	}

	assert.True(t, rl.IsAllowed(1), "старые запросы вне окна не учитываются")
}

func TestSanitizeName(t *testing.T) {
	assert.Equal(t, "Anna", sanitizeName("  Anna  "))
	long := strings.Repeat("a", 100)
	assert.Len(t, sanitizeName(long), MaxNameLength)
}
