package bot

import (
	"fmt"
	"strings"

	"vocab-coach/internal/assessment"
	"vocab-coach/internal/stats"
	"vocab-coach/pkg/models"
)

// Messages содержит тексты сообщений бота
type Messages struct{}

// NewMessages создает хранилище текстов сообщений
func NewMessages() *Messages {
	return &Messages{}
}

// Welcome — приветствие для /start
func (m *Messages) Welcome(displayName string) string {
	name := displayName
	if name == "" {
		name = "друг"
	}
	return fmt.Sprintf(`👋 Привет, %s!

Я помогу тебе учить иностранные слова голосом:

📖 /lesson — слова на сегодня
🎤 Запиши голосовое сообщение с ответом на задание — я оценю произношение и грамматику
📊 /stats — твоя статистика
❓ /help — справка

Сначала выбери язык, который хочешь учить 👇`, name)
}

// Help — справка для /help
func (m *Messages) Help() string {
	return `📖 <b>Команды бота</b>

/start — начать заново и выбрать язык
/lesson — словарный урок на сегодня
/stats — средний балл, серия дней и слабые места
/notify_on — включить ежедневные уроки
/notify_off — выключить ежедневные уроки

🎤 Чтобы пройти урок, запиши <b>голосовое сообщение</b> с ответом на задание урока. Я распознаю речь, оценю ответ от 0 до 100 и подскажу, что подтянуть.`
}

// UnknownCommand — ответ на неизвестную команду
func (m *Messages) UnknownCommand() string {
	return "Не знаю такую команду. Посмотри /help 🙂"
}

// ChooseLanguage — подпись к клавиатуре выбора языка
func (m *Messages) ChooseLanguage() string {
	return "Какой язык будем учить?"
}

// LanguageChosen — подтверждение выбора языка
func (m *Messages) LanguageChosen(code string) string {
	return fmt.Sprintf("Отлично! Учим %s. Жми /lesson, чтобы получить первый урок 🚀", models.LanguageName(code))
}

// Lesson форматирует словарный урок
func (m *Messages) Lesson(lesson *models.Lesson) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📖 <b>День %d — %s</b>\n\n", lesson.Day, models.LanguageName(lesson.Language))
	for i, entry := range lesson.Entries {
		fmt.Fprintf(&b, "%d. <b>%s</b> — %s\n", i+1, entry.Word, entry.Translation)
		if entry.Example != "" {
			fmt.Fprintf(&b, "   <i>%s</i>\n", entry.Example)
		}
	}
	fmt.Fprintf(&b, "\n🎤 <b>Задание:</b> %s\n\nЗапиши голосовое сообщение с ответом.", lesson.PracticePrompt)
	return b.String()
}

// Outcome форматирует результат голосовой оценки
func (m *Messages) Outcome(outcome *models.AssessmentOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>Твой балл: %d/100</b>\n\n", scoreEmoji(outcome.Score), outcome.Score)
	if outcome.Transcript != "" {
		fmt.Fprintf(&b, "🗣 <i>%s</i>\n\n", outcome.Transcript)
	}
	fmt.Fprintf(&b, "💬 %s\n", outcome.Feedback)
	if len(outcome.Strengths) > 0 {
		fmt.Fprintf(&b, "\n✅ Сильные стороны: %s\n", strings.Join(outcome.Strengths, ", "))
	}
	if len(outcome.WeakAreas) > 0 {
		fmt.Fprintf(&b, "⚠️ Над чем поработать: %s\n", strings.Join(outcome.WeakAreas, ", "))
	}
	return b.String()
}

// Stats форматирует статистику пользователя
func (m *Messages) Stats(st *assessment.UserStats) string {
	p := st.Profile
	var b strings.Builder
	b.WriteString("📊 <b>Твоя статистика</b>\n\n")
	fmt.Fprintf(&b, "Язык: %s\n", models.LanguageName(p.TargetLanguage))
	fmt.Fprintf(&b, "День урока: %d\n", p.LessonDay)
	fmt.Fprintf(&b, "Оценок всего: %d\n", p.LessonsCompleted)
	fmt.Fprintf(&b, "Средний балл: %.1f\n", p.AverageScore)
	fmt.Fprintf(&b, "Серия дней: %d 🔥\n", p.CurrentStreak)
	if len(st.WeakAreas) > 0 {
		b.WriteString("\n⚠️ Слабые места:\n")
		for i, wa := range st.WeakAreas {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "• %s (%d)\n", wa.Area, wa.Count)
		}
	}
	return b.String()
}

// DailyLesson — текст ежедневного напоминания с уроком
func (m *Messages) DailyLesson(lesson *models.Lesson) string {
	return "🌅 Время учить слова!\n\n" + m.Lesson(lesson)
}

// WeeklySummary форматирует еженедельную сводку
func (m *Messages) WeeklySummary(records []models.AssessmentRecord, weakAreas []stats.WeakAreaCount) string {
	if len(records) == 0 {
		return "📅 За эту неделю не было ни одной голосовой попытки. Начни новую серию с /lesson! 💪"
	}

	scores := make([]int, 0, len(records))
	best := 0
	for _, r := range records {
		scores = append(scores, r.Score)
		if r.Score > best {
			best = r.Score
		}
	}

	var b strings.Builder
	b.WriteString("📅 <b>Итоги недели</b>\n\n")
	fmt.Fprintf(&b, "Попыток: %d\n", len(records))
	fmt.Fprintf(&b, "Средний балл: %.1f\n", stats.Average(scores))
	fmt.Fprintf(&b, "Лучший балл: %d\n", best)
	if len(weakAreas) > 0 {
		b.WriteString("\n⚠️ Чаще всего хромали:\n")
		for i, wa := range weakAreas {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "• %s (%d)\n", wa.Area, wa.Count)
		}
	}
	b.WriteString("\nТак держать! 🚀")
	return b.String()
}

// NoLanguage — просьба выбрать язык перед уроком
func (m *Messages) NoLanguage() string {
	return "Сначала выбери язык через /start 🙂"
}

// Processing — сообщение на время обработки записи
func (m *Messages) Processing() string {
	return "🎧 Слушаю запись, секунду..."
}

func scoreEmoji(score int) string {
	switch {
	case score >= 90:
		return "🏆"
	case score >= 70:
		return "🎉"
	case score >= 50:
		return "👍"
	default:
		return "💪"
	}
}
