package catalog

import (
	"errors"
	"fmt"
	"sort"

	"vocab-coach/pkg/models"

	"go.uber.org/zap"
)

// ErrLessonNotFound возвращается, когда пары (язык, день) нет в каталоге
var ErrLessonNotFound = errors.New("урок не найден")

// ErrInvalidContent возвращается, когда урок содержит не ровно 5 слов.
// Это ошибка целостности данных, а не обычный промах.
var ErrInvalidContent = errors.New("некорректное содержимое урока")

// Catalog — статический каталог словарных уроков
type Catalog struct {
	lessons map[string][]models.Lesson // язык -> уроки по дням (индекс = день-1)
	logger  *zap.Logger
}

// New создает каталог с встроенным набором уроков
func New(logger *zap.Logger) *Catalog {
	return &Catalog{
		lessons: builtinLessons,
		logger:  logger,
	}
}

// GetLesson возвращает урок для пары (язык, день).
// Чистый lookup без побочных эффектов.
func (c *Catalog) GetLesson(language string, day int) (*models.Lesson, error) {
	days, ok := c.lessons[language]
	if !ok {
		return nil, fmt.Errorf("язык %s: %w", language, ErrLessonNotFound)
	}
	if day < 1 || day > len(days) {
		return nil, fmt.Errorf("язык %s день %d: %w", language, day, ErrLessonNotFound)
	}

	lesson := days[day-1]

	// Защитная проверка инварианта: урок всегда содержит ровно 5 слов
	if len(lesson.Entries) != models.LessonWordCount {
		c.logger.Error("урок с некорректным количеством слов",
			zap.String("language", language),
			zap.Int("day", day),
			zap.Int("entries", len(lesson.Entries)))
		return nil, fmt.Errorf("язык %s день %d содержит %d слов вместо %d: %w",
			language, day, len(lesson.Entries), models.LessonWordCount, ErrInvalidContent)
	}

	return &lesson, nil
}

// Days возвращает количество доступных дней для языка
func (c *Catalog) Days(language string) int {
	return len(c.lessons[language])
}

// Languages возвращает языки, для которых есть уроки.
// Список отсортирован, чтобы клавиатура выбора была стабильной.
func (c *Catalog) Languages() []string {
	langs := make([]string, 0, len(c.lessons))
	for lang := range c.lessons {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
