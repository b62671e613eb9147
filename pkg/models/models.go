package models

import (
	"fmt"
	"strings"
	"time"
)

// UserProfile представляет профиль ученика в системе
type UserProfile struct {
	Identity             string    `json:"identity" db:"identity"`                           // стабильный внешний идентификатор
	DisplayName          string    `json:"display_name" db:"display_name"`                   // отображаемое имя
	TargetLanguage       string    `json:"target_language" db:"target_language"`             // изучаемый язык
	NativeLanguage       string    `json:"native_language" db:"native_language"`             // родной язык
	LessonDay            int       `json:"lesson_day" db:"lesson_day"`                       // текущий день урока, >= 1
	LessonsCompleted     int       `json:"lessons_completed" db:"lessons_completed"`         // всего завершенных уроков
	AverageScore         float64   `json:"average_score" db:"average_score"`                 // средний балл 0-100, всегда пересчитывается из журнала
	CurrentStreak        int       `json:"current_streak" db:"current_streak"`               // дни подряд с оценками
	NotificationsEnabled bool      `json:"notifications_enabled" db:"notifications_enabled"` // включены ли ежедневные уроки
	NotificationHour     int       `json:"notification_hour" db:"notification_hour"`         // предпочтительный час уведомлений (0-23)
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// AssessmentRecord представляет одну оцененную голосовую попытку (append-only, неизменяемая)
type AssessmentRecord struct {
	ID             string    `json:"id" db:"id"` // uuid, назначается хранилищем
	Identity       string    `json:"identity" db:"identity"`
	LessonDay      int       `json:"lesson_day" db:"lesson_day"`
	TargetLanguage string    `json:"target_language" db:"target_language"`
	Score          int       `json:"score" db:"score"` // 0-100 включительно
	Transcript     string    `json:"transcript" db:"transcript"`
	ExpectedAnswer string    `json:"expected_answer" db:"expected_answer"`
	Feedback       string    `json:"feedback" db:"feedback"`
	Strengths      []string  `json:"strengths" db:"strengths"`
	WeakAreas      []string  `json:"weak_areas" db:"weak_areas"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// VocabularyEntry представляет одно словарное слово урока
type VocabularyEntry struct {
	Word        string `json:"word"`
	Translation string `json:"translation"`
	Example     string `json:"example"`
}

// Lesson представляет словарный урок на один день
type Lesson struct {
	Language       string            `json:"language"`
	Day            int               `json:"day"`
	Entries        []VocabularyEntry `json:"entries"` // всегда ровно LessonWordCount слов
	PracticePrompt string            `json:"practice_prompt"`
}

// LessonWordCount — обязательное количество слов в уроке
const LessonWordCount = 5

// Words возвращает список слов урока
func (l *Lesson) Words() []string {
	words := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		words = append(words, e.Word)
	}
	return words
}

// GradedResult представляет разобранный результат оценки (не персистится отдельно)
type GradedResult struct {
	Score     int      `json:"score"` // 0-100
	Feedback  string   `json:"feedback"`
	Strengths []string `json:"strengths"`
	WeakAreas []string `json:"weak_areas"`
}

// AssessVoiceInput представляет входные данные конвейера оценки
type AssessVoiceInput struct {
	Identity       string            `json:"identity"`
	LessonDay      int               `json:"lesson_day"`
	TargetLanguage string            `json:"target_language"`
	NativeLanguage string            `json:"native_language,omitempty"` // по умолчанию DefaultNativeLanguage
	Audio          []byte            `json:"-"`
	LessonWords    []VocabularyEntry `json:"lesson_words"`
	ExpectedAnswer string            `json:"expected_answer"`
}

// AssessmentOutcome представляет успешный результат конвейера оценки
type AssessmentOutcome struct {
	AssessmentID string   `json:"assessment_id"`
	Score        int      `json:"score"`
	Transcript   string   `json:"transcript"`
	Feedback     string   `json:"feedback"`
	Strengths    []string `json:"strengths"`
	WeakAreas    []string `json:"weak_areas"`
}

// UserFieldUpdate представляет частичное обновление профиля (применяются только переданные поля)
type UserFieldUpdate struct {
	DisplayName          *string  `json:"display_name,omitempty"`
	TargetLanguage       *string  `json:"target_language,omitempty"`
	LessonDay            *int     `json:"lesson_day,omitempty"`
	LessonsCompleted     *int     `json:"lessons_completed,omitempty"`
	AverageScore         *float64 `json:"average_score,omitempty"`
	CurrentStreak        *int     `json:"current_streak,omitempty"`
	NotificationsEnabled *bool    `json:"notifications_enabled,omitempty"`
	NotificationHour     *int     `json:"notification_hour,omitempty"`
}

// IsEmpty сообщает, содержит ли обновление хотя бы одно поле
func (u *UserFieldUpdate) IsEmpty() bool {
	return u.DisplayName == nil && u.TargetLanguage == nil && u.LessonDay == nil &&
		u.LessonsCompleted == nil && u.AverageScore == nil && u.CurrentStreak == nil &&
		u.NotificationsEnabled == nil && u.NotificationHour == nil
}

// ErrorKind классифицирует ошибки конвейера оценки
type ErrorKind string

const (
	ErrorInvalidInput        ErrorKind = "invalid_input"        // некорректные входные данные, без повторов
	ErrorEmptyAudio          ErrorKind = "empty_audio"          // запись нулевой длины
	ErrorNoSpeechDetected    ErrorKind = "no_speech_detected"   // зарезервировано: пустые транскрипты проходят к оценке
	ErrorTranscriptionFailed ErrorKind = "transcription_failed" // транскрибация не удалась после повтора
	ErrorGradingFailed       ErrorKind = "grading_failed"       // оценка не удалась после повтора
	ErrorStoreUnavailable    ErrorKind = "store_unavailable"    // хранилище недоступно после 3 попыток
	ErrorLessonNotFound      ErrorKind = "lesson_not_found"
	ErrorInvalidContent      ErrorKind = "invalid_content" // урок с неполным набором слов
	ErrorUserNotFound        ErrorKind = "user_not_found"
)

// Этапы конвейера оценки для маркировки ошибок
const (
	StageValidate   = "validate"
	StageTranscribe = "transcribe"
	StageGrade      = "grade"
	StageParse      = "parse"
	StagePersist    = "persist"
	StageAggregate  = "aggregate"
)

// PipelineError представляет типизированную ошибку конвейера с этапом возникновения
type PipelineError struct {
	Kind    ErrorKind `json:"kind"`
	Stage   string    `json:"stage"`
	Message string    `json:"message"` // сообщение для пользователя
	Err     error     `json:"-"`
}

func (e *PipelineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (этап %s): %v", e.Kind, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s (этап %s): %s", e.Kind, e.Stage, e.Message)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// NewPipelineError создает типизированную ошибку конвейера
func NewPipelineError(kind ErrorKind, stage, message string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Stage: stage, Message: message, Err: err}
}

// DefaultNativeLanguage — родной язык по умолчанию
const DefaultNativeLanguage = "ru"

// SupportedLanguages — поддерживаемые изучаемые языки
var SupportedLanguages = []string{"en", "es", "fr", "de", "it", "pt"}

// IsValidLanguage проверяет, поддерживается ли код изучаемого языка
func IsValidLanguage(code string) bool {
	for _, lang := range SupportedLanguages {
		if code == lang {
			return true
		}
	}
	return false
}

// LanguageName возвращает человекочитаемое название языка
func LanguageName(code string) string {
	switch code {
	case "en":
		return "английский"
	case "es":
		return "испанский"
	case "fr":
		return "французский"
	case "de":
		return "немецкий"
	case "it":
		return "итальянский"
	case "pt":
		return "португальский"
	default:
		return code
	}
}

// Validate проверяет профиль перед полной записью в хранилище
func (p *UserProfile) Validate() error {
	if strings.TrimSpace(p.Identity) == "" {
		return fmt.Errorf("identity не может быть пустым")
	}
	if p.TargetLanguage != "" && !IsValidLanguage(p.TargetLanguage) {
		return fmt.Errorf("неподдерживаемый изучаемый язык: %s", p.TargetLanguage)
	}
	if p.LessonDay < 1 {
		return fmt.Errorf("день урока должен быть >= 1, получен %d", p.LessonDay)
	}
	if p.AverageScore < 0 || p.AverageScore > 100 {
		return fmt.Errorf("средний балл вне диапазона [0,100]: %f", p.AverageScore)
	}
	if p.CurrentStreak < 0 {
		return fmt.Errorf("streak не может быть отрицательным: %d", p.CurrentStreak)
	}
	if p.NotificationHour < 0 || p.NotificationHour > 23 {
		return fmt.Errorf("час уведомлений вне диапазона [0,23]: %d", p.NotificationHour)
	}
	return nil
}

// Validate проверяет запись оценки перед добавлением в журнал
func (r *AssessmentRecord) Validate() error {
	if strings.TrimSpace(r.Identity) == "" {
		return fmt.Errorf("identity не может быть пустым")
	}
	if r.LessonDay < 1 {
		return fmt.Errorf("день урока должен быть >= 1, получен %d", r.LessonDay)
	}
	if !IsValidLanguage(r.TargetLanguage) {
		return fmt.Errorf("неподдерживаемый изучаемый язык: %s", r.TargetLanguage)
	}
	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("балл вне диапазона [0,100]: %d", r.Score)
	}
	return nil
}
