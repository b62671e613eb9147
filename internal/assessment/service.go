package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vocab-coach/internal/metrics"
	"vocab-coach/internal/stats"
	"vocab-coach/internal/store"
	"vocab-coach/internal/whisper"
	"vocab-coach/pkg/models"

	"go.uber.org/zap"
)

// Transcriber превращает голосовую запись в текст
type Transcriber interface {
	Transcribe(ctx context.Context, audioData []byte, languageHint string) (string, error)
}

// Grader оценивает транскрипт и возвращает сырой текст ответа модели
type Grader interface {
	Grade(ctx context.Context, transcript, targetLanguage, nativeLanguage string, lessonWords []models.VocabularyEntry, expectedAnswer string) (string, error)
}

// ResultParser разбирает сырой ответ модели в структурированный результат.
// Разбор никогда не возвращает ошибку: при любом мусоре на входе
// подставляются значения по умолчанию.
type ResultParser interface {
	Parse(raw string) models.GradedResult
}

// AssessmentLog — журнал оценок, нужный конвейеру
type AssessmentLog interface {
	Append(ctx context.Context, record *models.AssessmentRecord) (string, error)
	ListByIdentity(ctx context.Context, identity string, limit int) ([]models.AssessmentRecord, error)
	DistinctDates(ctx context.Context, identity string) ([]time.Time, error)
	ScoreStats(ctx context.Context, identity string) (int, float64, error)
}

// ProfileStore — операции профиля, нужные конвейеру
type ProfileStore interface {
	GetByIdentity(ctx context.Context, identity string) (*models.UserProfile, error)
	UpdateFields(ctx context.Context, identity string, update *models.UserFieldUpdate) error
}

// Service оркеструет конвейер голосовой оценки:
// валидация -> транскрибация -> оценка -> разбор -> запись -> пересчет агрегатов
type Service struct {
	transcriber Transcriber
	grader      Grader
	parser      ResultParser
	log         AssessmentLog
	profiles    ProfileStore
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewService создает новый сервис оценки
func NewService(
	transcriber Transcriber,
	grader Grader,
	parser ResultParser,
	log AssessmentLog,
	profiles ProfileStore,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		transcriber: transcriber,
		grader:      grader,
		parser:      parser,
		log:         log,
		profiles:    profiles,
		metrics:     m,
		logger:      logger,
	}
}

// AssessVoice прогоняет голосовую попытку через весь конвейер.
// При ошибке возвращается *models.PipelineError с этапом и видом ошибки.
// Запись в журнал — точка невозврата: сбой пересчета агрегатов после нее
// не отменяет успеха, агрегаты выправятся при следующей попытке.
func (s *Service) AssessVoice(ctx context.Context, input *models.AssessVoiceInput) (*models.AssessmentOutcome, error) {
	started := time.Now()

	// Этап 1: валидация входа
	if err := s.validateInput(input); err != nil {
		s.recordFailure(input.TargetLanguage, err)
		return nil, err
	}

	nativeLanguage := input.NativeLanguage
	if nativeLanguage == "" {
		nativeLanguage = models.DefaultNativeLanguage
	}

	// Этап 2: транскрибация
	transcribeStart := time.Now()
	transcript, err := s.transcriber.Transcribe(ctx, input.Audio, input.TargetLanguage)
	if err != nil {
		kind := models.ErrorTranscriptionFailed
		message := "Не удалось распознать запись. Попробуйте еще раз."
		if errors.Is(err, whisper.ErrEmptyAudio) {
			kind = models.ErrorEmptyAudio
			message = "Запись пуста. Запишите голосовое сообщение еще раз."
		}
		perr := models.NewPipelineError(kind, models.StageTranscribe, message, err)
		s.recordFailure(input.TargetLanguage, perr)
		return nil, perr
	}
	if s.metrics != nil {
		s.metrics.TranscriptionDuration.Observe(time.Since(transcribeStart).Seconds())
	}

	// Пустой транскрипт не прерывает конвейер: модель оценит молчание сама
	s.logger.Debug("транскрипт получен",
		zap.String("identity", input.Identity),
		zap.Int("length", len(transcript)))

	// Этап 3: оценка транскрипта моделью
	gradeStart := time.Now()
	raw, err := s.grader.Grade(ctx, transcript, input.TargetLanguage, nativeLanguage, input.LessonWords, input.ExpectedAnswer)
	if err != nil {
		perr := models.NewPipelineError(models.ErrorGradingFailed, models.StageGrade,
			"Не удалось оценить ответ. Попробуйте еще раз.", err)
		s.recordFailure(input.TargetLanguage, perr)
		return nil, perr
	}
	if s.metrics != nil {
		s.metrics.GradingDuration.Observe(time.Since(gradeStart).Seconds())
	}

	// Этап 4: разбор ответа модели, всегда успешен
	graded := s.parser.Parse(raw)

	// Этап 5: запись в журнал
	record := &models.AssessmentRecord{
		Identity:       input.Identity,
		LessonDay:      input.LessonDay,
		TargetLanguage: input.TargetLanguage,
		Score:          graded.Score,
		Transcript:     transcript,
		ExpectedAnswer: input.ExpectedAnswer,
		Feedback:       graded.Feedback,
		Strengths:      graded.Strengths,
		WeakAreas:      graded.WeakAreas,
		CreatedAt:      time.Now(),
	}

	assessmentID, err := s.log.Append(ctx, record)
	if err != nil {
		perr := models.NewPipelineError(models.ErrorStoreUnavailable, models.StagePersist,
			"Не удалось сохранить результат. Попробуйте позже.", err)
		s.recordFailure(input.TargetLanguage, perr)
		return nil, perr
	}

	// Этап 6: пересчет агрегатов профиля из журнала
	if err := s.recomputeAggregates(ctx, input.Identity, record.CreatedAt); err != nil {
		s.logger.Warn("ошибка пересчета агрегатов, результат оценки сохранен",
			zap.String("identity", input.Identity),
			zap.String("assessment_id", assessmentID),
			zap.Error(err))
		if s.metrics != nil {
			s.metrics.StageFailuresTotal.WithLabelValues(models.StageAggregate).Inc()
		}
	}

	if s.metrics != nil {
		s.metrics.AssessmentsTotal.WithLabelValues(input.TargetLanguage, "success").Inc()
		s.metrics.AssessmentScore.Observe(float64(graded.Score))
		s.metrics.PipelineDuration.Observe(time.Since(started).Seconds())
	}

	s.logger.Info("голосовая оценка завершена",
		zap.String("identity", input.Identity),
		zap.String("assessment_id", assessmentID),
		zap.Int("score", graded.Score),
		zap.Duration("duration", time.Since(started)))

	return &models.AssessmentOutcome{
		AssessmentID: assessmentID,
		Score:        graded.Score,
		Transcript:   transcript,
		Feedback:     graded.Feedback,
		Strengths:    graded.Strengths,
		WeakAreas:    graded.WeakAreas,
	}, nil
}

// validateInput проверяет входные данные перед запуском конвейера
func (s *Service) validateInput(input *models.AssessVoiceInput) error {
	if input == nil {
		return models.NewPipelineError(models.ErrorInvalidInput, models.StageValidate,
			"Пустой запрос.", nil)
	}
	if strings.TrimSpace(input.Identity) == "" {
		return models.NewPipelineError(models.ErrorInvalidInput, models.StageValidate,
			"Не указан идентификатор пользователя.", nil)
	}
	if input.LessonDay < 1 {
		return models.NewPipelineError(models.ErrorInvalidInput, models.StageValidate,
			"Некорректный день урока.", nil)
	}
	if !models.IsValidLanguage(input.TargetLanguage) {
		return models.NewPipelineError(models.ErrorInvalidInput, models.StageValidate,
			fmt.Sprintf("Язык %q не поддерживается.", input.TargetLanguage), nil)
	}
	if len(input.LessonWords) == 0 {
		return models.NewPipelineError(models.ErrorInvalidInput, models.StageValidate,
			"Не переданы слова урока.", nil)
	}
	if len(input.Audio) == 0 {
		return models.NewPipelineError(models.ErrorEmptyAudio, models.StageValidate,
			"Запись пуста. Запишите голосовое сообщение еще раз.", nil)
	}
	return nil
}

// recomputeAggregates пересчитывает средний балл и серию из полного журнала
// и записывает их в профиль. Инкрементных поправок нет намеренно.
func (s *Service) recomputeAggregates(ctx context.Context, identity string, asOf time.Time) error {
	completed, average, err := s.log.ScoreStats(ctx, identity)
	if err != nil {
		return fmt.Errorf("ошибка чтения журнала для пересчета: %w", err)
	}

	dates, err := s.log.DistinctDates(ctx, identity)
	if err != nil {
		return fmt.Errorf("ошибка чтения дат для пересчета серии: %w", err)
	}
	streak := stats.ComputeStreak(dates, asOf)

	update := &models.UserFieldUpdate{
		AverageScore:     &average,
		CurrentStreak:    &streak,
		LessonsCompleted: &completed,
	}
	if err := s.profiles.UpdateFields(ctx, identity, update); err != nil {
		return fmt.Errorf("ошибка записи агрегатов в профиль: %w", err)
	}

	return nil
}

// recordFailure отражает ошибку конвейера в метриках
func (s *Service) recordFailure(language string, err error) {
	if s.metrics == nil {
		return
	}
	if language == "" {
		language = "unknown"
	}

	var perr *models.PipelineError
	if errors.As(err, &perr) {
		s.metrics.StageFailuresTotal.WithLabelValues(perr.Stage).Inc()
		s.metrics.AssessmentsTotal.WithLabelValues(language, string(perr.Kind)).Inc()
		return
	}
	s.metrics.AssessmentsTotal.WithLabelValues(language, "error").Inc()
}

// UserStats — сводная статистика пользователя для /stats и HTTP API
type UserStats struct {
	Profile      *models.UserProfile       `json:"profile"`
	RecentScores []int                     `json:"recent_scores"`
	WeakAreas    []stats.WeakAreaCount     `json:"weak_areas"`
	Recent       []models.AssessmentRecord `json:"-"`
}

// GetUserStats собирает статистику пользователя из профиля и журнала
func (s *Service) GetUserStats(ctx context.Context, identity string) (*UserStats, error) {
	profile, err := s.profiles.GetByIdentity(ctx, identity)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, models.NewPipelineError(models.ErrorUserNotFound, models.StageValidate,
				"Пользователь не найден.", err)
		}
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}

	recent, err := s.log.ListByIdentity(ctx, identity, 10)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения последних оценок: %w", err)
	}

	recentScores := make([]int, 0, len(recent))
	for _, r := range recent {
		recentScores = append(recentScores, r.Score)
	}

	return &UserStats{
		Profile:      profile,
		RecentScores: recentScores,
		WeakAreas:    stats.AggregateWeakAreas(recent),
		Recent:       recent,
	}, nil
}
