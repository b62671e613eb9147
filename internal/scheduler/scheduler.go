package scheduler

import (
	"context"
	"strconv"
	"time"

	"vocab-coach/internal/catalog"
	"vocab-coach/internal/config"
	"vocab-coach/internal/metrics"
	"vocab-coach/internal/stats"
	"vocab-coach/internal/store"
	"vocab-coach/pkg/models"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// jobTimeout ограничивает длительность одной рассылки
const jobTimeout = 5 * time.Minute

// summaryWindow — период, за который собирается еженедельная сводка
const summaryWindow = 7 * 24 * time.Hour

// Sender отправляет сообщение пользователю
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// LessonFormatter форматирует тексты рассылок
type LessonFormatter interface {
	DailyLesson(lesson *models.Lesson) string
	WeeklySummary(records []models.AssessmentRecord, weakAreas []stats.WeakAreaCount) string
}

// Scheduler управляет фоновыми рассылками: ежедневные уроки и итоги недели
type Scheduler struct {
	scheduler *gocron.Scheduler
	store     store.Store
	catalog   *catalog.Catalog
	sender    Sender
	formatter LessonFormatter
	cfg       config.NotificationsConfig
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// New создает новый планировщик рассылок
func New(
	st store.Store,
	cat *catalog.Catalog,
	sender Sender,
	formatter LessonFormatter,
	cfg config.NotificationsConfig,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     st,
		catalog:   cat,
		sender:    sender,
		formatter: formatter,
		cfg:       cfg,
		metrics:   m,
		logger:    logger,
	}
}

// Start запускает задачи планировщика в фоне
func (s *Scheduler) Start() error {
	// Каждый час проверяем, у кого наступил предпочтительный час урока
	if _, err := s.scheduler.Every(1).Hour().StartAt(nextHourBoundary()).Do(s.deliverDailyLessons); err != nil {
		return err
	}
	// Раз в час проверяем, не пора ли отправить итоги недели
	if _, err := s.scheduler.Every(1).Hour().StartAt(nextHourBoundary()).Do(s.deliverWeeklySummaries); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("планировщик рассылок запущен",
		zap.Int("summary_weekday", s.cfg.SummaryWeekday),
		zap.Int("summary_hour", s.cfg.SummaryHour))
	return nil
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// deliverDailyLessons рассылает уроки пользователям, чей час наступил
func (s *Scheduler) deliverDailyLessons() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	hour := time.Now().UTC().Hour()
	users, err := s.store.User().GetForDailyLesson(ctx, hour)
	if err != nil {
		s.logger.Error("ошибка выборки пользователей для рассылки", zap.Error(err))
		return
	}
	if len(users) == 0 {
		return
	}
	if s.metrics != nil {
		s.metrics.ActiveUsers.Set(float64(len(users)))
	}

	sent := 0
	for _, profile := range users {
		if err := s.sendLesson(profile); err != nil {
			s.logger.Warn("ошибка отправки ежедневного урока",
				zap.String("identity", profile.Identity),
				zap.Error(err))
			continue
		}
		sent++
	}

	s.logger.Info("ежедневные уроки разосланы",
		zap.Int("hour", hour),
		zap.Int("sent", sent),
		zap.Int("total", len(users)))
}

// sendLesson отправляет пользователю урок его текущего дня
func (s *Scheduler) sendLesson(profile *models.UserProfile) error {
	chatID, err := strconv.ParseInt(profile.Identity, 10, 64)
	if err != nil {
		return err
	}

	day := profile.LessonDay
	if total := s.catalog.Days(profile.TargetLanguage); total > 0 {
		day = (day-1)%total + 1
	}

	lesson, err := s.catalog.GetLesson(profile.TargetLanguage, day)
	if err != nil {
		return err
	}

	if err := s.sender.SendMessage(chatID, s.formatter.DailyLesson(lesson)); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.LessonsDeliveredTotal.WithLabelValues(profile.TargetLanguage).Inc()
	}
	return nil
}

// deliverWeeklySummaries рассылает итоги недели в настроенный день и час
func (s *Scheduler) deliverWeeklySummaries() {
	now := time.Now().UTC()
	if int(now.Weekday()) != s.cfg.SummaryWeekday || now.Hour() != s.cfg.SummaryHour {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	users, err := s.store.User().GetAll(ctx)
	if err != nil {
		s.logger.Error("ошибка выборки пользователей для итогов недели", zap.Error(err))
		return
	}

	sent := 0
	for _, profile := range users {
		if !profile.NotificationsEnabled || profile.TargetLanguage == "" {
			continue
		}
		if err := s.sendSummary(ctx, profile, now); err != nil {
			s.logger.Warn("ошибка отправки итогов недели",
				zap.String("identity", profile.Identity),
				zap.Error(err))
			continue
		}
		sent++
	}

	s.logger.Info("итоги недели разосланы", zap.Int("sent", sent))
}

// sendSummary собирает и отправляет итоги недели одному пользователю
func (s *Scheduler) sendSummary(ctx context.Context, profile *models.UserProfile, now time.Time) error {
	chatID, err := strconv.ParseInt(profile.Identity, 10, 64)
	if err != nil {
		return err
	}

	records, err := s.store.Assessment().ListSince(ctx, profile.Identity, now.Add(-summaryWindow))
	if err != nil {
		return err
	}

	text := s.formatter.WeeklySummary(records, stats.AggregateWeakAreas(records))
	if err := s.sender.SendMessage(chatID, text); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.SummariesSentTotal.Inc()
	}
	return nil
}

// nextHourBoundary возвращает начало следующего часа
func nextHourBoundary() time.Time {
	return time.Now().UTC().Truncate(time.Hour).Add(time.Hour)
}
