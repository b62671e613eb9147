package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vocab-coach/internal/retry"
	"vocab-coach/pkg/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// userRepository реализует UserRepository
type userRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewUserRepository создает новый репозиторий профилей
func NewUserRepository(db *pgxpool.Pool, logger *zap.Logger) UserRepository {
	return &userRepository{
		db:     db,
		logger: logger,
	}
}

const userColumns = `identity, display_name, target_language, native_language, lesson_day,
       lessons_completed, average_score, current_streak, notifications_enabled, notification_hour,
       created_at, updated_at`

// GetByIdentity получает профиль по внешнему идентификатору.
// Отсутствие профиля — типизированный результат ErrUserNotFound.
func (r *userRepository) GetByIdentity(ctx context.Context, identity string) (*models.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE identity = $1`

	profile := &models.UserProfile{}
	err := r.db.QueryRow(ctx, query, identity).Scan(
		&profile.Identity, &profile.DisplayName, &profile.TargetLanguage, &profile.NativeLanguage,
		&profile.LessonDay, &profile.LessonsCompleted, &profile.AverageScore, &profile.CurrentStreak,
		&profile.NotificationsEnabled, &profile.NotificationHour, &profile.CreatedAt, &profile.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("identity %s: %w", identity, ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}

	return profile, nil
}

// Upsert создает или обновляет профиль целиком.
// Профиль валидируется перед записью; запись повторяется по политике хранилища.
func (r *userRepository) Upsert(ctx context.Context, profile *models.UserProfile) error {
	if err := profile.Validate(); err != nil {
		return fmt.Errorf("некорректный профиль: %w", err)
	}

	query := `
		INSERT INTO users (identity, display_name, target_language, native_language, lesson_day,
		                   lessons_completed, average_score, current_streak, notifications_enabled, notification_hour,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (identity) DO UPDATE
		SET display_name = EXCLUDED.display_name,
		    target_language = EXCLUDED.target_language,
		    native_language = EXCLUDED.native_language,
		    lesson_day = EXCLUDED.lesson_day,
		    lessons_completed = EXCLUDED.lessons_completed,
		    average_score = EXCLUDED.average_score,
		    current_streak = EXCLUDED.current_streak,
		    notifications_enabled = EXCLUDED.notifications_enabled,
		    notification_hour = EXCLUDED.notification_hour,
		    updated_at = EXCLUDED.updated_at`

	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	err := retry.Do(ctx, retry.Persistence, r.logger, "user_upsert", func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			profile.Identity, profile.DisplayName, profile.TargetLanguage, profile.NativeLanguage,
			profile.LessonDay, profile.LessonsCompleted, profile.AverageScore, profile.CurrentStreak,
			profile.NotificationsEnabled, profile.NotificationHour, profile.CreatedAt, profile.UpdatedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("ошибка сохранения профиля: %w: %w", ErrStoreUnavailable, err)
	}

	r.logger.Info("профиль сохранен",
		zap.String("identity", profile.Identity),
		zap.String("target_language", profile.TargetLanguage),
		zap.Int("lesson_day", profile.LessonDay))

	return nil
}

// UpdateFields выполняет точечное обновление переданных полей без полной
// валидации профиля (используется для счетчиков и серий)
func (r *userRepository) UpdateFields(ctx context.Context, identity string, fields *models.UserFieldUpdate) error {
	if fields == nil || fields.IsEmpty() {
		return fmt.Errorf("пустое обновление для identity %s", identity)
	}

	set := make([]string, 0, 8)
	args := make([]interface{}, 0, 10)
	args = append(args, identity)

	appendField := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.DisplayName != nil {
		appendField("display_name", *fields.DisplayName)
	}
	if fields.TargetLanguage != nil {
		appendField("target_language", *fields.TargetLanguage)
	}
	if fields.LessonDay != nil {
		appendField("lesson_day", *fields.LessonDay)
	}
	if fields.LessonsCompleted != nil {
		appendField("lessons_completed", *fields.LessonsCompleted)
	}
	if fields.AverageScore != nil {
		appendField("average_score", *fields.AverageScore)
	}
	if fields.CurrentStreak != nil {
		appendField("current_streak", *fields.CurrentStreak)
	}
	if fields.NotificationsEnabled != nil {
		appendField("notifications_enabled", *fields.NotificationsEnabled)
	}
	if fields.NotificationHour != nil {
		appendField("notification_hour", *fields.NotificationHour)
	}
	appendField("updated_at", time.Now())

	query := fmt.Sprintf("UPDATE users SET %s WHERE identity = $1", strings.Join(set, ", "))

	var rowsAffected int64
	err := retry.Do(ctx, retry.Persistence, r.logger, "user_update_fields", func(ctx context.Context) error {
		result, err := r.db.Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		rowsAffected = result.RowsAffected()
		return nil
	})
	if err != nil {
		return fmt.Errorf("ошибка обновления полей профиля: %w: %w", ErrStoreUnavailable, err)
	}

	// Отсутствующий профиль повторами не лечится
	if rowsAffected == 0 {
		return fmt.Errorf("identity %s: %w", identity, ErrUserNotFound)
	}

	r.logger.Debug("поля профиля обновлены",
		zap.String("identity", identity),
		zap.Int("fields", len(set)-1))

	return nil
}

// GetAll получает все профили
func (r *userRepository) GetAll(ctx context.Context) ([]*models.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения профилей: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows, r.logger)
}

// GetForDailyLesson получает профили с включенными напоминаниями
// для указанного часа
func (r *userRepository) GetForDailyLesson(ctx context.Context, hour int) ([]*models.UserProfile, error) {
	query := `SELECT ` + userColumns + ` FROM users
		WHERE notifications_enabled = TRUE AND notification_hour = $1 AND target_language <> ''
		ORDER BY identity`

	rows, err := r.db.Query(ctx, query, hour)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения профилей для рассылки: %w", err)
	}
	defer rows.Close()

	return scanProfiles(rows, r.logger)
}

// scanProfiles читает профили из результата запроса
func scanProfiles(rows pgx.Rows, logger *zap.Logger) ([]*models.UserProfile, error) {
	var profiles []*models.UserProfile
	for rows.Next() {
		profile := &models.UserProfile{}
		err := rows.Scan(
			&profile.Identity, &profile.DisplayName, &profile.TargetLanguage, &profile.NativeLanguage,
			&profile.LessonDay, &profile.LessonsCompleted, &profile.AverageScore, &profile.CurrentStreak,
			&profile.NotificationsEnabled, &profile.NotificationHour, &profile.CreatedAt, &profile.UpdatedAt,
		)
		if err != nil {
			logger.Error("ошибка сканирования профиля", zap.Error(err))
			continue
		}
		profiles = append(profiles, profile)
	}

	return profiles, rows.Err()
}
