package store

import (
	"context"
	"fmt"
	"time"

	"vocab-coach/internal/retry"
	"vocab-coach/pkg/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// assessmentRepository реализует AssessmentRepository
type assessmentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewAssessmentRepository создает новый репозиторий журнала оценок
func NewAssessmentRepository(db *pgxpool.Pool, logger *zap.Logger) AssessmentRepository {
	return &assessmentRepository{
		db:     db,
		logger: logger,
	}
}

const assessmentColumns = `id, identity, lesson_day, target_language, score,
       transcript, expected_answer, feedback, strengths, weak_areas, created_at`

// Append добавляет запись в журнал оценок и возвращает назначенный id.
// Записи неизменяемы: журнал только растет, обновлений и удалений нет.
func (r *assessmentRepository) Append(ctx context.Context, record *models.AssessmentRecord) (string, error) {
	if err := record.Validate(); err != nil {
		return "", fmt.Errorf("некорректная запись оценки: %w", err)
	}

	// Идентификатор назначает хранилище, не вызывающий код
	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO assessments (id, identity, lesson_day, target_language, score,
		                         transcript, expected_answer, feedback, strengths, weak_areas, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	err := retry.Do(ctx, retry.Persistence, r.logger, "assessment_append", func(ctx context.Context) error {
		_, err := r.db.Exec(ctx, query,
			record.ID, record.Identity, record.LessonDay, record.TargetLanguage, record.Score,
			record.Transcript, record.ExpectedAnswer, record.Feedback, record.Strengths, record.WeakAreas,
			record.CreatedAt,
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("ошибка добавления записи оценки: %w: %w", ErrStoreUnavailable, err)
	}

	r.logger.Info("запись оценки добавлена",
		zap.String("assessment_id", record.ID),
		zap.String("identity", record.Identity),
		zap.Int("score", record.Score))

	return record.ID, nil
}

// ListByIdentity получает записи оценок пользователя, сначала новые
func (r *assessmentRepository) ListByIdentity(ctx context.Context, identity string, limit int) ([]models.AssessmentRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT ` + assessmentColumns + ` FROM assessments
		WHERE identity = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, identity, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей оценок: %w", err)
	}
	defer rows.Close()

	return scanAssessments(rows, r.logger)
}

// ListSince получает записи оценок пользователя начиная с указанного времени
func (r *assessmentRepository) ListSince(ctx context.Context, identity string, since time.Time) ([]models.AssessmentRecord, error) {
	query := `SELECT ` + assessmentColumns + ` FROM assessments
		WHERE identity = $1 AND created_at >= $2
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, identity, since)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения записей оценок за период: %w", err)
	}
	defer rows.Close()

	return scanAssessments(rows, r.logger)
}

// ScoreStats возвращает количество записей и средний балл пользователя.
// Агрегат считается базой по всему журналу, без ограничения выборки.
func (r *assessmentRepository) ScoreStats(ctx context.Context, identity string) (int, float64, error) {
	query := `SELECT COUNT(*), COALESCE(AVG(score), 0) FROM assessments WHERE identity = $1`

	var count int
	var average float64
	if err := r.db.QueryRow(ctx, query, identity).Scan(&count, &average); err != nil {
		return 0, 0, fmt.Errorf("ошибка подсчета агрегатов журнала: %w", err)
	}

	return count, average, nil
}

// DistinctDates получает различные календарные даты оценок пользователя
func (r *assessmentRepository) DistinctDates(ctx context.Context, identity string) ([]time.Time, error) {
	query := `SELECT DISTINCT (created_at AT TIME ZONE 'UTC')::date FROM assessments
		WHERE identity = $1
		ORDER BY 1 DESC`

	rows, err := r.db.Query(ctx, query, identity)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения дат оценок: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			r.logger.Error("ошибка сканирования даты оценки", zap.Error(err))
			continue
		}
		dates = append(dates, d)
	}

	return dates, rows.Err()
}

// scanAssessments читает записи оценок из результата запроса
func scanAssessments(rows pgx.Rows, logger *zap.Logger) ([]models.AssessmentRecord, error) {
	var records []models.AssessmentRecord
	for rows.Next() {
		var record models.AssessmentRecord
		err := rows.Scan(
			&record.ID, &record.Identity, &record.LessonDay, &record.TargetLanguage, &record.Score,
			&record.Transcript, &record.ExpectedAnswer, &record.Feedback, &record.Strengths, &record.WeakAreas,
			&record.CreatedAt,
		)
		if err != nil {
			logger.Error("ошибка сканирования записи оценки", zap.Error(err))
			continue
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
