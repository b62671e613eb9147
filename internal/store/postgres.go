package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vocab-coach/internal/config"
	"vocab-coach/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrUserNotFound возвращается чтениями, когда профиль отсутствует.
// Типизированный результат "не найдено", а не исключительная ситуация.
var ErrUserNotFound = errors.New("пользователь не найден")

// ErrStoreUnavailable возвращается записями после исчерпания повторов
var ErrStoreUnavailable = errors.New("хранилище недоступно")

// Store представляет интерфейс для работы с базой данных
type Store interface {
	User() UserRepository
	Assessment() AssessmentRepository
	DB() *pgxpool.Pool
	Close() error
}

// UserRepository интерфейс для работы с профилями учеников
type UserRepository interface {
	GetByIdentity(ctx context.Context, identity string) (*models.UserProfile, error)
	Upsert(ctx context.Context, profile *models.UserProfile) error
	UpdateFields(ctx context.Context, identity string, fields *models.UserFieldUpdate) error
	GetAll(ctx context.Context) ([]*models.UserProfile, error)
	GetForDailyLesson(ctx context.Context, hour int) ([]*models.UserProfile, error)
}

// AssessmentRepository интерфейс для работы с журналом оценок
type AssessmentRepository interface {
	Append(ctx context.Context, record *models.AssessmentRecord) (string, error)
	ListByIdentity(ctx context.Context, identity string, limit int) ([]models.AssessmentRecord, error)
	ListSince(ctx context.Context, identity string, since time.Time) ([]models.AssessmentRecord, error)
	DistinctDates(ctx context.Context, identity string) ([]time.Time, error)
	ScoreStats(ctx context.Context, identity string) (int, float64, error)
}

// store реализует интерфейс Store
type store struct {
	db         *pgxpool.Pool
	logger     *zap.Logger
	user       UserRepository
	assessment AssessmentRepository
}

// NewStore создает новое подключение к базе данных
func NewStore(cfg *config.Config, logger *zap.Logger) (Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Создание пула подключений
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}

	// Настройка пула
	poolConfig.MaxConns = 10
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	// Проверка подключения
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ошибка проверки подключения к базе данных: %w", err)
	}

	logger.Info("успешное подключение к базе данных PostgreSQL")

	s := &store{
		db:     db,
		logger: logger,
	}

	// Инициализация репозиториев
	s.user = NewUserRepository(db, logger)
	s.assessment = NewAssessmentRepository(db, logger)

	return s, nil
}

// User возвращает репозиторий профилей
func (s *store) User() UserRepository {
	return s.user
}

// Assessment возвращает репозиторий журнала оценок
func (s *store) Assessment() AssessmentRepository {
	return s.assessment
}

// DB возвращает подключение к базе данных
func (s *store) DB() *pgxpool.Pool {
	return s.db
}

// Close закрывает подключение к базе данных
func (s *store) Close() error {
	s.logger.Info("закрытие подключения к базе данных")
	s.db.Close()
	return nil
}
