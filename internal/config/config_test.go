package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Устанавливаем переменные окружения для теста
	os.Setenv("TELEGRAM_BOT_TOKEN", "test_token")
	os.Setenv("DEEPSEEK_API_KEY", "test_deepseek_key")
	os.Setenv("DB_HOST", "localhost")
	os.Setenv("DB_USER", "test_user")
	os.Setenv("DB_PASSWORD", "test_password")
	os.Setenv("DB_NAME", "test_db")

	// Загружаем конфигурацию
	cfg, err := Load()

	// Проверяем, что конфигурация загружена без ошибок
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Проверяем значения
	assert.Equal(t, "test_token", cfg.Telegram.BotToken)
	assert.Equal(t, "test_deepseek_key", cfg.AI.DeepSeek.APIKey)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, "test_user", cfg.Database.User)
	assert.Equal(t, "test_password", cfg.Database.Password)
	assert.Equal(t, "test_db", cfg.Database.Name)

	// Проверяем значения по умолчанию
	assert.Equal(t, "deepseek", cfg.AI.Provider)
	assert.Equal(t, "deepseek-chat", cfg.AI.Model)
	assert.Equal(t, 1000, cfg.AI.MaxTokens)
	assert.Equal(t, 0.3, cfg.AI.Temperature)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 9, cfg.Notifications.DefaultHour)
	assert.Equal(t, 0, cfg.Notifications.SummaryWeekday)
	assert.Equal(t, 18, cfg.Notifications.SummaryHour)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "ru", cfg.App.NativeLanguage)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "test_user",
		Password: "test_password",
		Name:     "test_db",
		SSLMode:  "disable",
	}

	dsn := cfg.GetDSN()
	expected := "host=localhost port=5432 user=test_user password=test_password dbname=test_db sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestAppConfigMethods(t *testing.T) {
	cfg := &AppConfig{
		Env:      "development",
		LogLevel: "debug",
	}

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Env = "production"
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())
}

func TestValidateConfig(t *testing.T) {
	// Тест с пустыми обязательными полями
	cfg := &Config{}
	err := validateConfig(cfg)
	assert.Error(t, err)

	// Тест с корректной конфигурацией
	cfg = &Config{
		Telegram: TelegramConfig{
			BotToken: "test_token",
		},
		AI: AIConfig{
			Provider: "openrouter",
			OpenRouter: OpenRouterConfig{
				APIKey: "test_key",
			},
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			User:     "test_user",
			Password: "test_password",
			Name:     "test_db",
		},
		Notifications: NotificationsConfig{
			DefaultHour:    9,
			SummaryWeekday: 0,
			SummaryHour:    18,
		},
	}
	err = validateConfig(cfg)
	assert.NoError(t, err)

	// Некорректный час рассылки
	cfg.Notifications.DefaultHour = 24
	err = validateConfig(cfg)
	assert.Error(t, err)
}
