package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vocab-coach/internal/ai"
	"vocab-coach/internal/api"
	"vocab-coach/internal/assessment"
	"vocab-coach/internal/bot"
	"vocab-coach/internal/catalog"
	"vocab-coach/internal/config"
	"vocab-coach/internal/grading"
	"vocab-coach/internal/metrics"
	"vocab-coach/internal/migrations"
	"vocab-coach/internal/scheduler"
	"vocab-coach/internal/store"
	"vocab-coach/internal/whisper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func main() {
	logger, err := initLogger()
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("запуск приложения Vocab Coach")

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("ошибка загрузки конфигурации", zap.Error(err))
	}

	// Инициализация базы данных
	st, err := store.NewStore(cfg, logger)
	if err != nil {
		logger.Fatal("ошибка инициализации базы данных", zap.Error(err))
	}
	defer st.Close()

	// Применение миграций
	if err := migrations.RunMigrations(cfg, logger); err != nil {
		logger.Fatal("ошибка применения миграций", zap.Error(err))
	}

	// Инициализация AI клиента для оценки ответов
	logger.Info("конфигурация AI",
		zap.String("provider", cfg.AI.Provider),
		zap.String("model", cfg.AI.Model))

	aiClient, err := ai.NewAIClient(&ai.AIConfig{
		Provider:    cfg.AI.Provider,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		DeepSeek: ai.DeepSeekConfig{
			APIKey:  cfg.AI.DeepSeek.APIKey,
			BaseURL: cfg.AI.DeepSeek.BaseURL,
		},
		OpenRouter: ai.OpenRouterConfig{
			APIKey:   cfg.AI.OpenRouter.APIKey,
			SiteURL:  cfg.AI.OpenRouter.SiteURL,
			SiteName: cfg.AI.OpenRouter.SiteName,
		},
	}, logger)
	if err != nil {
		logger.Fatal("ошибка создания AI клиента", zap.Error(err))
	}

	// Инициализация Whisper клиента
	whisperClient := whisper.NewClient(cfg.Whisper.APIURL, logger)

	// Инициализация метрик
	metricsSystem := metrics.NewMetrics()
	metricsHandler := metrics.NewHandler(metricsSystem, logger)

	// Инициализация каталога уроков и конвейера оценки
	lessonCatalog := catalog.New(logger)
	gradingClient := grading.NewClient(aiClient, cfg.AI.MaxTokens, cfg.AI.Temperature, logger)
	gradingParser := grading.NewParser(logger)

	assessmentService := assessment.NewService(
		whisperClient,
		gradingClient,
		gradingParser,
		st.Assessment(),
		st.User(),
		metricsSystem,
		logger,
	)

	// Инициализация Telegram бота
	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		logger.Fatal("ошибка инициализации Telegram бота", zap.Error(err))
	}

	botInfo, err := botAPI.GetMe()
	if err != nil {
		logger.Fatal("ошибка получения информации о боте", zap.Error(err))
	}

	logger.Info("Telegram бот инициализирован",
		zap.String("username", botInfo.UserName),
		zap.Int64("id", botInfo.ID))

	profileDefaults := bot.ProfileDefaults{
		NativeLanguage:   cfg.App.NativeLanguage,
		NotificationHour: cfg.Notifications.DefaultHour,
	}
	handler := bot.NewHandler(botAPI, assessmentService, lessonCatalog, st, profileDefaults, metricsSystem, logger)

	// Инициализация планировщика рассылок
	taskScheduler := scheduler.New(
		st,
		lessonCatalog,
		handler,
		bot.NewMessages(),
		cfg.Notifications,
		metricsSystem,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Запуск HTTP сервера: метрики, health и REST API оценок
	apiHandler := api.NewHandler(assessmentService, lessonCatalog, logger)
	go startHTTPServer(ctx, cfg.App.Port, metricsHandler, apiHandler, logger)

	// Запуск планировщика рассылок
	if err := taskScheduler.Start(); err != nil {
		logger.Fatal("ошибка запуска планировщика", zap.Error(err))
	}
	defer taskScheduler.Stop()

	// Запуск обработки обновлений
	go handleUpdates(ctx, botAPI, handler, logger)

	logger.Info("приложение запущено и готово к работе",
		zap.String("address", fmt.Sprintf("http://localhost:%d", cfg.App.Port)),
	)

	<-sigChan
	logger.Info("получен сигнал завершения, начинаем graceful shutdown")

	botAPI.StopReceivingUpdates()

	logger.Info("приложение завершено")
}

// initLogger инициализирует логгер
func initLogger() (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stdout", "logs/app.log"}
	config.ErrorOutputPaths = []string{"stderr", "logs/error.log"}

	if err := os.MkdirAll("logs", 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории логов: %w", err)
	}

	return config.Build()
}

// handleUpdates обрабатывает обновления от Telegram
func handleUpdates(ctx context.Context, botAPI *tgbotapi.BotAPI, handler *bot.Handler, logger *zap.Logger) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case update := <-updates:
			if update.Message == nil && update.CallbackQuery == nil {
				continue
			}

			go func(update tgbotapi.Update) {
				if err := handler.HandleUpdate(ctx, update); err != nil {
					var chatID int64
					if update.Message != nil {
						chatID = update.Message.Chat.ID
					} else if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
						chatID = update.CallbackQuery.Message.Chat.ID
					}

					logger.Error("ошибка обработки обновления",
						zap.Int64("chat_id", chatID),
						zap.Error(err))
				}
			}(update)

		case <-ctx.Done():
			logger.Info("остановка обработки обновлений")
			return
		}
	}
}

// startHTTPServer запускает HTTP сервер метрик и REST API
func startHTTPServer(ctx context.Context, port int, metricsHandler *metrics.Handler, apiHandler *api.Handler, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metricsHandler.MetricsHandler())
	mux.HandleFunc("/health", metricsHandler.HealthHandler)
	apiHandler.Register(mux)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	logger.Info("HTTP сервер запущен", zap.String("address", server.Addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ошибка HTTP сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ошибка при остановке HTTP сервера", zap.Error(err))
	}

	logger.Info("HTTP сервер остановлен")
}
