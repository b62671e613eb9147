package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"vocab-coach/internal/assessment"
	"vocab-coach/internal/catalog"
	"vocab-coach/internal/metrics"
	"vocab-coach/internal/store"
	"vocab-coach/pkg/models"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	// Лимиты безопасности
	MaxFileSize   = 20 * 1024 * 1024 // 20MB максимум для голосовых сообщений
	MaxTextLength = 4000             // Максимальная длина текста сообщения
	MaxNameLength = 64               // Максимальная длина отображаемого имени

	// Rate limiting
	MaxRequestsPerMinute = 30 // Максимум запросов в минуту на пользователя
	RateLimitWindow      = time.Minute

	// Префикс callback данных выбора языка
	languageCallbackPrefix = "lang:"
)

// RateLimiter простой rate limiter для пользователей
type RateLimiter struct {
	requests map[int64][]time.Time
	mutex    sync.RWMutex
}

// NewRateLimiter создает новый rate limiter
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		requests: make(map[int64][]time.Time),
	}
}

// IsAllowed проверяет, разрешен ли запрос для пользователя
func (rl *RateLimiter) IsAllowed(userID int64) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	userRequests := rl.requests[userID]

	var validRequests []time.Time
	for _, reqTime := range userRequests {
		if now.Sub(reqTime) < RateLimitWindow {
			validRequests = append(validRequests, reqTime)
		}
	}

	if len(validRequests) >= MaxRequestsPerMinute {
		rl.requests[userID] = validRequests
		return false
	}

	validRequests = append(validRequests, now)
	rl.requests[userID] = validRequests
	return true
}

// ProfileDefaults — значения для новых профилей, приходят из конфигурации
type ProfileDefaults struct {
	NativeLanguage   string
	NotificationHour int
}

// Handler представляет обработчик сообщений Telegram
type Handler struct {
	bot         *tgbotapi.BotAPI
	service     *assessment.Service
	catalog     *catalog.Catalog
	store       store.Store
	messages    *Messages
	metrics     *metrics.Metrics
	logger      *zap.Logger
	rateLimiter *RateLimiter
	defaults    ProfileDefaults
}

// NewHandler создает новый обработчик
func NewHandler(
	bot *tgbotapi.BotAPI,
	service *assessment.Service,
	cat *catalog.Catalog,
	st store.Store,
	defaults ProfileDefaults,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Handler {
	if defaults.NativeLanguage == "" {
		defaults.NativeLanguage = models.DefaultNativeLanguage
	}
	return &Handler{
		bot:         bot,
		service:     service,
		catalog:     cat,
		store:       st,
		messages:    NewMessages(),
		metrics:     m,
		logger:      logger,
		rateLimiter: NewRateLimiter(),
		defaults:    defaults,
	}
}

// HandleUpdate обрабатывает входящее обновление
func (h *Handler) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	var userID int64
	if update.Message != nil {
		userID = update.Message.From.ID
	} else if update.CallbackQuery != nil {
		userID = update.CallbackQuery.From.ID
	}

	if userID != 0 && !h.rateLimiter.IsAllowed(userID) {
		h.logger.Warn("превышен лимит запросов", zap.Int64("user_id", userID))
		if update.Message != nil {
			return h.sendMessage(update.Message.Chat.ID, "⚠️ Слишком много запросов. Подожди минуту.")
		}
		return nil
	}

	if update.CallbackQuery != nil {
		return h.handleCallbackQuery(ctx, update.CallbackQuery)
	}
	if update.Message == nil {
		return nil
	}

	h.logger.Debug("получено обновление",
		zap.Int64("chat_id", update.Message.Chat.ID),
		zap.String("username", update.Message.From.UserName))

	profile, err := h.getOrCreateProfile(ctx, update.Message.From)
	if err != nil {
		h.logger.Error("ошибка получения профиля", zap.Error(err))
		return h.sendMessage(update.Message.Chat.ID, "Ошибка обработки запроса")
	}

	if update.Message.IsCommand() {
		if h.metrics != nil {
			h.metrics.CommandsTotal.WithLabelValues(update.Message.Command()).Inc()
		}
		return h.handleCommand(ctx, update.Message, profile)
	}

	if update.Message.Voice != nil || update.Message.Audio != nil {
		if h.metrics != nil {
			h.metrics.MessagesTotal.WithLabelValues("voice").Inc()
		}
		return h.handleVoiceMessage(ctx, update.Message, profile)
	}

	if h.metrics != nil {
		h.metrics.MessagesTotal.WithLabelValues("text").Inc()
	}
	return h.sendMessage(update.Message.Chat.ID,
		"Я оцениваю только голосовые сообщения 🎤 Посмотри задание в /lesson и запиши ответ голосом.")
}

// getOrCreateProfile получает профиль или создает его при первом обращении
func (h *Handler) getOrCreateProfile(ctx context.Context, from *tgbotapi.User) (*models.UserProfile, error) {
	identity := strconv.FormatInt(from.ID, 10)

	profile, err := h.store.User().GetByIdentity(ctx, identity)
	if err == nil {
		return profile, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	profile = &models.UserProfile{
		Identity:             identity,
		DisplayName:          sanitizeName(from.FirstName),
		NativeLanguage:       h.defaults.NativeLanguage,
		LessonDay:            1,
		NotificationsEnabled: true,
		NotificationHour:     h.defaults.NotificationHour,
	}
	if err := h.store.User().Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("ошибка создания профиля: %w", err)
	}

	h.logger.Info("создан новый профиль", zap.String("identity", identity))
	return profile, nil
}

// handleCommand обрабатывает команды
func (h *Handler) handleCommand(ctx context.Context, message *tgbotapi.Message, profile *models.UserProfile) error {
	switch message.Command() {
	case "start":
		return h.handleStartCommand(message, profile)
	case "help":
		return h.sendMessage(message.Chat.ID, h.messages.Help())
	case "lesson":
		return h.handleLessonCommand(message, profile)
	case "stats":
		return h.handleStatsCommand(ctx, message, profile)
	case "notify_on":
		return h.handleNotifyCommand(ctx, message, profile, true)
	case "notify_off":
		return h.handleNotifyCommand(ctx, message, profile, false)
	default:
		return h.sendMessage(message.Chat.ID, h.messages.UnknownCommand())
	}
}

// handleStartCommand приветствует и предлагает выбрать язык
func (h *Handler) handleStartCommand(message *tgbotapi.Message, profile *models.UserProfile) error {
	if err := h.sendMessage(message.Chat.ID, h.messages.Welcome(profile.DisplayName)); err != nil {
		return err
	}
	return h.sendLanguageKeyboard(message.Chat.ID)
}

// sendLanguageKeyboard отправляет inline клавиатуру выбора языка
func (h *Handler) sendLanguageKeyboard(chatID int64) error {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, code := range h.catalog.Languages() {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(
			models.LanguageName(code),
			languageCallbackPrefix+code,
		))
		if len(row) == 2 {
			keyboard = append(keyboard, row)
			row = nil
		}
	}
	if len(row) > 0 {
		keyboard = append(keyboard, row)
	}

	msg := tgbotapi.NewMessage(chatID, h.messages.ChooseLanguage())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	_, err := h.bot.Send(msg)
	return err
}

// handleCallbackQuery обрабатывает inline кнопки
func (h *Handler) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	// Убираем "часики" на кнопке
	if _, err := h.bot.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		h.logger.Warn("ошибка ответа на callback", zap.Error(err))
	}

	if strings.HasPrefix(callback.Data, languageCallbackPrefix) {
		return h.handleLanguageSelection(ctx, callback)
	}

	h.logger.Warn("неизвестный callback", zap.String("data", callback.Data))
	return nil
}

// handleLanguageSelection сохраняет выбранный язык и сбрасывает день урока
func (h *Handler) handleLanguageSelection(ctx context.Context, callback *tgbotapi.CallbackQuery) error {
	code := strings.TrimPrefix(callback.Data, languageCallbackPrefix)
	if !models.IsValidLanguage(code) {
		return h.sendMessage(callback.Message.Chat.ID, "Этот язык пока не поддерживается.")
	}

	identity := strconv.FormatInt(callback.From.ID, 10)
	day := 1
	update := &models.UserFieldUpdate{
		TargetLanguage: &code,
		LessonDay:      &day,
	}
	if err := h.store.User().UpdateFields(ctx, identity, update); err != nil {
		h.logger.Error("ошибка сохранения языка", zap.Error(err))
		return h.sendMessage(callback.Message.Chat.ID, "Не получилось сохранить выбор. Попробуй еще раз.")
	}

	return h.sendMessage(callback.Message.Chat.ID, h.messages.LanguageChosen(code))
}

// handleLessonCommand отправляет урок на текущий день
func (h *Handler) handleLessonCommand(message *tgbotapi.Message, profile *models.UserProfile) error {
	if profile.TargetLanguage == "" {
		return h.sendMessage(message.Chat.ID, h.messages.NoLanguage())
	}

	lesson, err := h.catalog.GetLesson(profile.TargetLanguage, h.effectiveLessonDay(profile))
	if err != nil {
		h.logger.Error("ошибка получения урока",
			zap.String("language", profile.TargetLanguage),
			zap.Int("day", profile.LessonDay),
			zap.Error(err))
		return h.sendMessage(message.Chat.ID, "Не получилось найти урок. Попробуй /start.")
	}

	if h.metrics != nil {
		h.metrics.LessonsDeliveredTotal.WithLabelValues(profile.TargetLanguage).Inc()
	}
	return h.sendMessage(message.Chat.ID, h.messages.Lesson(lesson))
}

// effectiveLessonDay зацикливает день урока по размеру каталога
func (h *Handler) effectiveLessonDay(profile *models.UserProfile) int {
	total := h.catalog.Days(profile.TargetLanguage)
	if total == 0 {
		return profile.LessonDay
	}
	return (profile.LessonDay-1)%total + 1
}

// handleStatsCommand отправляет статистику пользователя
func (h *Handler) handleStatsCommand(ctx context.Context, message *tgbotapi.Message, profile *models.UserProfile) error {
	st, err := h.service.GetUserStats(ctx, profile.Identity)
	if err != nil {
		h.logger.Error("ошибка получения статистики", zap.Error(err))
		return h.sendMessage(message.Chat.ID, "Не получилось собрать статистику. Попробуй позже.")
	}
	return h.sendMessage(message.Chat.ID, h.messages.Stats(st))
}

// handleNotifyCommand включает или выключает ежедневные уроки
func (h *Handler) handleNotifyCommand(ctx context.Context, message *tgbotapi.Message, profile *models.UserProfile, enabled bool) error {
	update := &models.UserFieldUpdate{NotificationsEnabled: &enabled}
	if err := h.store.User().UpdateFields(ctx, profile.Identity, update); err != nil {
		h.logger.Error("ошибка обновления уведомлений", zap.Error(err))
		return h.sendMessage(message.Chat.ID, "Не получилось сохранить настройку. Попробуй позже.")
	}
	if enabled {
		return h.sendMessage(message.Chat.ID, fmt.Sprintf("🔔 Ежедневные уроки включены. Буду писать в %d:00.", profile.NotificationHour))
	}
	return h.sendMessage(message.Chat.ID, "🔕 Ежедневные уроки выключены.")
}

// handleVoiceMessage прогоняет голосовое сообщение через конвейер оценки
func (h *Handler) handleVoiceMessage(ctx context.Context, message *tgbotapi.Message, profile *models.UserProfile) error {
	if profile.TargetLanguage == "" {
		return h.sendMessage(message.Chat.ID, h.messages.NoLanguage())
	}

	// Определяем тип аудио и проверяем размер до скачивания
	var fileID string
	if message.Voice != nil {
		fileID = message.Voice.FileID
		if message.Voice.FileSize > MaxFileSize {
			return h.sendMessage(message.Chat.ID, "Запись слишком большая. Максимум 20MB.")
		}
	} else {
		fileID = message.Audio.FileID
		if message.Audio.FileSize > MaxFileSize {
			return h.sendMessage(message.Chat.ID, "Файл слишком большой. Максимум 20MB.")
		}
	}

	processingMsg := tgbotapi.NewMessage(message.Chat.ID, h.messages.Processing())
	processingMsg.ReplyToMessageID = message.MessageID
	if _, err := h.bot.Send(processingMsg); err != nil {
		h.logger.Error("ошибка отправки сообщения об обработке", zap.Error(err))
	}

	audio, err := h.downloadFile(ctx, fileID)
	if err != nil {
		h.logger.Error("ошибка скачивания аудио", zap.Error(err))
		return h.sendMessage(message.Chat.ID, "Не получилось скачать запись. Попробуй еще раз.")
	}

	lesson, err := h.catalog.GetLesson(profile.TargetLanguage, h.effectiveLessonDay(profile))
	if err != nil {
		h.logger.Error("ошибка получения урока для оценки", zap.Error(err))
		return h.sendMessage(message.Chat.ID, "Не получилось найти урок. Попробуй /start.")
	}

	outcome, err := h.service.AssessVoice(ctx, &models.AssessVoiceInput{
		Identity:       profile.Identity,
		LessonDay:      profile.LessonDay,
		TargetLanguage: profile.TargetLanguage,
		NativeLanguage: profile.NativeLanguage,
		Audio:          audio,
		LessonWords:    lesson.Entries,
		ExpectedAnswer: lesson.PracticePrompt,
	})
	if err != nil {
		var perr *models.PipelineError
		if errors.As(err, &perr) {
			h.logger.Warn("ошибка конвейера оценки",
				zap.String("identity", profile.Identity),
				zap.String("kind", string(perr.Kind)),
				zap.String("stage", perr.Stage))
			return h.sendMessage(message.Chat.ID, perr.Message)
		}
		h.logger.Error("внутренняя ошибка оценки", zap.Error(err))
		return h.sendMessage(message.Chat.ID, "Что-то пошло не так. Попробуй позже.")
	}

	// Продвигаем день урока после удачной попытки
	if err := h.advanceLessonDay(ctx, profile); err != nil {
		h.logger.Warn("ошибка продвижения дня урока", zap.Error(err))
	}

	return h.sendMessage(message.Chat.ID, h.messages.Outcome(outcome))
}

// downloadFile скачивает файл Telegram в память
func (h *Handler) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := h.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения файла от Telegram: %w", err)
	}
	if file.FileSize > MaxFileSize {
		return nil, fmt.Errorf("файл превышает лимит: %d байт", file.FileSize)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(h.bot.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка скачивания файла: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("неудачный статус скачивания: %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("файл превысил максимальный размер")
	}

	return data, nil
}

// advanceLessonDay переводит пользователя на следующий день урока
func (h *Handler) advanceLessonDay(ctx context.Context, profile *models.UserProfile) error {
	next := profile.LessonDay + 1
	update := &models.UserFieldUpdate{LessonDay: &next}
	return h.store.User().UpdateFields(ctx, profile.Identity, update)
}

// SendMessage отправляет произвольное сообщение пользователю, используется рассылками
func (h *Handler) SendMessage(chatID int64, text string) error {
	return h.sendMessage(chatID, text)
}

// sendMessage отправляет сообщение, HTML разметка включается по содержимому
func (h *Handler) sendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if strings.Contains(text, "<") && strings.Contains(text, ">") {
		msg.ParseMode = tgbotapi.ModeHTML
	}

	_, err := h.bot.Send(msg)
	if err != nil {
		h.logger.Error("ошибка отправки сообщения",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return err
	}
	return nil
}

// sanitizeName обрезает и чистит отображаемое имя
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if len(name) > MaxNameLength {
		name = name[:MaxNameLength]
	}
	return name
}
