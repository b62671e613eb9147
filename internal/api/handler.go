package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"

	"vocab-coach/internal/assessment"
	"vocab-coach/internal/catalog"
	"vocab-coach/pkg/models"

	"go.uber.org/zap"
)

// maxAudioBytes ограничивает размер голосовой записи в запросе (20 МБ)
const maxAudioBytes = 20 * 1024 * 1024

// maxRequestBytes ограничивает тело запроса целиком:
// base64 раздувает аудио в 4/3 раза, плюс запас на остальные поля
const maxRequestBytes = maxAudioBytes*4/3 + 64*1024

// Handler обрабатывает HTTP запросы конвейера оценки
type Handler struct {
	service *assessment.Service
	catalog *catalog.Catalog
	logger  *zap.Logger
}

// NewHandler создает новый HTTP обработчик оценок
func NewHandler(service *assessment.Service, cat *catalog.Catalog, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		catalog: cat,
		logger:  logger,
	}
}

// Register подключает маршруты API к мультиплексору
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/assessments", h.CreateAssessment)
	mux.HandleFunc("GET /api/v1/users/{identity}/stats", h.GetUserStats)
}

// assessmentRequest — тело POST /api/v1/assessments
type assessmentRequest struct {
	Identity       string                   `json:"identity"`
	LessonDay      int                      `json:"lesson_day"`
	TargetLanguage string                   `json:"target_language"`
	NativeLanguage string                   `json:"native_language,omitempty"`
	AudioBase64    string                   `json:"audio_base64"`
	LessonWords    []models.VocabularyEntry `json:"lesson_words,omitempty"`
	ExpectedAnswer string                   `json:"expected_answer,omitempty"`
}

// errorBody — единый формат ошибок API
type errorBody struct {
	Error struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateAssessment принимает голосовую попытку и прогоняет ее через конвейер
func (h *Handler) CreateAssessment(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)

	var req assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, models.ErrorInvalidInput, "Тело запроса слишком большое.")
			return
		}
		h.writeError(w, http.StatusBadRequest, models.ErrorInvalidInput, "Некорректное тело запроса.")
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioBase64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, models.ErrorInvalidInput, "Поле audio_base64 не является base64.")
		return
	}
	if len(audio) > maxAudioBytes {
		h.writeError(w, http.StatusBadRequest, models.ErrorInvalidInput, "Запись слишком большая.")
		return
	}

	// Слова урока можно не передавать: тогда они берутся из каталога,
	// день заворачивается по его размеру
	if len(req.LessonWords) == 0 {
		day := req.LessonDay
		if total := h.catalog.Days(req.TargetLanguage); total > 0 && day > 0 {
			day = (day-1)%total + 1
		}
		lesson, err := h.catalog.GetLesson(req.TargetLanguage, day)
		if err != nil {
			if errors.Is(err, catalog.ErrLessonNotFound) {
				h.writeError(w, http.StatusNotFound, models.ErrorLessonNotFound, "Урок не найден.")
				return
			}
			if errors.Is(err, catalog.ErrInvalidContent) {
				h.writeError(w, http.StatusBadRequest, models.ErrorInvalidContent, "Урок поврежден.")
				return
			}
			h.writeError(w, http.StatusInternalServerError, "internal", "Внутренняя ошибка сервиса.")
			return
		}
		req.LessonWords = lesson.Entries
		if req.ExpectedAnswer == "" {
			req.ExpectedAnswer = lesson.PracticePrompt
		}
	}

	outcome, err := h.service.AssessVoice(r.Context(), &models.AssessVoiceInput{
		Identity:       req.Identity,
		LessonDay:      req.LessonDay,
		TargetLanguage: req.TargetLanguage,
		NativeLanguage: req.NativeLanguage,
		Audio:          audio,
		LessonWords:    req.LessonWords,
		ExpectedAnswer: req.ExpectedAnswer,
	})
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, outcome)
}

// GetUserStats возвращает профиль и сводную статистику пользователя
func (h *Handler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	identity := r.PathValue("identity")
	if identity == "" {
		h.writeError(w, http.StatusBadRequest, models.ErrorInvalidInput, "Не указан идентификатор пользователя.")
		return
	}

	stats, err := h.service.GetUserStats(r.Context(), identity)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, stats)
}

// statusForKind отображает вид ошибки конвейера в HTTP статус
func statusForKind(kind models.ErrorKind) int {
	switch kind {
	case models.ErrorInvalidInput, models.ErrorEmptyAudio, models.ErrorInvalidContent:
		return http.StatusBadRequest
	case models.ErrorUserNotFound, models.ErrorLessonNotFound:
		return http.StatusNotFound
	case models.ErrorTranscriptionFailed, models.ErrorGradingFailed:
		return http.StatusBadGateway
	case models.ErrorStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writePipelineError(w http.ResponseWriter, err error) {
	var perr *models.PipelineError
	if errors.As(err, &perr) {
		h.logger.Warn("ошибка конвейера в API",
			zap.String("kind", string(perr.Kind)),
			zap.String("stage", perr.Stage),
			zap.Error(err))
		h.writeError(w, statusForKind(perr.Kind), perr.Kind, perr.Message)
		return
	}

	h.logger.Error("внутренняя ошибка API", zap.Error(err))
	h.writeError(w, http.StatusInternalServerError, "internal", "Внутренняя ошибка сервиса.")
}

func (h *Handler) writeError(w http.ResponseWriter, status int, kind models.ErrorKind, message string) {
	var body errorBody
	body.Error.Kind = string(kind)
	body.Error.Message = message
	h.writeJSON(w, status, body)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("ошибка сериализации ответа API", zap.Error(err))
	}
}
