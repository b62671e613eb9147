package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"vocab-coach/internal/retry"
)

// ErrEmptyAudio возвращается для записи нулевой длины до любого сетевого вызова
var ErrEmptyAudio = errors.New("пустая аудиозапись")

// Client представляет клиент для работы с Whisper API
type Client struct {
	apiURL     string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient создает новый клиент Whisper
func NewClient(apiURL string, logger *zap.Logger) *Client {
	return &Client{
		apiURL: apiURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second, // Увеличенный таймаут для обработки аудио
		},
		logger: logger,
	}
}

// TranscribeResponse представляет ответ от Whisper API
type TranscribeResponse struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Transcribe транскрибирует аудио данные с подсказкой языка.
// Пустой вход отклоняется сразу; сам вызов повторяется один раз
// через секунду при любой транспортной или серверной ошибке.
// Пустой распознанный текст не считается ошибкой на этом уровне —
// оценка пустого ответа остается за следующим этапом конвейера.
func (c *Client) Transcribe(ctx context.Context, audioData []byte, languageHint string) (string, error) {
	if len(audioData) == 0 {
		return "", ErrEmptyAudio
	}

	var response *TranscribeResponse
	err := retry.Do(ctx, retry.RemoteCall, c.logger, "whisper_transcribe", func(ctx context.Context) error {
		resp, err := c.transcribeOnce(ctx, audioData, languageHint)
		if err != nil {
			return err
		}
		response = resp
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ошибка транскрибации: %w", err)
	}

	c.logger.Info("транскрибация завершена",
		zap.Int("audio_size", len(audioData)),
		zap.String("language_hint", languageHint),
		zap.String("detected_language", response.Language),
		zap.Float64("duration", response.Duration),
		zap.Int("text_length", len(response.Text)))

	return response.Text, nil
}

// transcribeOnce выполняет один HTTP вызов к Whisper API
func (c *Client) transcribeOnce(ctx context.Context, audioData []byte, languageHint string) (*TranscribeResponse, error) {
	// Создаем multipart запрос
	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)

	part, err := writer.CreateFormFile("audio_file", "voice.ogg")
	if err != nil {
		return nil, fmt.Errorf("ошибка создания формы: %w", err)
	}

	if _, err = part.Write(audioData); err != nil {
		return nil, fmt.Errorf("ошибка записи данных: %w", err)
	}

	writer.Close()

	params := []string{
		"output=json",
		"task=transcribe",
	}
	if languageHint != "" {
		params = append(params, "language="+languageHint)
	}

	apiURL := c.apiURL + "/asr?" + strings.Join(params, "&")
	req, err := http.NewRequestWithContext(ctx, "POST", apiURL, &requestBody)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка отправки запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Пытаемся парсить как JSON для детальных ошибок
		var errorResponse map[string]interface{}
		if json.Unmarshal(body, &errorResponse) == nil {
			errorJSON, _ := json.Marshal(errorResponse)
			return nil, fmt.Errorf("ошибка API (статус %d): %s", resp.StatusCode, string(errorJSON))
		}
		return nil, fmt.Errorf("ошибка API (статус %d): %s", resp.StatusCode, string(body))
	}

	// Проверяем Content-Type, но разрешаем text/plain если это JSON
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") && !strings.Contains(contentType, "text/plain") {
		return nil, fmt.Errorf("неожиданный Content-Type: %s, тело: %s", contentType, string(body))
	}

	var response TranscribeResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа: %w, тело: %s", err, string(body))
	}

	return &response, nil
}

// HealthCheck проверяет доступность Whisper API
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.apiURL+"/", nil)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки запроса: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("нездоровый статус API: %d", resp.StatusCode)
	}

	return nil
}
