package whisper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
)

func TestNewClient(t *testing.T) {
	logger := zap.NewNop()
	client := NewClient("http://localhost:8080", logger)

	if client == nil {
		t.Fatal("клиент не должен быть nil")
	}

	if client.apiURL != "http://localhost:8080" {
		t.Errorf("ожидался apiURL 'http://localhost:8080', получен '%s'", client.apiURL)
	}

	if client.httpClient == nil {
		t.Error("httpClient не должен быть nil")
	}

	if client.logger == nil {
		t.Error("logger не должен быть nil")
	}
}

func TestTranscribeEmptyAudio(t *testing.T) {
	logger := zap.NewNop()

	// Сервер не должен быть вызван вовсе
	var called atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called.Add(1)
	}))
	defer server.Close()

	client := NewClient(server.URL, logger)

	_, err := client.Transcribe(context.Background(), nil, "en")
	if !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("ожидалась ошибка ErrEmptyAudio, получена %v", err)
	}

	if called.Load() != 0 {
		t.Errorf("сетевой вызов не должен выполняться для пустого аудио, выполнено %d", called.Load())
	}
}

func TestTranscribeSuccess(t *testing.T) {
	logger := zap.NewNop()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/asr" {
			t.Errorf("ожидался путь /asr, получен %s", r.URL.Path)
		}
		if r.URL.Query().Get("language") != "en" {
			t.Errorf("ожидалась подсказка языка en, получена %s", r.URL.Query().Get("language"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello my name is Dana","language":"en","duration":2.5}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger)

	text, err := client.Transcribe(context.Background(), []byte("fake audio data"), "en")
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	if text != "hello my name is Dana" {
		t.Errorf("ожидался текст 'hello my name is Dana', получен '%s'", text)
	}
}

func TestTranscribeRetriesOnServerError(t *testing.T) {
	logger := zap.NewNop()

	// Первый вызов падает, повтор успешен
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"ok","language":"en","duration":1.0}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, logger)

	text, err := client.Transcribe(context.Background(), []byte("fake audio data"), "en")
	if err != nil {
		t.Fatalf("неожиданная ошибка после повтора: %v", err)
	}

	if text != "ok" {
		t.Errorf("ожидался текст 'ok', получен '%s'", text)
	}

	if calls.Load() != 2 {
		t.Errorf("ожидалось 2 вызова (исходный + повтор), выполнено %d", calls.Load())
	}
}

func TestTranscribeFailsAfterRetry(t *testing.T) {
	logger := zap.NewNop()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, logger)

	_, err := client.Transcribe(context.Background(), []byte("fake audio data"), "en")
	if err == nil {
		t.Fatal("ожидалась ошибка после исчерпания повторов")
	}

	if calls.Load() != 2 {
		t.Errorf("ожидалось 2 вызова (исходный + повтор), выполнено %d", calls.Load())
	}
}

func TestHealthCheck(t *testing.T) {
	logger := zap.NewNop()
	client := NewClient("http://localhost:1", logger)

	// Тест с несуществующим сервером должен вернуть ошибку
	ctx := context.Background()
	err := client.HealthCheck(ctx)

	if err == nil {
		t.Error("ожидалась ошибка при проверке несуществующего сервера")
	}
}
