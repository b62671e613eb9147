package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	logger := zap.NewNop()

	calls := 0
	err := Do(context.Background(), Persistence, logger, "test", func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRetriesUntilSuccess(t *testing.T) {
	logger := zap.NewNop()

	// Первые две попытки падают, третья успешна
	calls := 0
	err := Do(context.Background(), Persistence, logger, "test", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("временная ошибка")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsPersistencePolicy(t *testing.T) {
	logger := zap.NewNop()

	calls := 0
	var stamps []time.Time
	err := Do(context.Background(), Persistence, logger, "test", func(ctx context.Context) error {
		calls++
		stamps = append(stamps, time.Now())
		return errors.New("хранилище недоступно")
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)

	// Задержки растут экспоненциально: >=100мс, затем >=200мс
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 100*time.Millisecond)
	assert.GreaterOrEqual(t, stamps[2].Sub(stamps[1]), 200*time.Millisecond)
}

func TestDoRemoteCallRetriesOnce(t *testing.T) {
	logger := zap.NewNop()

	// Для теста сокращаем секундную задержку, сохраняя один повтор
	policy := Policy{MaxRetries: RemoteCall.MaxRetries, Backoff: 10 * time.Millisecond}

	calls := 0
	err := Do(context.Background(), policy, logger, "test", func(ctx context.Context) error {
		calls++
		return errors.New("сервис недоступен")
	})

	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestDoRespectsContextCancellation(t *testing.T) {
	logger := zap.NewNop()

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := Do(ctx, Persistence, logger, "test", func(ctx context.Context) error {
		calls++
		cancel()
		return errors.New("ошибка")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
