package retry

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
)

// Policy описывает политику повторов для одного класса вызовов
type Policy struct {
	MaxRetries  uint64        // количество повторов после первой попытки
	Backoff     time.Duration // базовая задержка между попытками
	Exponential bool          // удваивать ли задержку после каждой попытки
}

// RemoteCall — политика для внешних API (транскрибация, оценка):
// одна дополнительная попытка через фиксированную секунду
var RemoteCall = Policy{
	MaxRetries: 1,
	Backoff:    time.Second,
}

// Persistence — политика для записей в хранилище:
// до 3 попыток с экспоненциальной задержкой 100/200 мс между ними
var Persistence = Policy{
	MaxRetries:  2,
	Backoff:     100 * time.Millisecond,
	Exponential: true,
}

// Do выполняет fn согласно политике повторов.
// Любая ошибка fn считается повторяемой; исчерпание попыток
// возвращает последнюю ошибку без обертки.
func Do(ctx context.Context, policy Policy, logger *zap.Logger, operation string, fn func(ctx context.Context) error) error {
	var backoff retry.Backoff
	if policy.Exponential {
		backoff = retry.NewExponential(policy.Backoff)
	} else {
		backoff = retry.NewConstant(policy.Backoff)
	}
	backoff = retry.WithMaxRetries(policy.MaxRetries, backoff)

	attempt := 0
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := fn(ctx); err != nil {
			logger.Warn("попытка не удалась",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		logger.Error("все попытки исчерпаны",
			zap.String("operation", operation),
			zap.Int("attempts", attempt),
			zap.Error(err))
	}
	return err
}
