package common

import (
	"context"
	"time"
)

// Pause выдерживает паузу между волнами запросов и прекращает ожидание
// при отмене контекста, чтобы остановка прогона не зависала на задержке.
func Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		// Возвращаем ошибку контекста, чтобы вызвать обработку прерывания выше по стеку.
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
