package bitable

import (
	"context"
	"log"
	"sync"
	"time"

	"sph_sync/internal/common"
	"sph_sync/models"
)

// BatchOptions объединяет параметры дросселирования записи: размер волны
// ограничивает число одновременных запросов к хранилищу, пауза между
// волнами сглаживает пиковую нагрузку.
type BatchOptions struct {
	Size  int           // Записей в волне; одновременно в полёте не больше этого числа
	Pause time.Duration // Пауза между волнами
}

// Значения по умолчанию подобраны под лимиты API хранилища.
func (o BatchOptions) withDefaults() BatchOptions {
	if o.Size <= 0 {
		o.Size = 5
	}
	if o.Pause <= 0 {
		o.Pause = 50 * time.Millisecond
	}
	return o
}

// SyncBatch синхронизирует пакет видео одного аккаунта с таблицей хранилища.
// На каждое видео возвращается ровно один итог, порядок итогов совпадает
// с порядком входа. Волны выполняются строго последовательно; внутри волны
// запросы идут параллельно, но результат каждой записи кладётся на её
// входную позицию. Ошибка отдельной записи никогда не прерывает пакет.
//
// Если маршрут не задан, все записи помечаются как пропущенные
// без единого обращения к хранилищу.
func (c *Client) SyncBatch(ctx context.Context, videos []models.VideoItem, routing *models.RoutingEntry, accountName string, index TimeBucketIndex, opts BatchOptions) []models.SyncOutcome {
	opts = opts.withDefaults()
	outcomes := make([]models.SyncOutcome, len(videos))

	if routing == nil {
		for i, v := range videos {
			outcomes[i] = models.SyncOutcome{
				VideoName: v.Name,
				Status:    models.OutcomeSkipped,
				Message:   "配置缺失",
			}
		}
		return outcomes
	}

	for start := 0; start < len(videos); start += opts.Size {
		if start > 0 {
			if err := common.Pause(ctx, opts.Pause); err != nil {
				// Прогон остановлен: оставшиеся записи получают итог-ошибку,
				// чтобы на каждую входную запись пришёлся ровно один итог.
				for i := start; i < len(videos); i++ {
					outcomes[i] = models.SyncOutcome{
						VideoName: videos[i].Name,
						Status:    models.OutcomeError,
						Message:   err.Error(),
					}
				}
				return outcomes
			}
		}

		end := start + opts.Size
		if end > len(videos) {
			end = len(videos)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				outcomes[i] = c.syncOne(ctx, videos[i], *routing, accountName, index)
			}(i)
		}
		wg.Wait()
	}

	return outcomes
}

// syncOne записывает одно видео: при совпадении с существующей записью —
// частичное обновление без поля описания, иначе — создание новой записи.
func (c *Client) syncOne(ctx context.Context, video models.VideoItem, routing models.RoutingEntry, accountName string, index TimeBucketIndex) models.SyncOutcome {
	outcome := models.SyncOutcome{VideoName: video.Name}
	fields := VideoFields(video, accountName)

	recordID, matched := Match(PublishTimestampMs(video), video.Name, index)
	if matched {
		if err := c.UpdateRecord(ctx, routing, recordID, UpdateFields(fields)); err != nil {
			log.Printf("[SYNC ERROR] Обновление %q: %v", video.Name, err)
			outcome.Status = models.OutcomeError
			outcome.Message = RewriteStoreError(err)
			return outcome
		}
		outcome.Status = models.OutcomeUpdated
		return outcome
	}

	if _, err := c.CreateRecord(ctx, routing, fields); err != nil {
		log.Printf("[SYNC ERROR] Создание %q: %v", video.Name, err)
		outcome.Status = models.OutcomeError
		outcome.Message = RewriteStoreError(err)
		return outcome
	}
	outcome.Status = models.OutcomeCreated
	return outcome
}
