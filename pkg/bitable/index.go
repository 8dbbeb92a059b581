package bitable

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"sph_sync/models"
)

// Ширина минутной корзины и запас расширения окна выборки.
// Таблица может хранить время публикации с точностью до минуты,
// поэтому совпадение ищется по усечённой минуте, а окно запроса
// расширяется на минуту в обе стороны от краёв пакета.
const (
	bucketSizeMs   = int64(60_000)
	windowMarginMs = int64(60_000)
)

// RecordRef — минимум сведений о существующей записи для сопоставления.
type RecordRef struct {
	ID          string
	Description string
}

// TimeBucketIndex группирует существующие записи по усечённой минуте
// времени публикации. Строится один раз на аккаунт за прогон и
// отбрасывается после него.
type TimeBucketIndex map[int64][]RecordRef

// Bucket усекает метку времени (мс) до начала её минуты.
func Bucket(epochMs int64) int64 {
	return epochMs / bucketSizeMs * bucketSizeMs
}

// BuildIndex выбирает из таблицы записи аккаунта в окне [minMs, maxMs]
// (расширенном на минуту с каждой стороны) и раскладывает их по минутным
// корзинам. Запрашиваются только время публикации и описание; имя поля
// аккаунта разрешается через цепочку запасных имён.
func (c *Client) BuildIndex(ctx context.Context, entry models.RoutingEntry, accountValue string, minMs, maxMs int64) (TimeBucketIndex, error) {
	index := make(TimeBucketIndex)
	minMs -= windowMarginMs
	maxMs += windowMarginMs

	err := AccountField.Resolve(func(accField string) error {
		// При повторе с запасным именем собираем индекс заново,
		// чтобы не смешивать результаты двух попыток.
		index = make(TimeBucketIndex)

		pageToken := ""
		for {
			page, err := c.ListRecords(ctx, entry, ListQuery{
				Filter:     fmt.Sprintf("CurrentValue.[%s]=%q", accField, accountValue),
				FieldNames: []string{FieldPublishTime, FieldDescription},
				PageToken:  pageToken,
			})
			if err != nil {
				return err
			}

			for _, item := range page.Items {
				ts := recordTimestampMs(item.Fields[FieldPublishTime])
				if ts <= 0 || ts < minMs || ts > maxMs {
					continue
				}
				desc, _ := item.Fields[FieldDescription].(string)
				bucket := Bucket(ts)
				index[bucket] = append(index[bucket], RecordRef{ID: item.RecordID, Description: desc})
			}

			if !page.HasMore || page.PageToken == "" {
				break
			}
			pageToken = page.PageToken
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[BITABLE INFO] Индекс аккаунта %q: %d минутных корзин", accountValue, len(index))
	return index, nil
}

// recordTimestampMs разбирает значение колонки времени публикации:
// таблица отдаёт либо число миллисекунд, либо строку с датой.
func recordTimestampMs(val any) int64 {
	switch v := val.(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case string:
		for _, layout := range publishTimeLayouts {
			if t, err := time.ParseInLocation(layout, strings.TrimSpace(v), time.Local); err == nil {
				return t.UnixMilli()
			}
		}
	}
	return 0
}
