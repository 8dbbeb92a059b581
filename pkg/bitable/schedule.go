package bitable

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"sph_sync/models"
)

// Предохранитель полного сканирования: не больше этого числа страниц
// на группу, даже если API продолжает отдавать токен следующей страницы.
const maxScanPages = 100

// scanRow — одна запись полного сканирования группы с проекцией полей,
// нужных для расчёта плана публикаций.
type scanRow struct {
	recordID    string
	videoID     string
	description string
	account     string
	readCount   int
	publishMs   int64
}

// SelectCandidates строит список кандидатов на публикацию по записям
// хранилища. Обрабатываются только группы из allow-list политики; по каждой
// группе выполняется полное сканирование таблицы с проекцией на
// идентификатор, описание, просмотры, время публикации и аккаунт.
//
// По результатам сканирования считаются два счётчика: повторы значения
// идентификатора внутри группы и публикации аккаунта за текущие локальные
// сутки. Во втором проходе запись проходит порог
// readCount >= MinReadCount и repeatCount < MaxRepeat. Прошедшие записи
// всех групп сливаются, сортируются по убыванию просмотров, после чего в
// группах из dedupe-списка остаётся только первое (самое просматриваемое)
// вхождение каждой пары (группа, идентификатор).
func (c *Client) SelectCandidates(ctx context.Context, table models.RoutingTable, policy models.SchedulePolicy) ([]models.ScheduleCandidate, error) {
	policy = policy.WithDefaults()
	var candidates []models.ScheduleCandidate

	dayStart, dayEnd := localDayBounds(c.now())

	for _, group := range policy.Groups {
		entry := table.Lookup(group)
		if entry == nil {
			log.Printf("[SCHEDULE WARN] Для группы %q нет маршрута, пропуск", group)
			continue
		}

		rows, err := c.scanGroup(ctx, *entry)
		if err != nil {
			return nil, fmt.Errorf("сканирование группы %q: %w", group, err)
		}
		log.Printf("[SCHEDULE INFO] Группа %q: прочитано %d записей", group, len(rows))

		// Первый проход: счётчики повторов и публикаций за сутки.
		repeat := make(map[string]int)
		today := make(map[string]int)
		for _, row := range rows {
			if row.videoID != "" {
				repeat[row.videoID]++
			}
			if row.account != "" && row.publishMs >= dayStart && row.publishMs < dayEnd {
				today[row.account]++
			}
		}

		// Второй проход: пороги просмотров и повторов.
		for _, row := range rows {
			if row.videoID == "" {
				continue
			}
			if row.readCount < policy.MinReadCount || repeat[row.videoID] >= policy.MaxRepeat {
				continue
			}
			candidates = append(candidates, models.ScheduleCandidate{
				RecordID:          row.recordID,
				VideoID:           row.videoID,
				Description:       row.description,
				ReadCount:         row.readCount,
				PublishTime:       row.publishMs,
				Account:           row.account,
				GroupName:         group,
				RepeatCount:       repeat[row.videoID],
				AccountTodayCount: today[row.account],
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].ReadCount > candidates[j].ReadCount
	})

	// Схлопывание повторов после сортировки: первое вхождение пары
	// (группа, идентификатор) и есть самое просматриваемое.
	seen := make(map[string]bool)
	deduped := candidates[:0]
	for _, cand := range candidates {
		if policy.Dedupe(cand.GroupName) {
			key := cand.GroupName + "\x00" + cand.VideoID
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		deduped = append(deduped, cand)
	}

	log.Printf("[SCHEDULE INFO] Отобрано %d кандидатов", len(deduped))
	return deduped, nil
}

// scanGroup выполняет полное постраничное сканирование таблицы группы.
// Имена полей идентификатора и аккаунта разрешаются через цепочки
// запасных имён; отказ по одному из имён перезапускает сканирование
// со следующим именем цепочки.
func (c *Client) scanGroup(ctx context.Context, entry models.RoutingEntry) ([]scanRow, error) {
	var rows []scanRow

	err := VideoIDField.Resolve(func(idField string) error {
		return AccountField.Resolve(func(accField string) error {
			rows = rows[:0]

			pageToken := ""
			for page := 0; page < maxScanPages; page++ {
				list, err := c.ListRecords(ctx, entry, ListQuery{
					FieldNames: []string{idField, FieldDescription, FieldReadCount, FieldPublishTime, accField},
					PageToken:  pageToken,
				})
				if err != nil {
					return err
				}

				for _, item := range list.Items {
					rows = append(rows, scanRow{
						recordID:    item.RecordID,
						videoID:     fieldString(item.Fields[idField]),
						description: fieldString(item.Fields[FieldDescription]),
						account:     fieldString(item.Fields[accField]),
						readCount:   int(fieldNumber(item.Fields[FieldReadCount])),
						publishMs:   recordTimestampMs(item.Fields[FieldPublishTime]),
					})
				}

				if !list.HasMore || list.PageToken == "" {
					return nil
				}
				pageToken = list.PageToken
			}
			log.Printf("[SCHEDULE WARN] Достигнут предел страниц (%d) для таблицы %s", maxScanPages, entry.TableID)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// localDayBounds возвращает границы текущих локальных суток в мс Unix.
func localDayBounds(now time.Time) (int64, int64) {
	now = now.In(time.Local)
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return start.UnixMilli(), start.Add(24 * time.Hour).UnixMilli()
}

// fieldString приводит значение колонки к строке: текстовые колонки
// приходят строками, числовые идентификаторы — числами.
func fieldString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		// Идентификаторы — целые значения, экспоненциальная форма не нужна.
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

func fieldNumber(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
