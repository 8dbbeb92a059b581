package bitable

import (
	"strconv"
	"strings"
	"time"

	"sph_sync/models"
)

// convert.go собирает преобразования единиц между источником статистики
// и колонками таблицы: проценты в доли, строки секунд в числа,
// секунды Unix в миллисекунды.

// ParsePercent переводит строку вида "85.50%" в долю 0..1.
// Нечитаемые значения превращаются в 0, а не в ошибку: метрика
// второстепенная и не должна ронять запись целиком.
func ParsePercent(val string) float64 {
	clean := strings.TrimSpace(strings.ReplaceAll(val, "%", ""))
	if clean == "" {
		return 0
	}
	num, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0
	}
	return num / 100
}

// ParseSeconds извлекает число из строки вида "15.30秒": отбрасывает всё,
// кроме цифр и точки.
func ParseSeconds(val string) float64 {
	var b strings.Builder
	for _, r := range val {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	num, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return num
}

// Строковые форматы времени публикации, встречающиеся в источнике и таблицах.
var publishTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
}

// PublishTimestampMs возвращает время публикации видео в миллисекундах Unix.
// Предпочтение отдаётся числовому полю источника; строка разбирается
// в локальном часовом поясе. 0 означает, что время определить не удалось.
func PublishTimestampMs(v models.VideoItem) int64 {
	if v.CreateTimestamp > 0 {
		return v.CreateTimestamp * 1000
	}
	for _, layout := range publishTimeLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(v.CreateTime), time.Local); err == nil {
			return t.UnixMilli()
		}
	}
	return 0
}

// VideoFields собирает набор полей для записи в таблицу.
// Колонки-даты принимают миллисекунды, проценты — доли 0..1.
func VideoFields(v models.VideoItem, accountName string) map[string]any {
	fields := map[string]any{
		FieldAccount:     accountName,
		FieldReadCount:   v.ReadCount,
		FieldRecommend:   v.FavCount,
		FieldComment:     v.CommentCount,
		FieldShare:       v.ForwardCount,
		FieldForwardAgg:  v.ForwardAggregationCount,
		FieldLike:        v.LikeCount,
		FieldFullPlay:    ParsePercent(v.FullPlayRate),
		FieldAvgPlay:     ParseSeconds(v.AvgPlayTimeSec),
		FieldDescription: v.Name,
	}
	if ms := PublishTimestampMs(v); ms > 0 {
		fields[FieldPublishTime] = ms
	}
	return fields
}

// UpdateFields возвращает набор полей для частичного обновления: описание
// контента исключается всегда, чтобы не затирать ручные правки в таблице.
func UpdateFields(fields map[string]any) map[string]any {
	update := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == FieldDescription {
			continue
		}
		update[k] = v
	}
	return update
}
