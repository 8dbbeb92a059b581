package bitable

// Match ищет в индексе запись, соответствующую видео источника: корзина
// усечённой минуты плюс точное совпадение описания. Отсутствие кандидата
// или несовпадение описания — не ошибка, а признак новой записи.
//
// Эвристика заведомо неточна: два разных видео одной минуты с одинаковым
// описанием неразличимы, а малейшая правка описания даёт дубль. Усиливать
// сопоставление (например, хэшем контента) без подтверждения семантики нельзя.
func Match(epochMs int64, description string, index TimeBucketIndex) (string, bool) {
	for _, ref := range index[Bucket(epochMs)] {
		if ref.Description == description {
			return ref.ID, true
		}
	}
	return "", false
}
