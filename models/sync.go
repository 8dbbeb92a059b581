package models

import "time"

// Статусы обработки одной записи при синхронизации.
const (
	OutcomeCreated = "created" // Создана новая запись в хранилище
	OutcomeUpdated = "updated" // Обновлена существующая запись
	OutcomeSkipped = "skipped" // Нет маршрута, хранилище не вызывалось
	OutcomeError   = "error"   // Ошибка, зафиксированная на уровне записи
)

// SyncOutcome фиксирует итог обработки одного видео.
// На каждую входную запись приходится ровно один итог;
// ошибки отдельных записей не прерывают прогон.
type SyncOutcome struct {
	VideoName string `json:"video_name"`        // Название видео для журнала
	Status    string `json:"status"`            // Один из Outcome*-статусов
	Message   string `json:"message,omitempty"` // Пояснение для skipped/error
}

// SyncTotals агрегирует итоги прогона для ответа и журнала.
type SyncTotals struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
	Errors    int `json:"errors"`
}

// Add учитывает итог одной записи в счётчиках прогона.
func (t *SyncTotals) Add(o SyncOutcome) {
	t.Processed++
	switch o.Status {
	case OutcomeCreated:
		t.Created++
	case OutcomeUpdated:
		t.Updated++
	case OutcomeSkipped:
		t.Skipped++
	case OutcomeError:
		t.Errors++
	}
}

// SyncRun отражает запись таблицы sync_runs: один запуск синхронизации
// с фильтрами запроса и итоговыми счётчиками.
type SyncRun struct {
	ID        string     `json:"id"`
	UserIDs   string     `json:"user_ids"`   // Фильтр по идентификаторам аккаунтов, как пришёл в запросе
	StartTime string     `json:"start_time"` // Начало диапазона дат источника
	EndTime   string     `json:"end_time"`   // Конец диапазона дат источника
	Status    string     `json:"status"`     // running / done / failed
	Totals    SyncTotals `json:"totals"`
	CreatedAt time.Time  `json:"created_at"`
}
