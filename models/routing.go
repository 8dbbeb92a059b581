package models

// RoutingEntry указывает физическое расположение таблицы в хранилище
// для логического имени аккаунта или группы. BaseToken может быть
// wiki-токеном, который перед обращением к API нужно разрешить.
type RoutingEntry struct {
	BaseToken string `json:"base_token" yaml:"base_token"` // Токен приложения или wiki-узла
	TableID   string `json:"table_id" yaml:"table_id"`     // Идентификатор таблицы внутри приложения
}

// RoutingTable сопоставляет имя аккаунта или группы с записью маршрутизации.
// Таблица читается из конфигурации и для движков синхронизации неизменяема.
type RoutingTable map[string]RoutingEntry

// Lookup возвращает запись для ключа группы, а при её отсутствии — nil.
// Отсутствие маршрута не ошибка: записи без маршрута помечаются как пропущенные.
func (t RoutingTable) Lookup(key string) *RoutingEntry {
	entry, ok := t[key]
	if !ok || entry.BaseToken == "" || entry.TableID == "" {
		return nil
	}
	return &entry
}
