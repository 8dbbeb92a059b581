package models

// ScheduleCandidate — видео из хранилища, пригодное для постановки в план
// публикаций. Существует только как результат расчёта и в таблицу не пишется.
type ScheduleCandidate struct {
	RecordID          string `json:"record_id"`           // Идентификатор записи хранилища
	VideoID           string `json:"video_id"`            // Значение поля «视频编号» (контентный идентификатор)
	Description       string `json:"description"`         // Содержимое поля описания
	ReadCount         int    `json:"read_count"`          // Просмотры
	PublishTime       int64  `json:"publish_time"`        // Время публикации, мс Unix
	Account           string `json:"account"`             // Значение поля аккаунта
	GroupName         string `json:"group_name"`          // Группа маршрутизации, из которой взята запись
	RepeatCount       int    `json:"repeat_count"`        // Сколько раз идентификатор встречается в группе
	AccountTodayCount int    `json:"account_today_count"` // Публикации аккаунта за текущие сутки
}

// SchedulePolicy задаёт пороги и списки групп для расчёта плана.
// Нулевые значения заменяются значениями по умолчанию в WithDefaults.
type SchedulePolicy struct {
	Groups       []string `json:"groups" yaml:"groups"`                 // Обрабатываемые группы (allow-list)
	DedupeGroups []string `json:"dedupe_groups" yaml:"dedupe_groups"`   // Группы, где идентификатор оставляется один раз
	MinReadCount int      `json:"min_read_count" yaml:"min_read_count"` // Нижний порог просмотров
	MaxRepeat    int      `json:"max_repeat" yaml:"max_repeat"`         // Верхний порог повторов (исключая)
}

// Пороговые константы бизнес-правила отбора.
const (
	DefaultMinReadCount = 1000
	DefaultMaxRepeat    = 3
)

// WithDefaults возвращает копию политики с заполненными порогами.
func (p SchedulePolicy) WithDefaults() SchedulePolicy {
	if p.MinReadCount == 0 {
		p.MinReadCount = DefaultMinReadCount
	}
	if p.MaxRepeat == 0 {
		p.MaxRepeat = DefaultMaxRepeat
	}
	return p
}

// Dedupe сообщает, действует ли для группы схлопывание повторов идентификатора.
func (p SchedulePolicy) Dedupe(group string) bool {
	for _, g := range p.DedupeGroups {
		if g == group {
			return true
		}
	}
	return false
}
