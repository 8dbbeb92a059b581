package models

// VideoItem описывает одно опубликованное видео в ответе статистического API.
// Числовые метрики приходят готовыми числами, а показатели досмотра и средней
// длительности — строками вида "85.50%" и "15.30秒", конвертация выполняется
// перед записью в хранилище.
type VideoItem struct {
	Name                    string `json:"name"`                    // Отображаемое название (текст публикации)
	CreateTime              string `json:"createTime"`              // Время публикации строкой "yyyy-MM-dd HH:mm"
	CreateTimestamp         int64  `json:"create_time"`             // Время публикации в секундах Unix
	URL                     string `json:"url"`                     // Ссылка на видео
	ReadCount               int    `json:"readCount"`               // Просмотры
	LikeCount               int    `json:"likeCount"`               // Лайки
	CommentCount            int    `json:"commentCount"`            // Комментарии
	ForwardCount            int    `json:"forwardCount"`            // Репосты
	ForwardAggregationCount int    `json:"forwardAggregationCount"` // Пересылки в чаты и ленту
	FavCount                int    `json:"favCount"`                // Добавления в избранное
	FullPlayRate            string `json:"fullPlayRate"`            // Доля полного досмотра, "NN.NN%"
	AvgPlayTimeSec          string `json:"avgPlayTimeSec"`          // Средняя длительность просмотра, "NN.NN秒"
}

// AccountData группирует видео одного аккаунта источника статистики.
type AccountData struct {
	UserID     int64       `json:"user_id"`
	Username   string      `json:"username"`
	GroupName  string      `json:"group_name"` // Имя группы для поиска маршрута; может быть пустым
	WindowName string      `json:"window_name"`
	Platform   string      `json:"platform"`
	TotalCount int         `json:"total_count"`
	Videos     []VideoItem `json:"videos"`
}
