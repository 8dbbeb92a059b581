package sync

import (
	"errors"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"sph_sync/internal/httputil"
	"sph_sync/models"
	"sph_sync/pkg/bitable"
	"sph_sync/pkg/config"
	"sph_sync/pkg/jike"
	"sph_sync/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type SyncHandler struct {
	DB     *storage.DB
	Source *jike.Client
	Store  *bitable.Client
	Cfg    *config.Config
}

func NewHandler(db *storage.DB, source *jike.Client, store *bitable.Client, cfg *config.Config) *SyncHandler {
	return &SyncHandler{
		DB:     db,
		Source: source,
		Store:  store,
		Cfg:    cfg,
	}
}

// Ввод только из цифр, запятых и пробелов считается списком идентификаторов
// и передаётся источнику как есть; любой другой ввод — поиск по имени,
// который выполняется локально по всем аккаунтам.
var idQueryPattern = regexp.MustCompile(`^[\d,\s]+$`)

// StartSync запускает полный прогон синхронизации: выборка статистики,
// поиск маршрута, индекс существующих записей и пакетная запись по каждому
// аккаунту. Ошибка отдельного видео фиксируется в итогах и не прерывает прогон.
func (h *SyncHandler) StartSync(c *gin.Context) {
	var request struct {
		UserIDs   string `json:"user_ids"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}

	log.Printf("[SYNC] Запуск прогона синхронизации")

	// Тело запроса опционально: пустой запрос означает все аккаунты без фильтров.
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		log.Printf("[SYNC ERROR] Неверный формат запроса: %v", err)
		httputil.RespondError(c, http.StatusBadRequest, "Invalid request format")
		return
	}

	ctx := c.Request.Context()

	// Проверяем учётные данные хранилища до начала обработки:
	// отказ обмена токена фатален для всего прогона.
	if _, err := h.Store.AccessToken(ctx); err != nil {
		log.Printf("[SYNC ERROR] Token exchange failed: %v", err)
		httputil.RespondError(c, http.StatusBadGateway, "Store authentication failed")
		return
	}

	input := strings.TrimSpace(request.UserIDs)
	isIDQuery := input != "" && idQueryPattern.MatchString(input)
	apiUserIDs := ""
	if isIDQuery {
		apiUserIDs = input
	}

	accounts, err := h.Source.FetchPostStatistics(ctx, jike.Params{
		UserIDs:   apiUserIDs,
		StartTime: request.StartTime,
		EndTime:   request.EndTime,
	})
	if err != nil {
		log.Printf("[SYNC ERROR] Source fetch failed: %v", err)
		httputil.RespondError(c, http.StatusBadGateway, "Failed to fetch source statistics")
		return
	}

	// Поиск по имени: источник отдал всё, фильтруем локально по подстроке.
	if input != "" && !isIDQuery {
		keyword := strings.ToLower(input)
		filtered := accounts[:0]
		for _, acc := range accounts {
			if strings.Contains(strings.ToLower(acc.Username), keyword) ||
				strings.Contains(strings.ToLower(acc.GroupName), keyword) {
				filtered = append(filtered, acc)
			}
		}
		log.Printf("[SYNC INFO] Фильтр по имени %q: %d из %d аккаунтов", input, len(filtered), len(accounts))
		accounts = filtered
	}

	run := models.SyncRun{
		ID:        uuid.NewString(),
		UserIDs:   request.UserIDs,
		StartTime: request.StartTime,
		EndTime:   request.EndTime,
		Status:    "running",
	}
	if _, err := h.DB.CreateSyncRun(run); err != nil {
		log.Printf("[SYNC ERROR] Run registration failed: %v", err)
		httputil.RespondError(c, http.StatusInternalServerError, "Failed to register sync run")
		return
	}

	opts := bitable.BatchOptions{
		Size:  h.Cfg.Sync.BatchSize,
		Pause: time.Duration(h.Cfg.Sync.BatchPauseMs) * time.Millisecond,
	}

	var totals models.SyncTotals
	position := 0

	for _, account := range accounts {
		// Маршрут ищется по имени группы, а при его отсутствии — по имени аккаунта.
		mappingKey := account.GroupName
		if mappingKey == "" {
			mappingKey = account.Username
		}
		routing := h.Cfg.Routing.Lookup(mappingKey)
		if routing == nil {
			log.Printf("[SYNC WARN] Для %q нет маршрута, записи будут пропущены", mappingKey)
		}

		// Индекс существующих записей по окну времени пакета: один списочный
		// запрос вместо поиска на каждое видео.
		var index bitable.TimeBucketIndex
		if routing != nil && len(account.Videos) > 0 {
			minMs, maxMs := batchWindow(account.Videos)
			index, err = h.Store.BuildIndex(ctx, *routing, account.Username, minMs, maxMs)
			if err != nil {
				// Без индекса совпадения не найдутся и все записи создадутся заново;
				// это лучше, чем оборвать прогон на одном аккаунте.
				log.Printf("[SYNC WARN] Индекс для %q не построен: %v", account.Username, err)
				index = nil
			}
		}

		outcomes := h.Store.SyncBatch(ctx, account.Videos, routing, account.Username, index, opts)
		for _, o := range outcomes {
			totals.Add(o)
			if err := h.DB.AddSyncOutcome(run.ID, position, account.Username, o); err != nil {
				log.Printf("[DB WARN] Итог для %q не сохранён: %v", o.VideoName, err)
			}
			position++
		}
		log.Printf("[SYNC INFO] Аккаунт %q обработан: %d видео", account.Username, len(outcomes))
	}

	if err := h.DB.FinishSyncRun(run.ID, "done", totals); err != nil {
		log.Printf("[DB WARN] Завершение прогона %s не записано: %v", run.ID, err)
	}

	result := gin.H{
		"run_id":    run.ID,
		"accounts":  len(accounts),
		"processed": totals.Processed,
		"created":   totals.Created,
		"updated":   totals.Updated,
		"skipped":   totals.Skipped,
		"errors":    totals.Errors,
	}
	log.Printf("[SYNC INFO] Final result: %+v", result)
	c.JSON(http.StatusOK, result)
}

// GetRun возвращает сохранённый прогон вместе с поитоговыми записями.
func (h *SyncHandler) GetRun(c *gin.Context) {
	runID := c.Param("id")

	run, err := h.DB.GetSyncRun(runID)
	if err != nil {
		httputil.RespondError(c, http.StatusNotFound, "Run not found")
		return
	}
	outcomes, err := h.DB.GetSyncOutcomes(runID)
	if err != nil {
		httputil.RespondError(c, http.StatusInternalServerError, "Failed to load outcomes")
		return
	}

	c.JSON(http.StatusOK, gin.H{"run": run, "outcomes": outcomes})
}

// batchWindow возвращает минимальную и максимальную метки времени пакета (мс).
func batchWindow(videos []models.VideoItem) (int64, int64) {
	minMs, maxMs := int64(0), int64(0)
	for i, v := range videos {
		ms := bitable.PublishTimestampMs(v)
		if i == 0 || ms < minMs {
			minMs = ms
		}
		if ms > maxMs {
			maxMs = ms
		}
	}
	return minMs, maxMs
}
