package schedule

import (
	"log"
	"net/http"

	"sph_sync/internal/httputil"
	"sph_sync/pkg/bitable"
	"sph_sync/pkg/config"
	"sph_sync/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ScheduleHandler struct {
	DB    *storage.DB
	Store *bitable.Client
	Cfg   *config.Config
}

func NewHandler(db *storage.DB, store *bitable.Client, cfg *config.Config) *ScheduleHandler {
	return &ScheduleHandler{
		DB:    db,
		Store: store,
		Cfg:   cfg,
	}
}

// Compute рассчитывает список кандидатов на публикацию по текущему
// содержимому хранилища и сохраняет снимок результата.
func (h *ScheduleHandler) Compute(c *gin.Context) {
	log.Printf("[SCHEDULE] Запуск расчёта плана публикаций")

	candidates, err := h.Store.SelectCandidates(c.Request.Context(), h.Cfg.Routing, h.Cfg.Schedule)
	if err != nil {
		log.Printf("[SCHEDULE ERROR] Расчёт не выполнен: %v", err)
		httputil.RespondError(c, http.StatusBadGateway, "Schedule computation failed")
		return
	}

	runID := uuid.NewString()
	if err := h.DB.CreateScheduleRun(runID, len(candidates)); err != nil {
		log.Printf("[DB WARN] Расчёт %s не зарегистрирован: %v", runID, err)
	} else if err := h.DB.AddScheduleCandidates(runID, candidates); err != nil {
		log.Printf("[DB WARN] Снимок кандидатов %s не сохранён: %v", runID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id": runID,
		"count":  len(candidates),
		"items":  candidates,
	})
}
