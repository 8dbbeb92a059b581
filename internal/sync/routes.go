package sync

import (
	"log"

	"sph_sync/pkg/bitable"
	"sph_sync/pkg/config"
	"sph_sync/pkg/jike"
	"sph_sync/pkg/storage"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.RouterGroup, db *storage.DB, source *jike.Client, store *bitable.Client, cfg *config.Config) {
	handler := NewHandler(db, source, store, cfg)
	r.POST("/run", handler.StartSync)
	r.GET("/runs/:id", handler.GetRun)

	// Добавляем логирование регистрации роута
	log.Printf("[ROUTER] Sync routes registered")
}
