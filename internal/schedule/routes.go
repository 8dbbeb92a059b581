package schedule

import (
	"log"

	"sph_sync/pkg/bitable"
	"sph_sync/pkg/config"
	"sph_sync/pkg/storage"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.RouterGroup, db *storage.DB, store *bitable.Client, cfg *config.Config) {
	handler := NewHandler(db, store, cfg)
	r.POST("/compute", handler.Compute)

	// Добавляем логирование регистрации роута
	log.Printf("[ROUTER] Schedule routes registered")
}
