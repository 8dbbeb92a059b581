package middleware

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

// AuthRequired проверяет наличие корректного статичного Bearer-токена.
// Токен берётся из окружения; при пустом значении проверка отключена,
// что удобно для локальных запусков рядом с источником статистики.
func AuthRequired() gin.HandlerFunc {
	token := os.Getenv("API_TOKEN")
	expected := "Bearer " + token
	return func(c *gin.Context) {
		if token != "" && c.GetHeader("Authorization") != expected {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
