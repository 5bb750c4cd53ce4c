package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports whether the caixa backend can reach its Postgres store and
// the Redis job queue. Degraded dependencies yield 503 so the terminal can
// warn the recebedor before a shift starts; no credentials or internals leak.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		filaStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			filaStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || filaStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		c.JSON(status, gin.H{
			"ok":      status == http.StatusOK,
			"service": "movecaixa",
			"db":      dbStatus,
			"fila":    filaStatus,
		})
	}
}
