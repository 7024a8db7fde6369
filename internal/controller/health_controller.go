package controller

import (
	"context"
	"net/http"
	"time"

	"trading_academy_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type HealthController struct {
	Redis *redis.Client
}

func NewHealthController(rdb *redis.Client) *HealthController {
	return &HealthController{Redis: rdb}
}

// @Summary Health check
// @Description Reports service and session store status
// @Tags system
// @Produce json
// @Success 200 {object} util.Response
// @Router /health [get]
func (c *HealthController) HealthCheck(ctx *gin.Context) {
	components := gin.H{"catalog": "up"}

	// Sessions live in memory when Redis is not configured
	if c.Redis == nil {
		components["sessions"] = "memory"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := c.Redis.Ping(pingCtx).Err(); err != nil {
			util.Error(ctx, http.StatusServiceUnavailable, "Session store unavailable")
			return
		}
		components["sessions"] = "up"
	}

	util.Success(ctx, gin.H{
		"status":     "ok",
		"components": components,
	})
}
