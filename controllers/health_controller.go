package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/cracker/store"
	"github.com/cppla/cracker/utils"
)

// HealthController reports whether the service and its backends respond.
type HealthController struct {
	store *store.Store
}

// NewHealthController creates a new HealthController instance.
func NewHealthController(s *store.Store) *HealthController {
	return &HealthController{store: s}
}

// GetHealth pings the database and Redis. It always answers 200 so load
// balancers can tell a slow backend from a dead process.
func (h *HealthController) GetHealth(ctx *gin.Context) {
	c, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	dbErr := h.store.Ping(c)
	redisErr := utils.PingRedis(c)

	status := "ok"
	if dbErr != nil || redisErr != nil {
		status = "degraded"
		utils.Sugar.Warnw("health check degraded", "db_error", dbErr, "redis_error", redisErr)
	}

	utils.Respond(ctx, http.StatusOK, 0, "success", gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"database":  gin.H{"connected": dbErr == nil},
		"redis":     gin.H{"connected": redisErr == nil, "enabled": utils.GetRedis() != nil},
	})
}
