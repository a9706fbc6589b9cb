package handlers

import (
	"net/http"

	"slotify/services/agent"
	"slotify/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports dependency status and the number of live sessions.
func HealthHandler(agentSvc agent.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := utils.GetHealthStatus()
		status := "ok"
		// Before the first monitor tick the snapshot is zero, not a failure.
		if !health.CheckedAt.IsZero() && (!health.Mongo || !health.Redis) {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":         status,
			"mongo":          health.Mongo,
			"redis":          health.Redis,
			"checkedAt":      health.CheckedAt,
			"activeSessions": agentSvc.ActiveSessions(),
		})
	}
}
