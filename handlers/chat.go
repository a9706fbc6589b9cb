package handlers

import (
	"net/http"

	"slotify/models"
	"slotify/services/agent"
	"slotify/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChatHandler runs one text turn of the scheduling conversation. An empty
// sessionId starts a new conversation; the minted id comes back in the reply.
func ChatHandler(agentSvc agent.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := utils.GetLogger()

		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
			return
		}

		resp := agentSvc.ProcessTurn(c.Request.Context(), req.SessionID, req.Message)
		logger.Debug("Chat turn processed",
			zap.String("sessionId", resp.SessionID),
			zap.String("stage", string(resp.Stage)))
		c.JSON(http.StatusOK, resp)
	}
}

// ResetHandler discards a conversation's progress and starts over.
func ResetHandler(agentSvc agent.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ResetRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid request", err.Error())
			return
		}
		c.JSON(http.StatusOK, agentSvc.Reset(req.SessionID))
	}
}
