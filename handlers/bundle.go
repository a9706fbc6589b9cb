// File: slotify/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Conversation endpoints
	ChatHandler      gin.HandlerFunc
	VoiceChatHandler gin.HandlerFunc
	ResetHandler     gin.HandlerFunc

	// Booking endpoints
	RecentBookingsHandler gin.HandlerFunc

	// Ops endpoints
	HealthHandler gin.HandlerFunc
}
