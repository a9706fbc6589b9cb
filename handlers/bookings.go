package handlers

import (
	"net/http"
	"strconv"

	bookinglogRepo "slotify/database/repository/bookinglog"
	"slotify/utils"

	"github.com/gin-gonic/gin"
)

// RecentBookingsHandler lists the most recently confirmed bookings, newest
// first. The optional "limit" query parameter caps the page size at 100.
func RecentBookingsHandler(repo bookinglogRepo.BookingLogRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 20
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				utils.JSONError(c, http.StatusBadRequest, "Invalid limit", "limit must be a positive integer")
				return
			}
			limit = parsed
		}
		if limit > 100 {
			limit = 100
		}

		records, err := repo.Recent(c.Request.Context(), limit)
		if err != nil {
			utils.JSONError(c, http.StatusInternalServerError, "Failed to fetch bookings", err.Error())
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": records, "count": len(records)})
	}
}
