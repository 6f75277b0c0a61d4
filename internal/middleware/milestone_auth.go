package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookerloo/booking-api/internal/constants"
	"github.com/bookerloo/booking-api/internal/database"
	"github.com/bookerloo/booking-api/internal/models"
)

// RequireMilestoneAccess checks that the user may see the milestone's owning
// booking. Milestone and booking are stashed in the context.
func RequireMilestoneAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		milestoneIDStr := c.Param("id")
		milestoneID, err := strconv.ParseUint(milestoneIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid milestone ID",
			})
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			c.Abort()
			return
		}

		var milestone models.Milestone
		if err := database.GetDB().First(&milestone, milestoneID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Milestone not found",
			})
			c.Abort()
			return
		}

		var booking models.Booking
		if err := database.GetDB().First(&booking, milestone.BookingID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Milestone not found",
			})
			c.Abort()
			return
		}

		if !bookingVisibleTo(userID, &booking) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Milestone not found",
			})
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyMilestone, milestone)
		c.Set(constants.ContextKeyBooking, booking)
		c.Next()
	}
}
