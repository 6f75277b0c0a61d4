package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookerloo/booking-api/internal/constants"
	"github.com/bookerloo/booking-api/internal/database"
	"github.com/bookerloo/booking-api/internal/models"
)

// bookingVisibleTo applies the access rule: booking client, booking provider,
// or admin. Missing user records deny.
func bookingVisibleTo(userID uint64, booking *models.Booking) bool {
	var user models.User
	if err := database.GetDB().First(&user, userID).Error; err != nil {
		return false
	}
	if user.IsAdmin() {
		return true
	}
	return booking.ClientID == userID || booking.ProviderID == userID
}

// RequireBookingAccess checks that the user is the booking's client, its
// provider, or an admin. The loaded booking is stashed in the context.
func RequireBookingAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		bookingIDStr := c.Param("id")
		bookingID, err := strconv.ParseUint(bookingIDStr, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid booking ID",
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

		var booking models.Booking
		if err := database.GetDB().First(&booking, bookingID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Booking not found",
			})
			c.Abort()
			return
		}

		// Return 404 instead of 403 to avoid leaking booking existence
		if !bookingVisibleTo(userID, &booking) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Booking not found",
			})
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyBooking, booking)
		c.Next()
	}
}
