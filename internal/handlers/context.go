package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/bookerloo/booking-api/internal/constants"
	"github.com/bookerloo/booking-api/internal/models"
)

// Entities loaded by the access middlewares are stashed in the gin context;
// these helpers pull them back out.

func bookingFromContext(c *gin.Context) (models.Booking, bool) {
	v, exists := c.Get(constants.ContextKeyBooking)
	if !exists {
		return models.Booking{}, false
	}
	booking, ok := v.(models.Booking)
	return booking, ok
}

func milestoneFromContext(c *gin.Context) (models.Milestone, bool) {
	v, exists := c.Get(constants.ContextKeyMilestone)
	if !exists {
		return models.Milestone{}, false
	}
	milestone, ok := v.(models.Milestone)
	return milestone, ok
}

func taskFromContext(c *gin.Context) (models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := v.(models.Task)
	return task, ok
}
