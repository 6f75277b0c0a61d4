package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bookerloo/booking-api/internal/dto"
	apierrors "github.com/bookerloo/booking-api/internal/errors"
	"github.com/bookerloo/booking-api/internal/middleware"
	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/repository"
	"github.com/bookerloo/booking-api/internal/services"
	"github.com/bookerloo/booking-api/internal/utils"
)

// BookingHandler serves the booking-level read surface and the admin delete.
type BookingHandler struct {
	bookingService   *services.BookingService
	milestoneService *services.MilestoneService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *services.BookingService, milestoneService *services.MilestoneService) *BookingHandler {
	return &BookingHandler{
		bookingService:   bookingService,
		milestoneService: milestoneService,
	}
}

// ListBookings returns the caller's bookings (all bookings for admins)
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.BookingFilter{
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.BookingStatus(statusStr)
		filter.Status = &status
	}

	bookings, total, err := h.bookingService.ListBookings(userID, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.BookingDTO, len(bookings))
	for i, b := range bookings {
		items[i] = dto.ToBookingDTO(b)
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": items,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetBooking returns one booking with its milestones
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	booking, ok := bookingFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Booking not found in context")
		return
	}

	full, err := h.bookingService.GetBooking(booking.ID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingDTO(*full))
}

// ListMilestones returns the booking's milestones in display order
func (h *BookingHandler) ListMilestones(c *gin.Context) {
	booking, ok := bookingFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Booking not found in context")
		return
	}

	milestones, err := h.milestoneService.ListMilestones(booking.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.MilestoneDTO, len(milestones))
	for i, m := range milestones {
		items[i] = dto.ToMilestoneDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{"milestones": items})
}

// DeleteBooking removes a booking and its entire work breakdown (admin only)
func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	booking, ok := bookingFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Booking not found in context")
		return
	}

	if err := h.bookingService.DeleteBooking(booking.ID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Booking deleted successfully",
	})
}
