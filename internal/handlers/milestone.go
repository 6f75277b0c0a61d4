package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookerloo/booking-api/internal/dto"
	apierrors "github.com/bookerloo/booking-api/internal/errors"
	"github.com/bookerloo/booking-api/internal/middleware"
	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/services"
)

// MilestoneHandler serves milestone CRUD and status transitions.
type MilestoneHandler struct {
	milestoneService *services.MilestoneService
}

// NewMilestoneHandler creates a new MilestoneHandler
func NewMilestoneHandler(milestoneService *services.MilestoneService) *MilestoneHandler {
	return &MilestoneHandler{
		milestoneService: milestoneService,
	}
}

// CreateMilestone creates a milestone under the booking in context
func (h *MilestoneHandler) CreateMilestone(c *gin.Context) {
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

	type CreateMilestoneRequest struct {
		Title       string     `json:"title" binding:"required"`
		Description string     `json:"description"`
		Weight      float64    `json:"weight"`
		OrderIndex  int        `json:"order_index"`
		DueDate     *time.Time `json:"due_date"`
	}

	var req CreateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	milestone, err := h.milestoneService.CreateMilestone(services.CreateMilestoneInput{
		BookingID:   booking.ID,
		ActorID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Weight:      req.Weight,
		OrderIndex:  req.OrderIndex,
		DueDate:     req.DueDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToMilestoneDTO(*milestone))
}

// GetMilestone returns the milestone with its tasks
func (h *MilestoneHandler) GetMilestone(c *gin.Context) {
	milestone, ok := milestoneFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Milestone not found in context")
		return
	}

	full, err := h.milestoneService.GetMilestone(milestone.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMilestoneDTO(*full))
}

// UpdateMilestone updates the milestone's descriptive fields
func (h *MilestoneHandler) UpdateMilestone(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	milestone, ok := milestoneFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Milestone not found in context")
		return
	}

	type UpdateMilestoneRequest struct {
		Title        *string    `json:"title"`
		Description  *string    `json:"description"`
		Weight       *float64   `json:"weight"`
		OrderIndex   *int       `json:"order_index"`
		DueDate      *time.Time `json:"due_date"`
		ClearDueDate bool       `json:"clear_due_date"`
	}

	var req UpdateMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.milestoneService.UpdateMilestone(milestone.ID, services.UpdateMilestoneInput{
		ActorID:      userID,
		Title:        req.Title,
		Description:  req.Description,
		Weight:       req.Weight,
		OrderIndex:   req.OrderIndex,
		DueDate:      req.DueDate,
		ClearDueDate: req.ClearDueDate,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMilestoneDTO(*updated))
}

// UpdateMilestoneStatus sets the milestone's display status
func (h *MilestoneHandler) UpdateMilestoneStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	milestone, ok := milestoneFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Milestone not found in context")
		return
	}

	type UpdateStatusRequest struct {
		Status models.MilestoneStatus `json:"status" binding:"required"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.milestoneService.UpdateMilestoneStatus(milestone.ID, req.Status, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToMilestoneDTO(*updated))
}

// DeleteMilestone removes the milestone, its tasks and their approvals
func (h *MilestoneHandler) DeleteMilestone(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	milestone, ok := milestoneFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Milestone not found in context")
		return
	}

	if err := h.milestoneService.DeleteMilestone(milestone.ID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Milestone deleted successfully",
	})
}
