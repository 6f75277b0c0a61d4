package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bookerloo/booking-api/internal/dto"
	apierrors "github.com/bookerloo/booking-api/internal/errors"
	"github.com/bookerloo/booking-api/internal/middleware"
	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/services"
)

// ApprovalHandler serves the sign-off workflow.
type ApprovalHandler struct {
	approvalService *services.ApprovalService
}

// NewApprovalHandler creates a new ApprovalHandler
func NewApprovalHandler(approvalService *services.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{
		approvalService: approvalService,
	}
}

// RequestApproval opens a sign-off request on a task or milestone
func (h *ApprovalHandler) RequestApproval(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type RequestApprovalRequest struct {
		TargetType models.ApprovalTargetType `json:"target_type" binding:"required"`
		TargetID   uint64                    `json:"target_id" binding:"required"`
		Comment    string                    `json:"comment"`
	}

	var req RequestApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	record, err := h.approvalService.RequestApproval(services.RequestApprovalInput{
		TargetType:  req.TargetType,
		TargetID:    req.TargetID,
		RequesterID: userID,
		Comment:     req.Comment,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToApprovalRecordDTO(*record))
}

// ResolveApproval settles a pending sign-off request
func (h *ApprovalHandler) ResolveApproval(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	approvalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid approval ID")
		return
	}

	type ResolveApprovalRequest struct {
		Decision models.ApprovalRecordStatus `json:"decision" binding:"required"`
		Notes    string                      `json:"notes"`
	}

	var req ResolveApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	record, err := h.approvalService.ResolveApproval(approvalID, services.ResolveApprovalInput{
		Decision:   req.Decision,
		ResolverID: userID,
		Notes:      req.Notes,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToApprovalRecordDTO(*record))
}

// ListApprovals returns a target's approval audit trail, newest first
func (h *ApprovalHandler) ListApprovals(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	targetType := models.ApprovalTargetType(c.Query("target_type"))
	targetID, err := strconv.ParseUint(c.Query("target_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid target_id")
		return
	}

	records, err := h.approvalService.ListApprovals(targetType, targetID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.ApprovalRecordDTO, len(records))
	for i, r := range records {
		items[i] = dto.ToApprovalRecordDTO(r)
	}

	c.JSON(http.StatusOK, gin.H{"approvals": items})
}
