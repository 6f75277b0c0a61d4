package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bookerloo/booking-api/internal/dto"
	apierrors "github.com/bookerloo/booking-api/internal/errors"
	"github.com/bookerloo/booking-api/internal/middleware"
	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/repository"
	"github.com/bookerloo/booking-api/internal/services"
	"github.com/bookerloo/booking-api/internal/utils"
)

// TaskHandler serves task CRUD and status transitions.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the tasks of the milestone in context
func (h *TaskHandler) ListTasks(c *gin.Context) {
	milestone, ok := milestoneFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Milestone not found in context")
		return
	}

	params := utils.GetPaginationParams(c)
	filter := repository.TaskFilter{
		Page:     params.Page,
		PageSize: params.Limit,
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		if !models.ValidTaskStatus(status) {
			apierrors.BadRequest(c, "Invalid status filter")
			return
		}
		filter.Status = &status
	}

	tasks, total, err := h.taskService.ListTasks(milestone.ID, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	items := make([]dto.TaskDTO, len(tasks))
	for i, t := range tasks {
		items[i] = dto.ToTaskDTO(t)
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": items,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CreateTask creates a task under the milestone in context
func (h *TaskHandler) CreateTask(c *gin.Context) {
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

	type CreateTaskRequest struct {
		Title          string              `json:"title" binding:"required"`
		Description    string              `json:"description"`
		EstimatedHours float64             `json:"estimated_hours"`
		Priority       models.TaskPriority `json:"priority"`
		DueDate        *time.Time          `json:"due_date"`
		OrderIndex     int                 `json:"order_index"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		MilestoneID:    milestone.ID,
		ActorID:        userID,
		Title:          req.Title,
		Description:    req.Description,
		EstimatedHours: req.EstimatedHours,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		OrderIndex:     req.OrderIndex,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns the task in context
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	full, err := h.taskService.GetTask(task.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*full))
}

// UpdateTask updates the task's descriptive fields
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, ok := taskFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateTaskRequest struct {
		Title          *string              `json:"title"`
		Description    *string              `json:"description"`
		EstimatedHours *float64             `json:"estimated_hours"`
		ActualHours    *float64             `json:"actual_hours"`
		Priority       *models.TaskPriority `json:"priority"`
		DueDate        *time.Time           `json:"due_date"`
		ClearDueDate   bool                 `json:"clear_due_date"`
		OrderIndex     *int                 `json:"order_index"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTask(task.ID, services.UpdateTaskInput{
		ActorID:        userID,
		Title:          req.Title,
		Description:    req.Description,
		EstimatedHours: req.EstimatedHours,
		ActualHours:    req.ActualHours,
		Priority:       req.Priority,
		DueDate:        req.DueDate,
		ClearDueDate:   req.ClearDueDate,
		OrderIndex:     req.OrderIndex,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// UpdateTaskStatus applies a status transition to the task in context
func (h *TaskHandler) UpdateTaskStatus(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, ok := taskFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	type UpdateStatusRequest struct {
		Status        models.TaskStatus `json:"status" binding:"required"`
		AdminOverride bool              `json:"admin_override"`
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTaskStatus(task.ID, services.UpdateTaskStatusInput{
		ActorID:       userID,
		NewStatus:     req.Status,
		AdminOverride: req.AdminOverride,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask removes the task in context and its approval records
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	task, ok := taskFromContext(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	if err := h.taskService.DeleteTask(task.ID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}
