package dto

import (
	"time"

	"github.com/bookerloo/booking-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             uint64                `json:"id"`
	MilestoneID    uint64                `json:"milestone_id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Status         models.TaskStatus     `json:"status"`
	ApprovalStatus models.ApprovalStatus `json:"approval_status"`
	EstimatedHours float64               `json:"estimated_hours"`
	ActualHours    float64               `json:"actual_hours"`
	Priority       models.TaskPriority   `json:"priority"`
	DueDate        *time.Time            `json:"due_date"`
	OrderIndex     int                   `json:"order_index"`
	Editable       bool                  `json:"editable"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// ApprovalRecordDTO represents an approval record in API responses
type ApprovalRecordDTO struct {
	ID              uint64                      `json:"id"`
	TargetType      models.ApprovalTargetType   `json:"target_type"`
	TargetID        uint64                      `json:"target_id"`
	RequesterID     uint64                      `json:"requester_id"`
	Status          models.ApprovalRecordStatus `json:"status"`
	Comment         string                      `json:"comment"`
	ResolverID      *uint64                     `json:"resolver_id"`
	ResolutionNotes string                      `json:"resolution_notes"`
	ResolvedAt      *time.Time                  `json:"resolved_at"`
	CreatedAt       time.Time                   `json:"created_at"`
	Requester       *UserDTO                    `json:"requester,omitempty"`
	Resolver        *UserDTO                    `json:"resolver,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:             task.ID,
		MilestoneID:    task.MilestoneID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		ApprovalStatus: task.ApprovalStatus,
		EstimatedHours: task.EstimatedHours,
		ActualHours:    task.ActualHours,
		Priority:       task.Priority,
		DueDate:        task.DueDate,
		OrderIndex:     task.OrderIndex,
		Editable:       task.Editable,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
	}
}

// ToApprovalRecordDTO converts an ApprovalRecord model to its DTO
func ToApprovalRecordDTO(record models.ApprovalRecord) ApprovalRecordDTO {
	dto := ApprovalRecordDTO{
		ID:              record.ID,
		TargetType:      record.TargetType,
		TargetID:        record.TargetID,
		RequesterID:     record.RequesterID,
		Status:          record.Status,
		Comment:         record.Comment,
		ResolverID:      record.ResolverID,
		ResolutionNotes: record.ResolutionNotes,
		ResolvedAt:      record.ResolvedAt,
		CreatedAt:       record.CreatedAt,
	}

	// Include principals if preloaded
	if record.Requester.ID != 0 {
		requester := ToUserDTO(record.Requester)
		dto.Requester = &requester
	}
	if record.Resolver != nil && record.Resolver.ID != 0 {
		resolver := ToUserDTO(*record.Resolver)
		dto.Resolver = &resolver
	}

	return dto
}
