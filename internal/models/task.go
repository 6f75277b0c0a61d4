package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// ValidTaskStatus reports whether s is one of the known task states.
func ValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalStatusNotRequired ApprovalStatus = "not_required"
	ApprovalStatusPending     ApprovalStatus = "pending"
	ApprovalStatusApproved    ApprovalStatus = "approved"
	ApprovalStatusRejected    ApprovalStatus = "rejected"
)

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
	TaskPriorityUrgent TaskPriority = "urgent"
)

// Task is the atomic unit of work under a milestone. A task counts toward
// milestone progress only while completed and not carrying a rejected
// approval.
type Task struct {
	ID             uint64         `gorm:"primarykey" json:"id"`
	MilestoneID    uint64         `gorm:"not null;index" json:"milestone_id"`
	Title          string         `gorm:"type:varchar(255);not null" json:"title"`
	Description    string         `gorm:"type:text" json:"description"`
	Status         TaskStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ApprovalStatus ApprovalStatus `gorm:"type:varchar(20);not null;default:'not_required'" json:"approval_status"`
	EstimatedHours float64        `gorm:"not null;default:0" json:"estimated_hours"`
	ActualHours    float64        `gorm:"not null;default:0" json:"actual_hours"`
	Priority       TaskPriority   `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	DueDate        *time.Time     `json:"due_date"`
	OrderIndex     int            `gorm:"not null;default:0" json:"order_index"`
	Editable       bool           `gorm:"not null;default:true" json:"editable"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Milestone Milestone `gorm:"foreignKey:MilestoneID" json:"milestone,omitempty"`
}
