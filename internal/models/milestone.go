package models

import (
	"time"

	"gorm.io/gorm"
)

type MilestoneStatus string

const (
	MilestoneStatusPending    MilestoneStatus = "pending"
	MilestoneStatusInProgress MilestoneStatus = "in_progress"
	MilestoneStatusCompleted  MilestoneStatus = "completed"
	MilestoneStatusOnHold     MilestoneStatus = "on_hold"
	MilestoneStatusCancelled  MilestoneStatus = "cancelled"
)

// ValidMilestoneStatus reports whether s is one of the known milestone states.
func ValidMilestoneStatus(s MilestoneStatus) bool {
	switch s {
	case MilestoneStatusPending, MilestoneStatusInProgress, MilestoneStatusCompleted,
		MilestoneStatusOnHold, MilestoneStatusCancelled:
		return true
	}
	return false
}

// Milestone is a weighted phase of a booking's work. ProgressPercentage is
// derived from its tasks; the only exception is the zero-task completion
// override (an empty milestone explicitly marked completed reports 100).
// Editable=false locks the milestone: its status, weight and children cannot
// be mutated through normal flows, and the recalculator leaves its status as a
// historical snapshot.
type Milestone struct {
	ID                 uint64          `gorm:"primarykey" json:"id"`
	BookingID          uint64          `gorm:"not null;index" json:"booking_id"`
	Title              string          `gorm:"type:varchar(255);not null" json:"title"`
	Description        string          `gorm:"type:text" json:"description"`
	Status             MilestoneStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ProgressPercentage int             `gorm:"not null;default:0" json:"progress_percentage"`
	Weight             float64         `gorm:"not null;default:1" json:"weight"`
	OrderIndex         int             `gorm:"not null;default:0" json:"order_index"`
	DueDate            *time.Time      `json:"due_date"`
	Editable           bool            `gorm:"not null;default:true" json:"editable"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Booking Booking `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	Tasks   []Task  `gorm:"foreignKey:MilestoneID" json:"tasks,omitempty"`
}
