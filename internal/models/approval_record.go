package models

import (
	"time"

	"gorm.io/gorm"
)

type ApprovalTargetType string

const (
	ApprovalTargetTask      ApprovalTargetType = "task"
	ApprovalTargetMilestone ApprovalTargetType = "milestone"
)

type ApprovalRecordStatus string

const (
	ApprovalRecordPending  ApprovalRecordStatus = "pending"
	ApprovalRecordApproved ApprovalRecordStatus = "approved"
	ApprovalRecordRejected ApprovalRecordStatus = "rejected"
)

// ApprovalRecord is one sign-off request on a task or milestone. Records are
// terminal once approved or rejected; a rejection is never reopened, a new
// record is created instead so the audit trail stays intact.
type ApprovalRecord struct {
	ID              uint64               `gorm:"primarykey" json:"id"`
	TargetType      ApprovalTargetType   `gorm:"type:varchar(20);not null;index:idx_approval_target" json:"target_type"`
	TargetID        uint64               `gorm:"not null;index:idx_approval_target" json:"target_id"`
	RequesterID     uint64               `gorm:"not null;index" json:"requester_id"`
	Status          ApprovalRecordStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Comment         string               `gorm:"type:text" json:"comment"`
	ResolverID      *uint64              `json:"resolver_id"`
	ResolutionNotes string               `gorm:"type:text" json:"resolution_notes"`
	ResolvedAt      *time.Time           `json:"resolved_at"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
	DeletedAt       gorm.DeletedAt       `gorm:"index" json:"-"`

	// Relations
	Requester User  `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Resolver  *User `gorm:"foreignKey:ResolverID" json:"resolver,omitempty"`
}

// Resolved reports whether the record has reached a terminal state.
func (r *ApprovalRecord) Resolved() bool {
	return r.Status != ApprovalRecordPending
}
