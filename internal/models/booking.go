package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingStatusPending    BookingStatus = "pending"
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusInProgress BookingStatus = "in_progress"
	BookingStatusCompleted  BookingStatus = "completed"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// Booking is the engagement between a client and a provider. Its
// ProgressPercentage is derived from milestone progress and is written only by
// the recalculator.
type Booking struct {
	ID                 uint64         `gorm:"primarykey" json:"id"`
	ClientID           uint64         `gorm:"not null;index" json:"client_id"`
	ProviderID         uint64         `gorm:"not null;index" json:"provider_id"`
	Title              string         `gorm:"type:varchar(255);not null" json:"title"`
	Status             BookingStatus  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	ProgressPercentage int            `gorm:"not null;default:0" json:"progress_percentage"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Client     User        `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Provider   User        `gorm:"foreignKey:ProviderID" json:"provider,omitempty"`
	Milestones []Milestone `gorm:"foreignKey:BookingID" json:"milestones,omitempty"`
}
