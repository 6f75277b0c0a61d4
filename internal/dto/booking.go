package dto

import (
	"time"

	"github.com/bookerloo/booking-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uint64          `json:"id"`
	Email string          `json:"email"`
	Role  models.UserRole `json:"role"`
}

// BookingDTO represents a booking in API responses
type BookingDTO struct {
	ID                 uint64               `json:"id"`
	ClientID           uint64               `json:"client_id"`
	ProviderID         uint64               `json:"provider_id"`
	Title              string               `json:"title"`
	Status             models.BookingStatus `json:"status"`
	ProgressPercentage int                  `json:"progress_percentage"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	Client             *UserDTO             `json:"client,omitempty"`
	Provider           *UserDTO             `json:"provider,omitempty"`
	Milestones         []MilestoneDTO       `json:"milestones,omitempty"`
}

// MilestoneDTO represents a milestone in API responses
type MilestoneDTO struct {
	ID                 uint64                 `json:"id"`
	BookingID          uint64                 `json:"booking_id"`
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Status             models.MilestoneStatus `json:"status"`
	ProgressPercentage int                    `json:"progress_percentage"`
	Weight             float64                `json:"weight"`
	OrderIndex         int                    `json:"order_index"`
	DueDate            *time.Time             `json:"due_date"`
	Editable           bool                   `json:"editable"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	Tasks              []TaskDTO              `json:"tasks,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	}
}

// ToBookingDTO converts a Booking model to BookingDTO
func ToBookingDTO(booking models.Booking) BookingDTO {
	dto := BookingDTO{
		ID:                 booking.ID,
		ClientID:           booking.ClientID,
		ProviderID:         booking.ProviderID,
		Title:              booking.Title,
		Status:             booking.Status,
		ProgressPercentage: booking.ProgressPercentage,
		CreatedAt:          booking.CreatedAt,
		UpdatedAt:          booking.UpdatedAt,
	}

	// Include parties if preloaded
	if booking.Client.ID != 0 {
		client := ToUserDTO(booking.Client)
		dto.Client = &client
	}
	if booking.Provider.ID != 0 {
		provider := ToUserDTO(booking.Provider)
		dto.Provider = &provider
	}

	if len(booking.Milestones) > 0 {
		dto.Milestones = make([]MilestoneDTO, len(booking.Milestones))
		for i, m := range booking.Milestones {
			dto.Milestones[i] = ToMilestoneDTO(m)
		}
	}

	return dto
}

// ToMilestoneDTO converts a Milestone model to MilestoneDTO
func ToMilestoneDTO(milestone models.Milestone) MilestoneDTO {
	dto := MilestoneDTO{
		ID:                 milestone.ID,
		BookingID:          milestone.BookingID,
		Title:              milestone.Title,
		Description:        milestone.Description,
		Status:             milestone.Status,
		ProgressPercentage: milestone.ProgressPercentage,
		Weight:             milestone.Weight,
		OrderIndex:         milestone.OrderIndex,
		DueDate:            milestone.DueDate,
		Editable:           milestone.Editable,
		CreatedAt:          milestone.CreatedAt,
		UpdatedAt:          milestone.UpdatedAt,
	}

	if len(milestone.Tasks) > 0 {
		dto.Tasks = make([]TaskDTO, len(milestone.Tasks))
		for i, t := range milestone.Tasks {
			dto.Tasks[i] = ToTaskDTO(t)
		}
	}

	return dto
}
