package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/repository"
)

var (
	ErrBookingNotFound = errors.New("booking not found")
	ErrInvalidWeight   = errors.New("weight must be greater than zero")
)

// MilestoneService handles milestone business logic
type MilestoneService struct {
	milestoneRepo repository.MilestoneRepository
	bookingRepo   repository.BookingRepository
	guard         *AccessGuard
	recalc        *Recalculator
}

// NewMilestoneService creates a new MilestoneService
func NewMilestoneService(milestoneRepo repository.MilestoneRepository, bookingRepo repository.BookingRepository, guard *AccessGuard, recalc *Recalculator) *MilestoneService {
	return &MilestoneService{
		milestoneRepo: milestoneRepo,
		bookingRepo:   bookingRepo,
		guard:         guard,
		recalc:        recalc,
	}
}

// CreateMilestoneInput represents input for creating a milestone
type CreateMilestoneInput struct {
	BookingID   uint64
	ActorID     uint64
	Title       string
	Description string
	Weight      float64
	OrderIndex  int
	DueDate     *time.Time
}

// UpdateMilestoneInput represents input for updating a milestone
type UpdateMilestoneInput struct {
	ActorID      uint64
	Title        *string
	Description  *string
	Weight       *float64
	OrderIndex   *int
	DueDate      *time.Time
	ClearDueDate bool
}

// GetMilestone returns a milestone with its tasks
func (s *MilestoneService) GetMilestone(milestoneID uint64) (*models.Milestone, error) {
	milestone, err := s.milestoneRepo.FindByID(milestoneID, "Tasks")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		return nil, fmt.Errorf("failed to find milestone: %w", err)
	}
	return milestone, nil
}

// ListMilestones returns a booking's milestones in display order
func (s *MilestoneService) ListMilestones(bookingID uint64) ([]models.Milestone, error) {
	if _, err := s.bookingRepo.FindByID(bookingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	milestones, err := s.milestoneRepo.ListByBooking(bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list milestones: %w", err)
	}
	return milestones, nil
}

// CreateMilestone creates a milestone under a booking and recalculates
// booking progress (a fresh milestone shifts the weighted average)
func (s *MilestoneService) CreateMilestone(input CreateMilestoneInput) (*models.Milestone, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	booking, err := s.loadBooking(input.BookingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.CheckMutate(input.ActorID, booking); err != nil {
		return nil, err
	}

	weight := input.Weight
	if weight == 0 {
		weight = 1.0
	}
	if weight <= 0 {
		return nil, ErrInvalidWeight
	}

	milestone := &models.Milestone{
		BookingID:   input.BookingID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Status:      models.MilestoneStatusPending,
		Weight:      weight,
		OrderIndex:  input.OrderIndex,
		DueDate:     input.DueDate,
		Editable:    true,
	}

	if err := s.milestoneRepo.Create(milestone); err != nil {
		return nil, fmt.Errorf("failed to create milestone: %w", err)
	}

	if err := s.recalc.RecalculateBooking(input.BookingID); err != nil {
		return nil, err
	}

	return s.milestoneRepo.FindByID(milestone.ID)
}

// UpdateMilestone updates a milestone's descriptive fields. Weight changes
// re-derive booking progress.
func (s *MilestoneService) UpdateMilestone(milestoneID uint64, input UpdateMilestoneInput) (*models.Milestone, error) {
	milestone, booking, err := s.loadChain(milestoneID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.CheckMutate(input.ActorID, booking); err != nil {
		return nil, err
	}
	if !milestone.Editable {
		return nil, ErrMilestoneLocked
	}

	weightChanged := false
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		milestone.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		milestone.Description = *input.Description
	}
	if input.Weight != nil {
		if *input.Weight <= 0 {
			return nil, ErrInvalidWeight
		}
		weightChanged = *input.Weight != milestone.Weight
		milestone.Weight = *input.Weight
	}
	if input.OrderIndex != nil {
		milestone.OrderIndex = *input.OrderIndex
	}
	if input.ClearDueDate {
		milestone.DueDate = nil
	} else if input.DueDate != nil {
		milestone.DueDate = input.DueDate
	}

	if err := s.milestoneRepo.Update(milestone); err != nil {
		return nil, fmt.Errorf("failed to update milestone: %w", err)
	}

	if weightChanged {
		if err := s.recalc.RecalculateBooking(milestone.BookingID); err != nil {
			return nil, err
		}
	}

	return s.milestoneRepo.FindByID(milestone.ID)
}

// UpdateMilestoneStatus sets a milestone's display status. The status is
// informational and does not feed the numeric aggregation, but cancelling a
// milestone removes it from the booking average and completing an empty one
// engages the zero-task override, so recalculation always follows.
func (s *MilestoneService) UpdateMilestoneStatus(milestoneID uint64, newStatus models.MilestoneStatus, actorID uint64) (*models.Milestone, error) {
	if !models.ValidMilestoneStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	milestone, booking, err := s.loadChain(milestoneID)
	if err != nil {
		return nil, err
	}

	actor, err := s.guard.CheckMutate(actorID, booking)
	if err != nil {
		return nil, err
	}
	if !milestone.Editable && !actor.IsAdmin() {
		return nil, ErrMilestoneLocked
	}

	milestone.Status = newStatus
	if err := s.milestoneRepo.Update(milestone); err != nil {
		return nil, fmt.Errorf("failed to update milestone status: %w", err)
	}

	if err := s.recalc.RecalculateBooking(milestone.BookingID); err != nil {
		return nil, err
	}

	return s.milestoneRepo.FindByID(milestone.ID)
}

// DeleteMilestone deletes a milestone with its tasks and approval records,
// then re-derives booking progress
func (s *MilestoneService) DeleteMilestone(milestoneID, actorID uint64) error {
	milestone, booking, err := s.loadChain(milestoneID)
	if err != nil {
		return err
	}

	actor, err := s.guard.CheckMutate(actorID, booking)
	if err != nil {
		return err
	}
	if !milestone.Editable && !actor.IsAdmin() {
		return ErrMilestoneLocked
	}

	if err := s.milestoneRepo.Delete(milestone.ID); err != nil {
		return fmt.Errorf("failed to delete milestone: %w", err)
	}

	return s.recalc.RecalculateBooking(milestone.BookingID)
}

func (s *MilestoneService) loadChain(milestoneID uint64) (*models.Milestone, *models.Booking, error) {
	milestone, err := s.milestoneRepo.FindByID(milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrMilestoneNotFound
		}
		return nil, nil, fmt.Errorf("failed to find milestone: %w", err)
	}

	booking, err := s.loadBooking(milestone.BookingID)
	if err != nil {
		return nil, nil, err
	}
	return milestone, booking, nil
}

func (s *MilestoneService) loadBooking(bookingID uint64) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return booking, nil
}
