package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/repository"
)

// BookingService exposes the booking-level reads and the cascading delete.
// Booking creation and lifecycle transitions belong to the (external) booking
// workflow; this service only serves the work-breakdown surface.
type BookingService struct {
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	guard       *AccessGuard
}

// NewBookingService creates a new BookingService
func NewBookingService(bookingRepo repository.BookingRepository, userRepo repository.UserRepository, guard *AccessGuard) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		guard:       guard,
	}
}

// GetBooking returns a booking with its milestones if the actor may see it
func (s *BookingService) GetBooking(bookingID, actorID uint64) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(bookingID, "Client", "Provider", "Milestones")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	if _, err := s.guard.CheckMutate(actorID, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListBookings returns the actor's bookings; admins see all
func (s *BookingService) ListBookings(actorID uint64, filter repository.BookingFilter) ([]models.Booking, int64, error) {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return nil, 0, ErrForbidden
	}

	if actor.IsAdmin() {
		return s.bookingRepo.ListAll(filter)
	}
	return s.bookingRepo.ListForUser(actorID, filter)
}

// DeleteBooking removes a booking and its entire work breakdown. Admin only;
// the regular booking lifecycle never deletes through this surface.
func (s *BookingService) DeleteBooking(bookingID, actorID uint64) error {
	actor, err := s.userRepo.FindByID(actorID)
	if err != nil {
		return ErrForbidden
	}
	if !actor.IsAdmin() {
		return ErrForbidden
	}

	if _, err := s.bookingRepo.FindByID(bookingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		return fmt.Errorf("failed to find booking: %w", err)
	}

	if err := s.bookingRepo.Delete(bookingID); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}
