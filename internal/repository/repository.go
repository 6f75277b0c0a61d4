package repository

import (
	"time"

	"github.com/bookerloo/booking-api/internal/models"
)

// BookingRepository defines the interface for booking data access
type BookingRepository interface {
	// Create creates a new booking
	Create(booking *models.Booking) error

	// FindByID finds a booking by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Booking, error)

	// ListForUser retrieves bookings where the user is client or provider
	ListForUser(userID uint64, filter BookingFilter) ([]models.Booking, int64, error)

	// ListAll retrieves all bookings (admin)
	ListAll(filter BookingFilter) ([]models.Booking, int64, error)

	// Update updates a booking
	Update(booking *models.Booking) error

	// Delete soft deletes a booking and cascades to milestones, tasks and
	// their approval records
	Delete(id uint64) error
}

// BookingFilter holds filtering options for listing bookings
type BookingFilter struct {
	Status   *models.BookingStatus
	Page     int
	PageSize int
}

// MilestoneRepository defines the interface for milestone data access
type MilestoneRepository interface {
	// Create creates a new milestone
	Create(milestone *models.Milestone) error

	// FindByID finds a milestone by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Milestone, error)

	// ListByBooking retrieves a booking's milestones ordered by order_index
	ListByBooking(bookingID uint64) ([]models.Milestone, error)

	// Update updates a milestone
	Update(milestone *models.Milestone) error

	// Delete soft deletes a milestone and cascades to its tasks and their
	// approval records
	Delete(id uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListByMilestone retrieves a milestone's tasks with filtering
	ListByMilestone(milestoneID uint64, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task and cascades to its approval records
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Status      *models.TaskStatus
	DueDateFrom *time.Time
	DueDateTo   *time.Time
	Page        int
	PageSize    int
}

// ApprovalRepository defines the interface for approval record data access
type ApprovalRepository interface {
	// Create creates a new approval record
	Create(record *models.ApprovalRecord) error

	// FindByID finds an approval record by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.ApprovalRecord, error)

	// ListByTarget retrieves all approval records for a target, newest first
	ListByTarget(targetType models.ApprovalTargetType, targetID uint64) ([]models.ApprovalRecord, error)

	// HasOpenRequest reports whether the target has an unresolved record
	HasOpenRequest(targetType models.ApprovalTargetType, targetID uint64) (bool, error)

	// Resolve transitions a pending record to a terminal state. It returns
	// ErrAlreadyResolved when the record was resolved concurrently.
	Resolve(id uint64, status models.ApprovalRecordStatus, resolverID uint64, notes string) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)
}
