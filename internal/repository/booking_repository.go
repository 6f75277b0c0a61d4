package repository

import (
	"gorm.io/gorm"

	"github.com/bookerloo/booking-api/internal/database"
	"github.com/bookerloo/booking-api/internal/models"
)

// GormBookingRepository is a GORM implementation of BookingRepository
type GormBookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository creates a new BookingRepository
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &GormBookingRepository{db: db}
}

// Create creates a new booking
func (r *GormBookingRepository) Create(booking *models.Booking) error {
	return r.db.Create(booking).Error
}

// FindByID finds a booking by ID with optional preloading
func (r *GormBookingRepository) FindByID(id uint64, preload ...string) (*models.Booking, error) {
	var booking models.Booking
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&booking, id).Error; err != nil {
		return nil, err
	}

	return &booking, nil
}

// ListForUser retrieves bookings where the user is client or provider
func (r *GormBookingRepository) ListForUser(userID uint64, filter BookingFilter) ([]models.Booking, int64, error) {
	query := r.db.Model(&models.Booking{}).
		Where("client_id = ? OR provider_id = ?", userID, userID)
	return r.list(query, filter)
}

// ListAll retrieves all bookings (admin)
func (r *GormBookingRepository) ListAll(filter BookingFilter) ([]models.Booking, int64, error) {
	return r.list(r.db.Model(&models.Booking{}), filter)
}

func (r *GormBookingRepository) list(query *gorm.DB, filter BookingFilter) ([]models.Booking, int64, error) {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC").
		Scopes(database.Paginate(filter.Page, filter.PageSize))

	var bookings []models.Booking
	if err := listQuery.Preload("Client").Preload("Provider").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// Update updates a booking
func (r *GormBookingRepository) Update(booking *models.Booking) error {
	return r.db.Save(booking).Error
}

// Delete soft deletes a booking and its whole work breakdown. One transaction
// so observers never see a half-deleted booking.
func (r *GormBookingRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var milestoneIDs []uint64
		if err := tx.Model(&models.Milestone{}).
			Where("booking_id = ?", id).
			Pluck("id", &milestoneIDs).Error; err != nil {
			return err
		}

		if len(milestoneIDs) > 0 {
			var taskIDs []uint64
			if err := tx.Model(&models.Task{}).
				Where("milestone_id IN ?", milestoneIDs).
				Pluck("id", &taskIDs).Error; err != nil {
				return err
			}

			if len(taskIDs) > 0 {
				if err := tx.Where("target_type = ? AND target_id IN ?",
					models.ApprovalTargetTask, taskIDs).
					Delete(&models.ApprovalRecord{}).Error; err != nil {
					return err
				}
				if err := tx.Where("milestone_id IN ?", milestoneIDs).
					Delete(&models.Task{}).Error; err != nil {
					return err
				}
			}

			if err := tx.Where("target_type = ? AND target_id IN ?",
				models.ApprovalTargetMilestone, milestoneIDs).
				Delete(&models.ApprovalRecord{}).Error; err != nil {
				return err
			}
			if err := tx.Where("booking_id = ?", id).
				Delete(&models.Milestone{}).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&models.Booking{}, id).Error
	})
}
