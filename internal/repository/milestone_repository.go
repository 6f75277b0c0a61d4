package repository

import (
	"gorm.io/gorm"

	"github.com/bookerloo/booking-api/internal/models"
)

// GormMilestoneRepository is a GORM implementation of MilestoneRepository
type GormMilestoneRepository struct {
	db *gorm.DB
}

// NewMilestoneRepository creates a new MilestoneRepository
func NewMilestoneRepository(db *gorm.DB) MilestoneRepository {
	return &GormMilestoneRepository{db: db}
}

// Create creates a new milestone
func (r *GormMilestoneRepository) Create(milestone *models.Milestone) error {
	return r.db.Create(milestone).Error
}

// FindByID finds a milestone by ID with optional preloading
func (r *GormMilestoneRepository) FindByID(id uint64, preload ...string) (*models.Milestone, error) {
	var milestone models.Milestone
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&milestone, id).Error; err != nil {
		return nil, err
	}

	return &milestone, nil
}

// ListByBooking retrieves a booking's milestones ordered by order_index
func (r *GormMilestoneRepository) ListByBooking(bookingID uint64) ([]models.Milestone, error) {
	var milestones []models.Milestone
	err := r.db.Where("booking_id = ?", bookingID).
		Order("order_index ASC, id ASC").
		Find(&milestones).Error
	return milestones, err
}

// Update updates a milestone
func (r *GormMilestoneRepository) Update(milestone *models.Milestone) error {
	return r.db.Save(milestone).Error
}

// Delete soft deletes a milestone, its tasks and their approval records
func (r *GormMilestoneRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint64
		if err := tx.Model(&models.Task{}).
			Where("milestone_id = ?", id).
			Pluck("id", &taskIDs).Error; err != nil {
			return err
		}

		if len(taskIDs) > 0 {
			if err := tx.Where("target_type = ? AND target_id IN ?",
				models.ApprovalTargetTask, taskIDs).
				Delete(&models.ApprovalRecord{}).Error; err != nil {
				return err
			}
			if err := tx.Where("milestone_id = ?", id).
				Delete(&models.Task{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("target_type = ? AND target_id = ?",
			models.ApprovalTargetMilestone, id).
			Delete(&models.ApprovalRecord{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Milestone{}, id).Error
	})
}
