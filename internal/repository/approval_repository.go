package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bookerloo/booking-api/internal/models"
)

// ErrAlreadyResolved is returned when a resolve hits a record that is no
// longer pending. The guarded UPDATE makes double-resolution races lose
// cleanly instead of overwriting the first decision.
var ErrAlreadyResolved = errors.New("approval record is already resolved")

// GormApprovalRepository is a GORM implementation of ApprovalRepository
type GormApprovalRepository struct {
	db *gorm.DB
}

// NewApprovalRepository creates a new ApprovalRepository
func NewApprovalRepository(db *gorm.DB) ApprovalRepository {
	return &GormApprovalRepository{db: db}
}

// Create creates a new approval record
func (r *GormApprovalRepository) Create(record *models.ApprovalRecord) error {
	return r.db.Create(record).Error
}

// FindByID finds an approval record by ID with optional preloading
func (r *GormApprovalRepository) FindByID(id uint64, preload ...string) (*models.ApprovalRecord, error) {
	var record models.ApprovalRecord
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&record, id).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

// ListByTarget retrieves all approval records for a target, newest first
func (r *GormApprovalRepository) ListByTarget(targetType models.ApprovalTargetType, targetID uint64) ([]models.ApprovalRecord, error) {
	var records []models.ApprovalRecord
	err := r.db.Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("created_at DESC").
		Preload("Requester").
		Preload("Resolver").
		Find(&records).Error
	return records, err
}

// HasOpenRequest reports whether the target has an unresolved record
func (r *GormApprovalRepository) HasOpenRequest(targetType models.ApprovalTargetType, targetID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.ApprovalRecord{}).
		Where("target_type = ? AND target_id = ? AND status = ?",
			targetType, targetID, models.ApprovalRecordPending).
		Count(&count).Error
	return count > 0, err
}

// Resolve transitions a pending record to a terminal state. The WHERE clause
// on status makes the update conditional, so of two concurrent resolvers only
// one wins and the other sees ErrAlreadyResolved.
func (r *GormApprovalRepository) Resolve(id uint64, status models.ApprovalRecordStatus, resolverID uint64, notes string) error {
	now := time.Now()
	result := r.db.Model(&models.ApprovalRecord{}).
		Where("id = ? AND status = ?", id, models.ApprovalRecordPending).
		Updates(map[string]interface{}{
			"status":           status,
			"resolver_id":      resolverID,
			"resolution_notes": notes,
			"resolved_at":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAlreadyResolved
	}
	return nil
}
