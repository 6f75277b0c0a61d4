package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/bookerloo/booking-api/internal/events"
	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/progress"
)

var (
	ErrLockTimeout = errors.New("timed out waiting for booking recalculation lock")
)

// Recalculator re-derives milestone and booking progress after any task,
// milestone or approval mutation. It is the single writer of the two
// progress_percentage columns.
//
// Recalculations for the same booking serialize behind a per-booking lock
// with a bounded wait; different bookings run fully in parallel. Each pass is
// one database transaction, so a milestone is never observable as updated
// while its booking is stale.
type Recalculator struct {
	db          *gorm.DB
	policy      progress.Policy
	publisher   events.Publisher
	lockTimeout time.Duration

	mu    sync.Mutex
	locks map[uint64]chan struct{}
}

// NewRecalculator creates a new Recalculator
func NewRecalculator(db *gorm.DB, policy progress.Policy, publisher events.Publisher, lockTimeout time.Duration) *Recalculator {
	return &Recalculator{
		db:          db,
		policy:      policy,
		publisher:   publisher,
		lockTimeout: lockTimeout,
		locks:       make(map[uint64]chan struct{}),
	}
}

// RecalculateMilestone recomputes the milestone's progress from its tasks and
// then the owning booking's progress from all its milestones.
func (r *Recalculator) RecalculateMilestone(bookingID, milestoneID uint64) error {
	if err := r.acquire(bookingID); err != nil {
		return err
	}
	defer r.release(bookingID)

	return r.withRetry(func() error {
		return r.run(bookingID, &milestoneID)
	})
}

// RecalculateBooking recomputes every live milestone of the booking and the
// booking itself. Used after milestone-level mutations (deletion, weight or
// status changes) where a single-milestone pass is not enough.
func (r *Recalculator) RecalculateBooking(bookingID uint64) error {
	if err := r.acquire(bookingID); err != nil {
		return err
	}
	defer r.release(bookingID)

	return r.withRetry(func() error {
		return r.run(bookingID, nil)
	})
}

// withRetry runs fn, retrying once on a transient persistence failure before
// surfacing it. Only the internal read-after-write path retries; caller
// mistakes never reach here.
func (r *Recalculator) withRetry(fn func() error) error {
	if err := fn(); err != nil {
		if err = fn(); err != nil {
			return fmt.Errorf("recalculation failed: %w", err)
		}
	}
	return nil
}

func (r *Recalculator) run(bookingID uint64, onlyMilestoneID *uint64) error {
	var emitted []events.Event

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var milestones []models.Milestone
		query := tx.Where("booking_id = ?", bookingID)
		if onlyMilestoneID != nil {
			query = query.Where("id = ?", *onlyMilestoneID)
		}
		if err := query.Order("order_index ASC, id ASC").Find(&milestones).Error; err != nil {
			return err
		}

		for i := range milestones {
			changed, err := r.refreshMilestone(tx, &milestones[i])
			if err != nil {
				return err
			}
			if changed {
				pct := milestones[i].ProgressPercentage
				id := milestones[i].ID
				emitted = append(emitted, events.Event{
					BookingID:   bookingID,
					MilestoneID: &id,
					Kind:        events.KindMilestoneProgress,
					NewProgress: &pct,
				})
			}
		}

		// Booking progress always aggregates over every live milestone,
		// even when only one was recomputed above.
		var all []models.Milestone
		if err := tx.Where("booking_id = ?", bookingID).Find(&all).Error; err != nil {
			return err
		}

		var booking models.Booking
		if err := tx.First(&booking, bookingID).Error; err != nil {
			return err
		}

		pct := progress.BookingProgress(all)
		if pct != booking.ProgressPercentage {
			if err := tx.Model(&models.Booking{}).
				Where("id = ?", bookingID).
				Update("progress_percentage", pct).Error; err != nil {
				return err
			}
			emitted = append(emitted, events.Event{
				BookingID:   bookingID,
				Kind:        events.KindBookingProgress,
				NewProgress: &pct,
			})
		}

		return nil
	})
	if err != nil {
		return err
	}

	if r.publisher != nil {
		for _, e := range emitted {
			r.publisher.Publish(e)
		}
	}
	return nil
}

// refreshMilestone recomputes one milestone's progress and auto-promotes its
// status, persisting only when something moved. Reports whether it did.
func (r *Recalculator) refreshMilestone(tx *gorm.DB, m *models.Milestone) (bool, error) {
	var tasks []models.Task
	if err := tx.Where("milestone_id = ?", m.ID).Find(&tasks).Error; err != nil {
		return false, err
	}

	pct := progress.MilestoneProgress(tasks, r.policy)

	// Zero-task completion override: an empty milestone explicitly marked
	// completed reports 100. The only path where progress is not derived.
	if len(tasks) == 0 && m.Status == models.MilestoneStatusCompleted {
		pct = 100
	}

	status := m.Status
	if m.Editable && len(tasks) > 0 {
		switch m.Status {
		case models.MilestoneStatusCancelled, models.MilestoneStatusOnHold:
			// Manual states are left alone.
		default:
			if pct == 100 {
				status = models.MilestoneStatusCompleted
			} else if pct >= 1 && pct <= 99 {
				status = models.MilestoneStatusInProgress
			}
		}
	}

	if pct == m.ProgressPercentage && status == m.Status {
		return false, nil
	}

	if err := tx.Model(&models.Milestone{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"progress_percentage": pct,
			"status":              status,
		}).Error; err != nil {
		return false, err
	}

	m.ProgressPercentage = pct
	m.Status = status
	return true, nil
}

// acquire takes the per-booking lock, waiting at most lockTimeout.
func (r *Recalculator) acquire(bookingID uint64) error {
	lock := r.lockFor(bookingID)
	select {
	case lock <- struct{}{}:
		return nil
	case <-time.After(r.lockTimeout):
		return ErrLockTimeout
	}
}

func (r *Recalculator) release(bookingID uint64) {
	<-r.lockFor(bookingID)
}

func (r *Recalculator) lockFor(bookingID uint64) chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.locks[bookingID]
	if !ok {
		lock = make(chan struct{}, 1)
		r.locks[bookingID] = lock
	}
	return lock
}
