package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/bookerloo/booking-api/internal/events"
	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/repository"
)

var (
	ErrApprovalNotFound = errors.New("approval record not found")
	ErrAlreadyResolved  = repository.ErrAlreadyResolved
	ErrApprovalOpen     = errors.New("target already has a pending approval request")
	ErrInvalidTarget    = errors.New("unknown approval target type")
	ErrInvalidDecision  = errors.New("decision must be approved or rejected")
)

// ApprovalService runs the sign-off workflow on tasks and milestones.
// Records are append-only: a rejection is terminal and re-requesting creates
// a fresh record, keeping the full audit trail.
type ApprovalService struct {
	approvalRepo  repository.ApprovalRepository
	taskRepo      repository.TaskRepository
	milestoneRepo repository.MilestoneRepository
	bookingRepo   repository.BookingRepository
	guard         *AccessGuard
	recalc        *Recalculator
	publisher     events.Publisher
}

// NewApprovalService creates a new ApprovalService
func NewApprovalService(approvalRepo repository.ApprovalRepository, taskRepo repository.TaskRepository, milestoneRepo repository.MilestoneRepository, bookingRepo repository.BookingRepository, guard *AccessGuard, recalc *Recalculator, publisher events.Publisher) *ApprovalService {
	return &ApprovalService{
		approvalRepo:  approvalRepo,
		taskRepo:      taskRepo,
		milestoneRepo: milestoneRepo,
		bookingRepo:   bookingRepo,
		guard:         guard,
		recalc:        recalc,
		publisher:     publisher,
	}
}

// RequestApprovalInput represents input for requesting sign-off
type RequestApprovalInput struct {
	TargetType  models.ApprovalTargetType
	TargetID    uint64
	RequesterID uint64
	Comment     string
}

// ResolveApprovalInput represents input for resolving a sign-off request
type ResolveApprovalInput struct {
	Decision   models.ApprovalRecordStatus
	ResolverID uint64
	Notes      string
}

// RequestApproval opens a sign-off request on a task or milestone
func (s *ApprovalService) RequestApproval(input RequestApprovalInput) (*models.ApprovalRecord, error) {
	target, err := s.resolveTarget(input.TargetType, input.TargetID)
	if err != nil {
		return nil, err
	}

	if _, err := s.guard.CheckMutate(input.RequesterID, target.booking); err != nil {
		return nil, err
	}

	open, err := s.approvalRepo.HasOpenRequest(input.TargetType, input.TargetID)
	if err != nil {
		return nil, fmt.Errorf("failed to check open approvals: %w", err)
	}
	if open {
		return nil, ErrApprovalOpen
	}

	record := &models.ApprovalRecord{
		TargetType:  input.TargetType,
		TargetID:    input.TargetID,
		RequesterID: input.RequesterID,
		Status:      models.ApprovalRecordPending,
		Comment:     input.Comment,
	}
	if err := s.approvalRepo.Create(record); err != nil {
		return nil, fmt.Errorf("failed to create approval record: %w", err)
	}

	if target.task != nil {
		target.task.ApprovalStatus = models.ApprovalStatusPending
		if err := s.taskRepo.Update(target.task); err != nil {
			return nil, fmt.Errorf("failed to mark task approval pending: %w", err)
		}
		// Under a conservative counting policy a pending approval changes
		// the completed count, so the aggregates must follow.
		if err := s.recalc.RecalculateMilestone(target.booking.ID, target.task.MilestoneID); err != nil {
			return nil, err
		}
	}

	if s.publisher != nil {
		s.publisher.Publish(events.Event{
			BookingID:   target.booking.ID,
			MilestoneID: target.milestoneID(),
			TaskID:      target.taskID(),
			Kind:        events.KindApprovalRequested,
		})
	}

	return s.approvalRepo.FindByID(record.ID, "Requester")
}

// ResolveApproval settles a pending request. Approval marks the target
// approved; rejection marks it rejected and forces a completed task back to
// in_progress for rework. Both outcomes re-derive progress.
func (s *ApprovalService) ResolveApproval(approvalID uint64, input ResolveApprovalInput) (*models.ApprovalRecord, error) {
	if input.Decision != models.ApprovalRecordApproved && input.Decision != models.ApprovalRecordRejected {
		return nil, ErrInvalidDecision
	}

	record, err := s.approvalRepo.FindByID(approvalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApprovalNotFound
		}
		return nil, fmt.Errorf("failed to find approval record: %w", err)
	}
	if record.Resolved() {
		return nil, ErrAlreadyResolved
	}

	target, err := s.resolveTarget(record.TargetType, record.TargetID)
	if err != nil {
		return nil, err
	}

	if _, err := s.guard.CheckResolve(input.ResolverID, target.booking, record); err != nil {
		return nil, err
	}

	// Conditional update; a concurrent resolver loses here with
	// ErrAlreadyResolved rather than overwriting the first decision.
	if err := s.approvalRepo.Resolve(record.ID, input.Decision, input.ResolverID, input.Notes); err != nil {
		return nil, err
	}

	if target.task != nil {
		switch input.Decision {
		case models.ApprovalRecordApproved:
			target.task.ApprovalStatus = models.ApprovalStatusApproved
		case models.ApprovalRecordRejected:
			target.task.ApprovalStatus = models.ApprovalStatusRejected
			if target.task.Status == models.TaskStatusCompleted {
				target.task.Status = models.TaskStatusInProgress
			}
		}
		if err := s.taskRepo.Update(target.task); err != nil {
			return nil, fmt.Errorf("failed to update task approval state: %w", err)
		}
		if err := s.recalc.RecalculateMilestone(target.booking.ID, target.task.MilestoneID); err != nil {
			return nil, err
		}
	} else {
		if err := s.recalc.RecalculateBooking(target.booking.ID); err != nil {
			return nil, err
		}
	}

	if s.publisher != nil {
		s.publisher.Publish(events.Event{
			BookingID:   target.booking.ID,
			MilestoneID: target.milestoneID(),
			TaskID:      target.taskID(),
			Kind:        events.KindApprovalResolved,
		})
	}

	return s.approvalRepo.FindByID(record.ID, "Requester", "Resolver")
}

// ListApprovals returns the audit trail for a target, newest first
func (s *ApprovalService) ListApprovals(targetType models.ApprovalTargetType, targetID uint64, actorID uint64) ([]models.ApprovalRecord, error) {
	target, err := s.resolveTarget(targetType, targetID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.CheckMutate(actorID, target.booking); err != nil {
		return nil, err
	}

	records, err := s.approvalRepo.ListByTarget(targetType, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval records: %w", err)
	}
	return records, nil
}

// approvalTarget bundles the resolved target with its owning booking
type approvalTarget struct {
	task      *models.Task
	milestone *models.Milestone
	booking   *models.Booking
}

func (t *approvalTarget) milestoneID() *uint64 {
	if t.milestone != nil {
		id := t.milestone.ID
		return &id
	}
	if t.task != nil {
		id := t.task.MilestoneID
		return &id
	}
	return nil
}

func (t *approvalTarget) taskID() *uint64 {
	if t.task != nil {
		id := t.task.ID
		return &id
	}
	return nil
}

func (s *ApprovalService) resolveTarget(targetType models.ApprovalTargetType, targetID uint64) (*approvalTarget, error) {
	switch targetType {
	case models.ApprovalTargetTask:
		task, err := s.taskRepo.FindByID(targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTaskNotFound
			}
			return nil, fmt.Errorf("failed to find task: %w", err)
		}
		milestone, err := s.milestoneRepo.FindByID(task.MilestoneID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMilestoneNotFound
			}
			return nil, fmt.Errorf("failed to find milestone: %w", err)
		}
		booking, err := s.loadBooking(milestone.BookingID)
		if err != nil {
			return nil, err
		}
		return &approvalTarget{task: task, booking: booking}, nil

	case models.ApprovalTargetMilestone:
		milestone, err := s.milestoneRepo.FindByID(targetID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMilestoneNotFound
			}
			return nil, fmt.Errorf("failed to find milestone: %w", err)
		}
		booking, err := s.loadBooking(milestone.BookingID)
		if err != nil {
			return nil, err
		}
		return &approvalTarget{milestone: milestone, booking: booking}, nil

	default:
		return nil, ErrInvalidTarget
	}
}

func (s *ApprovalService) loadBooking(bookingID uint64) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return booking, nil
}
