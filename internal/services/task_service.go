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
	ErrTaskNotFound      = errors.New("task not found")
	ErrMilestoneNotFound = errors.New("milestone not found")
	ErrTaskLocked        = errors.New("task is locked and cannot be modified")
	ErrMilestoneLocked   = errors.New("milestone is locked and cannot be modified")
	ErrInvalidTransition = errors.New("status transition is not allowed")
	ErrInvalidStatus     = errors.New("unknown status value")
	ErrTitleRequired     = errors.New("title is required")
	ErrTitleEmpty        = errors.New("title cannot be empty")
)

// taskTransitions is the allowed task status state machine. completed may be
// reopened to in_progress (provider/admin only, enforced in
// UpdateTaskStatus); cancelled is terminal.
var taskTransitions = map[models.TaskStatus][]models.TaskStatus{
	models.TaskStatusPending:    {models.TaskStatusInProgress, models.TaskStatusCancelled},
	models.TaskStatusInProgress: {models.TaskStatusCompleted, models.TaskStatusCancelled},
	models.TaskStatusCompleted:  {models.TaskStatusInProgress},
	models.TaskStatusCancelled:  {},
}

func validTaskTransition(from, to models.TaskStatus) bool {
	for _, allowed := range taskTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo      repository.TaskRepository
	milestoneRepo repository.MilestoneRepository
	bookingRepo   repository.BookingRepository
	guard         *AccessGuard
	recalc        *Recalculator
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, milestoneRepo repository.MilestoneRepository, bookingRepo repository.BookingRepository, guard *AccessGuard, recalc *Recalculator) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		milestoneRepo: milestoneRepo,
		bookingRepo:   bookingRepo,
		guard:         guard,
		recalc:        recalc,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	MilestoneID    uint64
	ActorID        uint64
	Title          string
	Description    string
	EstimatedHours float64
	Priority       models.TaskPriority
	DueDate        *time.Time
	OrderIndex     int
}

// UpdateTaskInput represents input for updating a task's descriptive fields
type UpdateTaskInput struct {
	ActorID        uint64
	Title          *string
	Description    *string
	EstimatedHours *float64
	ActualHours    *float64
	Priority       *models.TaskPriority
	DueDate        *time.Time
	ClearDueDate   bool
	OrderIndex     *int
}

// UpdateTaskStatusInput represents input for a task status transition
type UpdateTaskStatusInput struct {
	ActorID   uint64
	NewStatus models.TaskStatus

	// AdminOverride bypasses the transition table (admins only). Recalculation
	// still runs.
	AdminOverride bool
}

// GetTask returns a task with its milestone
func (s *TaskService) GetTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Milestone")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// ListTasks returns a milestone's tasks
func (s *TaskService) ListTasks(milestoneID uint64, filter repository.TaskFilter) ([]models.Task, int64, error) {
	if _, err := s.milestoneRepo.FindByID(milestoneID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrMilestoneNotFound
		}
		return nil, 0, fmt.Errorf("failed to find milestone: %w", err)
	}

	tasks, total, err := s.taskRepo.ListByMilestone(milestoneID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// CreateTask creates a task under a milestone and recalculates progress
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	milestone, booking, err := s.loadMilestoneChain(input.MilestoneID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.CheckMutate(input.ActorID, booking); err != nil {
		return nil, err
	}
	if !milestone.Editable {
		return nil, ErrMilestoneLocked
	}

	priority := input.Priority
	if priority == "" {
		priority = models.TaskPriorityMedium
	}

	task := &models.Task{
		MilestoneID:    input.MilestoneID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		Status:         models.TaskStatusPending,
		ApprovalStatus: models.ApprovalStatusNotRequired,
		EstimatedHours: input.EstimatedHours,
		Priority:       priority,
		DueDate:        input.DueDate,
		OrderIndex:     input.OrderIndex,
		Editable:       true,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if err := s.recalc.RecalculateMilestone(milestone.BookingID, milestone.ID); err != nil {
		return nil, err
	}

	return s.taskRepo.FindByID(task.ID, "Milestone")
}

// UpdateTask updates a task's descriptive fields
func (s *TaskService) UpdateTask(taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, _, booking, err := s.loadTaskChain(taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.guard.CheckMutate(input.ActorID, booking); err != nil {
		return nil, err
	}
	if !task.Editable {
		return nil, ErrTaskLocked
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.EstimatedHours != nil {
		task.EstimatedHours = *input.EstimatedHours
	}
	if input.ActualHours != nil {
		task.ActualHours = *input.ActualHours
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.OrderIndex != nil {
		task.OrderIndex = *input.OrderIndex
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Milestone")
}

// UpdateTaskStatus validates and applies a task status transition, then
// recalculates the owning milestone and booking
func (s *TaskService) UpdateTaskStatus(taskID uint64, input UpdateTaskStatusInput) (*models.Task, error) {
	if !models.ValidTaskStatus(input.NewStatus) {
		return nil, ErrInvalidStatus
	}

	task, milestone, booking, err := s.loadTaskChain(taskID)
	if err != nil {
		return nil, err
	}

	actor, err := s.guard.CheckMutate(input.ActorID, booking)
	if err != nil {
		return nil, err
	}
	if !task.Editable && !actor.IsAdmin() {
		return nil, ErrTaskLocked
	}

	if input.AdminOverride {
		if !actor.IsAdmin() {
			return nil, ErrForbidden
		}
	} else {
		if !validTaskTransition(task.Status, input.NewStatus) {
			return nil, ErrInvalidTransition
		}
		// Reopening a completed task is a provider/admin call; the client
		// disputes completion through the approval workflow instead.
		if task.Status == models.TaskStatusCompleted && input.NewStatus == models.TaskStatusInProgress {
			if actor.Role != models.RoleProvider && !actor.IsAdmin() {
				return nil, ErrForbidden
			}
		}
	}

	task.Status = input.NewStatus
	switch input.NewStatus {
	case models.TaskStatusCompleted:
		// Rework after a rejection needs a fresh sign-off request.
		if task.ApprovalStatus == models.ApprovalStatusRejected {
			task.ApprovalStatus = models.ApprovalStatusNotRequired
		}
	case models.TaskStatusInProgress:
		if task.ApprovalStatus == models.ApprovalStatusApproved {
			task.ApprovalStatus = models.ApprovalStatusNotRequired
		}
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	if err := s.recalc.RecalculateMilestone(milestone.BookingID, milestone.ID); err != nil {
		return nil, err
	}

	return s.taskRepo.FindByID(task.ID, "Milestone")
}

// DeleteTask deletes a task, its approval records, and recalculates progress
func (s *TaskService) DeleteTask(taskID, actorID uint64) error {
	task, milestone, booking, err := s.loadTaskChain(taskID)
	if err != nil {
		return err
	}
	if _, err := s.guard.CheckMutate(actorID, booking); err != nil {
		return err
	}
	if !milestone.Editable {
		return ErrMilestoneLocked
	}

	if err := s.taskRepo.Delete(task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return s.recalc.RecalculateMilestone(milestone.BookingID, milestone.ID)
}

// loadTaskChain loads a task with its milestone and booking
func (s *TaskService) loadTaskChain(taskID uint64) (*models.Task, *models.Milestone, *models.Booking, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrTaskNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to find task: %w", err)
	}

	milestone, booking, err := s.loadMilestoneChain(task.MilestoneID)
	if err != nil {
		return nil, nil, nil, err
	}
	return task, milestone, booking, nil
}

// loadMilestoneChain loads a milestone with its booking
func (s *TaskService) loadMilestoneChain(milestoneID uint64) (*models.Milestone, *models.Booking, error) {
	milestone, err := s.milestoneRepo.FindByID(milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrMilestoneNotFound
		}
		return nil, nil, fmt.Errorf("failed to find milestone: %w", err)
	}

	booking, err := s.bookingRepo.FindByID(milestone.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrBookingNotFound
		}
		return nil, nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return milestone, booking, nil
}
