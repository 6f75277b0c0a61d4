// Package progress holds the pure progress arithmetic: task completion rolled
// up into a milestone percentage, and weighted milestone percentages rolled up
// into a booking percentage. Nothing in here touches the database; callers
// load the rows, this package only computes, and the recalculator persists.
package progress

import (
	"math"

	"github.com/bookerloo/booking-api/internal/models"
)

// Policy controls how approvals interact with progress counting.
//
// CountPendingApproval decides whether a completed task whose approval is
// still pending contributes to progress. The platform default is optimistic
// (true): only an explicit rejection excludes a completed task.
type Policy struct {
	CountPendingApproval bool
}

// DefaultPolicy is the optimistic counting policy.
var DefaultPolicy = Policy{CountPendingApproval: true}

// EffectivelyComplete reports whether a task counts as complete under the
// policy. Cancelled tasks never count and are filtered out before this is
// consulted.
func EffectivelyComplete(t models.Task, p Policy) bool {
	if t.Status != models.TaskStatusCompleted {
		return false
	}
	if t.ApprovalStatus == models.ApprovalStatusRejected {
		return false
	}
	if !p.CountPendingApproval && t.ApprovalStatus == models.ApprovalStatusPending {
		return false
	}
	return true
}

// MilestoneProgress computes a milestone's percentage from its tasks.
// Cancelled tasks are excluded entirely; with no countable tasks the result
// is 0 (the zero-task completion override lives with the caller). The result
// is an integer in [0,100], rounded half-up, and independent of task order.
func MilestoneProgress(tasks []models.Task, p Policy) int {
	countable := 0
	completed := 0
	for _, t := range tasks {
		if t.Status == models.TaskStatusCancelled {
			continue
		}
		countable++
		if EffectivelyComplete(t, p) {
			completed++
		}
	}

	if countable == 0 {
		return 0
	}

	return roundHalfUp(100 * float64(completed) / float64(countable))
}

// BookingProgress computes a booking's percentage as the weighted average of
// its non-cancelled milestones. With no milestones (or no weight) the result
// is 0.
func BookingProgress(milestones []models.Milestone) int {
	var weightedSum, totalWeight float64
	for _, m := range milestones {
		if m.Status == models.MilestoneStatusCancelled {
			continue
		}
		if m.Weight <= 0 {
			continue
		}
		weightedSum += float64(m.ProgressPercentage) * m.Weight
		totalWeight += m.Weight
	}

	if totalWeight == 0 {
		return 0
	}

	return roundHalfUp(weightedSum / totalWeight)
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
