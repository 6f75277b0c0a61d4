package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Booking indexes for the two owner lookups and status filtering
		{"bookings", "idx_bookings_client_id", "client_id"},
		{"bookings", "idx_bookings_provider_id", "provider_id"},
		{"bookings", "idx_bookings_status", "status"},

		// Milestone indexes for per-booking loads and ordering
		{"milestones", "idx_milestones_booking_id", "booking_id"},
		{"milestones", "idx_milestones_status", "status"},
		{"milestones", "idx_milestones_order_index", "order_index"},

		// Task indexes for per-milestone loads and status filtering
		{"tasks", "idx_tasks_milestone_id", "milestone_id"},
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_due_date", "due_date"},

		// Approval lookups by target and requester
		{"approval_records", "idx_approvals_target", "target_type, target_id"},
		{"approval_records", "idx_approvals_requester_id", "requester_id"},
		{"approval_records", "idx_approvals_status", "status"},
	}

	for _, idx := range indexes {
		// Check if index already exists
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			fmt.Printf("Index %s already exists, skipping\n", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		fmt.Printf("Created index %s on %s(%s)\n", idx.name, idx.table, idx.columns)
	}

	return nil
}
