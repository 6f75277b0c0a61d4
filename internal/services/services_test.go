package services

import (
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookerloo/booking-api/internal/events"
	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/progress"
	"github.com/bookerloo/booking-api/internal/repository"
)

// ServiceTestSuite wires the full service stack against an in-memory SQLite
// database. Individual suites embed it and add their own cases.
type ServiceTestSuite struct {
	suite.Suite
	db *gorm.DB

	dispatcher *events.Dispatcher
	recalc     *Recalculator
	guard      *AccessGuard

	bookingService   *BookingService
	milestoneService *MilestoneService
	taskService      *TaskService
	approvalService  *ApprovalService
}

// SetupTest runs before each test
func (suite *ServiceTestSuite) SetupTest() {
	suite.setupWithPolicy(progress.DefaultPolicy)
}

func (suite *ServiceTestSuite) setupWithPolicy(policy progress.Policy) {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Booking{},
		&models.Milestone{},
		&models.Task{},
		&models.ApprovalRecord{},
	)
	suite.Require().NoError(err)

	userRepo := repository.NewUserRepository(suite.db)
	bookingRepo := repository.NewBookingRepository(suite.db)
	milestoneRepo := repository.NewMilestoneRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	approvalRepo := repository.NewApprovalRepository(suite.db)

	suite.dispatcher = events.NewDispatcher()
	suite.recalc = NewRecalculator(suite.db, policy, suite.dispatcher, 2*time.Second)
	suite.guard = NewAccessGuard(userRepo)

	suite.bookingService = NewBookingService(bookingRepo, userRepo, suite.guard)
	suite.milestoneService = NewMilestoneService(milestoneRepo, bookingRepo, suite.guard, suite.recalc)
	suite.taskService = NewTaskService(taskRepo, milestoneRepo, bookingRepo, suite.guard, suite.recalc)
	suite.approvalService = NewApprovalService(approvalRepo, taskRepo, milestoneRepo, bookingRepo, suite.guard, suite.recalc, suite.dispatcher)
}

// TearDownTest runs after each test
func (suite *ServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data

func (suite *ServiceTestSuite) createTestUser(email string, role models.UserRole) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *ServiceTestSuite) createTestBooking(clientID, providerID uint64) *models.Booking {
	booking := &models.Booking{
		ClientID:   clientID,
		ProviderID: providerID,
		Title:      "Website redesign",
		Status:     models.BookingStatusInProgress,
	}
	suite.Require().NoError(suite.db.Create(booking).Error)
	return booking
}

func (suite *ServiceTestSuite) createTestMilestone(bookingID uint64, weight float64) *models.Milestone {
	milestone := &models.Milestone{
		BookingID: bookingID,
		Title:     "Discovery",
		Status:    models.MilestoneStatusPending,
		Weight:    weight,
		Editable:  true,
	}
	suite.Require().NoError(suite.db.Create(milestone).Error)
	return milestone
}

func (suite *ServiceTestSuite) createTestTask(milestoneID uint64, status models.TaskStatus) *models.Task {
	task := &models.Task{
		MilestoneID:    milestoneID,
		Title:          "Wireframes",
		Status:         status,
		ApprovalStatus: models.ApprovalStatusNotRequired,
		Priority:       models.TaskPriorityMedium,
		Editable:       true,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

func (suite *ServiceTestSuite) reloadMilestone(id uint64) *models.Milestone {
	var m models.Milestone
	suite.Require().NoError(suite.db.First(&m, id).Error)
	return &m
}

func (suite *ServiceTestSuite) reloadBooking(id uint64) *models.Booking {
	var b models.Booking
	suite.Require().NoError(suite.db.First(&b, id).Error)
	return &b
}

func (suite *ServiceTestSuite) reloadTask(id uint64) *models.Task {
	var t models.Task
	suite.Require().NoError(suite.db.First(&t, id).Error)
	return &t
}
