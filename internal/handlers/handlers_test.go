package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/bookerloo/booking-api/internal/constants"
	"github.com/bookerloo/booking-api/internal/database"
	"github.com/bookerloo/booking-api/internal/events"
	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/progress"
	"github.com/bookerloo/booking-api/internal/repository"
	"github.com/bookerloo/booking-api/internal/services"
)

// HandlerTestSuite wires the full service stack over an in-memory database so
// handler tests exercise real services rather than mocks.
type HandlerTestSuite struct {
	suite.Suite
	db *gorm.DB

	taskHandler      *TaskHandler
	milestoneHandler *MilestoneHandler
	approvalHandler  *ApprovalHandler
	bookingHandler   *BookingHandler
}

// SetupTest runs before each test
func (suite *HandlerTestSuite) SetupTest() {
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

	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	bookingRepo := repository.NewBookingRepository(suite.db)
	milestoneRepo := repository.NewMilestoneRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)
	approvalRepo := repository.NewApprovalRepository(suite.db)

	dispatcher := events.NewDispatcher()
	recalc := services.NewRecalculator(suite.db, progress.DefaultPolicy, dispatcher, 2*time.Second)
	guard := services.NewAccessGuard(userRepo)

	bookingService := services.NewBookingService(bookingRepo, userRepo, guard)
	milestoneService := services.NewMilestoneService(milestoneRepo, bookingRepo, guard, recalc)
	taskService := services.NewTaskService(taskRepo, milestoneRepo, bookingRepo, guard, recalc)
	approvalService := services.NewApprovalService(approvalRepo, taskRepo, milestoneRepo, bookingRepo, guard, recalc, dispatcher)

	suite.bookingHandler = NewBookingHandler(bookingService, milestoneService)
	suite.milestoneHandler = NewMilestoneHandler(milestoneService)
	suite.taskHandler = NewTaskHandler(taskService)
	suite.approvalHandler = NewApprovalHandler(approvalService)

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *HandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper functions to create test data
func (suite *HandlerTestSuite) createTestUser(email string, role models.UserRole) *models.User {
	user := &models.User{
		Email:        email,
		PasswordHash: "hashedpassword",
		Role:         role,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *HandlerTestSuite) createTestBooking(clientID, providerID uint64) *models.Booking {
	booking := &models.Booking{
		ClientID:   clientID,
		ProviderID: providerID,
		Title:      "Website redesign",
		Status:     models.BookingStatusInProgress,
	}
	suite.Require().NoError(suite.db.Create(booking).Error)
	return booking
}

func (suite *HandlerTestSuite) createTestMilestone(bookingID uint64) *models.Milestone {
	milestone := &models.Milestone{
		BookingID: bookingID,
		Title:     "Discovery",
		Status:    models.MilestoneStatusPending,
		Weight:    1.0,
		Editable:  true,
	}
	suite.Require().NoError(suite.db.Create(milestone).Error)
	return milestone
}

func (suite *HandlerTestSuite) createTestTask(milestoneID uint64, status models.TaskStatus) *models.Task {
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

// Helper function to create authenticated context
func (suite *HandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

// Helpers that simulate the access middlewares
func (suite *HandlerTestSuite) setMilestoneContext(c *gin.Context, milestone models.Milestone) {
	c.Set(constants.ContextKeyMilestone, milestone)
}

func (suite *HandlerTestSuite) setTaskContext(c *gin.Context, task models.Task) {
	c.Set(constants.ContextKeyTask, task)
}

func (suite *HandlerTestSuite) setBookingContext(c *gin.Context, booking models.Booking) {
	c.Set(constants.ContextKeyBooking, booking)
}
