package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/bookerloo/booking-api/internal/models"
)

type MilestoneServiceTestSuite struct {
	ServiceTestSuite
}

func TestMilestoneServiceTestSuite(t *testing.T) {
	suite.Run(t, new(MilestoneServiceTestSuite))
}

func (suite *MilestoneServiceTestSuite) TestCreateMilestone_DefaultsWeight() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)

	milestone, err := suite.milestoneService.CreateMilestone(CreateMilestoneInput{
		BookingID: booking.ID,
		ActorID:   provider.ID,
		Title:     "Design phase",
	})

	suite.Require().NoError(err)
	suite.Equal(1.0, milestone.Weight)
	suite.Equal(models.MilestoneStatusPending, milestone.Status)
	suite.True(milestone.Editable)
	suite.Equal(0, milestone.ProgressPercentage)
}

func (suite *MilestoneServiceTestSuite) TestCreateMilestone_RejectsNonPositiveWeight() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)

	_, err := suite.milestoneService.CreateMilestone(CreateMilestoneInput{
		BookingID: booking.ID,
		ActorID:   provider.ID,
		Title:     "Design phase",
		Weight:    -2,
	})

	suite.ErrorIs(err, ErrInvalidWeight)
}

func (suite *MilestoneServiceTestSuite) TestCreateMilestone_BlankTitle() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)

	_, err := suite.milestoneService.CreateMilestone(CreateMilestoneInput{
		BookingID: booking.ID,
		ActorID:   provider.ID,
		Title:     "   ",
	})

	suite.ErrorIs(err, ErrTitleRequired)
}

func (suite *MilestoneServiceTestSuite) TestCreateMilestone_DilutesBookingProgress() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	done := suite.createTestMilestone(booking.ID, 1.0)
	suite.createTestTask(done.ID, models.TaskStatusCompleted)
	suite.Require().NoError(suite.recalc.RecalculateBooking(booking.ID))
	suite.Equal(100, suite.reloadBooking(booking.ID).ProgressPercentage)

	_, err := suite.milestoneService.CreateMilestone(CreateMilestoneInput{
		BookingID: booking.ID,
		ActorID:   provider.ID,
		Title:     "Second phase",
	})

	suite.Require().NoError(err)
	suite.Equal(50, suite.reloadBooking(booking.ID).ProgressPercentage)
}

func (suite *MilestoneServiceTestSuite) TestUpdateMilestone_WeightChangeReaggregates() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)

	done := suite.createTestMilestone(booking.ID, 1.0)
	suite.createTestTask(done.ID, models.TaskStatusCompleted)
	open := suite.createTestMilestone(booking.ID, 1.0)
	suite.createTestTask(open.ID, models.TaskStatusPending)
	suite.Require().NoError(suite.recalc.RecalculateBooking(booking.ID))
	suite.Equal(50, suite.reloadBooking(booking.ID).ProgressPercentage)

	weight := 3.0
	_, err := suite.milestoneService.UpdateMilestone(done.ID, UpdateMilestoneInput{
		ActorID: provider.ID,
		Weight:  &weight,
	})

	suite.Require().NoError(err)
	suite.Equal(75, suite.reloadBooking(booking.ID).ProgressPercentage)
}

func (suite *MilestoneServiceTestSuite) TestUpdateMilestone_LockedUnlessAdmin() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)
	suite.Require().NoError(suite.db.Model(milestone).Update("editable", false).Error)

	title := "Renamed"
	_, err := suite.milestoneService.UpdateMilestone(milestone.ID, UpdateMilestoneInput{
		ActorID: provider.ID,
		Title:   &title,
	})

	suite.ErrorIs(err, ErrMilestoneLocked)
}

func (suite *MilestoneServiceTestSuite) TestUpdateMilestoneStatus_CancelRemovesFromAverage() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)

	done := suite.createTestMilestone(booking.ID, 1.0)
	suite.createTestTask(done.ID, models.TaskStatusCompleted)
	stalled := suite.createTestMilestone(booking.ID, 1.0)
	suite.createTestTask(stalled.ID, models.TaskStatusPending)
	suite.Require().NoError(suite.recalc.RecalculateBooking(booking.ID))
	suite.Equal(50, suite.reloadBooking(booking.ID).ProgressPercentage)

	_, err := suite.milestoneService.UpdateMilestoneStatus(stalled.ID, models.MilestoneStatusCancelled, provider.ID)

	suite.Require().NoError(err)
	suite.Equal(100, suite.reloadBooking(booking.ID).ProgressPercentage)
}

func (suite *MilestoneServiceTestSuite) TestUpdateMilestoneStatus_EmptyCompletedCountsFull() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)

	updated, err := suite.milestoneService.UpdateMilestoneStatus(milestone.ID, models.MilestoneStatusCompleted, provider.ID)

	suite.Require().NoError(err)
	suite.Equal(models.MilestoneStatusCompleted, updated.Status)
	suite.Equal(100, updated.ProgressPercentage)
	suite.Equal(100, suite.reloadBooking(booking.ID).ProgressPercentage)
}

func (suite *MilestoneServiceTestSuite) TestUpdateMilestoneStatus_InvalidStatus() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)

	_, err := suite.milestoneService.UpdateMilestoneStatus(milestone.ID, "archived", provider.ID)

	suite.ErrorIs(err, ErrInvalidStatus)
}

func (suite *MilestoneServiceTestSuite) TestUpdateMilestoneStatus_LockedAllowsAdmin() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)
	suite.Require().NoError(suite.db.Model(milestone).Update("editable", false).Error)

	_, err := suite.milestoneService.UpdateMilestoneStatus(milestone.ID, models.MilestoneStatusOnHold, provider.ID)
	suite.ErrorIs(err, ErrMilestoneLocked)

	updated, err := suite.milestoneService.UpdateMilestoneStatus(milestone.ID, models.MilestoneStatusOnHold, admin.ID)
	suite.Require().NoError(err)
	suite.Equal(models.MilestoneStatusOnHold, updated.Status)
}

func (suite *MilestoneServiceTestSuite) TestDeleteMilestone_CascadesAndReaggregates() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)

	done := suite.createTestMilestone(booking.ID, 1.0)
	suite.createTestTask(done.ID, models.TaskStatusCompleted)
	stalled := suite.createTestMilestone(booking.ID, 1.0)
	task := suite.createTestTask(stalled.ID, models.TaskStatusPending)
	suite.Require().NoError(suite.recalc.RecalculateBooking(booking.ID))
	suite.Equal(50, suite.reloadBooking(booking.ID).ProgressPercentage)

	suite.Require().NoError(suite.milestoneService.DeleteMilestone(stalled.ID, provider.ID))

	suite.Equal(100, suite.reloadBooking(booking.ID).ProgressPercentage)

	var taskCount int64
	suite.Require().NoError(suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&taskCount).Error)
	suite.Equal(int64(0), taskCount)
}

func (suite *MilestoneServiceTestSuite) TestGetMilestone_NotFound() {
	_, err := suite.milestoneService.GetMilestone(404)
	suite.ErrorIs(err, ErrMilestoneNotFound)
}
