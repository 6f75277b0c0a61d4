package services

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/bookerloo/booking-api/internal/models"
	"github.com/bookerloo/booking-api/internal/progress"
)

type ApprovalServiceTestSuite struct {
	ServiceTestSuite
}

func TestApprovalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ApprovalServiceTestSuite))
}

func (suite *ApprovalServiceTestSuite) TestRequestApproval_Task() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)
	task := suite.createTestTask(milestone.ID, models.TaskStatusCompleted)

	record, err := suite.approvalService.RequestApproval(RequestApprovalInput{
		TargetType:  models.ApprovalTargetTask,
		TargetID:    task.ID,
		RequesterID: provider.ID,
		Comment:     "Please review the homepage",
	})

	suite.Require().NoError(err)
	suite.Equal(models.ApprovalRecordPending, record.Status)
	suite.Equal(provider.ID, record.RequesterID)
	suite.Nil(record.ResolverID)
	suite.Equal(models.ApprovalStatusPending, suite.reloadTask(task.ID).ApprovalStatus)
}

func (suite *ApprovalServiceTestSuite) TestRequestApproval_DuplicateOpenRequest() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)
	task := suite.createTestTask(milestone.ID, models.TaskStatusCompleted)

	_, err := suite.approvalService.RequestApproval(RequestApprovalInput{
		TargetType:  models.ApprovalTargetTask,
		TargetID:    task.ID,
		RequesterID: provider.ID,
	})
	suite.Require().NoError(err)

	_, err = suite.approvalService.RequestApproval(RequestApprovalInput{
		TargetType:  models.ApprovalTargetTask,
		TargetID:    task.ID,
		RequesterID: provider.ID,
	})
	suite.ErrorIs(err, ErrApprovalOpen)
}

func (suite *ApprovalServiceTestSuite) TestRequestApproval_OutsiderForbidden() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	outsider := suite.createTestUser("outsider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)
	task := suite.createTestTask(milestone.ID, models.TaskStatusCompleted)

	_, err := suite.approvalService.RequestApproval(RequestApprovalInput{
		TargetType:  models.ApprovalTargetTask,
		TargetID:    task.ID,
		RequesterID: outsider.ID,
	})

	suite.ErrorIs(err, ErrForbidden)
}

func (suite *ApprovalServiceTestSuite) TestResolveApproval_Approve() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)
	task := suite.createTestTask(milestone.ID, models.TaskStatusCompleted)

	record, err := suite.approvalService.RequestApproval(RequestApprovalInput{
		TargetType:  models.ApprovalTargetTask,
		TargetID:    task.ID,
		RequesterID: provider.ID,
	})
	suite.Require().NoError(err)

	resolved, err := suite.approvalService.ResolveApproval(record.ID, ResolveApprovalInput{
		Decision:   models.ApprovalRecordApproved,
		ResolverID: client.ID,
		Notes:      "Looks great",
	})

	suite.Require().NoError(err)
	suite.Equal(models.ApprovalRecordApproved, resolved.Status)
	suite.Require().NotNil(resolved.ResolverID)
	suite.Equal(client.ID, *resolved.ResolverID)
	suite.NotNil(resolved.ResolvedAt)
	suite.Equal(models.ApprovalStatusApproved, suite.reloadTask(task.ID).ApprovalStatus)
	suite.Equal(100, suite.reloadMilestone(milestone.ID).ProgressPercentage)
}

func (suite *ApprovalServiceTestSuite) TestResolveApproval_RejectionRevertsTask() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)
	task := suite.createTestTask(milestone.ID, models.TaskStatusCompleted)
	suite.Require().NoError(suite.recalc.RecalculateMilestone(booking.ID, milestone.ID))
	suite.Equal(100, suite.reloadMilestone(milestone.ID).ProgressPercentage)

	record, err := suite.approvalService.RequestApproval(RequestApprovalInput{
		TargetType:  models.ApprovalTargetTask,
		TargetID:    task.ID,
		RequesterID: provider.ID,
	})
	suite.Require().NoError(err)

	_, err = suite.approvalService.ResolveApproval(record.ID, ResolveApprovalInput{
		Decision:   models.ApprovalRecordRejected,
		ResolverID: client.ID,
		Notes:      "Missing the footer",
	})
	suite.Require().NoError(err)

	reverted := suite.reloadTask(task.ID)
	suite.Equal(models.TaskStatusInProgress, reverted.Status)
	suite.Equal(models.ApprovalStatusRejected, reverted.ApprovalStatus)
	suite.Equal(0, suite.reloadMilestone(milestone.ID).ProgressPercentage)
	suite.Equal(0, suite.reloadBooking(booking.ID).ProgressPercentage)
}

func (suite *ApprovalServiceTestSuite) TestResolveApproval_SelfApprovalForbidden() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)
	task := suite.createTestTask(milestone.ID, models.TaskStatusCompleted)

	record, err := suite.approvalService.RequestApproval(RequestApprovalInput{
		TargetType:  models.ApprovalTargetTask,
		TargetID:    task.ID,
		RequesterID: provider.ID,
	})
	suite.Require().NoError(err)

	_, err = suite.approvalService.ResolveApproval(record.ID, ResolveApprovalInput{
		Decision:   models.ApprovalRecordApproved,
		ResolverID: provider.ID,
	})

	suite.ErrorIs(err, ErrForbidden)
}

func (suite *ApprovalServiceTestSuite) TestResolveApproval_AdminMayResolveOwnRequest() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	admin := suite.createTestUser("admin@example.com", models.RoleAdmin)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)
	task := suite.createTestTask(milestone.ID, models.TaskStatusCompleted)

	record, err := suite.approvalService.RequestApproval(RequestApprovalInput{
		TargetType:  models.ApprovalTargetTask,
		TargetID:    task.ID,
		RequesterID: admin.ID,
	})
	suite.Require().NoError(err)

	resolved, err := suite.approvalService.ResolveApproval(record.ID, ResolveApprovalInput{
		Decision:   models.ApprovalRecordApproved,
		ResolverID: admin.ID,
	})

	suite.Require().NoError(err)
	suite.Equal(models.ApprovalRecordApproved, resolved.Status)
}

func (suite *ApprovalServiceTestSuite) TestResolveApproval_DoubleResolve() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)
	task := suite.createTestTask(milestone.ID, models.TaskStatusCompleted)

	record, err := suite.approvalService.RequestApproval(RequestApprovalInput{
		TargetType:  models.ApprovalTargetTask,
		TargetID:    task.ID,
		RequesterID: provider.ID,
	})
	suite.Require().NoError(err)

	_, err = suite.approvalService.ResolveApproval(record.ID, ResolveApprovalInput{
		Decision:   models.ApprovalRecordApproved,
		ResolverID: client.ID,
	})
	suite.Require().NoError(err)

	_, err = suite.approvalService.ResolveApproval(record.ID, ResolveApprovalInput{
		Decision:   models.ApprovalRecordRejected,
		ResolverID: client.ID,
	})
	suite.ErrorIs(err, ErrAlreadyResolved)
}

func (suite *ApprovalServiceTestSuite) TestResolveApproval_InvalidDecision() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	_, err := suite.approvalService.ResolveApproval(1, ResolveApprovalInput{
		Decision:   models.ApprovalRecordPending,
		ResolverID: client.ID,
	})
	suite.ErrorIs(err, ErrInvalidDecision)
}

func (suite *ApprovalServiceTestSuite) TestRequestApproval_MilestoneTarget() {
	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)

	record, err := suite.approvalService.RequestApproval(RequestApprovalInput{
		TargetType:  models.ApprovalTargetMilestone,
		TargetID:    milestone.ID,
		RequesterID: provider.ID,
	})
	suite.Require().NoError(err)

	resolved, err := suite.approvalService.ResolveApproval(record.ID, ResolveApprovalInput{
		Decision:   models.ApprovalRecordApproved,
		ResolverID: client.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(models.ApprovalRecordApproved, resolved.Status)

	records, err := suite.approvalService.ListApprovals(models.ApprovalTargetMilestone, milestone.ID, client.ID)
	suite.Require().NoError(err)
	suite.Len(records, 1)
}

func (suite *ApprovalServiceTestSuite) TestConservativePolicy_PendingApprovalHoldsProgress() {
	suite.setupWithPolicy(progress.Policy{CountPendingApproval: false})

	client := suite.createTestUser("client@example.com", models.RoleClient)
	provider := suite.createTestUser("provider@example.com", models.RoleProvider)
	booking := suite.createTestBooking(client.ID, provider.ID)
	milestone := suite.createTestMilestone(booking.ID, 1.0)
	task := suite.createTestTask(milestone.ID, models.TaskStatusCompleted)
	suite.Require().NoError(suite.recalc.RecalculateMilestone(booking.ID, milestone.ID))
	suite.Equal(100, suite.reloadMilestone(milestone.ID).ProgressPercentage)

	record, err := suite.approvalService.RequestApproval(RequestApprovalInput{
		TargetType:  models.ApprovalTargetTask,
		TargetID:    task.ID,
		RequesterID: provider.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(0, suite.reloadMilestone(milestone.ID).ProgressPercentage)

	_, err = suite.approvalService.ResolveApproval(record.ID, ResolveApprovalInput{
		Decision:   models.ApprovalRecordApproved,
		ResolverID: client.ID,
	})
	suite.Require().NoError(err)
	suite.Equal(100, suite.reloadMilestone(milestone.ID).ProgressPercentage)
}
