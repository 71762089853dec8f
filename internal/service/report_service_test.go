package service_test

import (
	"context"
	"testing"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/service"
	"github.com/Baaaki/trail-catalog/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type ReportServiceTestSuite struct {
	suite.Suite
	env   *serviceEnv
	ctx   context.Context
	admin *models.User
	hiker *models.User
	trail *models.Trail
}

func (s *ReportServiceTestSuite) SetupSuite() {
	s.env = newServiceEnv(s.T(), nil, nil)
	s.ctx = context.Background()
}

func (s *ReportServiceTestSuite) TearDownSuite() {
	s.env.close(s.T())
}

func (s *ReportServiceTestSuite) SetupTest() {
	s.env.reset(s.T())
	s.admin = testutil.CreateAdmin(s.T(), s.env.testDB.DB)
	s.hiker = testutil.CreateHiker(s.T(), s.env.testDB.DB)
	s.trail = testutil.CreateTrail(s.T(), s.env.testDB.DB, s.admin.ID, 46.4, 11.7)
}

func (s *ReportServiceTestSuite) hikerActor() service.Actor {
	return service.Actor{UserID: s.hiker.ID, Role: models.RoleBase}
}

func (s *ReportServiceTestSuite) adminActor() service.Actor {
	return service.Actor{UserID: s.admin.ID, Role: models.RoleAdmin}
}

func (s *ReportServiceTestSuite) TestCreate() {
	_, err := s.env.reports.Create(s.ctx, s.hikerActor(), s.trail.ID, service.ReportRequest{Testo: strPtr("  ")})
	s.Equal(service.KindBadRequest, kindOf(err))

	_, err = s.env.reports.Create(s.ctx, s.hikerActor(), uuid.NewString(), service.ReportRequest{Testo: strPtr("gone")})
	s.Equal(service.KindNotFound, kindOf(err))

	report, err := s.env.reports.Create(s.ctx, s.hikerActor(), s.trail.ID, service.ReportRequest{
		Testo: strPtr("Bridge washed away"),
		State: strPtr("Resolved"),
	})
	s.Require().NoError(err)
	s.Equal(models.ReportStateNew, report.State, "only admins choose the initial state")

	report, err = s.env.reports.Create(s.ctx, s.adminActor(), s.trail.ID, service.ReportRequest{
		Testo: strPtr("Signs repainted"),
		State: strPtr("Resolved"),
	})
	s.Require().NoError(err)
	s.Equal(models.ReportStateResolved, report.State)
}

func (s *ReportServiceTestSuite) TestUpdate() {
	report := testutil.CreateReport(s.T(), s.env.testDB.DB, s.hiker.ID, s.trail.ID, models.ReportStateNew)

	_, err := s.env.reports.Update(s.ctx, s.hikerActor(), report.ID, service.ReportRequest{State: strPtr("Resolved")})
	s.Require().Error(err)
	s.Equal("No valid fields to update", err.Error())

	updated, err := s.env.reports.Update(s.ctx, s.hikerActor(), report.ID, service.ReportRequest{Testo: strPtr("Bridge fixed?")})
	s.Require().NoError(err)
	s.Equal("Bridge fixed?", updated.Testo)

	_, err = s.env.reports.Update(s.ctx, s.adminActor(), report.ID, service.ReportRequest{State: strPtr("Closed")})
	s.Equal(service.KindValidation, kindOf(err))

	updated, err = s.env.reports.Update(s.ctx, s.adminActor(), report.ID, service.ReportRequest{State: strPtr("In progress")})
	s.Require().NoError(err)
	s.Equal(models.ReportStateInProgress, updated.State)

	stranger := service.Actor{UserID: uuid.NewString(), Role: models.RoleBase}
	_, err = s.env.reports.Update(s.ctx, stranger, report.ID, service.ReportRequest{Testo: strPtr("x")})
	s.Equal(service.KindForbidden, kindOf(err))
}

func (s *ReportServiceTestSuite) TestDelete_OwnerOnlyWhileNew() {
	inProgress := testutil.CreateReport(s.T(), s.env.testDB.DB, s.hiker.ID, s.trail.ID, models.ReportStateInProgress)
	fresh := testutil.CreateReport(s.T(), s.env.testDB.DB, s.hiker.ID, s.trail.ID, models.ReportStateNew)

	err := s.env.reports.Delete(s.ctx, s.hikerActor(), inProgress.ID)
	s.Equal(service.KindForbidden, kindOf(err))
	s.Contains(err.Error(), "'New'")

	s.Require().NoError(s.env.reports.Delete(s.ctx, s.hikerActor(), fresh.ID))
	s.Require().NoError(s.env.reports.Delete(s.ctx, s.adminActor(), inProgress.ID))
}

func (s *ReportServiceTestSuite) TestList_StateFilter() {
	testutil.CreateReport(s.T(), s.env.testDB.DB, s.hiker.ID, s.trail.ID, models.ReportStateNew)
	testutil.CreateReport(s.T(), s.env.testDB.DB, s.hiker.ID, s.trail.ID, models.ReportStateInProgress)
	testutil.CreateReport(s.T(), s.env.testDB.DB, s.hiker.ID, s.trail.ID, models.ReportStateResolved)

	reports, err := s.env.reports.List(s.ctx, "New,In progress")
	s.Require().NoError(err)
	s.Len(reports, 2)

	reports, err = s.env.reports.List(s.ctx, "")
	s.Require().NoError(err)
	s.Len(reports, 3)

	_, err = s.env.reports.List(s.ctx, "New,Nuovo")
	s.Equal(service.KindBadRequest, kindOf(err))
}

func (s *ReportServiceTestSuite) TestListByTrailAndUser() {
	testutil.CreateReport(s.T(), s.env.testDB.DB, s.hiker.ID, s.trail.ID, models.ReportStateNew)

	byTrail, err := s.env.reports.ListByTrail(s.ctx, s.trail.ID)
	s.Require().NoError(err)
	s.Len(byTrail, 1)

	byUser, err := s.env.reports.ListByUser(s.ctx, s.adminActor(), s.hiker.ID)
	s.Require().NoError(err)
	s.Len(byUser, 1)

	_, err = s.env.reports.ListByTrail(s.ctx, "bad")
	s.Equal(service.KindBadRequest, kindOf(err))
}

func TestReportServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportServiceTestSuite))
}
