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

type FeedbackServiceTestSuite struct {
	suite.Suite
	env   *serviceEnv
	ctx   context.Context
	admin *models.User
	hiker *models.User
	trail *models.Trail
}

func (s *FeedbackServiceTestSuite) SetupSuite() {
	s.env = newServiceEnv(s.T(), nil, nil)
	s.ctx = context.Background()
}

func (s *FeedbackServiceTestSuite) TearDownSuite() {
	s.env.close(s.T())
}

func (s *FeedbackServiceTestSuite) SetupTest() {
	s.env.reset(s.T())
	s.admin = testutil.CreateAdmin(s.T(), s.env.testDB.DB)
	s.hiker = testutil.CreateHiker(s.T(), s.env.testDB.DB)
	s.trail = testutil.CreateTrail(s.T(), s.env.testDB.DB, s.admin.ID, 46.4, 11.7)
}

func (s *FeedbackServiceTestSuite) hikerActor() service.Actor {
	return service.Actor{UserID: s.hiker.ID, Role: models.RoleBase}
}

func strPtr(v string) *string { return &v }

func (s *FeedbackServiceTestSuite) TestCreate_SecondFeedbackConflicts() {
	first, err := s.env.feedbacks.Create(s.ctx, s.hikerActor(), s.trail.ID, service.FeedbackRequest{
		Testo:       strPtr("Lovely"),
		Valutazione: 5.0,
	})
	s.Require().NoError(err)
	s.Equal(s.hiker.ID, first.UserID)
	s.Equal(5, first.Valutazione)

	_, err = s.env.feedbacks.Create(s.ctx, s.hikerActor(), s.trail.ID, service.FeedbackRequest{
		Valutazione: "3",
	})
	s.Require().Error(err)
	s.Equal(service.KindConflict, kindOf(err))
	s.Equal("Feedback already exists for this trail", err.Error())
}

func (s *FeedbackServiceTestSuite) TestCreate_ValidatesRatingAndReferences() {
	_, err := s.env.feedbacks.Create(s.ctx, s.hikerActor(), s.trail.ID, service.FeedbackRequest{})
	s.Equal(service.KindValidation, kindOf(err), "missing rating")

	_, err = s.env.feedbacks.Create(s.ctx, s.hikerActor(), s.trail.ID, service.FeedbackRequest{Valutazione: 6.0})
	s.Equal(service.KindValidation, kindOf(err), "rating above range")

	_, err = s.env.feedbacks.Create(s.ctx, s.hikerActor(), s.trail.ID, service.FeedbackRequest{Valutazione: 2.5})
	s.Equal(service.KindValidation, kindOf(err), "fractional rating")

	_, err = s.env.feedbacks.Create(s.ctx, s.hikerActor(), uuid.NewString(), service.FeedbackRequest{Valutazione: 4.0})
	s.Require().Error(err)
	var se *service.Error
	s.Require().ErrorAs(err, &se)
	s.Equal(service.KindValidation, se.Kind)
	s.Contains(se.Fields, "idTrail")
}

func (s *FeedbackServiceTestSuite) TestCreate_OnlyAdminMayNameAnotherAuthor() {
	_, err := s.env.feedbacks.Create(s.ctx, s.hikerActor(), s.trail.ID, service.FeedbackRequest{
		IDUser:      strPtr(s.admin.ID),
		Valutazione: 4.0,
	})
	s.Equal(service.KindForbidden, kindOf(err))

	admin := service.Actor{UserID: s.admin.ID, Role: models.RoleAdmin}
	feedback, err := s.env.feedbacks.Create(s.ctx, admin, s.trail.ID, service.FeedbackRequest{
		IDUser:      strPtr(s.hiker.ID),
		Valutazione: 4.0,
	})
	s.Require().NoError(err)
	s.Equal(s.hiker.ID, feedback.UserID)

	_, err = s.env.feedbacks.Create(s.ctx, admin, s.trail.ID, service.FeedbackRequest{
		IDUser:      strPtr(uuid.NewString()),
		Valutazione: 4.0,
	})
	s.Equal(service.KindValidation, kindOf(err), "dangling author")
}

func (s *FeedbackServiceTestSuite) TestUpdate_OwnerOrAdminOnly() {
	feedback := testutil.CreateFeedback(s.T(), s.env.testDB.DB, s.admin.ID, s.trail.ID, 3)

	_, err := s.env.feedbacks.Update(s.ctx, s.hikerActor(), feedback.ID, service.FeedbackRequest{Testo: strPtr("mine now")})
	s.Equal(service.KindForbidden, kindOf(err))

	own := testutil.CreateFeedback(s.T(), s.env.testDB.DB, s.hiker.ID, s.trail.ID, 3)
	updated, err := s.env.feedbacks.Update(s.ctx, s.hikerActor(), own.ID, service.FeedbackRequest{
		IDUser:      strPtr(s.admin.ID),
		Testo:       strPtr("changed my mind"),
		Valutazione: 1.0,
	})
	s.Require().NoError(err)
	s.Equal("changed my mind", updated.Testo)
	s.Equal(1, updated.Valutazione)
	s.Equal(s.hiker.ID, updated.UserID, "author is not updatable")
}

func (s *FeedbackServiceTestSuite) TestGetAndDelete() {
	feedback := testutil.CreateFeedback(s.T(), s.env.testDB.DB, s.hiker.ID, s.trail.ID, 4)

	_, err := s.env.feedbacks.Get(s.ctx, "nope")
	s.Equal(service.KindBadRequest, kindOf(err))
	_, err = s.env.feedbacks.Get(s.ctx, uuid.NewString())
	s.Equal(service.KindNotFound, kindOf(err))

	other := service.Actor{UserID: uuid.NewString(), Role: models.RoleBase}
	s.Equal(service.KindForbidden, kindOf(s.env.feedbacks.Delete(s.ctx, other, feedback.ID)))

	s.Require().NoError(s.env.feedbacks.Delete(s.ctx, s.hikerActor(), feedback.ID))
	_, err = s.env.feedbacks.Get(s.ctx, feedback.ID)
	s.Equal(service.KindNotFound, kindOf(err))
}

func (s *FeedbackServiceTestSuite) TestList_RatingFilter() {
	other := testutil.CreateTrail(s.T(), s.env.testDB.DB, s.admin.ID, 45.0, 10.0)
	testutil.CreateFeedback(s.T(), s.env.testDB.DB, s.hiker.ID, s.trail.ID, 4)
	testutil.CreateFeedback(s.T(), s.env.testDB.DB, s.hiker.ID, other.ID, 2)

	all, err := s.env.feedbacks.List(s.ctx, "")
	s.Require().NoError(err)
	s.Len(all, 2)

	fours, err := s.env.feedbacks.List(s.ctx, "4")
	s.Require().NoError(err)
	s.Require().Len(fours, 1)
	s.Equal(s.trail.ID, fours[0].TrailID)

	_, err = s.env.feedbacks.List(s.ctx, "9")
	s.Equal(service.KindBadRequest, kindOf(err))
}

func (s *FeedbackServiceTestSuite) TestListByTrailAndUser() {
	testutil.CreateFeedback(s.T(), s.env.testDB.DB, s.hiker.ID, s.trail.ID, 4)

	byTrail, err := s.env.feedbacks.ListByTrail(s.ctx, s.trail.ID)
	s.Require().NoError(err)
	s.Len(byTrail, 1)

	_, err = s.env.feedbacks.ListByTrail(s.ctx, uuid.NewString())
	s.Equal(service.KindNotFound, kindOf(err))

	byUser, err := s.env.feedbacks.ListByUser(s.ctx, s.hikerActor(), s.hiker.ID)
	s.Require().NoError(err)
	s.Len(byUser, 1)

	_, err = s.env.feedbacks.ListByUser(s.ctx, s.hikerActor(), s.admin.ID)
	s.Equal(service.KindForbidden, kindOf(err))

	_, err = s.env.feedbacks.ListByUser(s.ctx, s.hikerActor(), uuid.NewString())
	s.Equal(service.KindNotFound, kindOf(err))
}

func TestFeedbackServiceTestSuite(t *testing.T) {
	suite.Run(t, new(FeedbackServiceTestSuite))
}
