package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/service"
	"github.com/Baaaki/trail-catalog/internal/testutil"
	"github.com/Baaaki/trail-catalog/internal/utils"
	"github.com/stretchr/testify/suite"
)

type fakeVerifier map[string]*service.Identity

func (f fakeVerifier) Verify(_ context.Context, token string) (*service.Identity, error) {
	if id, ok := f[token]; ok {
		return id, nil
	}
	return nil, errors.New("token rejected")
}

type AuthServiceTestSuite struct {
	suite.Suite
	env *serviceEnv
	ctx context.Context
}

func (s *AuthServiceTestSuite) SetupSuite() {
	s.env = newServiceEnv(s.T(), nil, fakeVerifier{
		"good-token": {Email: "Walker@Example.com", Name: "Walker"},
	})
	s.ctx = context.Background()
}

func (s *AuthServiceTestSuite) TearDownSuite() {
	s.env.close(s.T())
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.env.reset(s.T())
}

func (s *AuthServiceTestSuite) TestAuthenticate_RegistersThenLogsIn() {
	req := service.AuthRequest{Username: "newbie", Email: "newbie@example.com", Password: "SecurePass123"}

	res, err := s.env.auth.Authenticate(s.ctx, req)
	s.Require().NoError(err)
	s.True(res.Created)
	s.Equal(models.RoleBase, res.User.Role)

	claims, err := utils.ValidateToken(res.Token, testutil.TestJWTSecret)
	s.Require().NoError(err)
	s.Equal(res.User.ID, claims.UserID)

	res, err = s.env.auth.Authenticate(s.ctx, req)
	s.Require().NoError(err)
	s.False(res.Created)

	req.Password = "wrong"
	_, err = s.env.auth.Authenticate(s.ctx, req)
	s.Equal(service.KindUnauthorized, kindOf(err))
}

func (s *AuthServiceTestSuite) TestAuthenticate_RejectsIncompleteInput() {
	_, err := s.env.auth.Authenticate(s.ctx, service.AuthRequest{Email: "a@example.com"})
	s.Equal(service.KindBadRequest, kindOf(err))

	_, err = s.env.auth.Authenticate(s.ctx, service.AuthRequest{Email: "not-an-email", Password: "x"})
	s.Equal(service.KindValidation, kindOf(err))
}

func (s *AuthServiceTestSuite) TestAuthenticate_Google() {
	res, err := s.env.auth.Authenticate(s.ctx, service.AuthRequest{GoogleToken: "good-token"})
	s.Require().NoError(err)
	s.True(res.Created)
	s.Equal("walker@example.com", res.User.Email)
	s.Equal("Walker", res.User.Username)

	res, err = s.env.auth.Authenticate(s.ctx, service.AuthRequest{GoogleToken: "good-token"})
	s.Require().NoError(err)
	s.False(res.Created)

	_, err = s.env.auth.Authenticate(s.ctx, service.AuthRequest{GoogleToken: "forged"})
	s.Equal(service.KindUnauthorized, kindOf(err))

	// no local password was ever set
	_, err = s.env.auth.Authenticate(s.ctx, service.AuthRequest{Email: "walker@example.com", Password: "guess"})
	s.Equal(service.KindUnauthorized, kindOf(err))
}

func (s *AuthServiceTestSuite) TestEnsureAdmin() {
	user, created, err := s.env.auth.EnsureAdmin(s.ctx, "root", "root@example.com", "RootPass1")
	s.Require().NoError(err)
	s.True(created)
	s.Equal(models.RoleAdmin, user.Role)

	hiker := testutil.CreateHiker(s.T(), s.env.testDB.DB)
	user, created, err = s.env.auth.EnsureAdmin(s.ctx, "", hiker.Email, "ignored")
	s.Require().NoError(err)
	s.False(created)
	s.Equal(models.RoleAdmin, user.Role)

	stored, err := s.env.users.GetByID(s.ctx, hiker.ID)
	s.Require().NoError(err)
	s.Equal(models.RoleAdmin, stored.Role)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
