package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/internal/utils"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var emailRegex = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)

// AuthRequest is either an email/password pair or a Google ID token.
type AuthRequest struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	GoogleToken string `json:"googleToken"`
}

type AuthResult struct {
	User    *models.User
	Token   string
	Created bool
}

type AuthService struct {
	userRepo      *repository.UserRepository
	verifier      IdentityVerifier
	jwtSecret     string
	jwtExpiration time.Duration
}

// NewAuthService accepts a nil verifier when Google sign-in is not configured.
func NewAuthService(userRepo *repository.UserRepository, verifier IdentityVerifier, jwtSecret string, jwtExpiration time.Duration) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		verifier:      verifier,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Authenticate logs a user in, registering a base account on first contact.
func (s *AuthService) Authenticate(ctx context.Context, req AuthRequest) (*AuthResult, error) {
	start := time.Now()

	var (
		res *AuthResult
		err error
	)
	if req.GoogleToken != "" {
		res, err = s.authenticateGoogle(ctx, req.GoogleToken)
	} else {
		res, err = s.authenticatePassword(ctx, req)
	}
	if err != nil {
		return nil, err
	}

	res.Token, err = utils.GenerateToken(res.User, s.jwtSecret, s.jwtExpiration)
	if err != nil {
		logger.Log.Error("Failed to generate JWT token",
			zap.String("user_id", res.User.ID),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("User authenticated",
		zap.String("user_id", res.User.ID),
		zap.Bool("created", res.Created),
		zap.Bool("google", req.GoogleToken != ""),
		zap.Duration("total_duration", time.Since(start)),
	)
	return res, nil
}

func (s *AuthService) authenticatePassword(ctx context.Context, req AuthRequest) (*AuthResult, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if email == "" || req.Password == "" {
		return nil, ErrBadRequest("Email and password are required")
	}
	if !emailRegex.MatchString(email) {
		return nil, ErrValidation("Invalid email format", map[string]string{"email": "is not a valid email address"})
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		logger.Log.Error("Failed to get user by email", zap.String("email", email), zap.Error(err))
		return nil, err
	}

	if user == nil {
		hash, err := utils.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user, err = s.register(ctx, req.Username, email, hash)
		if err != nil {
			return nil, err
		}
		return &AuthResult{User: user, Created: true}, nil
	}

	valid, err := utils.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil && !errors.Is(err, utils.ErrNoPassword) {
		logger.Log.Error("Failed to verify password", zap.String("user_id", user.ID), zap.Error(err))
		return nil, err
	}
	if !valid {
		logger.Log.Warn("Login failed: invalid password", zap.String("user_id", user.ID))
		return nil, ErrUnauthorized("Authentication failed. Wrong password.")
	}

	return &AuthResult{User: user}, nil
}

func (s *AuthService) authenticateGoogle(ctx context.Context, token string) (*AuthResult, error) {
	if s.verifier == nil {
		return nil, ErrBadRequest("Google sign-in is not configured")
	}

	identity, err := s.verifier.Verify(ctx, token)
	if err != nil {
		logger.Log.Warn("Google token rejected", zap.Error(err))
		return nil, ErrUnauthorized("Invalid Google token")
	}

	email := strings.ToLower(identity.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return &AuthResult{User: user}, nil
	}

	// Google accounts get no local password until the user sets one.
	user, err = s.register(ctx, identity.Name, email, "")
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Created: true}, nil
}

func (s *AuthService) register(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         models.RoleBase,
		Favourites:   []string{},
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		logger.Log.Error("Failed to create user", zap.String("email", email), zap.Error(err))
		return nil, storageError(err, "Email already registered")
	}

	logger.Log.Info("User registered", zap.String("user_id", user.ID), zap.String("email", email))
	return user, nil
}

// EnsureAdmin creates an admin account, or promotes the existing account with
// that email. It reports whether a new account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, email, password string) (*models.User, bool, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegex.MatchString(email) {
		return nil, false, ErrValidation("Invalid email format", map[string]string{"email": "is not a valid email address"})
	}
	if password == "" {
		return nil, false, ErrBadRequest("password is required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, err
	}
	if user != nil {
		if user.Role != models.RoleAdmin {
			user.Role = models.RoleAdmin
			if err := s.userRepo.Save(ctx, user); err != nil {
				return nil, false, err
			}
			logger.Log.Info("User promoted to admin", zap.String("user_id", user.ID))
		}
		return user, false, nil
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, false, err
	}
	user, err = s.register(ctx, username, email, hash)
	if err != nil {
		return nil, false, err
	}
	user.Role = models.RoleAdmin
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}
