package service

import (
	"context"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/internal/utils"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type UserService struct {
	db       *gorm.DB
	users    *repository.UserRepository
	trails   *repository.TrailRepository
	cascader *Cascader
}

func NewUserService(
	db *gorm.DB,
	users *repository.UserRepository,
	trails *repository.TrailRepository,
	cascader *Cascader,
) *UserService {
	return &UserService{db: db, users: users, trails: trails, cascader: cascader}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		logger.Log.Error("Failed to list users", zap.Error(err))
		return nil, err
	}
	return users, nil
}

func (s *UserService) Get(ctx context.Context, actor Actor, id string) (*models.User, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(user.ID) {
		return nil, ErrForbidden("Forbidden")
	}
	return user, nil
}

// Update accepts username and password. Email and role are never
// client-modifiable; other keys are ignored.
func (s *UserService) Update(ctx context.Context, actor Actor, id string, in map[string]any) (*models.User, error) {
	if !actor.CanAccess(id) {
		return nil, ErrForbidden("Forbidden")
	}
	if truthy(in["email"]) || truthy(in["role"]) {
		logger.Log.Warn("User update rejected: email or role", zap.String("user_id", id))
		return nil, ErrBadRequest("Cannot modify email or role")
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if v, ok := in["username"]; ok {
		username, err := asString(v)
		if err != nil {
			return nil, ErrValidation("username "+err.Error(), map[string]string{"username": err.Error()})
		}
		user.Username = username
	}
	if v, ok := in["password"]; ok && truthy(v) {
		password, err := asString(v)
		if err != nil {
			return nil, ErrValidation("password "+err.Error(), map[string]string{"password": err.Error()})
		}
		if user.PasswordHash, err = utils.HashPassword(password); err != nil {
			return nil, err
		}
	}

	if err := s.users.Save(ctx, user); err != nil {
		logger.Log.Error("Failed to update user", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("User updated", zap.String("user_id", id), zap.String("actor_id", actor.UserID))
	return user, nil
}

// Delete removes the user with its feedbacks, reports and favourites in one
// transaction.
func (s *UserService) Delete(ctx context.Context, actor Actor, id string) error {
	if !actor.CanAccess(id) {
		return ErrForbidden("Forbidden")
	}
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	var cascaded CascadeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if cascaded, err = s.cascader.OnUserDeleted(ctx, tx, id); err != nil {
			return err
		}
		return s.users.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		logger.Log.Error("Failed to delete user", zap.String("user_id", id), zap.Error(err))
		return err
	}

	logger.Log.Info("User deleted",
		zap.String("user_id", id),
		zap.String("actor_id", actor.UserID),
		zap.Int64("feedbacks", cascaded.Feedbacks),
		zap.Int64("reports", cascaded.Reports),
	)
	return nil
}

// AddFavourite returns the user's favourites after the insert.
func (s *UserService) AddFavourite(ctx context.Context, actor Actor, userID, trailID string) ([]string, error) {
	if !actor.CanAccess(userID) {
		return nil, ErrForbidden("Forbidden")
	}
	if err := validPair(userID, trailID); err != nil {
		return nil, err
	}
	if _, err := s.load(ctx, userID); err != nil {
		return nil, err
	}

	exists, err := s.trails.Exists(ctx, trailID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound(msgTrailNotFound)
	}

	already, err := s.users.HasFavourite(ctx, userID, trailID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, ErrConflict("Trail already in favourites")
	}

	if err := s.users.AddFavourite(ctx, userID, trailID); err != nil {
		return nil, storageError(err, "Trail already in favourites")
	}

	logger.Log.Info("Favourite added", zap.String("user_id", userID), zap.String("trail_id", trailID))
	return s.users.Favourites(ctx, userID)
}

func (s *UserService) RemoveFavourite(ctx context.Context, actor Actor, userID, trailID string) error {
	if !actor.CanAccess(userID) {
		return ErrForbidden("Forbidden")
	}
	if err := validPair(userID, trailID); err != nil {
		return err
	}
	if _, err := s.load(ctx, userID); err != nil {
		return err
	}

	removed, err := s.users.RemoveFavourite(ctx, userID, trailID)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound("Favourite trail not found")
	}

	logger.Log.Info("Favourite removed", zap.String("user_id", userID), zap.String("trail_id", trailID))
	return nil
}

// Favourites resolves the user's favourite trails in list order. Identifiers
// whose trail no longer exists are skipped.
func (s *UserService) Favourites(ctx context.Context, actor Actor, userID string) ([]models.Trail, error) {
	if !actor.CanAccess(userID) {
		return nil, ErrForbidden("Forbidden")
	}
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	found, err := s.trails.FindByIDs(ctx, user.Favourites)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]models.Trail, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}

	trails := make([]models.Trail, 0, len(found))
	for _, id := range user.Favourites {
		if t, ok := byID[id]; ok {
			trails = append(trails, t)
		}
	}
	return trails, nil
}

func (s *UserService) load(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, ErrBadRequest("Invalid user id")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		logger.Log.Error("Failed to load user", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound("User not found")
	}
	return user, nil
}

func validPair(userID, trailID string) error {
	if !validID(userID) || !validID(trailID) {
		return ErrBadRequest("Invalid user or trail id")
	}
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	}
	return true
}
