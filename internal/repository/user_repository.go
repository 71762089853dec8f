package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/trail-catalog/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *UserRepository) WithTx(tx *gorm.DB) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID returns the user with its favourites loaded, or nil when absent.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	favourites, err := r.Favourites(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Favourites = favourites

	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	favourites, err := r.Favourites(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Favourites = favourites

	return &user, nil
}

// List returns every user, newest first, with favourites attached.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	var rows []models.Favourite
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	byUser := make(map[string][]string)
	for _, f := range rows {
		byUser[f.UserID] = append(byUser[f.UserID], f.TrailID)
	}
	for i := range users {
		users[i].Favourites = byUser[users[i].ID]
		if users[i].Favourites == nil {
			users[i].Favourites = []string{}
		}
	}

	return users, nil
}

// Exists is a point lookup on the primary key.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{}).Error
}

func (r *UserRepository) Favourites(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).
		Model(&models.Favourite{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("trail_id", &ids).Error
	return ids, err
}

func (r *UserRepository) HasFavourite(ctx context.Context, userID, trailID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Favourite{}).
		Where("user_id = ? AND trail_id = ?", userID, trailID).
		Count(&count).Error
	return count > 0, err
}

// AddFavourite fails with gorm.ErrDuplicatedKey when the pair already exists.
func (r *UserRepository) AddFavourite(ctx context.Context, userID, trailID string) error {
	return r.db.WithContext(ctx).Create(&models.Favourite{UserID: userID, TrailID: trailID}).Error
}

// RemoveFavourite reports whether a row was removed.
func (r *UserRepository) RemoveFavourite(ctx context.Context, userID, trailID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND trail_id = ?", userID, trailID).
		Delete(&models.Favourite{})
	return res.RowsAffected > 0, res.Error
}

// RemoveTrailFromFavourites pulls the trail out of every user's list.
func (r *UserRepository) RemoveTrailFromFavourites(ctx context.Context, trailID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("trail_id = ?", trailID).Delete(&models.Favourite{})
	return res.RowsAffected, res.Error
}

func (r *UserRepository) DeleteFavouritesOfUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Favourite{})
	return res.RowsAffected, res.Error
}
