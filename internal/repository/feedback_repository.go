package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/trail-catalog/internal/models"
	"gorm.io/gorm"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) WithTx(tx *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: tx}
}

// Create fails with gorm.ErrDuplicatedKey when the user already rated the trail.
func (r *FeedbackRepository) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *FeedbackRepository) GetByID(ctx context.Context, id string) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&feedback).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &feedback, nil
}

func (r *FeedbackRepository) FindByUserAndTrail(ctx context.Context, userID, trailID string) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.WithContext(ctx).Where("id_user = ? AND id_trail = ?", userID, trailID).First(&feedback).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &feedback, nil
}

// List returns all feedbacks, optionally only those with the given rating.
func (r *FeedbackRepository) List(ctx context.Context, rating *int) ([]models.Feedback, error) {
	q := r.db.WithContext(ctx)
	if rating != nil {
		q = q.Where("valutazione = ?", *rating)
	}
	feedbacks := []models.Feedback{}
	err := q.Order("created_at DESC").Find(&feedbacks).Error
	return feedbacks, err
}

func (r *FeedbackRepository) ListByTrail(ctx context.Context, trailID string) ([]models.Feedback, error) {
	feedbacks := []models.Feedback{}
	err := r.db.WithContext(ctx).Where("id_trail = ?", trailID).Order("created_at DESC").Find(&feedbacks).Error
	return feedbacks, err
}

func (r *FeedbackRepository) ListByUser(ctx context.Context, userID string) ([]models.Feedback, error) {
	feedbacks := []models.Feedback{}
	err := r.db.WithContext(ctx).Where("id_user = ?", userID).Order("created_at DESC").Find(&feedbacks).Error
	return feedbacks, err
}

func (r *FeedbackRepository) Save(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Save(feedback).Error
}

func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Feedback{}).Error
}

func (r *FeedbackRepository) DeleteByTrail(ctx context.Context, trailID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_trail = ?", trailID).Delete(&models.Feedback{})
	return res.RowsAffected, res.Error
}

func (r *FeedbackRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_user = ?", userID).Delete(&models.Feedback{})
	return res.RowsAffected, res.Error
}
