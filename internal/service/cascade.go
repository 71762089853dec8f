package service

import (
	"context"

	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CascadeResult counts the dependent rows removed by a cascade.
type CascadeResult struct {
	Feedbacks  int64
	Reports    int64
	Favourites int64
}

// Cascader removes the records that depend on a user or a trail. Callers run
// it inside the transaction that deletes the owning record, so either the
// whole cascade and the delete commit or nothing does.
type Cascader struct {
	users     *repository.UserRepository
	feedbacks *repository.FeedbackRepository
	reports   *repository.ReportRepository
}

func NewCascader(
	users *repository.UserRepository,
	feedbacks *repository.FeedbackRepository,
	reports *repository.ReportRepository,
) *Cascader {
	return &Cascader{users: users, feedbacks: feedbacks, reports: reports}
}

// OnUserDeleted removes the user's feedbacks, reports and favourites.
func (c *Cascader) OnUserDeleted(ctx context.Context, tx *gorm.DB, userID string) (CascadeResult, error) {
	var res CascadeResult
	var err error

	if res.Feedbacks, err = c.feedbacks.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
		return res, err
	}
	if res.Reports, err = c.reports.WithTx(tx).DeleteByUser(ctx, userID); err != nil {
		return res, err
	}
	if res.Favourites, err = c.users.WithTx(tx).DeleteFavouritesOfUser(ctx, userID); err != nil {
		return res, err
	}

	logger.Log.Debug("User cascade applied",
		zap.String("user_id", userID),
		zap.Int64("feedbacks", res.Feedbacks),
		zap.Int64("reports", res.Reports),
		zap.Int64("favourites", res.Favourites),
	)
	return res, nil
}

// OnTrailDeleted removes the trail's feedbacks and reports and pulls it out
// of every user's favourites.
func (c *Cascader) OnTrailDeleted(ctx context.Context, tx *gorm.DB, trailID string) (CascadeResult, error) {
	var res CascadeResult
	var err error

	if res.Feedbacks, err = c.feedbacks.WithTx(tx).DeleteByTrail(ctx, trailID); err != nil {
		return res, err
	}
	if res.Reports, err = c.reports.WithTx(tx).DeleteByTrail(ctx, trailID); err != nil {
		return res, err
	}
	if res.Favourites, err = c.users.WithTx(tx).RemoveTrailFromFavourites(ctx, trailID); err != nil {
		return res, err
	}

	logger.Log.Debug("Trail cascade applied",
		zap.String("trail_id", trailID),
		zap.Int64("feedbacks", res.Feedbacks),
		zap.Int64("reports", res.Reports),
		zap.Int64("favourites", res.Favourites),
	)
	return res, nil
}
