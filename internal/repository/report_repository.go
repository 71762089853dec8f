package repository

import (
	"context"
	"errors"

	"github.com/Baaaki/trail-catalog/internal/models"
	"gorm.io/gorm"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) WithTx(tx *gorm.DB) *ReportRepository {
	return &ReportRepository{db: tx}
}

func (r *ReportRepository) Create(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Create(report).Error
}

func (r *ReportRepository) GetByID(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&report).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &report, nil
}

// List returns every report whose state is one of states; an empty slice
// means all states.
func (r *ReportRepository) List(ctx context.Context, states []models.ReportState) ([]models.Report, error) {
	q := r.db.WithContext(ctx)
	if len(states) > 0 {
		q = q.Where("state IN ?", states)
	}
	reports := []models.Report{}
	err := q.Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) ListByTrail(ctx context.Context, trailID string) ([]models.Report, error) {
	reports := []models.Report{}
	err := r.db.WithContext(ctx).Where("id_trail = ?", trailID).Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) ListByUser(ctx context.Context, userID string) ([]models.Report, error) {
	reports := []models.Report{}
	err := r.db.WithContext(ctx).Where("id_user = ?", userID).Order("created_at DESC").Find(&reports).Error
	return reports, err
}

func (r *ReportRepository) Save(ctx context.Context, report *models.Report) error {
	return r.db.WithContext(ctx).Save(report).Error
}

func (r *ReportRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Report{}).Error
}

func (r *ReportRepository) DeleteByTrail(ctx context.Context, trailID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_trail = ?", trailID).Delete(&models.Report{})
	return res.RowsAffected, res.Error
}

func (r *ReportRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id_user = ?", userID).Delete(&models.Report{})
	return res.RowsAffected, res.Error
}
