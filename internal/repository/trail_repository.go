package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Baaaki/trail-catalog/internal/geo"
	"github.com/Baaaki/trail-catalog/internal/models"
	"gorm.io/gorm"
)

// TrailFilter narrows GET /trails. Zero values mean "no constraint".
type TrailFilter struct {
	Region      string
	Valley      string
	Difficulty  string
	MinLength   *float64
	MaxLength   *float64
	MinDuration *int
	MaxDuration *int
	Tags        []string
}

type TrailRepository struct {
	db *gorm.DB
}

func NewTrailRepository(db *gorm.DB) *TrailRepository {
	return &TrailRepository{db: db}
}

func (r *TrailRepository) WithTx(tx *gorm.DB) *TrailRepository {
	return &TrailRepository{db: tx}
}

func (r *TrailRepository) Create(ctx context.Context, trail *models.Trail) error {
	return r.db.WithContext(ctx).Create(trail).Error
}

func (r *TrailRepository) Save(ctx context.Context, trail *models.Trail) error {
	return r.db.WithContext(ctx).Save(trail).Error
}

func (r *TrailRepository) GetByID(ctx context.Context, id string) (*models.Trail, error) {
	var trail models.Trail
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&trail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &trail, nil
}

func (r *TrailRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Trail{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

func (r *TrailRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Trail{}).Error
}

// List applies every filter with AND semantics. A trail matches a tag filter
// only when it carries all requested tags.
func (r *TrailRepository) List(ctx context.Context, f TrailFilter) ([]models.Trail, error) {
	q := r.db.WithContext(ctx).Model(&models.Trail{})

	if f.Region != "" {
		q = q.Where("region = ?", f.Region)
	}
	if f.Valley != "" {
		q = q.Where("valley = ?", f.Valley)
	}
	if f.Difficulty != "" {
		q = q.Where("difficulty = ?", f.Difficulty)
	}
	if f.MinLength != nil {
		q = q.Where("length_km >= ?", *f.MinLength)
	}
	if f.MaxLength != nil {
		q = q.Where("length_km <= ?", *f.MaxLength)
	}
	if f.MinDuration != nil {
		q = q.Where("duration_hours * 60 + duration_minutes >= ?", *f.MinDuration)
	}
	if f.MaxDuration != nil {
		q = q.Where("duration_hours * 60 + duration_minutes <= ?", *f.MaxDuration)
	}
	for _, tag := range f.Tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		q = q.Where(`tags LIKE ? ESCAPE '\'`, "%,"+escapeLike(tag)+",%")
	}

	var trails []models.Trail
	err := q.Order("created_at DESC").Find(&trails).Error
	return trails, err
}

// FindWithinBox is the indexed prefilter of the nearby search. Callers still
// have to apply the exact spherical test.
func (r *TrailRepository) FindWithinBox(ctx context.Context, box geo.Box) ([]models.Trail, error) {
	q := r.db.WithContext(ctx).
		Where("location_lat BETWEEN ? AND ?", box.MinLat, box.MaxLat)
	if !box.AllLon {
		q = q.Where("location_lon BETWEEN ? AND ?", box.MinLon, box.MaxLon)
	}

	var trails []models.Trail
	err := q.Find(&trails).Error
	return trails, err
}

// FindByIDs keeps no particular order.
func (r *TrailRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Trail, error) {
	trails := []models.Trail{}
	if len(ids) == 0 {
		return trails, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&trails).Error
	return trails, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
