package service

import (
	"context"
	"errors"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Baaaki/trail-catalog/internal/geo"
	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"go.uber.org/zap"
)

// ParseTrailFilter reads the GET /trails query. Tags may be repeated or comma
// separated; a malformed number is a bad request.
func ParseTrailFilter(q url.Values) (repository.TrailFilter, error) {
	f := repository.TrailFilter{
		Region:     strings.TrimSpace(q.Get("region")),
		Valley:     strings.TrimSpace(q.Get("valley")),
		Difficulty: strings.TrimSpace(q.Get("difficulty")),
	}

	var err error
	if f.MinLength, err = optionalFloat(q, "minLength"); err != nil {
		return f, err
	}
	if f.MaxLength, err = optionalFloat(q, "maxLength"); err != nil {
		return f, err
	}
	if f.MinDuration, err = optionalInt(q, "minDuration"); err != nil {
		return f, err
	}
	if f.MaxDuration, err = optionalInt(q, "maxDuration"); err != nil {
		return f, err
	}

	for _, raw := range q["tags"] {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
	}
	return f, nil
}

func optionalFloat(q url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, ErrBadRequest("'" + key + "' must be a number")
	}
	return &v, nil
}

func optionalInt(q url.Values, key string) (*int, error) {
	f, err := optionalFloat(q, key)
	if err != nil || f == nil {
		return nil, err
	}
	v := int(*f)
	return &v, nil
}

func (s *TrailService) List(ctx context.Context, filter repository.TrailFilter) ([]models.Trail, error) {
	trails, err := s.trails.List(ctx, filter)
	if err != nil {
		logger.Log.Error("Failed to list trails", zap.Error(err))
		return nil, err
	}
	if trails == nil {
		trails = []models.Trail{}
	}
	return trails, nil
}

// NearQuery holds the raw query values of a nearby search.
type NearQuery struct {
	Lat    string
	Lon    string
	Radius string
}

// Near returns the trails whose spatial point lies within radius kilometers
// (great-circle) of the given position, closest first. The bounding box
// query only narrows the candidates; the spherical cap test decides.
func (s *TrailService) Near(ctx context.Context, q NearQuery) ([]models.Trail, error) {
	if strings.TrimSpace(q.Lat) == "" || strings.TrimSpace(q.Lon) == "" || strings.TrimSpace(q.Radius) == "" {
		return nil, ErrBadRequest("lat, lon and radius are required")
	}

	lat, errLat := strconv.ParseFloat(strings.TrimSpace(q.Lat), 64)
	lon, errLon := strconv.ParseFloat(strings.TrimSpace(q.Lon), 64)
	radius, errRadius := strconv.ParseFloat(strings.TrimSpace(q.Radius), 64)
	if errLat != nil || errLon != nil || errRadius != nil || math.IsNaN(radius) || math.IsInf(radius, 0) {
		logger.Log.Warn("Near query rejected: non-numeric input",
			zap.String("lat", q.Lat),
			zap.String("lon", q.Lon),
			zap.String("radius", q.Radius),
		)
		return nil, ErrBadRequest("lat, lon and radius must be numbers")
	}
	if radius < 0 {
		return nil, ErrBadRequest("radius must be greater than or equal to 0")
	}

	center, err := geo.Normalize(lat, lon)
	if err != nil {
		var rangeErr *geo.RangeError
		if errors.As(err, &rangeErr) {
			return nil, ErrBadRequest(rangeErr.Error())
		}
		return nil, ErrBadRequest(err.Error())
	}

	candidates, err := s.trails.FindWithinBox(ctx, geo.BoundingBox(center, radius))
	if err != nil {
		logger.Log.Error("Near query failed", zap.Error(err))
		return nil, err
	}

	type hit struct {
		trail models.Trail
		angle float64
	}
	hits := make([]hit, 0, len(candidates))
	maxAngle := geo.AngularRadius(radius)
	for _, t := range candidates {
		if a := geo.CentralAngle(t.Location, center); a <= maxAngle {
			hits = append(hits, hit{trail: t, angle: a})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].angle < hits[j].angle })

	trails := make([]models.Trail, len(hits))
	for i, h := range hits {
		trails[i] = h.trail
	}

	logger.Log.Debug("Near query",
		zap.Float64("lat", lat),
		zap.Float64("lon", lon),
		zap.Float64("radius_km", radius),
		zap.Int("candidates", len(candidates)),
		zap.Int("matches", len(trails)),
	)
	return trails, nil
}
