package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Baaaki/trail-catalog/internal/assets"
	"github.com/Baaaki/trail-catalog/internal/cache"
	"github.com/Baaaki/trail-catalog/internal/journal"
	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	msgTrailNotFound   = "Trail not found"
	msgInvalidTrailID  = "Invalid trail id"
	msgTrackRequired   = "a track file is required"
	msgTrailValidation = "Trail validation failed"
)

// Upload is a track file received with a request.
type Upload struct {
	Filename string
	Body     io.Reader
}

// OrphanJournal records asset directories that could not be removed.
type OrphanJournal interface {
	Record(trailID, reason string) error
	ReadAll() ([]journal.Entry, error)
	Cleanup(resolved []string) error
}

// TrailService keeps a trail record and its track file consistent across
// create, update and delete.
type TrailService struct {
	db       *gorm.DB
	trails   *repository.TrailRepository
	refs     *ReferenceChecker
	cascader *Cascader
	store    *assets.Store
	orphans  OrphanJournal
	cache    cache.TrailCache
}

func NewTrailService(
	db *gorm.DB,
	trails *repository.TrailRepository,
	refs *ReferenceChecker,
	cascader *Cascader,
	store *assets.Store,
	orphans OrphanJournal,
	trailCache cache.TrailCache,
) *TrailService {
	if trailCache == nil {
		trailCache = cache.NopTrailCache{}
	}
	return &TrailService{
		db:       db,
		trails:   trails,
		refs:     refs,
		cascader: cascader,
		store:    store,
		orphans:  orphans,
		cache:    trailCache,
	}
}

// Create persists the trail and stores its track. A trail never outlives a
// failed create: without a file, or when storing the file fails, the record
// and its directory are removed before the error is returned.
func (s *TrailService) Create(ctx context.Context, actor Actor, in TrailInput, file *Upload) (*models.Trail, string, error) {
	start := time.Now()

	if key, found := in.firstForbidden(trailCreateForbidden); found {
		logger.Log.Warn("Trail create rejected: forbidden field", zap.String("field", key))
		return nil, "", ErrBadRequest("Field '" + key + "' cannot be set")
	}

	trail := &models.Trail{ID: uuid.NewString(), AdminID: actor.UserID}
	errs := fieldErrors{}
	if in.has("idAdmin") {
		adminID, err := asString(in["idAdmin"])
		if err != nil {
			errs.add("idAdmin", err.Error())
		}
		trail.AdminID = adminID
	}
	if !in.has("coordinates") {
		errs.add("coordinates.DD", "is required")
	}
	applyTrailInput(trail, in, errs)

	if err := s.persist(ctx, trail, errs, true); err != nil {
		return nil, "", err
	}

	if file == nil {
		s.rollbackCreate(ctx, trail.ID, "no track file")
		logger.Log.Warn("Trail create rolled back: no track file", zap.String("trail_id", trail.ID))
		return nil, "", ErrBadRequest(msgTrackRequired)
	}

	if _, err := s.store.Put(trail.ID, file.Body, filepath.Ext(file.Filename)); err != nil {
		s.rollbackCreate(ctx, trail.ID, "track store failed")
		return nil, "", s.assetError(trail.ID, err)
	}

	logger.Log.Info("Trail created",
		zap.String("trail_id", trail.ID),
		zap.String("admin_id", trail.AdminID),
		zap.Duration("duration", time.Since(start)),
	)

	return trail, assets.PublicPath(trail.ID), nil
}

// rollbackCreate must run even when the request context is gone.
func (s *TrailService) rollbackCreate(ctx context.Context, trailID, reason string) {
	ctx = context.WithoutCancel(ctx)

	if err := s.trails.Delete(ctx, trailID); err != nil {
		logger.Log.Error("Rollback: failed to delete trail record",
			zap.String("trail_id", trailID),
			zap.String("reason", reason),
			zap.Error(err),
		)
	}
	if err := s.store.Delete(trailID); err != nil {
		s.recordOrphan(trailID, err)
	}
}

// Update applies the allow-listed fields of in and, when file is set,
// replaces the stored track afterwards. A file with the wrong extension is
// rejected before anything is saved.
func (s *TrailService) Update(ctx context.Context, id string, in TrailInput, file *Upload) (*models.Trail, error) {
	if key, found := in.firstForbidden(trailUpdateForbidden); found {
		logger.Log.Warn("Trail update rejected: forbidden field",
			zap.String("trail_id", id),
			zap.String("field", key),
		)
		return nil, ErrBadRequest("Field '" + key + "' cannot be modified")
	}
	if file != nil && !assets.AcceptsFile(file.Filename) {
		return nil, s.assetError(id, assets.ErrUnsupportedMedia)
	}

	trail, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	errs := fieldErrors{}
	applyTrailInput(trail, in, errs)
	if err := s.persist(ctx, trail, errs, false); err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)

	if file != nil {
		if _, err := s.store.Put(trail.ID, file.Body, filepath.Ext(file.Filename)); err != nil {
			return nil, s.assetError(trail.ID, err)
		}
	}

	logger.Log.Info("Trail updated",
		zap.String("trail_id", id),
		zap.Bool("track_replaced", file != nil),
	)
	return trail, nil
}

// ReplaceAsset swaps the stored track of an existing trail.
func (s *TrailService) ReplaceAsset(ctx context.Context, id string, file *Upload) (*models.Trail, string, error) {
	trail, err := s.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if file == nil {
		return nil, "", ErrBadRequest(msgTrackRequired)
	}

	if _, err := s.store.Put(id, file.Body, filepath.Ext(file.Filename)); err != nil {
		return nil, "", s.assetError(id, err)
	}

	logger.Log.Info("Trail track replaced", zap.String("trail_id", id))
	return trail, assets.PublicPath(id), nil
}

// Delete cascades and removes the record in one transaction, then removes
// the asset directory. A failed directory removal is journaled for a later
// sweep and does not fail the delete.
func (s *TrailService) Delete(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}

	var cascaded CascadeResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if cascaded, err = s.cascader.OnTrailDeleted(ctx, tx, id); err != nil {
			return err
		}
		return s.trails.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		logger.Log.Error("Failed to delete trail",
			zap.String("trail_id", id),
			zap.Error(err),
		)
		return err
	}
	s.invalidate(ctx, id)

	if err := s.store.Delete(id); err != nil {
		s.recordOrphan(id, err)
	}

	logger.Log.Info("Trail deleted",
		zap.String("trail_id", id),
		zap.Int64("feedbacks", cascaded.Feedbacks),
		zap.Int64("reports", cascaded.Reports),
		zap.Int64("favourites", cascaded.Favourites),
	)
	return nil
}

// Get serves from the cache when possible.
func (s *TrailService) Get(ctx context.Context, id string) (*models.Trail, error) {
	if !validID(id) {
		return nil, ErrBadRequest(msgInvalidTrailID)
	}

	if cached, err := s.cache.Get(ctx, id); err != nil {
		logger.Log.Warn("Trail cache read failed", zap.String("trail_id", id), zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	trail, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, trail); err != nil {
		logger.Log.Warn("Trail cache write failed", zap.String("trail_id", id), zap.Error(err))
		return trail, nil
	}

	// Delete invalidates after its commit, so a delete that raced past load
	// is visible here; drop the entry written behind it.
	if exists, err := s.trails.Exists(ctx, id); err != nil || !exists {
		s.invalidate(ctx, id)
	}
	return trail, nil
}

// OpenAsset returns the trail's track for streaming.
func (s *TrailService) OpenAsset(ctx context.Context, id string) (afero.File, os.FileInfo, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, nil, err
	}

	f, info, err := s.store.Open(id)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			return nil, nil, ErrNotFound("GPX file not found")
		}
		logger.Log.Error("Failed to open track", zap.String("trail_id", id), zap.Error(err))
		return nil, nil, err
	}
	return f, info, nil
}

// persist normalizes, re-verifies the owning admin and saves. It runs before
// every insert and update.
func (s *TrailService) persist(ctx context.Context, trail *models.Trail, errs fieldErrors, create bool) error {
	normalizeTrail(trail, errs)
	if len(errs) > 0 {
		logger.Log.Warn("Trail validation failed",
			zap.String("trail_id", trail.ID),
			zap.Any("fields", map[string]string(errs)),
		)
		return ErrValidation(msgTrailValidation, errs)
	}

	if err := s.refs.RequireUser(ctx, "idAdmin", trail.AdminID); err != nil {
		return err
	}

	var err error
	if create {
		err = s.trails.Create(ctx, trail)
	} else {
		err = s.trails.Save(ctx, trail)
	}
	if err != nil {
		logger.Log.Error("Failed to save trail",
			zap.String("trail_id", trail.ID),
			zap.Bool("create", create),
			zap.Error(err),
		)
		return storageError(err, "Trail already exists")
	}
	return nil
}

func (s *TrailService) load(ctx context.Context, id string) (*models.Trail, error) {
	if !validID(id) {
		return nil, ErrNotFound(msgTrailNotFound)
	}
	trail, err := s.trails.GetByID(ctx, id)
	if err != nil {
		logger.Log.Error("Failed to load trail", zap.String("trail_id", id), zap.Error(err))
		return nil, err
	}
	if trail == nil {
		return nil, ErrNotFound(msgTrailNotFound)
	}
	return trail, nil
}

func (s *TrailService) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		logger.Log.Warn("Trail cache invalidation failed", zap.String("trail_id", id), zap.Error(err))
	}
}

func (s *TrailService) assetError(trailID string, err error) error {
	switch {
	case errors.Is(err, assets.ErrUnsupportedMedia):
		logger.Log.Warn("Track rejected: unsupported media", zap.String("trail_id", trailID))
		return ErrUnsupportedMedia("Only .gpx files are accepted")
	case errors.Is(err, assets.ErrInvalidKey):
		return ErrBadRequest(msgInvalidTrailID)
	}
	logger.Log.Error("Failed to store track", zap.String("trail_id", trailID), zap.Error(err))
	return err
}

func (s *TrailService) recordOrphan(trailID string, cause error) {
	logger.Log.Warn("Failed to remove trail asset directory",
		zap.String("trail_id", trailID),
		zap.Error(cause),
	)
	if s.orphans == nil {
		return
	}
	if err := s.orphans.Record(trailID, cause.Error()); err != nil {
		logger.Log.Error("Failed to journal orphaned asset directory",
			zap.String("trail_id", trailID),
			zap.Error(err),
		)
	}
}
