package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const msgFeedbackExists = "Feedback already exists for this trail"

// FeedbackRequest is the body of a feedback create or update. Valutazione
// accepts a number or a numeric string.
type FeedbackRequest struct {
	IDUser      *string `json:"idUser"`
	Testo       *string `json:"testo"`
	Valutazione any     `json:"valutazione"`
}

type FeedbackService struct {
	feedbacks *repository.FeedbackRepository
	users     *repository.UserRepository
	trails    *repository.TrailRepository
	refs      *ReferenceChecker
}

func NewFeedbackService(
	feedbacks *repository.FeedbackRepository,
	users *repository.UserRepository,
	trails *repository.TrailRepository,
	refs *ReferenceChecker,
) *FeedbackService {
	return &FeedbackService{feedbacks: feedbacks, users: users, trails: trails, refs: refs}
}

// Create stores the caller's rating of a trail. A user rates a trail at most
// once; the unique (user, trail) index backs the pre-check against races.
func (s *FeedbackService) Create(ctx context.Context, actor Actor, trailID string, req FeedbackRequest) (*models.Feedback, error) {
	userID, err := resolveAuthor(actor, req.IDUser)
	if err != nil {
		return nil, err
	}

	if req.Valutazione == nil {
		return nil, ErrValidation("valutazione is required", map[string]string{"valutazione": "is required"})
	}
	rating, err := parseRating(req.Valutazione)
	if err != nil {
		return nil, err
	}

	if err := s.refs.RequireUser(ctx, "idUser", userID); err != nil {
		return nil, err
	}
	if err := s.refs.RequireTrail(ctx, "idTrail", trailID); err != nil {
		return nil, err
	}

	existing, err := s.feedbacks.FindByUserAndTrail(ctx, userID, trailID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		logger.Log.Warn("Duplicate feedback rejected",
			zap.String("user_id", userID),
			zap.String("trail_id", trailID),
		)
		return nil, ErrConflict(msgFeedbackExists)
	}

	feedback := &models.Feedback{
		ID:          uuid.NewString(),
		UserID:      userID,
		TrailID:     trailID,
		Valutazione: rating,
	}
	if req.Testo != nil {
		feedback.Testo = *req.Testo
	}

	if err := s.feedbacks.Create(ctx, feedback); err != nil {
		logger.Log.Warn("Failed to create feedback", zap.String("trail_id", trailID), zap.Error(err))
		return nil, storageError(err, msgFeedbackExists)
	}

	logger.Log.Info("Feedback created",
		zap.String("feedback_id", feedback.ID),
		zap.String("user_id", userID),
		zap.String("trail_id", trailID),
	)
	return feedback, nil
}

func (s *FeedbackService) Get(ctx context.Context, id string) (*models.Feedback, error) {
	if !validID(id) {
		return nil, ErrBadRequest("Invalid feedback id")
	}
	feedback, err := s.feedbacks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if feedback == nil {
		return nil, ErrNotFound("Feedback not found")
	}
	return feedback, nil
}

// List returns every feedback, optionally only those with the given rating.
func (s *FeedbackService) List(ctx context.Context, ratingFilter string) ([]models.Feedback, error) {
	var rating *int
	if raw := strings.TrimSpace(ratingFilter); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || !models.ValidRating(v) {
			return nil, ErrBadRequest("Invalid valutazione filter")
		}
		rating = &v
	}
	return s.feedbacks.List(ctx, rating)
}

// Update changes only testo and valutazione; other fields are ignored.
func (s *FeedbackService) Update(ctx context.Context, actor Actor, id string, req FeedbackRequest) (*models.Feedback, error) {
	feedback, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(feedback.UserID) {
		return nil, ErrForbidden("Forbidden")
	}

	if req.Testo != nil {
		feedback.Testo = *req.Testo
	}
	if req.Valutazione != nil {
		if feedback.Valutazione, err = parseRating(req.Valutazione); err != nil {
			return nil, err
		}
	}

	if err := s.feedbacks.Save(ctx, feedback); err != nil {
		return nil, err
	}

	logger.Log.Info("Feedback updated", zap.String("feedback_id", id), zap.String("actor_id", actor.UserID))
	return feedback, nil
}

func (s *FeedbackService) Delete(ctx context.Context, actor Actor, id string) error {
	feedback, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanAccess(feedback.UserID) {
		return ErrForbidden("Forbidden")
	}

	if err := s.feedbacks.Delete(ctx, id); err != nil {
		return err
	}

	logger.Log.Info("Feedback deleted", zap.String("feedback_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

func (s *FeedbackService) ListByTrail(ctx context.Context, trailID string) ([]models.Feedback, error) {
	if err := requireTrailPath(ctx, s.trails, trailID); err != nil {
		return nil, err
	}
	return s.feedbacks.ListByTrail(ctx, trailID)
}

func (s *FeedbackService) ListByUser(ctx context.Context, actor Actor, userID string) ([]models.Feedback, error) {
	if err := requireUserPath(ctx, s.users, actor, userID); err != nil {
		return nil, err
	}
	return s.feedbacks.ListByUser(ctx, userID)
}

func parseRating(v any) (int, error) {
	rating, err := asInt(v)
	if err != nil {
		return 0, ErrValidation("valutazione "+err.Error(), map[string]string{"valutazione": err.Error()})
	}
	if !models.ValidRating(rating) {
		return 0, ErrValidation("valutazione must be between 1 and 5", map[string]string{"valutazione": "must be between 1 and 5"})
	}
	return rating, nil
}

// resolveAuthor picks the owning user of a new feedback or report. Only an
// admin may file one on behalf of another user.
func resolveAuthor(actor Actor, requested *string) (string, error) {
	if requested == nil || *requested == "" || *requested == actor.UserID {
		return actor.UserID, nil
	}
	if !actor.IsAdmin() {
		logger.Log.Warn("Author impersonation rejected",
			zap.String("actor_id", actor.UserID),
			zap.String("requested_id", *requested),
		)
		return "", ErrForbidden("Forbidden")
	}
	return *requested, nil
}

// requireTrailPath validates a trail id taken from the URL: 400 when it is
// malformed, 404 when no such trail exists.
func requireTrailPath(ctx context.Context, trails *repository.TrailRepository, trailID string) error {
	if !validID(trailID) {
		return ErrBadRequest("Invalid trail id")
	}
	exists, err := trails.Exists(ctx, trailID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound(msgTrailNotFound)
	}
	return nil
}

// requireUserPath is requireTrailPath for users followed by self-or-admin.
func requireUserPath(ctx context.Context, users *repository.UserRepository, actor Actor, userID string) error {
	if !validID(userID) {
		return ErrBadRequest("Invalid user id")
	}
	exists, err := users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound("User not found")
	}
	if !actor.CanAccess(userID) {
		return ErrForbidden("Forbidden")
	}
	return nil
}
