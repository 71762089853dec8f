package service

import (
	"context"
	"strings"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ReportRequest struct {
	IDUser *string `json:"idUser"`
	Testo  *string `json:"testo"`
	State  *string `json:"state"`
}

type ReportService struct {
	reports *repository.ReportRepository
	users   *repository.UserRepository
	trails  *repository.TrailRepository
	refs    *ReferenceChecker
}

func NewReportService(
	reports *repository.ReportRepository,
	users *repository.UserRepository,
	trails *repository.TrailRepository,
	refs *ReferenceChecker,
) *ReportService {
	return &ReportService{reports: reports, users: users, trails: trails, refs: refs}
}

// Create files a report against an existing trail. Only an admin may open a
// report in a state other than New.
func (s *ReportService) Create(ctx context.Context, actor Actor, trailID string, req ReportRequest) (*models.Report, error) {
	if req.Testo == nil || strings.TrimSpace(*req.Testo) == "" {
		return nil, ErrBadRequest("'testo' is required")
	}

	userID, err := resolveAuthor(actor, req.IDUser)
	if err != nil {
		return nil, err
	}

	if err := requireTrailPath(ctx, s.trails, trailID); err != nil {
		return nil, err
	}
	if err := s.refs.RequireUser(ctx, "idUser", userID); err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:      uuid.NewString(),
		UserID:  userID,
		TrailID: trailID,
		Testo:   *req.Testo,
		State:   models.ReportStateNew,
	}
	if req.State != nil && actor.IsAdmin() {
		if report.State, err = parseState(*req.State); err != nil {
			return nil, err
		}
	}

	if err := s.reports.Create(ctx, report); err != nil {
		logger.Log.Error("Failed to create report", zap.String("trail_id", trailID), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Report created",
		zap.String("report_id", report.ID),
		zap.String("user_id", userID),
		zap.String("trail_id", trailID),
	)
	return report, nil
}

func (s *ReportService) Get(ctx context.Context, id string) (*models.Report, error) {
	if !validID(id) {
		return nil, ErrBadRequest("Invalid report id")
	}
	report, err := s.reports.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrNotFound("Report not found")
	}
	return report, nil
}

// List filters by a comma separated list of states; empty means all.
func (s *ReportService) List(ctx context.Context, stateFilter string) ([]models.Report, error) {
	var states []models.ReportState
	for _, raw := range strings.Split(stateFilter, ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		state := models.ReportState(raw)
		if !state.IsValid() {
			return nil, ErrBadRequest("Invalid state filter")
		}
		states = append(states, state)
	}
	return s.reports.List(ctx, states)
}

// Update lets the owner edit testo and an admin edit testo and state.
func (s *ReportService) Update(ctx context.Context, actor Actor, id string, req ReportRequest) (*models.Report, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(report.UserID) {
		return nil, ErrForbidden("Forbidden")
	}

	applied := false
	if req.Testo != nil {
		if strings.TrimSpace(*req.Testo) == "" {
			return nil, ErrValidation("testo is required", map[string]string{"testo": "is required"})
		}
		report.Testo = *req.Testo
		applied = true
	}
	if req.State != nil && actor.IsAdmin() {
		if report.State, err = parseState(*req.State); err != nil {
			return nil, err
		}
		applied = true
	}
	if !applied {
		return nil, ErrBadRequest("No valid fields to update")
	}

	if err := s.reports.Save(ctx, report); err != nil {
		return nil, err
	}

	logger.Log.Info("Report updated",
		zap.String("report_id", id),
		zap.String("actor_id", actor.UserID),
		zap.String("state", string(report.State)),
	)
	return report, nil
}

// Delete lets the owner withdraw a report only while it is still New.
func (s *ReportService) Delete(ctx context.Context, actor Actor, id string) error {
	report, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanAccess(report.UserID) {
		return ErrForbidden("Forbidden")
	}
	if !actor.IsAdmin() && report.State != models.ReportStateNew {
		return ErrForbidden("You can delete a report only if it is in state 'New'")
	}

	if err := s.reports.Delete(ctx, id); err != nil {
		return err
	}

	logger.Log.Info("Report deleted", zap.String("report_id", id), zap.String("actor_id", actor.UserID))
	return nil
}

func (s *ReportService) ListByTrail(ctx context.Context, trailID string) ([]models.Report, error) {
	if err := requireTrailPath(ctx, s.trails, trailID); err != nil {
		return nil, err
	}
	return s.reports.ListByTrail(ctx, trailID)
}

func (s *ReportService) ListByUser(ctx context.Context, actor Actor, userID string) ([]models.Report, error) {
	if err := requireUserPath(ctx, s.users, actor, userID); err != nil {
		return nil, err
	}
	return s.reports.ListByUser(ctx, userID)
}

func parseState(raw string) (models.ReportState, error) {
	state := models.ReportState(strings.TrimSpace(raw))
	if !state.IsValid() {
		return "", ErrValidation("state must be one of New, In progress, Resolved",
			map[string]string{"state": "must be one of New, In progress, Resolved"})
	}
	return state, nil
}
