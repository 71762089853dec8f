package service

import (
	"context"

	"github.com/Baaaki/trail-catalog/pkg/logger"
	"go.uber.org/zap"
)

// SweepResult summarizes one orphan sweep.
type SweepResult struct {
	Removed []string
	Failed  []string
}

// SweepOrphans removes asset directories that no trail record owns: those
// journaled after a failed delete and any other directory without a record.
// Journal entries are dropped once their directory is gone.
func (s *TrailService) SweepOrphans(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	candidates := map[string]bool{}
	var journaled []string
	if s.orphans != nil {
		entries, err := s.orphans.ReadAll()
		if err != nil {
			return res, err
		}
		for _, e := range entries {
			if !candidates[e.TrailID] {
				journaled = append(journaled, e.TrailID)
			}
			candidates[e.TrailID] = true
		}
	}

	keys, err := s.store.Keys()
	if err != nil {
		return res, err
	}
	for _, k := range keys {
		candidates[k] = true
	}

	var resolved []string
	for id := range candidates {
		exists, err := s.trails.Exists(ctx, id)
		if err != nil {
			return res, err
		}
		if exists {
			// owned by a live trail
			resolved = append(resolved, id)
			continue
		}
		if err := s.store.Delete(id); err != nil {
			logger.Log.Warn("Sweep: asset directory still not removable",
				zap.String("trail_id", id),
				zap.Error(err),
			)
			res.Failed = append(res.Failed, id)
			continue
		}
		res.Removed = append(res.Removed, id)
		resolved = append(resolved, id)
	}

	if s.orphans != nil && len(journaled) > 0 {
		if err := s.orphans.Cleanup(resolved); err != nil {
			return res, err
		}
	}

	logger.Log.Info("Orphan sweep completed",
		zap.Int("journaled", len(journaled)),
		zap.Int("removed", len(res.Removed)),
		zap.Int("failed", len(res.Failed)),
	)
	return res, nil
}
