package service

import (
	"context"
	"fmt"

	"github.com/Baaaki/trail-catalog/internal/repository"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReferenceChecker verifies that the entities a write points at exist. It is
// called explicitly at the start of every write path.
type ReferenceChecker struct {
	users  *repository.UserRepository
	trails *repository.TrailRepository
}

func NewReferenceChecker(users *repository.UserRepository, trails *repository.TrailRepository) *ReferenceChecker {
	return &ReferenceChecker{users: users, trails: trails}
}

func (c *ReferenceChecker) WithTx(tx *gorm.DB) *ReferenceChecker {
	return &ReferenceChecker{users: c.users.WithTx(tx), trails: c.trails.WithTx(tx)}
}

// RequireUser fails with a validation error naming field when id does not
// resolve to a user.
func (c *ReferenceChecker) RequireUser(ctx context.Context, field, id string) error {
	return c.require(ctx, field, id, "user", c.users.Exists)
}

func (c *ReferenceChecker) RequireTrail(ctx context.Context, field, id string) error {
	return c.require(ctx, field, id, "trail", c.trails.Exists)
}

func (c *ReferenceChecker) require(
	ctx context.Context,
	field, id, entity string,
	exists func(context.Context, string) (bool, error),
) error {
	if id == "" {
		return ErrValidation(fmt.Sprintf("%s is required", field), map[string]string{field: "is required"})
	}

	ok, err := exists(ctx, id)
	if err != nil {
		logger.Log.Error("Reference lookup failed",
			zap.String("field", field),
			zap.String("id", id),
			zap.Error(err),
		)
		return err
	}
	if !ok {
		logger.Log.Warn("Dangling reference rejected",
			zap.String("field", field),
			zap.String("id", id),
		)
		return ErrValidation(
			fmt.Sprintf("%s references a %s that does not exist", field, entity),
			map[string]string{field: fmt.Sprintf("references a missing %s", entity)},
		)
	}
	return nil
}
