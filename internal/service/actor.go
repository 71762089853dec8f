package service

import (
	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/google/uuid"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
	Role   models.Role
}

// IsAdmin compares against the lowercase role value stored on users.
func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// CanAccess is the self-or-admin rule.
func (a Actor) CanAccess(ownerID string) bool {
	return a.IsAdmin() || (a.UserID != "" && a.UserID == ownerID)
}

// validID accepts only the canonical form identifiers are stored in.
func validID(id string) bool {
	parsed, err := uuid.Parse(id)
	return err == nil && parsed.String() == id
}
