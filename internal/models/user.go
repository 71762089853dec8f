package models

import (
	"time"
)

type Role string

const (
	RoleBase  Role = "base"
	RoleAdmin Role = "admin"
)

func (r Role) IsValid() bool {
	return r == RoleBase || r == RoleAdmin
}

type User struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(100)" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"type:varchar(255)" json:"-"` // Never expose password hash in JSON
	Role         Role      `gorm:"type:varchar(20);not null;default:'base'" json:"role"`
	Favourites   []string  `gorm:"-" json:"favourites"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Favourite is one entry of a user's favourite trail list.
type Favourite struct {
	UserID    string    `gorm:"type:varchar(36);primaryKey"`
	TrailID   string    `gorm:"type:varchar(36);primaryKey;index"`
	CreatedAt time.Time
}
