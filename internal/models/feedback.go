package models

import "time"

type Feedback struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID      string    `gorm:"column:id_user;type:varchar(36);not null;uniqueIndex:idx_feedback_user_trail" json:"idUser"`
	TrailID     string    `gorm:"column:id_trail;type:varchar(36);not null;uniqueIndex:idx_feedback_user_trail;index" json:"idTrail"`
	Testo       string    `gorm:"type:text;not null;default:''" json:"testo"`
	Valutazione int       `gorm:"not null" json:"valutazione"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	MinRating = 1
	MaxRating = 5
)

func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}
