package models

import "time"

type ReportState string

const (
	ReportStateNew        ReportState = "New"
	ReportStateInProgress ReportState = "In progress"
	ReportStateResolved   ReportState = "Resolved"
)

func (s ReportState) IsValid() bool {
	switch s {
	case ReportStateNew, ReportStateInProgress, ReportStateResolved:
		return true
	}
	return false
}

type Report struct {
	ID        string      `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID    string      `gorm:"column:id_user;type:varchar(36);not null;index" json:"idUser"`
	TrailID   string      `gorm:"column:id_trail;type:varchar(36);not null;index" json:"idTrail"`
	Testo     string      `gorm:"type:text;not null" json:"testo"`
	State     ReportState `gorm:"type:varchar(20);not null;default:'New';index" json:"state"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
