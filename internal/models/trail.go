package models

import (
	"time"

	"github.com/Baaaki/trail-catalog/internal/geo"
	"gorm.io/datatypes"
)

type Difficulty string

const (
	DifficultyEasy      Difficulty = "Easy"
	DifficultyMedium    Difficulty = "Medium"
	DifficultyDifficult Difficulty = "Difficult"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyDifficult:
		return true
	}
	return false
}

type Duration struct {
	Hours   int `gorm:"not null;default:0" json:"hours"`
	Minutes int `gorm:"not null;default:0" json:"minutes"`
}

// TotalMinutes is the value the duration filters compare against.
func (d Duration) TotalMinutes() int {
	return d.Hours*60 + d.Minutes
}

type DecimalDegrees struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type DMS struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

type UTM struct {
	Zone     string   `json:"zone,omitempty"`
	Easting  *float64 `json:"easting,omitempty"`
	Northing *float64 `json:"northing,omitempty"`
}

// Coordinates keeps every representation a trail was submitted with. Only DD
// is validated; DMS and UTM are stored as given.
type Coordinates struct {
	DD  DecimalDegrees `json:"DD"`
	DMS *DMS           `json:"DMS,omitempty"`
	UTM *UTM           `json:"UTM,omitempty"`
}

type Trail struct {
	ID            string                          `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title         string                          `gorm:"type:varchar(255);not null" json:"title"`
	Description   string                          `gorm:"type:text" json:"description"`
	Region        string                          `gorm:"type:varchar(100);index" json:"region"`
	Valley        string                          `gorm:"type:varchar(100);index" json:"valley"`
	Difficulty    Difficulty                      `gorm:"type:varchar(20);not null;default:'Easy';index" json:"difficulty"`
	LengthKm      float64                         `gorm:"not null;default:0;index" json:"lengthKm"`
	Duration      Duration                        `gorm:"embedded;embeddedPrefix:duration_" json:"duration"`
	Roadbook      string                          `gorm:"type:text" json:"roadbook"`
	Directions    string                          `gorm:"type:text" json:"directions"`
	Parking       string                          `gorm:"type:text" json:"parking"`
	AscentM       float64                         `gorm:"not null;default:0" json:"ascentM"`
	DescentM      float64                         `gorm:"not null;default:0" json:"descentM"`
	HighestPointM float64                         `gorm:"not null;default:0" json:"highestPointM"`
	LowestPointM  float64                         `gorm:"not null;default:0" json:"lowestPointM"`
	Tags          TagSet                          `gorm:"type:text" json:"tags"`
	Coordinates   datatypes.JSONType[Coordinates] `json:"coordinates"`
	Location      geo.Point                       `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	AdminID       string                          `gorm:"column:id_admin;type:varchar(36);not null;index" json:"idAdmin"`
	CreatedAt     time.Time                       `json:"createdAt"`
	UpdatedAt     time.Time                       `json:"updatedAt"`
}
