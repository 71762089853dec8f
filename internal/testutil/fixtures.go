package testutil

import (
	"testing"
	"time"

	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/internal/utils"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TestJWTSecret = "test-secret-key"
	TestPassword  = "Test123456"
)

// SampleGPX is a minimal but valid GPX 1.1 track.
const SampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="trail-catalog-tests" xmlns="http://www.topografix.com/GPX/1/1">
  <trk><name>Test</name><trkseg>
    <trkpt lat="46.4" lon="11.7"><ele>1500</ele></trkpt>
    <trkpt lat="46.41" lon="11.71"><ele>1620</ele></trkpt>
  </trkseg></trk>
</gpx>
`

// CreateUser persists a user whose password is TestPassword.
func CreateUser(t *testing.T, db *gorm.DB, username, email string, role models.Role) *models.User {
	hash, err := utils.HashPassword(TestPassword)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Favourites:   []string{},
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	return user
}

func CreateAdmin(t *testing.T, db *gorm.DB) *models.User {
	return CreateUser(t, db, "admin", "admin@example.com", models.RoleAdmin)
}

func CreateHiker(t *testing.T, db *gorm.DB) *models.User {
	return CreateUser(t, db, "hiker", "hiker@example.com", models.RoleBase)
}

// CreateTrail persists a trail at the given DD position. Optional mutators
// run before the insert.
func CreateTrail(t *testing.T, db *gorm.DB, adminID string, lat, lon float64, mutators ...func(*models.Trail)) *models.Trail {
	trail := &models.Trail{
		ID:          uuid.NewString(),
		Title:       "Test trail",
		Region:      "Trentino",
		Valley:      "Val di Fassa",
		Difficulty:  models.DifficultyEasy,
		LengthKm:    5,
		Duration:    models.Duration{Hours: 2, Minutes: 30},
		Tags:        models.TagSet{},
		Coordinates: datatypes.NewJSONType(models.Coordinates{DD: models.DecimalDegrees{Lat: lat, Lon: lon}}),
		AdminID:     adminID,
	}
	trail.Location.Lat, trail.Location.Lon = lat, lon
	for _, m := range mutators {
		m(trail)
	}
	if err := db.Create(trail).Error; err != nil {
		t.Fatalf("Failed to create trail: %v", err)
	}
	return trail
}

func CreateFeedback(t *testing.T, db *gorm.DB, userID, trailID string, rating int) *models.Feedback {
	feedback := &models.Feedback{
		ID:          uuid.NewString(),
		UserID:      userID,
		TrailID:     trailID,
		Testo:       "Nice walk",
		Valutazione: rating,
	}
	if err := db.Create(feedback).Error; err != nil {
		t.Fatalf("Failed to create feedback: %v", err)
	}
	return feedback
}

func CreateReport(t *testing.T, db *gorm.DB, userID, trailID string, state models.ReportState) *models.Report {
	report := &models.Report{
		ID:      uuid.NewString(),
		UserID:  userID,
		TrailID: trailID,
		Testo:   "Fallen tree on the path",
		State:   state,
	}
	if err := db.Create(report).Error; err != nil {
		t.Fatalf("Failed to create report: %v", err)
	}
	return report
}

func AddFavourite(t *testing.T, db *gorm.DB, userID, trailID string) {
	if err := db.Create(&models.Favourite{UserID: userID, TrailID: trailID}).Error; err != nil {
		t.Fatalf("Failed to add favourite: %v", err)
	}
}

// BearerToken signs a token for user with TestJWTSecret.
func BearerToken(t *testing.T, user *models.User) string {
	token, err := utils.GenerateToken(user, TestJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return "Bearer " + token
}
