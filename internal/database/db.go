package database

import (
	"fmt"

	"github.com/Baaaki/trail-catalog/internal/config"
	"github.com/Baaaki/trail-catalog/internal/models"
	"github.com/Baaaki/trail-catalog/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the database selected by cfg.DatabaseDriver.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL)
	case "sqlite":
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DatabaseDriver)
	}

	db, err := Open(dialector, !cfg.IsProduction())
	if err != nil {
		return nil, err
	}

	logger.Log.Info("Database connected successfully", zap.String("driver", cfg.DatabaseDriver))
	return db, nil
}

// Open applies the shared gorm settings to any dialector.
func Open(dialector gorm.Dialector, verbose bool) (*gorm.DB, error) {
	level := gormlogger.Silent
	if verbose {
		level = gormlogger.Warn
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table and the index backing the
// nearby-trails bounding-box prefilter.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Favourite{},
		&models.Trail{},
		&models.Feedback{},
		&models.Report{},
	)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	err = db.Exec("CREATE INDEX IF NOT EXISTS idx_trails_location ON trails (location_lat, location_lon)").Error
	if err != nil {
		return fmt.Errorf("failed to create location index: %w", err)
	}

	logger.Log.Info("Database migration completed")
	return nil
}
