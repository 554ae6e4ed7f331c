package database

import (
	"fmt"
	"log"

	"github.com/ernest-money/ernest-oracle/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Error),
		TranslateError: true,
	})

	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Database connection established successfully")
	return nil
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate runs automatic migrations for all models against the given handle
func Migrate(db *gorm.DB) error {
	// Event lifecycle models first so the attestation tables can reference
	// the event rows.
	eventModels := []interface{}{
		&models.Event{},
		&models.EventNonce{},
		&models.EventTypeTag{},
	}

	for _, model := range eventModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	contractModels := []interface{}{
		&models.ParlayContract{},
		&models.ParlayParameter{},
		&models.NumericAttestationOutcome{},
		&models.NumericAttestationDataOutcome{},
	}

	for _, model := range contractModels {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migration failed for %T: %w", model, err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
