package database

import (
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/ArslanJaveed/idid/config"
	"github.com/ArslanJaveed/idid/models"
)

var DB *gorm.DB

func Connect(cfg *config.Config) {
	// TranslateError turns driver duplicate-key failures into
	// gorm.ErrDuplicatedKey; the check-in race depends on that.
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	DB = db

	if err := Migrate(DB); err != nil {
		log.Fatalf("auto migrate failed: %v", err)
	}
}

// Migrate applies the schema for every model. Exposed so tests can run the
// same migration set against their own database handle.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Company{},
		&models.Role{},
		&models.Employee{},
		&models.Attendance{},
		&models.Task{},
		&models.SessionToken{},
	)
}
