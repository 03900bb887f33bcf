package repositories

import (
	"github.com/rahulvm-dev/messagely/internal/config"
	"github.com/rahulvm-dev/messagely/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the postgres database and runs migrations.
func Connect(cfg config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBURL), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Message{},
	); err != nil {
		return nil, err
	}
	return db, nil
}
