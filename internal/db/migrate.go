package db

import (
	"gorm.io/gorm"

	"wanderer/internal/models"
)

// AutoMigrate creates or updates the schema for every model the map
// service persists.
func AutoMigrate(gdb *gorm.DB) error {
	if gdb == nil {
		return nil
	}
	return gdb.AutoMigrate(
		&models.System{},
		&models.Connection{},
		&models.Signature{},
		&models.Setting{},
	)
}
