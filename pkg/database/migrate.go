package database

import (
	"fmt"

	"gorm.io/gorm"

	"animehub/pkg/models"
)

// Migrate creates users, categories, anime and the anime_categories join table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Category{}, &models.Anime{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
