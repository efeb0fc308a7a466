package db

import (
	"illusly-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Seed insère les données de référence (catégories et tags). Idempotent :
// les lignes déjà présentes sont laissées telles quelles.
func Seed(database *gorm.DB) error {
	categories := []models.Category{
		{Name: "Illustration", Slug: "illustration", Description: "General illustration works", Color: "#3B82F6"},
		{Name: "Character", Slug: "character", Description: "Character design", Color: "#EF4444"},
		{Name: "Landscape", Slug: "landscape", Description: "Landscape and background art", Color: "#10B981"},
		{Name: "Fantasy", Slug: "fantasy", Description: "Fantasy themed works", Color: "#8B5CF6"},
		{Name: "Anime", Slug: "anime", Description: "Anime style illustration", Color: "#F59E0B"},
		{Name: "Realistic", Slug: "realistic", Description: "Realistic rendering", Color: "#6B7280"},
		{Name: "Minimal", Slug: "minimal", Description: "Minimal design", Color: "#374151"},
		{Name: "Abstract", Slug: "abstract", Description: "Abstract works", Color: "#EC4899"},
	}

	for _, category := range categories {
		err := database.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&category).Error
		if err != nil {
			return err
		}
	}

	tags := []models.Tag{
		{Name: "Cute", Slug: "cute"},
		{Name: "Cool", Slug: "cool"},
		{Name: "Beautiful", Slug: "beautiful"},
		{Name: "Dreamy", Slug: "dreamy"},
		{Name: "Calming", Slug: "calming"},
		{Name: "Pop", Slug: "pop"},
		{Name: "Simple", Slug: "simple"},
		{Name: "Colorful", Slug: "colorful"},
		{Name: "Monochrome", Slug: "monochrome"},
		{Name: "Watercolor", Slug: "watercolor"},
		{Name: "Digital", Slug: "digital"},
		{Name: "Hand drawn", Slug: "hand-drawn"},
		{Name: "Background", Slug: "background"},
		{Name: "People", Slug: "people"},
		{Name: "Animal", Slug: "animal"},
		{Name: "Plant", Slug: "plant"},
		{Name: "Building", Slug: "building"},
		{Name: "Nature", Slug: "nature"},
		{Name: "City", Slug: "city"},
		{Name: "Sky", Slug: "sky"},
	}

	for _, tag := range tags {
		err := database.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&tag).Error
		if err != nil {
			return err
		}
	}

	return nil
}
