package models

import "gorm.io/gorm"

// AllModels returns all models for migration
// Note: users must be migrated before tables that reference them
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Organization{},
		&Department{},
		&Tag{},
		&Blog{},
		&Comment{},
		&Like{},
		&Verification{},
		&Upload{},
	}
}

// AutoMigrate runs GORM auto-migration for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
