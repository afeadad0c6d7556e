package models

import "gorm.io/gorm"

// AutoMigrate creates or updates every table of the workflow core.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Destination{},
		&GuideVerification{},
		&Booking{},
		&ModerationLog{},
		&AuditLog{},
	)
}
