package models

import "time"

// Role is an access tier. The seeded roles are administrator (editorial
// management surface) and user (manuscript submission).
type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}
