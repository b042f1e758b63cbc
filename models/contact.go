package models

import "time"

// Contact message statuses and categories (admin triage fields).
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

// ContactMessage is a message sent through the public contact form.
type ContactMessage struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Name       string `gorm:"size:100;not null"`
	Email      string `gorm:"size:255;not null;index"`
	Subject    string `gorm:"size:200;not null"`
	Message    string `gorm:"size:5000;not null"`
	Status     string `gorm:"size:32;default:new;index"`
	Priority   string `gorm:"size:16;default:medium"`
	Category   string `gorm:"size:32;default:general;index"`
	AdminNotes string `gorm:"size:2000"`
	IPAddress  string `gorm:"size:64"`
	UserAgent  string `gorm:"size:512"`
}
