package models

import "time"

// User is a person who can be assigned tasks. There is no authentication;
// the seeded admin user stands in for the current user.
type User struct {
	ID          string `gorm:"primaryKey;size:36"`
	DisplayName string `gorm:"size:100;not null"`
	Email       string `gorm:"size:255;uniqueIndex;not null"`
	AvatarURL   string `gorm:"size:500"`
	Role        string `gorm:"size:16;default:member"`
	CreatedAt   time.Time
}
