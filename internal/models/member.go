package models

import "time"

// ProjectMember links a user to a project with a role.
type ProjectMember struct {
	ProjectID string `gorm:"primaryKey;size:36"`
	UserID    string `gorm:"primaryKey;size:36"`
	Role      string `gorm:"size:16;default:member"`
	JoinedAt  time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
	User    User    `gorm:"foreignKey:UserID"`
}
