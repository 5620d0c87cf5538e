package models

import "time"

// Task is a single issue within a project. Status is a soft reference to a
// TaskStatus key in the same project: validated on write, not enforced by a
// database constraint.
type Task struct {
	ID          string     `gorm:"primaryKey;size:36"`
	ProjectID   string     `gorm:"size:36;index;not null"`
	KeyID       int        `gorm:"not null"`
	Summary     string     `gorm:"size:255;not null"`
	Description string     `gorm:"type:text"`
	Status      string     `gorm:"size:50;default:open;index"`
	Priority    string     `gorm:"size:16;default:medium"`
	AssigneeID  *string    `gorm:"size:36"`
	CategoryID  *string    `gorm:"size:36"`
	StartDate   *time.Time
	DueDate     *time.Time
	CreatedBy   string     `gorm:"size:36;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project  Project   `gorm:"foreignKey:ProjectID"`
	Assignee *User     `gorm:"foreignKey:AssigneeID"`
	Category *Category `gorm:"foreignKey:CategoryID"`
	Creator  User      `gorm:"foreignKey:CreatedBy"`
}
