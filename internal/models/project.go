package models

import "time"

// Project is a workspace owning tasks, categories, members and a status catalog.
type Project struct {
	ID          string `gorm:"primaryKey;size:36"`
	Name        string `gorm:"size:100;not null"`
	Key         string `gorm:"size:10;uniqueIndex;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Tasks      []Task          `gorm:"foreignKey:ProjectID"`
	Categories []Category      `gorm:"foreignKey:ProjectID"`
	Members    []ProjectMember `gorm:"foreignKey:ProjectID"`
	Statuses   []TaskStatus    `gorm:"foreignKey:ProjectID"`
}
