package models

import "time"

// TaskStatus is one entry in a project's status catalog. Key is immutable
// after creation and unique within its project; the composite unique index
// is what makes lazy default materialization idempotent under concurrent
// first reads.
type TaskStatus struct {
	ID           string `gorm:"primaryKey;size:36"`
	ProjectID    string `gorm:"size:36;not null;uniqueIndex:idx_project_status_key"`
	Key          string `gorm:"size:50;not null;uniqueIndex:idx_project_status_key"`
	Label        string `gorm:"size:50;not null"`
	Color        string `gorm:"size:7;not null;default:#6b7280"`
	DisplayOrder int    `gorm:"default:0"`
	CreatedAt    time.Time

	Project Project `gorm:"foreignKey:ProjectID"`
}
