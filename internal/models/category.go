package models

// Category groups tasks within a project. Names are unique per project,
// enforced at the application layer.
type Category struct {
	ID           string `gorm:"primaryKey;size:36"`
	ProjectID    string `gorm:"size:36;index;not null"`
	Name         string `gorm:"size:50;not null"`
	Color        string `gorm:"size:7"`
	DisplayOrder int    `gorm:"default:0"`

	Project Project `gorm:"foreignKey:ProjectID"`
}
