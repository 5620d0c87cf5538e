// Package category provides task category operations.
package category

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/snakayama/kadai/internal/models"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a category.
type CreateOpts struct {
	ProjectID string
	Name      string
	Color     string
}

// Create adds a category with the next display order. Names are unique
// within a project.
func Create(db *gorm.DB, opts CreateOpts) (*models.Category, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" || len([]rune(name)) > 50 {
		return nil, fmt.Errorf("category: name must be 1-50 characters")
	}

	var count int64
	if err := db.Model(&models.Category{}).
		Where("project_id = ? AND name = ?", opts.ProjectID, name).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("category: check name %q: %w", name, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("category: a category named %q already exists in this project", name)
	}

	order, err := nextOrder(db, opts.ProjectID)
	if err != nil {
		return nil, err
	}

	c := models.Category{
		ID:           uuid.NewString(),
		ProjectID:    opts.ProjectID,
		Name:         name,
		Color:        opts.Color,
		DisplayOrder: order,
	}
	if err := db.Create(&c).Error; err != nil {
		return nil, fmt.Errorf("category: create %q: %w", name, err)
	}
	return &c, nil
}

func nextOrder(db *gorm.DB, projectID string) (int, error) {
	var last models.Category
	err := db.Where("project_id = ?", projectID).Order("display_order DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("category: max order for project %s: %w", projectID, err)
	}
	return last.DisplayOrder + 1, nil
}

// List returns a project's categories in display order.
func List(db *gorm.DB, projectID string) ([]models.Category, error) {
	var categories []models.Category
	if err := db.Where("project_id = ?", projectID).
		Order("display_order ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("category: list for project %s: %w", projectID, err)
	}
	return categories, nil
}

// Update renames or recolors a category. The uniqueness check excludes the
// row being updated.
func Update(db *gorm.DB, id, projectID, name, color string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len([]rune(trimmed)) > 50 {
		return fmt.Errorf("category: name must be 1-50 characters")
	}

	var existing models.Category
	err := db.Where("project_id = ? AND name = ?", projectID, trimmed).First(&existing).Error
	if err == nil && existing.ID != id {
		return fmt.Errorf("category: a category named %q already exists in this project", trimmed)
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("category: check name %q: %w", trimmed, err)
	}

	result := db.Model(&models.Category{}).
		Where("id = ? AND project_id = ?", id, projectID).
		Updates(map[string]interface{}{"name": trimmed, "color": color})
	if result.Error != nil {
		return fmt.Errorf("category: update %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("category: not found: %s", id)
	}
	return nil
}

// Delete removes a category. Tasks referencing it keep a dangling
// category id; the task views treat a missing category as uncategorized.
func Delete(db *gorm.DB, id, projectID string) error {
	result := db.Where("id = ? AND project_id = ?", id, projectID).Delete(&models.Category{})
	if result.Error != nil {
		return fmt.Errorf("category: delete %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("category: not found: %s", id)
	}
	return nil
}

// OrderItem pairs a category with its new rank.
type OrderItem struct {
	ID           string `json:"id"`
	DisplayOrder int    `json:"displayOrder"`
}

// Reorder applies each rank as an independent update, best-effort, same as
// the status catalog reorder.
func Reorder(db *gorm.DB, projectID string, items []OrderItem) error {
	for _, item := range items {
		if err := db.Model(&models.Category{}).
			Where("id = ? AND project_id = ?", item.ID, projectID).
			Update("display_order", item.DisplayOrder).Error; err != nil {
			return fmt.Errorf("category: reorder %s: %w", item.ID, err)
		}
	}
	return nil
}
