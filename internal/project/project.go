// Package project provides project lifecycle operations.
package project

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/snakayama/kadai/internal/models"
	"gorm.io/gorm"
)

// keyPattern constrains the short project key used as the task number
// prefix ("SAMPLE-12").
var keyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]{1,9}$`)

// CreateOpts holds parameters for creating a project.
type CreateOpts struct {
	Name        string
	Key         string
	Description string
}

// Create persists a new project. The status catalog is intentionally not
// seeded here: it materializes on first read.
func Create(db *gorm.DB, opts CreateOpts) (*models.Project, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" || len([]rune(name)) > 100 {
		return nil, fmt.Errorf("project: name must be 1-100 characters")
	}
	if !keyPattern.MatchString(opts.Key) {
		return nil, fmt.Errorf("project: key %q must be 2-10 uppercase letters, digits or underscores starting with a letter", opts.Key)
	}

	var count int64
	if err := db.Model(&models.Project{}).Where("`key` = ?", opts.Key).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("project: check key %q: %w", opts.Key, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("project: a project with key %q already exists", opts.Key)
	}

	p := models.Project{
		ID:          uuid.NewString(),
		Name:        name,
		Key:         opts.Key,
		Description: opts.Description,
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("project: create: %w", err)
	}
	return &p, nil
}

// Get retrieves a project by ID.
func Get(db *gorm.DB, id string) (*models.Project, error) {
	var p models.Project
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("project: not found: %s", id)
		}
		return nil, fmt.Errorf("project: get %s: %w", id, err)
	}
	return &p, nil
}

// List returns all projects, oldest first.
func List(db *gorm.DB) ([]models.Project, error) {
	var projects []models.Project
	if err := db.Order("created_at ASC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project: list: %w", err)
	}
	return projects, nil
}

// First returns the oldest project, or nil when none exist. Used by the
// root page redirect.
func First(db *gorm.DB) (*models.Project, error) {
	var p models.Project
	err := db.Order("created_at ASC").First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("project: first: %w", err)
	}
	return &p, nil
}

// Update overwrites a project's name and description.
func Update(db *gorm.DB, id, name, description string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || len([]rune(trimmed)) > 100 {
		return fmt.Errorf("project: name must be 1-100 characters")
	}

	result := db.Model(&models.Project{}).Where("id = ?", id).
		Updates(map[string]interface{}{"name": trimmed, "description": description})
	if result.Error != nil {
		return fmt.Errorf("project: update %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("project: not found: %s", id)
	}
	return nil
}

// Delete removes a project and everything it owns in one transaction:
// tasks, categories, members, the status catalog, then the project row.
func Delete(db *gorm.DB, id string) error {
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Category{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.ProjectMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.TaskStatus{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("project: not found: %s", id)
	}
	if err != nil {
		return fmt.Errorf("project: delete %s: %w", id, err)
	}
	return nil
}
