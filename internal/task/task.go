// Package task provides issue lifecycle operations.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/snakayama/kadai/internal/models"
	"github.com/snakayama/kadai/internal/status"
	"gorm.io/gorm"
)

// validPriorities is the closed priority set. Unlike statuses the
// priorities are not project-configurable.
var validPriorities = map[string]bool{"high": true, "medium": true, "low": true}

// CreateOpts holds parameters for creating a new task.
type CreateOpts struct {
	ProjectID   string
	Summary     string
	Description string
	Status      string // optional; falls back to status.FallbackKey
	Priority    string // high, medium, low; defaults to medium
	AssigneeID  string
	CategoryID  string
	StartDate   *time.Time
	DueDate     *time.Time
	CreatedBy   string
}

// Create validates and persists a new task. The status, explicit or
// fallback, is checked against the project's resolved catalog; resolving
// materializes the defaults on a project's first task.
func Create(db *gorm.DB, opts CreateOpts) (*models.Task, error) {
	summary := strings.TrimSpace(opts.Summary)
	if summary == "" {
		return nil, fmt.Errorf("task: summary is required")
	}
	if len([]rune(summary)) > 255 {
		return nil, fmt.Errorf("task: summary must be at most 255 characters")
	}
	if opts.Priority == "" {
		opts.Priority = "medium"
	}
	if !validPriorities[opts.Priority] {
		return nil, fmt.Errorf("task: priority %q is not one of high, medium, low", opts.Priority)
	}
	if opts.CreatedBy == "" {
		return nil, fmt.Errorf("task: creator is required")
	}

	key := opts.Status
	if key == "" {
		key = status.FallbackKey
	}
	catalog, err := status.Resolve(db, opts.ProjectID)
	if err != nil {
		return nil, err
	}
	if !status.IsValidKey(catalog, key) {
		return nil, fmt.Errorf("task: invalid status %q", key)
	}

	keyID, err := nextKeyID(db, opts.ProjectID)
	if err != nil {
		return nil, err
	}

	t := models.Task{
		ID:          uuid.NewString(),
		ProjectID:   opts.ProjectID,
		KeyID:       keyID,
		Summary:     summary,
		Description: opts.Description,
		Status:      key,
		Priority:    opts.Priority,
		StartDate:   opts.StartDate,
		DueDate:     opts.DueDate,
		CreatedBy:   opts.CreatedBy,
	}
	if opts.AssigneeID != "" {
		t.AssigneeID = &opts.AssigneeID
	}
	if opts.CategoryID != "" {
		t.CategoryID = &opts.CategoryID
	}

	if err := db.Create(&t).Error; err != nil {
		return nil, fmt.Errorf("task: create: %w", err)
	}
	return &t, nil
}

// nextKeyID returns the next per-project running number, used for display
// as "KEY-n".
func nextKeyID(db *gorm.DB, projectID string) (int, error) {
	var last models.Task
	err := db.Where("project_id = ?", projectID).Order("key_id DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("task: next key id for project %s: %w", projectID, err)
	}
	return last.KeyID + 1, nil
}

// Get retrieves a task by ID, preloading assignee and category.
func Get(db *gorm.DB, id string) (*models.Task, error) {
	var t models.Task
	if err := db.Preload("Assignee").Preload("Category").Where("id = ?", id).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task: not found: %s", id)
		}
		return nil, fmt.Errorf("task: get %s: %w", id, err)
	}
	return &t, nil
}

// ListFilters holds optional filters for listing tasks.
type ListFilters struct {
	Status     string
	Priority   string
	CategoryID string
	AssigneeID string
}

// List returns a project's tasks matching the filters, most recently
// updated first, with assignee and category preloaded.
func List(db *gorm.DB, projectID string, filters ListFilters) ([]models.Task, error) {
	q := db.Preload("Assignee").Preload("Category").Where("project_id = ?", projectID)

	if filters.Status != "" {
		q = q.Where("status = ?", filters.Status)
	}
	if filters.Priority != "" {
		q = q.Where("priority = ?", filters.Priority)
	}
	if filters.CategoryID != "" {
		q = q.Where("category_id = ?", filters.CategoryID)
	}
	if filters.AssigneeID != "" {
		q = q.Where("assignee_id = ?", filters.AssigneeID)
	}

	var tasks []models.Task
	if err := q.Order("updated_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("task: list for project %s: %w", projectID, err)
	}
	return tasks, nil
}

// UpdateOpts holds parameters for a full-field task update.
type UpdateOpts struct {
	TaskID      string
	ProjectID   string
	Summary     string
	Description string
	Status      string // optional; validated against the catalog when present
	Priority    string
	AssigneeID  string
	CategoryID  string
	StartDate   *time.Time
	DueDate     *time.Time
}

// Update overwrites a task's fields. A supplied status is validated
// against the project's catalog before anything is written.
func Update(db *gorm.DB, opts UpdateOpts) error {
	summary := strings.TrimSpace(opts.Summary)
	if summary == "" {
		return fmt.Errorf("task: summary is required")
	}
	if len([]rune(summary)) > 255 {
		return fmt.Errorf("task: summary must be at most 255 characters")
	}
	if opts.Priority != "" && !validPriorities[opts.Priority] {
		return fmt.Errorf("task: priority %q is not one of high, medium, low", opts.Priority)
	}

	if opts.Status != "" {
		catalog, err := status.Resolve(db, opts.ProjectID)
		if err != nil {
			return err
		}
		if !status.IsValidKey(catalog, opts.Status) {
			return fmt.Errorf("task: invalid status %q", opts.Status)
		}
	}

	updates := map[string]interface{}{
		"summary":     summary,
		"description": opts.Description,
		"start_date":  opts.StartDate,
		"due_date":    opts.DueDate,
	}
	if opts.Status != "" {
		updates["status"] = opts.Status
	}
	if opts.Priority != "" {
		updates["priority"] = opts.Priority
	}
	updates["assignee_id"] = nullable(opts.AssigneeID)
	updates["category_id"] = nullable(opts.CategoryID)

	result := db.Model(&models.Task{}).
		Where("id = ? AND project_id = ?", opts.TaskID, opts.ProjectID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("task: update %s: %w", opts.TaskID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task: not found: %s", opts.TaskID)
	}
	return nil
}

// UpdateStatus moves a task to another catalog key (board drag-and-drop).
func UpdateStatus(db *gorm.DB, taskID, projectID, key string) error {
	catalog, err := status.Resolve(db, projectID)
	if err != nil {
		return err
	}
	if !status.IsValidKey(catalog, key) {
		return fmt.Errorf("task: invalid status %q", key)
	}

	result := db.Model(&models.Task{}).
		Where("id = ? AND project_id = ?", taskID, projectID).
		Update("status", key)
	if result.Error != nil {
		return fmt.Errorf("task: update status of %s: %w", taskID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task: not found: %s", taskID)
	}
	return nil
}

// UpdateDates rewrites a task's date range (Gantt drag). Nil clears a date.
func UpdateDates(db *gorm.DB, taskID, projectID string, start, due *time.Time) error {
	result := db.Model(&models.Task{}).
		Where("id = ? AND project_id = ?", taskID, projectID).
		Updates(map[string]interface{}{"start_date": start, "due_date": due})
	if result.Error != nil {
		return fmt.Errorf("task: update dates of %s: %w", taskID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task: not found: %s", taskID)
	}
	return nil
}

// Delete removes a task.
func Delete(db *gorm.DB, taskID, projectID string) error {
	result := db.Where("id = ? AND project_id = ?", taskID, projectID).Delete(&models.Task{})
	if result.Error != nil {
		return fmt.Errorf("task: delete %s: %w", taskID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task: not found: %s", taskID)
	}
	return nil
}

// GroupByStatus partitions tasks into catalog-keyed groups, preserving
// catalog order for board columns. Tasks whose status matches no catalog
// key are omitted from every group: they are orphans left behind by a
// status deletion and surface only through the reconcile pass.
func GroupByStatus(catalog []models.TaskStatus, tasks []models.Task) map[string][]models.Task {
	groups := make(map[string][]models.Task, len(catalog))
	for _, s := range catalog {
		groups[s.Key] = []models.Task{}
	}
	for _, t := range tasks {
		if _, ok := groups[t.Status]; ok {
			groups[t.Status] = append(groups[t.Status], t)
		}
	}
	return groups
}

// GroupedByStatus resolves the catalog and returns the board partition for
// a project.
func GroupedByStatus(db *gorm.DB, projectID string) ([]models.TaskStatus, map[string][]models.Task, error) {
	catalog, err := status.Resolve(db, projectID)
	if err != nil {
		return nil, nil, err
	}
	tasks, err := List(db, projectID, ListFilters{})
	if err != nil {
		return nil, nil, err
	}
	return catalog, GroupByStatus(catalog, tasks), nil
}

// nullable converts an empty string to NULL for optional foreign keys.
func nullable(id string) interface{} {
	if id == "" {
		return nil
	}
	return id
}
