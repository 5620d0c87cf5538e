// Package status manages a project's status catalog: the ordered,
// project-scoped set of keys a task's status field may hold.
package status

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/snakayama/kadai/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FallbackKey is written when a task is created without an explicit status.
const FallbackKey = "open"

var keyPattern = regexp.MustCompile(`^[a-z0-9_]{1,50}$`)
var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// reservedKeys are the default catalog keys. They cannot be deleted, which
// also guarantees FallbackKey stays valid for any materialized catalog.
var reservedKeys = map[string]bool{
	"open":        true,
	"in_progress": true,
	"resolved":    true,
	"closed":      true,
}

// Defaults returns the four built-in status definitions, in display order.
// IDs are assigned at insert time.
func Defaults(projectID string) []models.TaskStatus {
	return []models.TaskStatus{
		{ID: uuid.NewString(), ProjectID: projectID, Key: "open", Label: "未対応", Color: "#a3a3a3", DisplayOrder: 0},
		{ID: uuid.NewString(), ProjectID: projectID, Key: "in_progress", Label: "処理中", Color: "#3b82f6", DisplayOrder: 1},
		{ID: uuid.NewString(), ProjectID: projectID, Key: "resolved", Label: "処理済み", Color: "#f59e0b", DisplayOrder: 2},
		{ID: uuid.NewString(), ProjectID: projectID, Key: "closed", Label: "完了", Color: "#22c55e", DisplayOrder: 3},
	}
}

// IsReserved reports whether key belongs to the default status set.
func IsReserved(key string) bool {
	return reservedKeys[key]
}

// Resolve returns the project's catalog ordered by display order,
// materializing the defaults on the first read of an existing project.
// Materialization is a single conditional batch insert: the unique
// (project_id, key) index makes concurrent first reads converge on
// exactly four rows. Resolving an unknown project id is an error.
func Resolve(db *gorm.DB, projectID string) ([]models.TaskStatus, error) {
	statuses, err := list(db, projectID)
	if err != nil {
		return nil, err
	}
	if len(statuses) > 0 {
		return statuses, nil
	}

	// Materialization is a write. An unknown project id must fail here
	// instead of minting a catalog for a project that was never created.
	if err := requireProject(db, projectID); err != nil {
		return nil, err
	}

	defaults := Defaults(projectID)
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "key"}},
		DoNothing: true,
	}).Create(&defaults)
	if result.Error != nil {
		return nil, fmt.Errorf("status: materialize defaults for project %s: %w", projectID, result.Error)
	}

	// Re-query so callers see the persisted rows, including any inserted
	// by a concurrent racer.
	return list(db, projectID)
}

// requireProject rejects writes aimed at a project id that has no project
// row. The project_id column is not FK-enforced on the default backend.
func requireProject(db *gorm.DB, projectID string) error {
	var n int64
	if err := db.Model(&models.Project{}).Where("id = ?", projectID).Count(&n).Error; err != nil {
		return fmt.Errorf("status: check project %s: %w", projectID, err)
	}
	if n == 0 {
		return fmt.Errorf("status: project not found: %s", projectID)
	}
	return nil
}

func list(db *gorm.DB, projectID string) ([]models.TaskStatus, error) {
	var statuses []models.TaskStatus
	if err := db.Where("project_id = ?", projectID).
		Order("display_order ASC, created_at ASC").Find(&statuses).Error; err != nil {
		return nil, fmt.Errorf("status: list for project %s: %w", projectID, err)
	}
	return statuses, nil
}

// IsValidKey reports whether key matches some entry of an already-resolved
// catalog. Comparison is exact and case-sensitive.
func IsValidKey(catalog []models.TaskStatus, key string) bool {
	for _, s := range catalog {
		if s.Key == key {
			return true
		}
	}
	return false
}

// KeySet builds a membership set over a resolved catalog.
func KeySet(catalog []models.TaskStatus) map[string]bool {
	set := make(map[string]bool, len(catalog))
	for _, s := range catalog {
		set[s.Key] = true
	}
	return set
}

// CreateOpts holds parameters for adding a status to a project's catalog.
type CreateOpts struct {
	ProjectID string
	Key       string
	Label     string
	Color     string
}

// Create adds a status definition. DisplayOrder is assigned as the current
// maximum plus one over the raw rows; an empty catalog yields order 0
// without triggering default materialization.
func Create(db *gorm.DB, opts CreateOpts) (*models.TaskStatus, error) {
	if !keyPattern.MatchString(opts.Key) {
		return nil, fmt.Errorf("status: key %q must be 1-50 lowercase letters, digits or underscores", opts.Key)
	}
	label := strings.TrimSpace(opts.Label)
	if label == "" || len([]rune(label)) > 50 {
		return nil, fmt.Errorf("status: label must be 1-50 characters")
	}
	if !colorPattern.MatchString(opts.Color) {
		return nil, fmt.Errorf("status: color %q must be #RRGGBB", opts.Color)
	}
	if err := requireProject(db, opts.ProjectID); err != nil {
		return nil, err
	}

	var count int64
	if err := db.Model(&models.TaskStatus{}).
		Where("project_id = ? AND `key` = ?", opts.ProjectID, opts.Key).
		Count(&count).Error; err != nil {
		return nil, fmt.Errorf("status: check key %q: %w", opts.Key, err)
	}
	if count > 0 {
		return nil, fmt.Errorf("status: a status with key %q already exists in this project", opts.Key)
	}

	order, err := nextOrder(db, opts.ProjectID)
	if err != nil {
		return nil, err
	}

	s := models.TaskStatus{
		ID:           uuid.NewString(),
		ProjectID:    opts.ProjectID,
		Key:          opts.Key,
		Label:        label,
		Color:        opts.Color,
		DisplayOrder: order,
	}
	if err := db.Create(&s).Error; err != nil {
		return nil, fmt.Errorf("status: create %q: %w", opts.Key, err)
	}
	return &s, nil
}

// nextOrder returns max(display_order)+1 over the project's raw rows, or 0
// when none exist.
func nextOrder(db *gorm.DB, projectID string) (int, error) {
	var last models.TaskStatus
	err := db.Where("project_id = ?", projectID).
		Order("display_order DESC").First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("status: max order for project %s: %w", projectID, err)
	}
	return last.DisplayOrder + 1, nil
}

// UpdateOpts holds parameters for editing a status definition. Key is
// immutable and not part of the update surface.
type UpdateOpts struct {
	ID           string
	ProjectID    string
	Label        string
	Color        string
	DisplayOrder int
}

// Update overwrites label, color and display order on a status definition.
func Update(db *gorm.DB, opts UpdateOpts) error {
	label := strings.TrimSpace(opts.Label)
	if label == "" || len([]rune(label)) > 50 {
		return fmt.Errorf("status: label must be 1-50 characters")
	}
	if !colorPattern.MatchString(opts.Color) {
		return fmt.Errorf("status: color %q must be #RRGGBB", opts.Color)
	}
	if opts.DisplayOrder < 0 {
		return fmt.Errorf("status: display order must not be negative")
	}

	result := db.Model(&models.TaskStatus{}).
		Where("id = ? AND project_id = ?", opts.ID, opts.ProjectID).
		Updates(map[string]interface{}{
			"label":         label,
			"color":         opts.Color,
			"display_order": opts.DisplayOrder,
		})
	if result.Error != nil {
		return fmt.Errorf("status: update %s: %w", opts.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("status: not found: %s", opts.ID)
	}
	return nil
}

// Delete removes a status definition. Reserved default keys are rejected;
// beyond that there is no referential check, so tasks still holding the
// deleted key become orphans until a reconcile pass reassigns them.
func Delete(db *gorm.DB, id, projectID string) error {
	var s models.TaskStatus
	if err := db.Where("id = ? AND project_id = ?", id, projectID).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("status: not found: %s", id)
		}
		return fmt.Errorf("status: get %s: %w", id, err)
	}
	if IsReserved(s.Key) {
		return fmt.Errorf("status: %q is a default status and cannot be deleted", s.Key)
	}
	if err := db.Delete(&models.TaskStatus{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("status: delete %s: %w", id, err)
	}
	return nil
}

// OrderItem pairs a status definition with its new rank.
type OrderItem struct {
	ID           string `json:"id"`
	DisplayOrder int    `json:"displayOrder"`
}

// Reorder applies each rank as an independent update, best-effort. Callers
// submit the full catalog permuted to 0..n-1; rows not mentioned keep
// their old rank.
func Reorder(db *gorm.DB, projectID string, items []OrderItem) error {
	for _, item := range items {
		if err := db.Model(&models.TaskStatus{}).
			Where("id = ? AND project_id = ?", item.ID, projectID).
			Update("display_order", item.DisplayOrder).Error; err != nil {
			return fmt.Errorf("status: reorder %s: %w", item.ID, err)
		}
	}
	return nil
}
