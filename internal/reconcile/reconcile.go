// Package reconcile repairs orphaned tasks: tasks whose status key no
// longer exists in their project's catalog after an unguarded status
// deletion. The board silently drops such tasks, so this pass is the only
// way they come back into view.
package reconcile

import (
	"fmt"

	"github.com/snakayama/kadai/internal/models"
	"github.com/snakayama/kadai/internal/status"
	"gorm.io/gorm"
)

// Orphans returns a project's tasks whose status matches no catalog key.
// The catalog is resolved first, so a never-touched project materializes
// its defaults rather than reporting every task as orphaned.
func Orphans(db *gorm.DB, projectID string) ([]models.Task, error) {
	catalog, err := status.Resolve(db, projectID)
	if err != nil {
		return nil, err
	}
	keys := status.KeySet(catalog)

	var tasks []models.Task
	if err := db.Where("project_id = ?", projectID).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("reconcile: list tasks for project %s: %w", projectID, err)
	}

	var orphans []models.Task
	for _, t := range tasks {
		if !keys[t.Status] {
			orphans = append(orphans, t)
		}
	}
	return orphans, nil
}

// Reassign rewrites a project's orphaned tasks to fallbackKey and returns
// how many were repaired. The fallback is validated against the resolved
// catalog like any other status write.
func Reassign(db *gorm.DB, projectID, fallbackKey string) (int, error) {
	catalog, err := status.Resolve(db, projectID)
	if err != nil {
		return 0, err
	}
	if !status.IsValidKey(catalog, fallbackKey) {
		return 0, fmt.Errorf("reconcile: fallback %q is not in the project's catalog", fallbackKey)
	}

	orphans, err := Orphans(db, projectID)
	if err != nil {
		return 0, err
	}
	repaired := 0
	for _, t := range orphans {
		result := db.Model(&models.Task{}).Where("id = ?", t.ID).Update("status", fallbackKey)
		if result.Error != nil {
			return repaired, fmt.Errorf("reconcile: reassign task %s: %w", t.ID, result.Error)
		}
		repaired += int(result.RowsAffected)
	}
	return repaired, nil
}

// ReassignAll runs Reassign across every project and returns the total.
func ReassignAll(db *gorm.DB, fallbackKey string) (int, error) {
	var projects []models.Project
	if err := db.Find(&projects).Error; err != nil {
		return 0, fmt.Errorf("reconcile: list projects: %w", err)
	}
	total := 0
	for _, p := range projects {
		n, err := Reassign(db, p.ID, fallbackKey)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
