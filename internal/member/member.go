// Package member provides project membership operations.
package member

import (
	"errors"
	"fmt"

	"github.com/snakayama/kadai/internal/models"
	"gorm.io/gorm"
)

var validRoles = map[string]bool{"admin": true, "member": true}

// Add links a user to a project. Adding the same user twice is rejected.
func Add(db *gorm.DB, projectID, userID, role string) error {
	if role == "" {
		role = "member"
	}
	if !validRoles[role] {
		return fmt.Errorf("member: role %q is not one of admin, member", role)
	}

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("member: user not found: %s", userID)
		}
		return fmt.Errorf("member: check user %s: %w", userID, err)
	}

	var count int64
	if err := db.Model(&models.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("member: check membership: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("member: %s is already a member of this project", user.DisplayName)
	}

	m := models.ProjectMember{ProjectID: projectID, UserID: userID, Role: role}
	if err := db.Create(&m).Error; err != nil {
		return fmt.Errorf("member: add %s: %w", userID, err)
	}
	return nil
}

// Remove unlinks a user from a project. Tasks assigned to the removed
// member keep their assignee.
func Remove(db *gorm.DB, projectID, userID string) error {
	result := db.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{})
	if result.Error != nil {
		return fmt.Errorf("member: remove %s: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("member: not a member: %s", userID)
	}
	return nil
}

// ListWithUsers returns a project's memberships with user rows preloaded.
func ListWithUsers(db *gorm.DB, projectID string) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := db.Preload("User").Where("project_id = ?", projectID).
		Order("joined_at ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("member: list for project %s: %w", projectID, err)
	}
	return members, nil
}
