// Package user resolves users and the stand-in current user.
package user

import (
	"errors"
	"fmt"

	"github.com/snakayama/kadai/internal/models"
	"gorm.io/gorm"
)

// currentEmail identifies the stand-in current user until authentication
// exists.
const currentEmail = "admin@example.com"

// GetByEmail retrieves a user by email address.
func GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	var u models.User
	if err := db.Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: not found: %s", email)
		}
		return nil, fmt.Errorf("user: get %s: %w", email, err)
	}
	return &u, nil
}

// List returns all users ordered by display name.
func List(db *gorm.DB) ([]models.User, error) {
	var users []models.User
	if err := db.Order("display_name ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user: list: %w", err)
	}
	return users, nil
}

// Current returns the seeded admin user acting as the logged-in user.
func Current(db *gorm.DB) (*models.User, error) {
	return GetByEmail(db, currentEmail)
}
