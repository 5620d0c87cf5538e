package db

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/snakayama/kadai/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllModels returns the list of all GORM models for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.Project{},
		&models.User{},
		&models.Category{},
		&models.Task{},
		&models.ProjectMember{},
		&models.TaskStatus{},
	}
}

// AutoMigrate creates or updates all tables.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("db: auto-migrate: %w", err)
	}
	return nil
}

// SeedUsers upserts the two demo users. The admin stands in for the
// current user until authentication exists.
func SeedUsers(db *gorm.DB) error {
	users := []models.User{
		{ID: uuid.NewString(), DisplayName: "管理者ユーザー", Email: "admin@example.com", Role: "admin"},
		{ID: uuid.NewString(), DisplayName: "一般ユーザー", Email: "member@example.com", Role: "member"},
	}
	for _, u := range users {
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "role"}),
		}).Create(&u)
		if result.Error != nil {
			return fmt.Errorf("db: seed user %q: %w", u.Email, result.Error)
		}
	}
	return nil
}

// SeedSampleProject creates a demo project with categories and members if
// no project with the SAMPLE key exists yet. The status catalog is not
// seeded: it materializes lazily on first read.
func SeedSampleProject(db *gorm.DB) error {
	var existing models.Project
	err := db.Where(&models.Project{Key: "SAMPLE"}).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: check sample project: %w", err)
	}

	project := models.Project{
		ID:          uuid.NewString(),
		Name:        "サンプルプロジェクト",
		Key:         "SAMPLE",
		Description: "開発テスト用のサンプルプロジェクト",
	}
	if err := db.Create(&project).Error; err != nil {
		return fmt.Errorf("db: seed sample project: %w", err)
	}

	categories := []models.Category{
		{ID: uuid.NewString(), ProjectID: project.ID, Name: "機能追加", Color: "#3B82F6", DisplayOrder: 1},
		{ID: uuid.NewString(), ProjectID: project.ID, Name: "バグ修正", Color: "#EF4444", DisplayOrder: 2},
		{ID: uuid.NewString(), ProjectID: project.ID, Name: "改善", Color: "#22C55E", DisplayOrder: 3},
	}
	if err := db.Create(&categories).Error; err != nil {
		return fmt.Errorf("db: seed categories: %w", err)
	}

	var users []models.User
	if err := db.Order("email ASC").Find(&users).Error; err != nil {
		return fmt.Errorf("db: load users for membership: %w", err)
	}
	for _, u := range users {
		member := models.ProjectMember{ProjectID: project.ID, UserID: u.ID, Role: u.Role}
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&member)
		if result.Error != nil {
			return fmt.Errorf("db: seed member %q: %w", u.Email, result.Error)
		}
	}
	return nil
}
