package db

import (
	"gorm.io/gorm"

	"github.com/csvflow/backend/internal/domain"
)

func RunMigrations(database *gorm.DB) error {
	err := database.AutoMigrate(
		&domain.User{},
		&domain.Dataset{},
		&domain.Task{},
	)
	if err != nil {
		return err
	}

	return createCustomIndexes(database)
}

func createCustomIndexes(database *gorm.DB) error {
	// Status polling scans by owner + state.
	if err := database.Exec(`
		CREATE INDEX IF NOT EXISTS idx_task_results_user_status
		ON task_results (user_id, status)
	`).Error; err != nil {
		return err
	}

	// Dataset listings are newest-first per user.
	if err := database.Exec(`
		CREATE INDEX IF NOT EXISTS idx_csv_files_user_upload
		ON csv_files (user_id, upload_date DESC)
	`).Error; err != nil {
		return err
	}

	return nil
}
