package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/domain"
	"github.com/csvflow/backend/internal/infrastructure/logger"
)

type datasetRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetRepository(db *gorm.DB, log *logger.Logger) ports.DatasetRepository {
	return &datasetRepository{db: db, log: log}
}

func (r *datasetRepository) Create(ctx context.Context, dataset *domain.Dataset) error {
	if err := r.db.WithContext(ctx).Create(dataset).Error; err != nil {
		r.log.Errorw("dataset_repo_create_failed", "name", dataset.OriginalName, "error", err)
		return err
	}
	r.log.Infow("dataset_repo_create_ok", "id", dataset.ID, "name", dataset.OriginalName)
	return nil
}

func (r *datasetRepository) GetByID(ctx context.Context, id uint) (*domain.Dataset, error) {
	var dataset domain.Dataset
	if err := r.db.WithContext(ctx).First(&dataset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDatasetNotFound
		}
		r.log.Errorw("dataset_repo_get_failed", "id", id, "error", err)
		return nil, err
	}
	return &dataset, nil
}

func (r *datasetRepository) GetByIDForUser(ctx context.Context, id, userID uint) (*domain.Dataset, error) {
	var dataset domain.Dataset
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&dataset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDatasetNotFound
		}
		r.log.Errorw("dataset_repo_get_for_user_failed", "id", id, "user_id", userID, "error", err)
		return nil, err
	}
	return &dataset, nil
}

func (r *datasetRepository) GetByUser(ctx context.Context, userID uint) ([]domain.Dataset, error) {
	var datasets []domain.Dataset
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("upload_date DESC").
		Find(&datasets).Error
	if err != nil {
		r.log.Errorw("dataset_repo_list_failed", "user_id", userID, "error", err)
		return nil, err
	}
	return datasets, nil
}

func (r *datasetRepository) MarkProcessed(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Dataset{}).
		Where("id = ?", id).
		Update("is_processed", true).Error
	if err != nil {
		r.log.Errorw("dataset_repo_mark_processed_failed", "id", id, "error", err)
		return err
	}
	return nil
}
