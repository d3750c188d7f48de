package db

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/domain"
	"github.com/csvflow/backend/internal/infrastructure/logger"
)

type taskRepository struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskRepository(db *gorm.DB, log *logger.Logger) ports.TaskRepository {
	return &taskRepository{db: db, log: log}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		r.log.Errorw("task_repo_create_failed", "task_id", task.TaskID, "error", err)
		return err
	}
	r.log.Infow("task_repo_create_ok", "task_id", task.TaskID, "operation", task.Operation)
	return nil
}

func (r *taskRepository) GetByTaskID(ctx context.Context, taskID string) (*domain.Task, error) {
	var task domain.Task
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		r.log.Errorw("task_repo_get_failed", "task_id", taskID, "error", err)
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) GetByTaskIDForUser(ctx context.Context, taskID string, userID uint) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		r.log.Errorw("task_repo_get_for_user_failed", "task_id", taskID, "user_id", userID, "error", err)
		return nil, err
	}
	return &task, nil
}

func (r *taskRepository) GetByUser(ctx context.Context, userID uint) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		r.log.Errorw("task_repo_list_failed", "user_id", userID, "error", err)
		return nil, err
	}
	return tasks, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		r.log.Errorw("task_repo_update_failed", "task_id", task.TaskID, "error", err)
		return err
	}
	r.log.Infow("task_repo_update_ok", "task_id", task.TaskID, "status", task.Status)
	return nil
}
