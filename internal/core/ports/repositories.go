package ports

import (
	"context"

	"github.com/csvflow/backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

type DatasetRepository interface {
	Create(ctx context.Context, dataset *domain.Dataset) error
	GetByID(ctx context.Context, id uint) (*domain.Dataset, error)
	// GetByIDForUser returns the dataset only when it belongs to the
	// given user, so one user can never reference another's upload.
	GetByIDForUser(ctx context.Context, id, userID uint) (*domain.Dataset, error)
	GetByUser(ctx context.Context, userID uint) ([]domain.Dataset, error)
	MarkProcessed(ctx context.Context, id uint) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetByTaskID(ctx context.Context, taskID string) (*domain.Task, error)
	GetByTaskIDForUser(ctx context.Context, taskID string, userID uint) (*domain.Task, error)
	GetByUser(ctx context.Context, userID uint) ([]domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
}
