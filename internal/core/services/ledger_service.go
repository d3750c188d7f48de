package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/domain"
	"github.com/csvflow/backend/internal/infrastructure/logger"
)

// taskTransitions is the legal state machine. PROGRESS only follows
// PENDING; SUCCESS and FAILURE only follow PROGRESS, except that a
// dispatch failure moves a never-started task from PENDING straight to
// FAILURE. RETRY is a recognized status with no transitions wired.
var taskTransitions = map[domain.TaskStatus][]domain.TaskStatus{
	domain.TaskStatusPending:  {domain.TaskStatusProgress, domain.TaskStatusFailure},
	domain.TaskStatusProgress: {domain.TaskStatusSuccess, domain.TaskStatusFailure},
}

func canTransition(from, to domain.TaskStatus) bool {
	for _, next := range taskTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type ledgerService struct {
	tasks    ports.TaskRepository
	datasets ports.DatasetRepository
	logger   *logger.Logger
}

type LedgerServiceConfig struct {
	Tasks    ports.TaskRepository
	Datasets ports.DatasetRepository
	Logger   *logger.Logger
}

func NewLedgerService(cfg LedgerServiceConfig) ports.LedgerService {
	return &ledgerService{
		tasks:    cfg.Tasks,
		datasets: cfg.Datasets,
		logger:   cfg.Logger,
	}
}

func (s *ledgerService) Create(ctx context.Context, userID, datasetID uint, op domain.Operation) (*domain.Task, error) {
	if err := op.Validate(); err != nil {
		s.logger.Warnw("task_create_invalid_operation", "user_id", userID, "operation", op.Kind, "error", err)
		return nil, err
	}

	dataset, err := s.datasets.GetByIDForUser(ctx, datasetID, userID)
	if err != nil {
		s.logger.Warnw("task_create_dataset_not_owned", "user_id", userID, "dataset_id", datasetID, "error", err)
		return nil, err
	}

	task := &domain.Task{
		TaskID:          uuid.New().String(),
		UserID:          userID,
		DatasetID:       dataset.ID,
		Operation:       op.Kind,
		Status:          domain.TaskStatusPending,
		OperationParams: op.Params(),
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Errorw("task_create_failed", "user_id", userID, "dataset_id", datasetID, "error", err)
		return nil, err
	}

	s.logger.Infow("task_create_ok", "task_id", task.TaskID, "user_id", userID, "dataset_id", dataset.ID, "operation", op.Kind)
	return task, nil
}

// transition loads the task, enforces the state machine and stamps the
// lifecycle timestamps exactly once each.
func (s *ledgerService) transition(ctx context.Context, taskID string, to domain.TaskStatus, mutate func(*domain.Task)) (*domain.Task, error) {
	task, err := s.tasks.GetByTaskID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	if !canTransition(task.Status, to) {
		s.logger.Warnw("task_transition_rejected", "task_id", taskID, "from", task.Status, "to", to)
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidState, task.Status, to)
	}

	now := time.Now()
	task.Status = to
	if to == domain.TaskStatusProgress && task.StartedAt == nil {
		task.StartedAt = &now
	}
	if to.Terminal() && task.CompletedAt == nil {
		task.CompletedAt = &now
	}
	if mutate != nil {
		mutate(task)
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		s.logger.Errorw("task_transition_update_failed", "task_id", taskID, "to", to, "error", err)
		return nil, err
	}

	s.logger.Infow("task_transition_ok", "task_id", taskID, "to", to)
	return task, nil
}

func (s *ledgerService) Begin(ctx context.Context, taskID string) (*domain.Task, error) {
	return s.transition(ctx, taskID, domain.TaskStatusProgress, nil)
}

func (s *ledgerService) Complete(ctx context.Context, taskID string, rec ports.CompletionRecord) error {
	_, err := s.transition(ctx, taskID, domain.TaskStatusSuccess, func(task *domain.Task) {
		task.ResultPath = rec.ResultPath
		originalRows := rec.OriginalRows
		processedRows := rec.ProcessedRows
		task.OriginalRows = &originalRows
		task.ProcessedRows = &processedRows
		if len(rec.Summary) > 0 {
			if task.OperationParams == nil {
				task.OperationParams = domain.JSONB{}
			}
			for k, v := range rec.Summary {
				task.OperationParams[k] = v
			}
		}
	})
	return err
}

func (s *ledgerService) Fail(ctx context.Context, taskID string, reason string) error {
	_, err := s.transition(ctx, taskID, domain.TaskStatusFailure, func(task *domain.Task) {
		task.ErrorMessage = reason
	})
	return err
}

func (s *ledgerService) Get(ctx context.Context, taskID string, userID uint) (*domain.Task, error) {
	task, err := s.tasks.GetByTaskIDForUser(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	return task, nil
}
