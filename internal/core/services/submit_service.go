package services

import (
	"context"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/domain"
	"github.com/csvflow/backend/internal/infrastructure/logger"
)

type submitService struct {
	ledger ports.LedgerService
	queue  ports.TaskQueue
	logger *logger.Logger
}

type SubmitServiceConfig struct {
	Ledger ports.LedgerService
	Queue  ports.TaskQueue
	Logger *logger.Logger
}

func NewSubmitService(cfg SubmitServiceConfig) ports.SubmitService {
	return &submitService{
		ledger: cfg.Ledger,
		queue:  cfg.Queue,
		logger: cfg.Logger,
	}
}

// Submit validates the request, records the task in PENDING and hands
// it to the queue. The call returns as soon as the descriptor is
// enqueued; execution happens later on a worker. A dispatch failure
// leaves the already-created task in FAILURE with the error recorded
// and is reported back to the caller.
func (s *submitService) Submit(ctx context.Context, userID, datasetID uint, op domain.Operation) (*domain.Task, error) {
	task, err := s.ledger.Create(ctx, userID, datasetID, op)
	if err != nil {
		return nil, err
	}

	descriptor := ports.TaskDescriptor{
		TaskID:    task.TaskID,
		UserID:    userID,
		DatasetID: task.DatasetID,
		Operation: op,
	}

	if err := s.queue.Enqueue(ctx, descriptor); err != nil {
		s.logger.Errorw("task_dispatch_failed", "task_id", task.TaskID, "error", err)
		if failErr := s.ledger.Fail(ctx, task.TaskID, err.Error()); failErr != nil {
			s.logger.Errorw("task_dispatch_fail_record_failed", "task_id", task.TaskID, "error", failErr)
		}
		return nil, err
	}

	s.logger.Infow("task_dispatch_ok", "task_id", task.TaskID, "operation", op.Kind)
	return task, nil
}
