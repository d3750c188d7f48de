package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/core/transform"
	"github.com/csvflow/backend/internal/domain"
	"github.com/csvflow/backend/internal/infrastructure/logger"
	"github.com/csvflow/backend/internal/infrastructure/storage"
)

type executorService struct {
	ledger   ports.LedgerService
	datasets ports.DatasetRepository
	store    ports.DatasetStore
	logger   *logger.Logger
}

type ExecutorServiceConfig struct {
	Ledger   ports.LedgerService
	Datasets ports.DatasetRepository
	Store    ports.DatasetStore
	Logger   *logger.Logger
}

func NewExecutorService(cfg ExecutorServiceConfig) ports.TaskRunner {
	return &executorService{
		ledger:   cfg.Ledger,
		datasets: cfg.Datasets,
		store:    cfg.Store,
		logger:   cfg.Logger,
	}
}

// Run executes one task end-to-end on the calling worker goroutine:
// PROGRESS, load, transform, materialize, then SUCCESS or FAILURE.
// Every error after Begin funnels into the single failure path that
// records the message on the task, so no execution outcome is silent.
func (s *executorService) Run(ctx context.Context, d ports.TaskDescriptor) error {
	if _, err := s.ledger.Begin(ctx, d.TaskID); err != nil {
		s.logger.Errorw("task_begin_failed", "task_id", d.TaskID, "error", err)
		return err
	}

	rec, err := s.execute(ctx, d)
	if err != nil {
		s.logger.Warnw("task_execute_failed", "task_id", d.TaskID, "operation", d.Operation.Kind, "error", err)
		if failErr := s.ledger.Fail(ctx, d.TaskID, err.Error()); failErr != nil {
			s.logger.Errorw("task_fail_record_failed", "task_id", d.TaskID, "error", failErr)
		}
		return err
	}

	if err := s.ledger.Complete(ctx, d.TaskID, *rec); err != nil {
		s.logger.Errorw("task_complete_record_failed", "task_id", d.TaskID, "error", err)
		return err
	}

	if err := s.datasets.MarkProcessed(ctx, d.DatasetID); err != nil {
		s.logger.Warnw("dataset_mark_processed_failed", "dataset_id", d.DatasetID, "error", err)
	}

	s.logger.Infow("task_execute_ok",
		"task_id", d.TaskID,
		"operation", d.Operation.Kind,
		"original_rows", rec.OriginalRows,
		"processed_rows", rec.ProcessedRows,
		"result_path", rec.ResultPath,
	)
	return nil
}

func (s *executorService) execute(ctx context.Context, d ports.TaskDescriptor) (*ports.CompletionRecord, error) {
	dataset, err := s.datasets.GetByID(ctx, d.DatasetID)
	if err != nil {
		return nil, err
	}

	rc, err := s.store.Open(ctx, dataset.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %s: %w", dataset.StoragePath, err)
	}
	table, decodeErr := storage.DecodeTable(rc)
	rc.Close()
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", dataset.StoragePath, decodeErr)
	}

	table = transform.Sanitize(table)

	var (
		out transform.Table
		sum transform.Summary
	)
	switch d.Operation.Kind {
	case domain.OperationDedup:
		out, sum = transform.Dedup(table)
	case domain.OperationUnique:
		out, sum, err = transform.Unique(table, d.Operation.Column)
	case domain.OperationFilter:
		out, sum, err = transform.Filter(table, d.Operation.Conditions)
	default:
		err = fmt.Errorf("%w: unknown operation %q", domain.ErrValidation, string(d.Operation.Kind))
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := storage.EncodeTable(&buf, out); err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	resultPath := resultPath(d.Operation)
	if _, err := s.store.Write(ctx, resultPath, &buf); err != nil {
		return nil, fmt.Errorf("failed to write result %s: %w", resultPath, err)
	}

	return &ports.CompletionRecord{
		ResultPath:    resultPath,
		OriginalRows:  sum.OriginalRows,
		ProcessedRows: sum.ProcessedRows,
		Summary:       domain.JSONB(sum.Meta),
	}, nil
}

// resultPath derives a fresh, collision-free blob path from a random
// identifier plus the operation name.
func resultPath(op domain.Operation) string {
	id := uuid.New().String()
	switch op.Kind {
	case domain.OperationUnique:
		return fmt.Sprintf("processed_csv/%s_unique_%s.csv", id, op.Column)
	case domain.OperationFilter:
		return fmt.Sprintf("processed_csv/%s_filtered.csv", id)
	default:
		return fmt.Sprintf("processed_csv/%s_dedup.csv", id)
	}
}
