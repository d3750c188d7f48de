package services

import (
	"context"
	"fmt"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/domain"
	"github.com/csvflow/backend/internal/infrastructure/logger"
	"github.com/csvflow/backend/internal/infrastructure/storage"
)

// DefaultPreviewRows bounds the result preview when the caller does not
// ask for a specific size.
const DefaultPreviewRows = 100

type queryService struct {
	ledger ports.LedgerService
	store  ports.DatasetStore
	logger *logger.Logger
}

type QueryServiceConfig struct {
	Ledger ports.LedgerService
	Store  ports.DatasetStore
	Logger *logger.Logger
}

func NewQueryService(cfg QueryServiceConfig) ports.QueryService {
	return &queryService{
		ledger: cfg.Ledger,
		store:  cfg.Store,
		logger: cfg.Logger,
	}
}

func (s *queryService) Query(ctx context.Context, taskID string, userID uint, previewRows int) (*ports.TaskStatusView, error) {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}

	task, err := s.ledger.Get(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	view := &ports.TaskStatusView{
		TaskID:      task.TaskID,
		Status:      task.Status,
		Operation:   task.Operation,
		CreatedAt:   task.CreatedAt,
		StartedAt:   task.StartedAt,
		CompletedAt: task.CompletedAt,
	}

	switch task.Status {
	case domain.TaskStatusFailure:
		view.Error = task.ErrorMessage
	case domain.TaskStatusSuccess:
		preview, err := s.readPreview(ctx, task, previewRows)
		if err != nil {
			// The task record stays untouched; the read failure is
			// reported in the query response only.
			s.logger.Warnw("task_result_read_failed", "task_id", taskID, "path", task.ResultPath, "error", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrStorageRead, err)
		}
		view.Result = preview
	}

	return view, nil
}

func (s *queryService) readPreview(ctx context.Context, task *domain.Task, previewRows int) (*ports.TaskResultPreview, error) {
	rc, err := s.store.Open(ctx, task.ResultPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	table, err := storage.DecodeTable(rc)
	if err != nil {
		return nil, err
	}

	limit := previewRows
	if limit > table.RowCount() {
		limit = table.RowCount()
	}
	data := make([]map[string]string, 0, limit)
	for _, row := range table.Rows[:limit] {
		record := make(map[string]string, len(table.Columns))
		for _, col := range table.Columns {
			record[col] = row[col].String()
		}
		data = append(data, record)
	}

	preview := &ports.TaskResultPreview{
		Data:     data,
		FileLink: "/files/" + task.ResultPath,
	}
	if task.OriginalRows != nil {
		preview.OriginalRows = *task.OriginalRows
	}
	if task.ProcessedRows != nil {
		preview.ProcessedRows = *task.ProcessedRows
	}
	return preview, nil
}
