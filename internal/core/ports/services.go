package ports

import (
	"context"
	"io"
	"time"

	"github.com/csvflow/backend/internal/domain"
)

// ==================== TASK LEDGER ====================

// CompletionRecord carries the fields materialized on a task when it
// reaches SUCCESS.
type CompletionRecord struct {
	ResultPath    string
	OriginalRows  int
	ProcessedRows int
	Summary       domain.JSONB
}

// LedgerService is the durable record of each submitted operation and
// its lifecycle state. Transitions are monotonic: PENDING -> PROGRESS ->
// SUCCESS|FAILURE, plus PENDING -> FAILURE for dispatch errors. Terminal
// tasks reject further transitions with domain.ErrInvalidState.
type LedgerService interface {
	Create(ctx context.Context, userID, datasetID uint, op domain.Operation) (*domain.Task, error)
	// Begin moves PENDING -> PROGRESS and stamps started_at.
	Begin(ctx context.Context, taskID string) (*domain.Task, error)
	// Complete moves PROGRESS -> SUCCESS and records the result fields.
	Complete(ctx context.Context, taskID string, rec CompletionRecord) error
	// Fail moves PENDING|PROGRESS -> FAILURE and records the reason.
	Fail(ctx context.Context, taskID string, reason string) error
	// Get returns the task only when it belongs to the given user.
	Get(ctx context.Context, taskID string, userID uint) (*domain.Task, error)
}

// ==================== SUBMISSION & EXECUTION ====================

// TaskDescriptor is the message handed to the queue for asynchronous
// execution.
type TaskDescriptor struct {
	TaskID    string
	UserID    uint
	DatasetID uint
	Operation domain.Operation
}

// TaskQueue dispatches a descriptor for execution on a worker,
// decoupled from the submitting request. Enqueue is fire-and-forget;
// a dispatch failure returns an error wrapping domain.ErrDispatch.
type TaskQueue interface {
	Enqueue(ctx context.Context, d TaskDescriptor) error
}

// TaskRunner executes one task end-to-end. Implementations own the
// whole failure path: every outcome ends in exactly one terminal status
// on the ledger, so the returned error is for worker logging only.
type TaskRunner interface {
	Run(ctx context.Context, d TaskDescriptor) error
}

type SubmitService interface {
	Submit(ctx context.Context, userID, datasetID uint, op domain.Operation) (*domain.Task, error)
}

// ==================== STATUS QUERY ====================

// TaskResultPreview is a bounded read-back of a successful result blob.
type TaskResultPreview struct {
	Data          []map[string]string `json:"data"`
	FileLink      string              `json:"file_link"`
	OriginalRows  int                 `json:"original_rows"`
	ProcessedRows int                 `json:"processed_rows"`
}

type TaskStatusView struct {
	TaskID      string             `json:"task_id"`
	Status      domain.TaskStatus  `json:"status"`
	Operation   domain.OperationKind `json:"operation"`
	Error       string             `json:"error,omitempty"`
	Result      *TaskResultPreview `json:"result,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	StartedAt   *time.Time         `json:"started_at,omitempty"`
	CompletedAt *time.Time         `json:"completed_at,omitempty"`
}

type QueryService interface {
	// Query returns status only for non-terminal tasks, the recorded
	// error for FAILURE, and a preview of up to previewRows rows for
	// SUCCESS. A result blob unreadable at query time yields an error
	// wrapping domain.ErrStorageRead without mutating the task.
	Query(ctx context.Context, taskID string, userID uint, previewRows int) (*TaskStatusView, error)
}

// ==================== AUTH ====================

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (TokenPair, error)
	// VerifyAccess validates an access token and returns the user id it
	// was issued for.
	VerifyAccess(token string) (uint, error)
}

// ==================== DATASET STORE ====================

// DatasetStore persists uploaded tables and transform outputs as
// addressable blobs. Paths are opaque strings, stable for re-reading.
type DatasetStore interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Write(ctx context.Context, path string, r io.Reader) (int64, error)
	Size(ctx context.Context, path string) (int64, error)
}
