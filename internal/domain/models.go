package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// ==================== ENUMS ====================

type TaskStatus string

const (
	TaskStatusPending  TaskStatus = "PENDING"
	TaskStatusProgress TaskStatus = "PROGRESS"
	TaskStatusSuccess  TaskStatus = "SUCCESS"
	TaskStatusFailure  TaskStatus = "FAILURE"
	// TaskStatusRetry is reserved for a future automatic-retry policy.
	// No code path currently enters it.
	TaskStatusRetry TaskStatus = "RETRY"
)

// Terminal reports whether no further transitions are permitted.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusSuccess || s == TaskStatusFailure
}

type OperationKind string

const (
	OperationDedup  OperationKind = "dedup"
	OperationUnique OperationKind = "unique"
	OperationFilter OperationKind = "filter"
)

// ==================== JSONB TYPES ====================

type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan JSONB: invalid type")
	}
	return json.Unmarshal(bytes, j)
}

// ==================== ENTITIES ====================

type User struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Email      string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password   string    `gorm:"size:128;not null" json:"-"`
	IsActive   bool      `gorm:"default:true" json:"is_active"`
	IsStaff    bool      `gorm:"default:false" json:"is_staff"`
	DateJoined time.Time `gorm:"autoCreateTime" json:"date_joined"`
}

func (User) TableName() string { return "auth_user" }

// Dataset is an uploaded source table. Rows are immutable once created;
// only IsProcessed is toggled after a transform against it succeeds.
type Dataset struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"index;not null" json:"user_id"`
	OriginalName string    `gorm:"size:255;not null" json:"original_name"`
	StoragePath  string    `gorm:"size:512;not null" json:"storage_path"`
	FileSize     int64     `gorm:"not null" json:"file_size"`
	UploadDate   time.Time `gorm:"autoCreateTime" json:"upload_date"`
	IsProcessed  bool      `gorm:"default:false" json:"is_processed"`
}

func (Dataset) TableName() string { return "csv_files" }

// Task is one submitted transform request and its tracked lifecycle.
// A row is mutated only by the worker executing the task, at most once
// per state transition.
type Task struct {
	ID        uint          `gorm:"primaryKey" json:"-"`
	TaskID    string        `gorm:"size:64;uniqueIndex;not null" json:"task_id"`
	UserID    uint          `gorm:"index;not null" json:"user_id"`
	DatasetID uint          `gorm:"index;not null" json:"dataset_id"`
	Operation OperationKind `gorm:"size:10;not null" json:"operation"`
	Status    TaskStatus    `gorm:"size:10;not null;default:'PENDING'" json:"status"`

	// OperationParams stores the submitted parameters verbatim for
	// auditability; on SUCCESS the executor merges derived summary
	// metadata into it (unique counts, applied filter list).
	OperationParams JSONB `gorm:"type:jsonb" json:"operation_params"`

	ResultPath    string `gorm:"size:512" json:"result_path,omitempty"`
	OriginalRows  *int   `json:"original_rows,omitempty"`
	ProcessedRows *int   `json:"processed_rows,omitempty"`
	ErrorMessage  string `gorm:"type:text" json:"error_message,omitempty"`

	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func (Task) TableName() string { return "task_results" }
