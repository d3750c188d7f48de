package services_test

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/csvflow/backend/internal/core/ports"
	"github.com/csvflow/backend/internal/core/services"
	"github.com/csvflow/backend/internal/domain"
	"github.com/csvflow/backend/internal/infrastructure/db"
	"github.com/csvflow/backend/internal/infrastructure/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(t.Name()))
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(database))
	return database
}

type ledgerFixture struct {
	ledger  ports.LedgerService
	tasks   ports.TaskRepository
	dataset *domain.Dataset
	user    *domain.User
	other   *domain.User
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	database := newTestDB(t)
	log := logger.NewNop()

	users := db.NewUserRepository(database, log)
	datasets := db.NewDatasetRepository(database, log)
	tasks := db.NewTaskRepository(database, log)

	ctx := context.Background()
	user := &domain.User{Email: "owner@example.com", Password: "x", IsActive: true}
	require.NoError(t, users.Create(ctx, user))
	other := &domain.User{Email: "other@example.com", Password: "x", IsActive: true}
	require.NoError(t, users.Create(ctx, other))

	dataset := &domain.Dataset{
		UserID:       user.ID,
		OriginalName: "people.csv",
		StoragePath:  "csv_files/people.csv",
		FileSize:     128,
	}
	require.NoError(t, datasets.Create(ctx, dataset))

	ledger := services.NewLedgerService(services.LedgerServiceConfig{
		Tasks:    tasks,
		Datasets: datasets,
		Logger:   log,
	})

	return &ledgerFixture{ledger: ledger, tasks: tasks, dataset: dataset, user: user, other: other}
}

func TestCreateProducesPendingTask(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	task, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, domain.NewUniqueOperation("city"))
	require.NoError(t, err)

	assert.NotEmpty(t, task.TaskID)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, domain.OperationUnique, task.Operation)
	assert.Equal(t, "city", task.OperationParams["column"])
	assert.Nil(t, task.StartedAt)
	assert.Nil(t, task.CompletedAt)
	assert.Nil(t, task.OriginalRows)
	assert.Empty(t, task.ErrorMessage)
}

func TestCreateAssignsFreshIdentifierPerSubmission(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	first, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, domain.NewDedupOperation())
	require.NoError(t, err)
	second, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, domain.NewDedupOperation())
	require.NoError(t, err)

	assert.NotEqual(t, first.TaskID, second.TaskID)
}

func TestCreateRejectsInvalidOperation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	cases := []domain.Operation{
		domain.NewUniqueOperation(""),
		domain.NewFilterOperation(nil),
		domain.NewFilterOperation([]domain.FilterCondition{{Column: "age", Operator: "~=", Value: "1"}}),
		domain.NewFilterOperation([]domain.FilterCondition{{Column: "age", Operator: ">"}}),
		{Kind: "explode"},
	}
	for _, op := range cases {
		_, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, op)
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestCreateRejectsForeignDataset(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.ledger.Create(context.Background(), f.other.ID, f.dataset.ID, domain.NewDedupOperation())

	assert.ErrorIs(t, err, domain.ErrDatasetNotFound)
}

func TestBeginSetsStartedAtOnce(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, domain.NewDedupOperation())
	require.NoError(t, err)

	task, err := f.ledger.Begin(ctx, created.TaskID)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusProgress, task.Status)
	require.NotNil(t, task.StartedAt)
	assert.False(t, task.StartedAt.Before(task.CreatedAt))
}

func TestProgressOnlyFollowsPending(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, domain.NewDedupOperation())
	require.NoError(t, err)

	_, err = f.ledger.Begin(ctx, created.TaskID)
	require.NoError(t, err)

	_, err = f.ledger.Begin(ctx, created.TaskID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestSuccessRequiresProgress(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, domain.NewDedupOperation())
	require.NoError(t, err)

	err = f.ledger.Complete(ctx, created.TaskID, ports.CompletionRecord{ResultPath: "p", OriginalRows: 1, ProcessedRows: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCompleteRecordsResultFields(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, domain.NewUniqueOperation("city"))
	require.NoError(t, err)
	_, err = f.ledger.Begin(ctx, created.TaskID)
	require.NoError(t, err)

	err = f.ledger.Complete(ctx, created.TaskID, ports.CompletionRecord{
		ResultPath:    "processed_csv/out.csv",
		OriginalRows:  10,
		ProcessedRows: 4,
		Summary:       domain.JSONB{"unique_count": 4},
	})
	require.NoError(t, err)

	task, err := f.ledger.Get(ctx, created.TaskID, f.user.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.TaskStatusSuccess, task.Status)
	assert.Equal(t, "processed_csv/out.csv", task.ResultPath)
	require.NotNil(t, task.OriginalRows)
	require.NotNil(t, task.ProcessedRows)
	assert.Equal(t, 10, *task.OriginalRows)
	assert.Equal(t, 4, *task.ProcessedRows)
	assert.Empty(t, task.ErrorMessage)
	require.NotNil(t, task.CompletedAt)
	assert.False(t, task.CompletedAt.Before(*task.StartedAt))

	// Derived summary merges into the stored params without dropping
	// the submitted ones.
	assert.Equal(t, "city", task.OperationParams["column"])
	assert.EqualValues(t, 4, task.OperationParams["unique_count"])
}

func TestFailRecordsErrorMessage(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, domain.NewDedupOperation())
	require.NoError(t, err)
	_, err = f.ledger.Begin(ctx, created.TaskID)
	require.NoError(t, err)

	require.NoError(t, f.ledger.Fail(ctx, created.TaskID, "column 'x' not found in CSV file"))

	task, err := f.ledger.Get(ctx, created.TaskID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailure, task.Status)
	assert.Equal(t, "column 'x' not found in CSV file", task.ErrorMessage)
	assert.Empty(t, task.ResultPath)
	assert.Nil(t, task.OriginalRows)
	require.NotNil(t, task.CompletedAt)
}

func TestFailFromPendingForDispatchErrors(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, domain.NewDedupOperation())
	require.NoError(t, err)

	require.NoError(t, f.ledger.Fail(ctx, created.TaskID, "queue: dispatch failed"))

	task, err := f.ledger.Get(ctx, created.TaskID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusFailure, task.Status)
	assert.Nil(t, task.StartedAt)
}

func TestTerminalStatesRejectAllTransitions(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, domain.NewDedupOperation())
	require.NoError(t, err)
	_, err = f.ledger.Begin(ctx, created.TaskID)
	require.NoError(t, err)
	require.NoError(t, f.ledger.Fail(ctx, created.TaskID, "boom"))

	_, err = f.ledger.Begin(ctx, created.TaskID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	err = f.ledger.Complete(ctx, created.TaskID, ports.CompletionRecord{ResultPath: "p"})
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	err = f.ledger.Fail(ctx, created.TaskID, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	created, err := f.ledger.Create(ctx, f.user.ID, f.dataset.ID, domain.NewDedupOperation())
	require.NoError(t, err)

	_, err = f.ledger.Get(ctx, created.TaskID, f.other.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)

	_, err = f.ledger.Get(ctx, "no-such-task", f.user.ID)
	assert.ErrorIs(t, err, domain.ErrTaskNotFound)
}
