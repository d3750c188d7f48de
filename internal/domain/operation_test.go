package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvflow/backend/internal/domain"
)

func TestOperationValidate(t *testing.T) {
	valid := []domain.Operation{
		domain.NewDedupOperation(),
		domain.NewUniqueOperation("city"),
		domain.NewFilterOperation([]domain.FilterCondition{
			{Column: "age", Operator: domain.OpGreater, Value: "30"},
			{Column: "city", Operator: domain.OpContains, Value: "ber"},
		}),
	}
	for _, op := range valid {
		assert.NoError(t, op.Validate(), string(op.Kind))
	}

	invalid := []domain.Operation{
		{Kind: "explode"},
		domain.NewUniqueOperation(""),
		domain.NewFilterOperation(nil),
		domain.NewFilterOperation([]domain.FilterCondition{{Column: "", Operator: ">", Value: "1"}}),
		domain.NewFilterOperation([]domain.FilterCondition{{Column: "age", Operator: "", Value: "1"}}),
		domain.NewFilterOperation([]domain.FilterCondition{{Column: "age", Operator: ">", Value: ""}}),
		domain.NewFilterOperation([]domain.FilterCondition{{Column: "age", Operator: "~=", Value: "1"}}),
	}
	for _, op := range invalid {
		assert.ErrorIs(t, op.Validate(), domain.ErrValidation)
	}
}

func TestKnownFilterOperator(t *testing.T) {
	for _, op := range []string{">", ">=", "<", "<=", "==", "!=", "contains", "not_contains"} {
		assert.True(t, domain.KnownFilterOperator(op), op)
	}
	for _, op := range []string{"", "=", "~=", "in", "CONTAINS"} {
		assert.False(t, domain.KnownFilterOperator(op), op)
	}
}

func TestOperationParamsRoundTrip(t *testing.T) {
	original := domain.NewFilterOperation([]domain.FilterCondition{
		{Column: "age", Operator: domain.OpGreaterOrEqual, Value: "30"},
		{Column: "city", Operator: domain.OpNotContains, Value: "x"},
	})

	rebuilt, err := domain.OperationFromParams(domain.OperationFilter, original.Params())
	require.NoError(t, err)
	assert.Equal(t, original, rebuilt)

	unique := domain.NewUniqueOperation("city")
	rebuilt, err = domain.OperationFromParams(domain.OperationUnique, unique.Params())
	require.NoError(t, err)
	assert.Equal(t, unique, rebuilt)

	dedup := domain.NewDedupOperation()
	rebuilt, err = domain.OperationFromParams(domain.OperationDedup, dedup.Params())
	require.NoError(t, err)
	assert.Equal(t, dedup, rebuilt)
}

func TestOperationFromParamsRejectsMalformed(t *testing.T) {
	_, err := domain.OperationFromParams("explode", domain.JSONB{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = domain.OperationFromParams(domain.OperationUnique, domain.JSONB{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = domain.OperationFromParams(domain.OperationFilter, domain.JSONB{
		"conditions": []interface{}{"not-a-map"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTaskStatusTerminal(t *testing.T) {
	assert.False(t, domain.TaskStatusPending.Terminal())
	assert.False(t, domain.TaskStatusProgress.Terminal())
	assert.False(t, domain.TaskStatusRetry.Terminal())
	assert.True(t, domain.TaskStatusSuccess.Terminal())
	assert.True(t, domain.TaskStatusFailure.Terminal())
}
