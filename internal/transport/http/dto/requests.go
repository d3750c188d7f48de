package dto

import (
	"github.com/csvflow/backend/internal/domain"
)

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type FilterConditionRequest struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// SubmitTaskRequest is the submission boundary payload. Column is used
// by unique, Conditions by filter; dedup takes no parameters.
type SubmitTaskRequest struct {
	DatasetID  uint                     `json:"dataset_id"`
	Operation  string                   `json:"operation"`
	Column     string                   `json:"column,omitempty"`
	Conditions []FilterConditionRequest `json:"conditions,omitempty"`
}

func (r *SubmitTaskRequest) Validate() []string {
	var errors []string
	if r.DatasetID == 0 {
		errors = append(errors, "dataset_id is required")
	}
	switch domain.OperationKind(r.Operation) {
	case domain.OperationDedup:
	case domain.OperationUnique:
		if r.Column == "" {
			errors = append(errors, "column is required for unique")
		}
	case domain.OperationFilter:
		if len(r.Conditions) == 0 {
			errors = append(errors, "conditions are required for filter")
		}
	default:
		errors = append(errors, "operation must be one of: dedup, unique, filter")
	}
	return errors
}

func (r *SubmitTaskRequest) ToOperation() domain.Operation {
	switch domain.OperationKind(r.Operation) {
	case domain.OperationUnique:
		return domain.NewUniqueOperation(r.Column)
	case domain.OperationFilter:
		conds := make([]domain.FilterCondition, 0, len(r.Conditions))
		for _, c := range r.Conditions {
			conds = append(conds, domain.FilterCondition{
				Column:   c.Column,
				Operator: c.Operator,
				Value:    c.Value,
			})
		}
		return domain.NewFilterOperation(conds)
	default:
		return domain.Operation{Kind: domain.OperationKind(r.Operation)}
	}
}
