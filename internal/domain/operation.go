package domain

import (
	"fmt"
)

// Comparison and substring operators accepted by filter conditions.
const (
	OpGreater        = ">"
	OpGreaterOrEqual = ">="
	OpLess           = "<"
	OpLessOrEqual    = "<="
	OpEqual          = "=="
	OpNotEqual       = "!="
	OpContains       = "contains"
	OpNotContains    = "not_contains"
)

var filterOperators = map[string]struct{}{
	OpGreater:        {},
	OpGreaterOrEqual: {},
	OpLess:           {},
	OpLessOrEqual:    {},
	OpEqual:          {},
	OpNotEqual:       {},
	OpContains:       {},
	OpNotContains:    {},
}

// KnownFilterOperator reports whether op is part of the accepted operator set.
func KnownFilterOperator(op string) bool {
	_, ok := filterOperators[op]
	return ok
}

type FilterCondition struct {
	Column   string `json:"column"`
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// Operation is the validated, operation-specific payload of a task.
// Exactly one variant is populated depending on Kind:
// dedup carries nothing, unique carries Column, filter carries Conditions.
type Operation struct {
	Kind       OperationKind
	Column     string
	Conditions []FilterCondition
}

func NewDedupOperation() Operation {
	return Operation{Kind: OperationDedup}
}

func NewUniqueOperation(column string) Operation {
	return Operation{Kind: OperationUnique, Column: column}
}

func NewFilterOperation(conds []FilterCondition) Operation {
	return Operation{Kind: OperationFilter, Conditions: conds}
}

// Validate applies the per-operation submission rules. Errors wrap
// ErrValidation so callers can reject the request before a task exists.
func (o Operation) Validate() error {
	switch o.Kind {
	case OperationDedup:
		return nil
	case OperationUnique:
		if o.Column == "" {
			return fmt.Errorf("%w: unique requires a column name", ErrValidation)
		}
		return nil
	case OperationFilter:
		if len(o.Conditions) == 0 {
			return fmt.Errorf("%w: filter requires at least one condition", ErrValidation)
		}
		for i, c := range o.Conditions {
			if c.Column == "" || c.Operator == "" || c.Value == "" {
				return fmt.Errorf("%w: condition %d must include column, operator and value", ErrValidation, i)
			}
			if !KnownFilterOperator(c.Operator) {
				return fmt.Errorf("%w: condition %d has unsupported operator %q", ErrValidation, i, c.Operator)
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown operation %q", ErrValidation, string(o.Kind))
	}
}

// Params serializes the operation payload for verbatim storage on the
// task row.
func (o Operation) Params() JSONB {
	switch o.Kind {
	case OperationUnique:
		return JSONB{"column": o.Column}
	case OperationFilter:
		conds := make([]interface{}, 0, len(o.Conditions))
		for _, c := range o.Conditions {
			conds = append(conds, map[string]interface{}{
				"column":   c.Column,
				"operator": c.Operator,
				"value":    c.Value,
			})
		}
		return JSONB{"conditions": conds}
	default:
		return JSONB{}
	}
}

// OperationFromParams rebuilds the typed payload from a stored params
// blob, e.g. when re-reading an audited task row.
func OperationFromParams(kind OperationKind, params JSONB) (Operation, error) {
	switch kind {
	case OperationDedup:
		return NewDedupOperation(), nil
	case OperationUnique:
		column, _ := params["column"].(string)
		op := NewUniqueOperation(column)
		return op, op.Validate()
	case OperationFilter:
		raw, _ := params["conditions"].([]interface{})
		conds := make([]FilterCondition, 0, len(raw))
		for _, item := range raw {
			m, ok := item.(map[string]interface{})
			if !ok {
				return Operation{}, fmt.Errorf("%w: malformed filter condition", ErrValidation)
			}
			column, _ := m["column"].(string)
			operator, _ := m["operator"].(string)
			value, _ := m["value"].(string)
			conds = append(conds, FilterCondition{Column: column, Operator: operator, Value: value})
		}
		op := NewFilterOperation(conds)
		return op, op.Validate()
	default:
		return Operation{}, fmt.Errorf("%w: unknown operation %q", ErrValidation, string(kind))
	}
}
