package models

import (
	"bytes"
	"encoding/json"
	"slices"

	"github.com/pkg/errors"
)

// ApprovalCondition restricts a template or a template stage. Every present key must match, an empty condition always matches.
type ApprovalCondition struct {
	MinAmount     *float64 `json:"min_amount,omitempty"`
	MaxAmount     *float64 `json:"max_amount,omitempty"`
	DepartmentIDs []string `json:"department_ids,omitempty"`
}

func ParseApprovalCondition(raw []byte) (ApprovalCondition, error) {
	cond := ApprovalCondition{}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return cond, nil
	}
	if err := json.Unmarshal(raw, &cond); err != nil {
		return cond, errors.Wrapf(ErrValidation, "condition is not valid json: %v", err)
	}
	if cond.MinAmount != nil && cond.MaxAmount != nil && *cond.MinAmount > *cond.MaxAmount {
		return cond, errors.Wrap(ErrValidation, "condition min_amount is greater than max_amount")
	}
	return cond, nil
}

func (c ApprovalCondition) IsEmpty() bool {
	return c.MinAmount == nil && c.MaxAmount == nil && len(c.DepartmentIDs) == 0
}

func (c ApprovalCondition) Matches(amount *float64, departmentID string) bool {
	if c.MinAmount != nil && (amount == nil || *amount < *c.MinAmount) {
		return false
	}
	if c.MaxAmount != nil && (amount == nil || *amount > *c.MaxAmount) {
		return false
	}
	if len(c.DepartmentIDs) > 0 && !slices.Contains(c.DepartmentIDs, departmentID) {
		return false
	}
	return true
}

func (c ApprovalCondition) Marshal() []byte {
	if c.IsEmpty() {
		return []byte("{}")
	}
	data, _ := json.Marshal(c)
	return data
}
