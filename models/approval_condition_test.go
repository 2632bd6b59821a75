package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApprovalCondition(t *testing.T) {
	amount := func(v float64) *float64 { return &v }

	t.Run("empty matches everything", func(t *testing.T) {
		for _, raw := range []string{"", "null", "{}", "  "} {
			cond, err := ParseApprovalCondition([]byte(raw))
			require.NoError(t, err)
			require.True(t, cond.IsEmpty())
			require.True(t, cond.Matches(nil, ""))
		}
	})
	t.Run("amount bounds", func(t *testing.T) {
		cond, err := ParseApprovalCondition([]byte(`{"min_amount": 1000, "max_amount": 5000}`))
		require.NoError(t, err)
		require.False(t, cond.Matches(nil, ""))
		require.False(t, cond.Matches(amount(999), ""))
		require.True(t, cond.Matches(amount(1000), ""))
		require.True(t, cond.Matches(amount(5000), ""))
		require.False(t, cond.Matches(amount(5000.01), ""))
	})
	t.Run("departments", func(t *testing.T) {
		cond, err := ParseApprovalCondition([]byte(`{"department_ids": ["d1", "d2"]}`))
		require.NoError(t, err)
		require.True(t, cond.Matches(nil, "d2"))
		require.False(t, cond.Matches(nil, "d3"))
		require.False(t, cond.Matches(nil, ""))
	})
	t.Run("invalid", func(t *testing.T) {
		_, err := ParseApprovalCondition([]byte(`{"min_amount": "a lot"}`))
		require.ErrorIs(t, err, ErrValidation)
		_, err = ParseApprovalCondition([]byte(`{"min_amount": 10, "max_amount": 1}`))
		require.ErrorIs(t, err, ErrValidation)
	})
}

func TestTaskStatusTransitions(t *testing.T) {
	t.Run("allowed", func(t *testing.T) {
		require.True(t, TaskStatusOpen.Allows(TaskEventStart))
		require.True(t, TaskStatusInProgress.Allows(TaskEventComplete))
		require.True(t, TaskStatusInProgress.Allows(TaskEventForward))
		require.True(t, TaskStatusInProgress.Allows(TaskEventReject))
		require.True(t, TaskStatusPendingApproval.Allows(TaskEventApprove))
		require.True(t, TaskStatusPendingApproval.Allows(TaskEventRejectStage))
	})
	t.Run("terminal statuses allow nothing", func(t *testing.T) {
		for _, status := range []TaskStatus{TaskStatusApproved, TaskStatusRejected, TaskStatusCompleted} {
			require.True(t, status.IsTerminal())
			for event := range transitions {
				require.False(t, status.Allows(event), "%s %s", status, event)
			}
		}
	})
	t.Run("out of order", func(t *testing.T) {
		require.False(t, TaskStatusOpen.Allows(TaskEventComplete))
		require.False(t, TaskStatusInProgress.Allows(TaskEventStart))
		require.False(t, TaskStatusPendingApproval.Allows(TaskEventForward))
		require.False(t, TaskStatusOpen.Allows(TaskEventCreate))
	})
}
