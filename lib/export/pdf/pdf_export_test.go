package pdfexport

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"task-approval-backend/models"
	taskapimodels "task-approval-backend/models/api/task"
	usersapimodels "task-approval-backend/models/api/users"
)

func TestTaskApprovalSheet(t *testing.T) {
	now := time.Now()
	amount := 1250.5
	task := taskapimodels.TaskDetailView{
		TaskView: taskapimodels.TaskView{
			ID:           "task-1",
			Title:        "Buy servers",
			Description:  "Two racks for the new office",
			Creator:      &usersapimodels.UserShort{ID: "a", Name: "Anna"},
			Assignee:     &usersapimodels.UserShort{ID: "b", Name: "Boris"},
			ApprovalType: models.ApprovalTypeSpecific,
			Status:       models.TaskStatusPendingApproval,
			StatusName:   models.TaskStatusPendingApproval.ToHuman(),
			Amount:       &amount,
			CreatedAt:    now,
		},
		Approvers: []taskapimodels.ApproverView{
			{LevelOrder: 1, Approver: &usersapimodels.UserShort{ID: "c", Name: "Clara"}, Status: models.ApproverStatusApproved, ActionAt: &now, Comment: "fine"},
			{LevelOrder: 2, Approver: &usersapimodels.UserShort{ID: "d"}, Status: models.ApproverStatusPending},
		},
	}
	ledger := taskapimodels.LedgerView{
		Nodes: []taskapimodels.NodeView{{FromUser: task.Creator, ToUser: task.Assignee, ForwardedAt: now, Comment: "please"}},
		Path:  []string{"a", "b"},
	}

	file, err := TaskApprovalSheet(task, ledger)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(file, []byte("%PDF-")))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "short", truncate(" short ", 10))
	require.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
