package xlsexport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"task-approval-backend/models"
	approvalapimodels "task-approval-backend/models/api/approval"
	taskapimodels "task-approval-backend/models/api/task"
	usersapimodels "task-approval-backend/models/api/users"
)

func TestExportApprovalHistory(t *testing.T) {
	decided := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	list := []approvalapimodels.ApprovalView{
		{
			LevelOrder: 1,
			Status:     models.ApproverStatusApproved,
			Comment:    "ok",
			ActionAt:   &decided,
			Task: taskapimodels.TaskView{
				Title:      "Buy servers",
				StatusName: "Approved",
				Creator:    &usersapimodels.UserShort{ID: "a", Name: "Anna"},
			},
		},
		{
			LevelOrder: 2,
			Status:     models.ApproverStatusPending,
			Task:       taskapimodels.TaskView{Title: "Hire intern", StatusName: "Open"},
		},
	}
	buf, err := impl{}.ExportApprovalHistory(list)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Approval history")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, historyHeaders, rows[0])
	require.Equal(t, []string{"Buy servers", "Approved", "1", "approved", "14.03.2026 09:30", "ok", "Anna"}, rows[1])
	require.Equal(t, "Hire intern", rows[2][0])
}
