package approvalapimodels

import (
	"time"

	"task-approval-backend/models"
	taskapimodels "task-approval-backend/models/api/task"
	usersapimodels "task-approval-backend/models/api/users"
	dbmodels "task-approval-backend/models/db"
)

// ApprovalView is one approver row together with its task.
type ApprovalView struct {
	ID           string                    `json:"id"`
	LevelOrder   int                       `json:"level_order"`
	Approver     *usersapimodels.UserShort `json:"approver"`
	Status       models.ApproverStatus     `json:"status"`
	Comment      string                    `json:"comment"`
	ActionAt     *time.Time                `json:"action_at"`
	IsActionable bool                      `json:"is_actionable"` // the stage is current and the task waits for approval
	Task         taskapimodels.TaskView    `json:"task"`
}

func ApprovalConvert(rec dbmodels.TaskApprover, now time.Time) ApprovalView {
	result := ApprovalView{
		ID:         rec.ID,
		LevelOrder: rec.LevelOrder,
		Approver:   usersapimodels.UserShortConvert(rec.ApproverUser),
		Status:     rec.Status,
		Comment:    rec.Comment,
		ActionAt:   rec.ActionAt,
	}
	if rec.Task != nil {
		result.Task = taskapimodels.TaskConvert(*rec.Task, now)
		result.IsActionable = rec.Status == models.ApproverStatusPending &&
			rec.Task.Status == models.TaskStatusPendingApproval &&
			rec.Task.CurrentLevel() == rec.LevelOrder
	}
	return result
}
